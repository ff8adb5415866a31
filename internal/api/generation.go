package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// generateRequest is the body of POST /generation/generate. Topic and NItems
// are accepted for forward compatibility; generation is single-item and the
// retriever does not narrow by topic yet.
type generateRequest struct {
	Exam       string `json:"exam"`
	Skill      string `json:"skill"`
	Difficulty string `json:"difficulty"`
	Topic      string `json:"topic"`
	NItems     int    `json:"n_items"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.generateTimeout)
	defer cancel()

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Exam == "" || req.Skill == "" || req.Difficulty == "" {
		writeError(w, http.StatusBadRequest, "exam, skill and difficulty are required")
		return
	}

	result, err := s.generator.GenerateItem(ctx, req.Exam, req.Skill, req.Difficulty)
	if err != nil {
		slog.Error("item generation failed", "exam", req.Exam, "skill", req.Skill, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleValidate is a stub for the pedagogical review pipeline. It accepts
// any item and reports it valid.
//
// TODO: wire a rubric-based review pass once the reviewer prompts land.
func (s *Server) handleValidate(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  true,
		"issues": []string{},
	})
}

// handleSimilarityCheck is a stub for the originality screen against the
// historical item bank.
func (s *Server) handleSimilarityCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"is_original":    true,
		"max_similarity": 0.05,
	})
}
