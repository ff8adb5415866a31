package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/edu-forge/itemforge/internal/generation"
)

// wsEvent is one progress frame on the generation socket.
type wsEvent struct {
	Stage   string             `json:"stage"`
	Message string             `json:"message,omitempty"`
	Result  *generation.Result `json:"result,omitempty"`
}

// handleGenerateWS serves one generation request per connection: the client
// sends a generateRequest, receives progress frames and a final frame with
// either the result or an error, then the server closes the socket.
func (s *Server) handleGenerateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithTimeout(r.Context(), s.generateTimeout)
	defer cancel()

	var req generateRequest
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		conn.Close(websocket.StatusInvalidFramePayloadData, "invalid request")
		return
	}
	if req.Exam == "" || req.Skill == "" || req.Difficulty == "" {
		_ = wsjson.Write(ctx, conn, wsEvent{Stage: "error", Message: "exam, skill and difficulty are required"})
		conn.Close(websocket.StatusPolicyViolation, "missing fields")
		return
	}

	if err := wsjson.Write(ctx, conn, wsEvent{Stage: "generating", Message: "building context and prompting the model"}); err != nil {
		return
	}

	result, err := s.generator.GenerateItem(ctx, req.Exam, req.Skill, req.Difficulty)
	if err != nil {
		slog.Error("item generation failed", "exam", req.Exam, "skill", req.Skill, "error", err)
		_ = wsjson.Write(ctx, conn, wsEvent{Stage: "error", Message: err.Error()})
		conn.Close(websocket.StatusInternalError, "generation failed")
		return
	}

	if err := wsjson.Write(ctx, conn, wsEvent{Stage: "done", Result: &result}); err != nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
