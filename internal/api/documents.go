package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/edu-forge/itemforge/internal/knowledge"
)

// listSnippetLen is the content preview length in list views.
const listSnippetLen = 200

// documentSummary is the list-view projection of a document.
type documentSummary struct {
	ID             string            `json:"id"`
	DocType        knowledge.DocType `json:"doc_type"`
	Exam           string            `json:"exam,omitempty"`
	Skill          string            `json:"skill,omitempty"`
	Topic          string            `json:"topic,omitempty"`
	DifficultyBand string            `json:"difficulty_band,omitempty"`
	SourceFile     string            `json:"source_file,omitempty"`
	Snippet        string            `json:"snippet"`
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	docType := knowledge.DocType(r.URL.Query().Get("doc_type"))
	if docType != "" && !docType.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown doc_type %q", docType))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	docs, err := s.store.List(ctx, docType, limit)
	if err != nil {
		slog.Error("document list failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]documentSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, documentSummary{
			ID:             doc.ID,
			DocType:        doc.DocType,
			Exam:           doc.Exam,
			Skill:          doc.Skill,
			Topic:          doc.Topic,
			DifficultyBand: doc.DifficultyBand,
			SourceFile:     doc.SourceFile,
			Snippet:        doc.Snippet(listSnippetLen),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(summaries),
		"documents": summaries,
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	doc, err := s.store.Get(ctx, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, knowledge.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDuplicatesCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	groups, err := s.store.DuplicateGroups(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	total := 0
	for _, g := range groups {
		// One copy per group is legitimate; the rest are duplicates.
		total += g.Count - 1
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"duplicate_groups":      len(groups),
		"total_duplicate_items": total,
		"details":               groups,
	})
}

func (s *Server) handleCleanDuplicates(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	deleted, err := s.store.CleanDuplicates(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("duplicates cleaned", "deleted", deleted)
	writeJSON(w, http.StatusOK, map[string]any{
		"deleted_count": deleted,
		"message":       fmt.Sprintf("removed %d duplicate documents, kept the first copy of each", deleted),
	})
}
