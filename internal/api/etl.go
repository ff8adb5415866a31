package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/edu-forge/itemforge/internal/corpus"
)

// maxUploadBytes bounds the parsed multipart body.
const maxUploadBytes = 32 << 20

// handleUpload ingests a CSV or XLSX corpus and aggregates it into
// knowledge documents in one transaction.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse upload: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing form field 'file'")
		return
	}
	defer file.Close()

	var records []corpus.RawRecord
	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".csv":
		records, err = corpus.ReadCSV(file)
	case ".xlsx":
		records, err = corpus.ReadXLSX(file)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type %q, expected .csv or .xlsx", ext))
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parse corpus: %v", err))
		return
	}

	summary, err := s.aggregator.Run(ctx, records, header.Filename)
	if err != nil {
		slog.Error("corpus aggregation failed", "file", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	slog.Info("corpus ingested",
		"file", header.Filename,
		"rows", summary.RowsProcessed,
		"skill_cards", summary.SkillCards,
		"patterns", summary.Patterns,
		"similarity_items", summary.SimilarityItems,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"details": summary,
	})
}
