package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/CHURO-MAU/okurimono-note/internal/snapshot"
)

// importBodyLimit caps uploads; realistic snapshots are a few megabytes at
// the very most.
const importBodyLimit = 16 << 20

// handleExport streams the full collection as a downloadable snapshot.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	doc, err := snapshot.Export(r.Context(), s.records)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to export snapshot",
			"error", err,
			"component", "snapshot",
			"operation", "export")
		writeError(w, http.StatusInternalServerError, "failed to export records")
		return
	}
	data, err := doc.Encode()
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export records")
		return
	}

	slog.InfoContext(r.Context(), "Snapshot exported",
		"count", len(doc.Records),
		"component", "snapshot",
		"operation", "export")

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", snapshot.FileName(time.Now())))
	_, _ = w.Write(data)
}

// handleImport consumes an uploaded snapshot. mode=overwrite replaces the
// whole collection; mode=append keeps existing records and adds only
// unknown ids. Validation failures leave the store untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	mode := strings.TrimSpace(r.URL.Query().Get("mode"))
	if mode != "overwrite" && mode != "append" {
		writeError(w, http.StatusBadRequest, "mode must be overwrite or append")
		return
	}

	data, err := readImportBody(r)
	if err != nil {
		slog.WarnContext(r.Context(), "Failed to read import body", "error", err)
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	doc, err := snapshot.Parse(r.Context(), data)
	if err != nil {
		slog.WarnContext(r.Context(), "Snapshot rejected",
			"error", err,
			"mode", mode,
			"component", "snapshot",
			"operation", "validate")
		status := http.StatusBadRequest
		if errors.Is(err, snapshot.ErrMissingRecords) || errors.Is(err, snapshot.ErrIncompleteRecord) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	var added int
	if mode == "overwrite" {
		added, err = snapshot.ImportOverwrite(r.Context(), s.records, doc)
	} else {
		added, err = snapshot.ImportAppend(r.Context(), s.records, doc)
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to import snapshot",
			"error", err,
			"mode", mode,
			"component", "snapshot",
			"operation", "import")
		writeError(w, http.StatusInternalServerError, "failed to import records")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":  mode,
		"added": added,
	})
}

// readImportBody accepts either a multipart upload ("file" field) or a raw
// JSON body.
func readImportBody(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, importBodyLimit)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("read form file: %w", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}
