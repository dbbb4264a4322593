package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

// handleRecords lists the collection (GET, with filter/sort parameters) or
// creates a new record (POST).
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRecords(w, r)
	case http.MethodPost:
		s.createRecord(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.records.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list records", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	filter := parseFilter(r.URL.Query())
	if !filter.IsZero() {
		records = filter.Apply(records)
	}
	key, descending := parseSort(r.URL.Query())
	records = core.SortRecords(records, key, descending)

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	var draft core.RecordDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft.Category = sanitizeInput(draft.Category)
	draft.Giver = sanitizeInput(draft.Giver)
	draft.Recipient = sanitizeInput(draft.Recipient)
	draft.Memo = sanitizeInput(draft.Memo)
	draft.ReturnMemo = sanitizeInput(draft.ReturnMemo)

	rec, err := s.records.Add(r.Context(), draft)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to save record",
			"error", err,
			"recipient", draft.Recipient,
			"giver", draft.Giver,
			"amount", draft.Amount,
			"component", "record_handler",
			"operation", "create")
		writeError(w, http.StatusInternalServerError, "failed to save record")
		return
	}

	slog.InfoContext(r.Context(), "Record created",
		"record_id", rec.ID,
		"recipient", rec.Recipient,
		"giver", rec.Giver,
		"amount", rec.Amount,
		"component", "record_handler",
		"operation", "create")
	writeJSON(w, http.StatusCreated, rec)
}

// updateRequest carries the target id alongside the partial fields.
type updateRequest struct {
	ID string `json:"id"`
	core.RecordPatch
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "missing record id")
		return
	}

	updated, err := s.records.Update(r.Context(), req.ID, req.RecordPatch)
	if err != nil {
		if isValidationError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update record",
			"error", err,
			"record_id", req.ID,
			"component", "record_handler",
			"operation", "update")
		writeError(w, http.StatusInternalServerError, "failed to update record")
		return
	}
	if updated == nil {
		// Unknown id is a no-op, not an exception.
		writeError(w, http.StatusNotFound, "record not found")
		return
	}

	slog.InfoContext(r.Context(), "Record updated",
		"record_id", updated.ID,
		"component", "record_handler",
		"operation", "update")
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodPost, http.MethodDelete)
		return
	}

	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "missing record id")
		return
	}

	deleted, err := s.records.Delete(r.Context(), req.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete record",
			"error", err,
			"record_id", req.ID,
			"component", "record_handler",
			"operation", "delete")
		writeError(w, http.StatusInternalServerError, "failed to delete record")
		return
	}

	slog.InfoContext(r.Context(), "Record delete handled",
		"record_id", req.ID,
		"deleted", deleted,
		"component", "record_handler",
		"operation", "delete")
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrNegativeAmount) ||
		errors.Is(err, core.ErrEmptyCategory) ||
		errors.Is(err, core.ErrEmptyGiver) ||
		errors.Is(err, core.ErrEmptyRecipient) ||
		errors.Is(err, core.ErrInvalidReturnDate) ||
		errors.Is(err, core.ErrEmptyCategoryName)
}
