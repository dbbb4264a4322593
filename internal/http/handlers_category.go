package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// handleCategories lists the picklist (GET) or adds an entry (POST).
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cats, err := s.categories.List(r.Context())
		if err != nil {
			slog.ErrorContext(r.Context(), "Failed to list categories", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to list categories")
			return
		}
		writeJSON(w, http.StatusOK, cats)

	case http.MethodPost:
		var req struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = sanitizeInput(req.Name)
		req.Color = sanitizeInput(req.Color)

		cat, err := s.categories.Add(r.Context(), req.Name, req.Color)
		if err != nil {
			if isValidationError(err) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Failed to add category",
				"error", err, "name", req.Name)
			writeError(w, http.StatusInternalServerError, "failed to add category")
			return
		}

		slog.InfoContext(r.Context(), "Category added",
			"category_id", cat.ID, "name", cat.Name)
		writeJSON(w, http.StatusCreated, cat)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, http.StatusBadRequest, "missing category id")
		return
	}

	// Records referencing the category keep its name as plain text.
	deleted, err := s.categories.Delete(r.Context(), req.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete category",
			"error", err, "category_id", req.ID)
		writeError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}

	slog.InfoContext(r.Context(), "Category delete handled",
		"category_id", req.ID, "deleted", deleted)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}
