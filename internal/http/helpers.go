package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError sends a JSON error body with a human-readable message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// methodNotAllowed answers with the Allow header set.
func methodNotAllowed(w http.ResponseWriter, methods ...string) {
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// parseFilter extracts filter criteria from query parameters. The returned
// filter combines all set criteria with AND; "returned" is tri-state and
// left open unless the parameter is exactly true or false.
func parseFilter(query url.Values) core.Filter {
	f := core.Filter{
		Recipient: strings.TrimSpace(query.Get("recipient")),
		Category:  strings.TrimSpace(query.Get("category")),
		Giver:     strings.TrimSpace(query.Get("giver")),
		StartDate: strings.TrimSpace(query.Get("startDate")),
		EndDate:   strings.TrimSpace(query.Get("endDate")),
	}
	switch strings.TrimSpace(query.Get("returned")) {
	case "true":
		v := true
		f.HasReturned = &v
	case "false":
		v := false
		f.HasReturned = &v
	}
	return f
}

// parseSort extracts the sort key and direction. Defaults follow the
// listing screen: newest first.
func parseSort(query url.Values) (core.SortKey, bool) {
	key := core.SortKey(strings.TrimSpace(query.Get("sort")))
	if !key.IsValid() {
		key = core.SortByDate
	}
	descending := true
	if strings.TrimSpace(query.Get("order")) == "asc" {
		descending = false
	}
	return key, descending
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
