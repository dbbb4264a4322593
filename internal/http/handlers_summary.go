package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

// handleSummary returns the aggregated totals. An optional filter narrows
// the input collection first, so the dashboard and the list stay in sync.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	records, err := s.records.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list records for summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	filter := parseFilter(r.URL.Query())
	if !filter.IsZero() {
		records = filter.Apply(records)
	}

	writeJSON(w, http.StatusOK, core.Aggregate(records))
}

// handleSummaryChart renders one grouping of the summary as a PNG bar
// chart. 204 means there is nothing to draw yet.
func (s *Server) handleSummaryChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	records, err := s.records.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list records for chart", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	summary := core.Aggregate(records)

	var (
		title string
		group map[string]int64
	)
	switch strings.TrimSpace(r.URL.Query().Get("group")) {
	case "", "category":
		title, group = "カテゴリー別合計", summary.ByCategory
	case "month":
		title, group = "月別合計", summary.ByMonth
	case "year":
		title, group = "年別合計", summary.ByYear
	case "recipient":
		title, group = "受取人別合計", summary.ByRecipient
	case "giver":
		title, group = "贈り主別合計", summary.ByGiver
	default:
		writeError(w, http.StatusBadRequest, "unknown group, want category|month|year|recipient|giver")
		return
	}

	png, err := s.charts.GroupBars(title, group)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to render chart", "error", err, "group", title)
		writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	if png == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
