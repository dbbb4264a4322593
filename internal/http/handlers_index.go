package http

import (
	"log/slog"
	"net/http"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
)

// handleIndex renders the dashboard page: totals, per-category breakdown
// and the record list, newest first.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	records, err := s.records.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list records for index", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	summary := core.Aggregate(records)
	records = core.SortRecords(records, core.SortByDate, true)

	type row struct {
		Date      string
		Recipient string
		Giver     string
		Category  string
		Amount    string
		Returned  bool
	}
	type catRow struct {
		Name   string
		Amount string
	}
	data := struct {
		Total      string
		Count      int
		Categories []catRow
		Records    []row
	}{
		Total: core.FormatYen(summary.Total),
		Count: len(records),
	}
	for _, e := range core.SortedEntries(summary.ByCategory) {
		data.Categories = append(data.Categories, catRow{
			Name:   e.Key,
			Amount: core.FormatYen(e.Amount),
		})
	}
	for _, rec := range records {
		data.Records = append(data.Records, row{
			Date:      core.FormatDate(rec.Date),
			Recipient: rec.Recipient,
			Giver:     rec.Giver,
			Category:  rec.Category,
			Amount:    core.FormatYen(rec.Amount),
			Returned:  rec.HasReturned,
		})
	}

	if s.templates == nil {
		_, _ = w.Write([]byte("<p>合計: " + data.Total + "</p>"))
		return
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error",
			"error", err, "template", "index.html")
	}
}
