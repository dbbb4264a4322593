// Package snapshot serializes the full record collection to a versioned
// JSON document and imports externally supplied documents back into the
// store. Validation always runs before any mutation; a bad document leaves
// the store untouched.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/CHURO-MAU/okurimono-note/internal/core"
	"github.com/CHURO-MAU/okurimono-note/internal/store"
)

// FormatVersion tags every exported document. Imports record the incoming
// version but do not reject mismatches; see Parse.
const FormatVersion = "1.0"

// Document is the export/import snapshot shape.
type Document struct {
	Version    string            `json:"version"`
	ExportDate string            `json:"exportDate"`
	Records    []core.GiftRecord `json:"records"`
}

var (
	ErrMissingRecords   = errors.New("document has no records field or it is not an array")
	ErrIncompleteRecord = errors.New("record is missing a required field")
)

// Export produces a snapshot of the current record collection.
func Export(ctx context.Context, records store.RecordRepository) (*Document, error) {
	all, err := records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if all == nil {
		all = []core.GiftRecord{}
	}
	return &Document{
		Version:    FormatVersion,
		ExportDate: time.Now().Format(core.TimestampLayout),
		Records:    all,
	}, nil
}

// Encode serializes the document with stable two-space indentation.
func (d *Document) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// FileName builds the download name for an export taken at t,
// e.g. okurimono-note_20260115_0930.json.
func FileName(t time.Time) string {
	return "okurimono-note_" + t.Format("20060102_1504") + ".json"
}

// Parse decodes and validates an externally supplied document. Required
// per record: id, date, amount, category, giver, recipient. Amount is
// checked for presence only, so a zero amount passes. A version mismatch
// is logged and imported best-effort rather than rejected.
func Parse(ctx context.Context, data []byte) (*Document, error) {
	var raw struct {
		Version    string          `json:"version"`
		ExportDate string          `json:"exportDate"`
		Records    json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if len(raw.Records) == 0 || string(raw.Records) == "null" {
		return nil, ErrMissingRecords
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(raw.Records, &entries); err != nil {
		return nil, ErrMissingRecords
	}
	for i, entry := range entries {
		if err := validateEntry(entry); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}

	var records []core.GiftRecord
	if err := json.Unmarshal(raw.Records, &records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	if records == nil {
		records = []core.GiftRecord{}
	}

	if raw.Version != FormatVersion {
		slog.WarnContext(ctx, "Snapshot version differs from current format, importing best-effort",
			"document_version", raw.Version, "current_version", FormatVersion)
	}

	return &Document{
		Version:    raw.Version,
		ExportDate: raw.ExportDate,
		Records:    records,
	}, nil
}

func validateEntry(entry map[string]json.RawMessage) error {
	for _, field := range []string{"id", "date", "category", "giver", "recipient"} {
		var s string
		v, ok := entry[field]
		if !ok || json.Unmarshal(v, &s) != nil || s == "" {
			return fmt.Errorf("%w: %s", ErrIncompleteRecord, field)
		}
	}
	// Presence check only; zero is a valid amount.
	if _, ok := entry["amount"]; !ok {
		return fmt.Errorf("%w: amount", ErrIncompleteRecord)
	}
	return nil
}

// ImportOverwrite replaces the entire record collection with the document's
// records and returns how many were written.
func ImportOverwrite(ctx context.Context, records store.RecordRepository, doc *Document) (int, error) {
	if err := records.Replace(ctx, doc.Records); err != nil {
		return 0, fmt.Errorf("replace records: %w", err)
	}
	slog.InfoContext(ctx, "Snapshot imported (overwrite)", "count", len(doc.Records))
	return len(doc.Records), nil
}

// ImportAppend merges the document into the store. Incoming records whose
// id already exists are silently dropped; the returned count is the number
// actually added, not the number present in the document.
func ImportAppend(ctx context.Context, records store.RecordRepository, doc *Document) (int, error) {
	existing, err := records.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}
	seen := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		seen[r.ID] = struct{}{}
	}

	added := 0
	merged := existing
	for _, r := range doc.Records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
		added++
	}
	if added > 0 {
		if err := records.Replace(ctx, merged); err != nil {
			return 0, fmt.Errorf("replace records: %w", err)
		}
	}
	slog.InfoContext(ctx, "Snapshot imported (append)",
		"in_document", len(doc.Records), "added", added)
	return added, nil
}
