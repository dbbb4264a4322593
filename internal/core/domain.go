package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the fixed wire format for calendar dates. Dates stay
// zero-padded ISO strings so lexicographic order equals chronological order.
const DateLayout = "2006-01-02"

// TimestampLayout is the wire format for createdAt/updatedAt stamps.
const TimestampLayout = time.RFC3339

type (
	// GiftRecord is one logged gift-received event, including optional
	// reciprocal-gift tracking. Amounts are whole yen.
	GiftRecord struct {
		ID          string  `json:"id"`
		Date        string  `json:"date"`
		Amount      int64   `json:"amount"`
		Category    string  `json:"category"`
		Giver       string  `json:"giver"`
		Recipient   string  `json:"recipient"`
		Memo        string  `json:"memo"`
		HasReturned bool    `json:"hasReturned"`
		ReturnDate  *string `json:"returnDate"`
		ReturnMemo  string  `json:"returnMemo"`
		CreatedAt   string  `json:"createdAt"`
		UpdatedAt   string  `json:"updatedAt"`
	}

	// Category is a user-managed classification tag. Records reference it by
	// name only, as plain text; deleting a category never cascades.
	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	// RecordDraft holds the caller-settable fields of a GiftRecord.
	// ID and timestamps are stamped by the store.
	RecordDraft struct {
		Date        string  `json:"date"`
		Amount      int64   `json:"amount"`
		Category    string  `json:"category"`
		Giver       string  `json:"giver"`
		Recipient   string  `json:"recipient"`
		Memo        string  `json:"memo"`
		HasReturned bool    `json:"hasReturned"`
		ReturnDate  *string `json:"returnDate"`
		ReturnMemo  string  `json:"returnMemo"`
	}

	// RecordPatch is a partial update. Nil fields are left untouched.
	// An explicitly empty ReturnDate clears the stored date to null.
	RecordPatch struct {
		Date        *string `json:"date"`
		Amount      *int64  `json:"amount"`
		Category    *string `json:"category"`
		Giver       *string `json:"giver"`
		Recipient   *string `json:"recipient"`
		Memo        *string `json:"memo"`
		HasReturned *bool   `json:"hasReturned"`
		ReturnDate  *string `json:"returnDate"`
		ReturnMemo  *string `json:"returnMemo"`
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date, want YYYY-MM-DD")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyGiver        = errors.New("empty giver")
	ErrEmptyRecipient    = errors.New("empty recipient")
	ErrInvalidReturnDate = errors.New("invalid return date, want YYYY-MM-DD")
	ErrEmptyCategoryName = errors.New("empty category name")
)

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func (d RecordDraft) Validate() error {
	if !ValidDate(d.Date) {
		return ErrInvalidDate
	}
	if d.Amount < 0 {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(d.Giver) == "" {
		return ErrEmptyGiver
	}
	if strings.TrimSpace(d.Recipient) == "" {
		return ErrEmptyRecipient
	}
	if d.ReturnDate != nil && *d.ReturnDate != "" && !ValidDate(*d.ReturnDate) {
		return ErrInvalidReturnDate
	}
	return nil
}

func (p RecordPatch) Validate() error {
	if p.Date != nil && !ValidDate(*p.Date) {
		return ErrInvalidDate
	}
	if p.Amount != nil && *p.Amount < 0 {
		return ErrNegativeAmount
	}
	if p.ReturnDate != nil && *p.ReturnDate != "" && !ValidDate(*p.ReturnDate) {
		return ErrInvalidReturnDate
	}
	return nil
}

// NewRecord builds a GiftRecord from a draft, assigning the given id and
// stamping createdAt = updatedAt = now.
func NewRecord(d RecordDraft, id string, now time.Time) GiftRecord {
	stamp := now.Format(TimestampLayout)
	rec := GiftRecord{
		ID:          id,
		Date:        d.Date,
		Amount:      d.Amount,
		Category:    d.Category,
		Giver:       d.Giver,
		Recipient:   d.Recipient,
		Memo:        d.Memo,
		HasReturned: d.HasReturned,
		ReturnMemo:  d.ReturnMemo,
		CreatedAt:   stamp,
		UpdatedAt:   stamp,
	}
	if d.ReturnDate != nil && *d.ReturnDate != "" {
		v := *d.ReturnDate
		rec.ReturnDate = &v
	}
	return rec
}

// ApplyPatch merges a partial update over an existing record. ID and
// createdAt stay unchanged no matter what the patch carries; updatedAt is
// refreshed to now.
func ApplyPatch(rec GiftRecord, p RecordPatch, now time.Time) GiftRecord {
	if p.Date != nil {
		rec.Date = *p.Date
	}
	if p.Amount != nil {
		rec.Amount = *p.Amount
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	if p.Giver != nil {
		rec.Giver = *p.Giver
	}
	if p.Recipient != nil {
		rec.Recipient = *p.Recipient
	}
	if p.Memo != nil {
		rec.Memo = *p.Memo
	}
	if p.HasReturned != nil {
		rec.HasReturned = *p.HasReturned
	}
	if p.ReturnDate != nil {
		if *p.ReturnDate == "" {
			rec.ReturnDate = nil
		} else {
			v := *p.ReturnDate
			rec.ReturnDate = &v
		}
	}
	if p.ReturnMemo != nil {
		rec.ReturnMemo = *p.ReturnMemo
	}
	rec.UpdatedAt = now.Format(TimestampLayout)
	return rec
}

// DefaultCategories returns the built-in category seed set. It is the
// fallback when no categories have been persisted yet, not an authored
// migration.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "お年玉", Color: "#FF9FB0"},
		{ID: "2", Name: "誕生日", Color: "#A7D8DE"},
		{ID: "3", Name: "入学・卒業", Color: "#C3D825"},
		{ID: "4", Name: "出産", Color: "#FFD4C8"},
		{ID: "5", Name: "お祝い", Color: "#E6D5F5"},
		{ID: "6", Name: "その他", Color: "#D3D3D3"},
	}
}
