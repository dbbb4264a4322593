package core

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects the field records are ordered by.
type SortKey string

const (
	SortByDate      SortKey = "date"
	SortByAmount    SortKey = "amount"
	SortByRecipient SortKey = "recipient"
	SortByGiver     SortKey = "giver"
)

// IsValid returns true if the sort key is one of the supported fields.
func (k SortKey) IsValid() bool {
	switch k {
	case SortByDate, SortByAmount, SortByRecipient, SortByGiver:
		return true
	default:
		return false
	}
}

// Filter holds the optional criteria applied to a record list. Empty string
// fields mean "no filter on this field"; HasReturned is tri-state via nil.
// All set criteria are combined with logical AND.
type Filter struct {
	Recipient   string
	Category    string
	Giver       string
	StartDate   string
	EndDate     string
	HasReturned *bool
}

// IsZero reports whether no criterion is set.
func (f Filter) IsZero() bool {
	return f.Recipient == "" && f.Category == "" && f.Giver == "" &&
		f.StartDate == "" && f.EndDate == "" && f.HasReturned == nil
}

// Apply returns the records matching every set criterion. Date bounds are
// inclusive and compared lexicographically, which matches chronological
// order for the fixed-width ISO format.
func (f Filter) Apply(records []GiftRecord) []GiftRecord {
	out := make([]GiftRecord, 0, len(records))
	for _, r := range records {
		if f.Recipient != "" && r.Recipient != f.Recipient {
			continue
		}
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		if f.Giver != "" && r.Giver != f.Giver {
			continue
		}
		if f.StartDate != "" && r.Date < f.StartDate {
			continue
		}
		if f.EndDate != "" && r.Date > f.EndDate {
			continue
		}
		if f.HasReturned != nil && r.HasReturned != *f.HasReturned {
			continue
		}
		out = append(out, r)
	}
	return out
}

// collate.Collator is not safe for concurrent use; each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Japanese)
}

// SortRecords returns a copy of records ordered by the given key. String
// keys use locale-aware collation, amount compares numerically and date
// lexicographically. The sort is stable, so ties keep input order.
func SortRecords(records []GiftRecord, key SortKey, descending bool) []GiftRecord {
	sorted := make([]GiftRecord, len(records))
	copy(sorted, records)

	col := newCollator()
	cmp := func(a, b GiftRecord) int {
		switch key {
		case SortByAmount:
			switch {
			case a.Amount < b.Amount:
				return -1
			case a.Amount > b.Amount:
				return 1
			}
			return 0
		case SortByRecipient:
			return col.CompareString(a.Recipient, b.Recipient)
		case SortByGiver:
			return col.CompareString(a.Giver, b.Giver)
		default: // SortByDate
			switch {
			case a.Date < b.Date:
				return -1
			case a.Date > b.Date:
				return 1
			}
			return 0
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := cmp(sorted[i], sorted[j])
		if descending {
			return c > 0
		}
		return c < 0
	})
	return sorted
}
