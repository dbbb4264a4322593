package core

import "sort"

// Summary holds totals grouped by each reporting dimension plus the grand
// total. All arithmetic is exact integer yen; no floating point.
type Summary struct {
	ByRecipient map[string]int64 `json:"byRecipient"`
	ByGiver     map[string]int64 `json:"byGiver"`
	ByCategory  map[string]int64 `json:"byCategory"`
	ByYear      map[string]int64 `json:"byYear"`
	ByMonth     map[string]int64 `json:"byMonth"`
	Total       int64            `json:"total"`
}

// Aggregate computes a Summary over the given records. Grouping keys are the
// literal field values; year and month keys are the first 4 and 7 characters
// of the ISO date. Empty input yields empty maps and a zero total.
func Aggregate(records []GiftRecord) Summary {
	s := Summary{
		ByRecipient: make(map[string]int64),
		ByGiver:     make(map[string]int64),
		ByCategory:  make(map[string]int64),
		ByYear:      make(map[string]int64),
		ByMonth:     make(map[string]int64),
	}
	for _, r := range records {
		s.ByRecipient[r.Recipient] += r.Amount
		s.ByGiver[r.Giver] += r.Amount
		s.ByCategory[r.Category] += r.Amount
		if len(r.Date) >= 4 {
			s.ByYear[r.Date[:4]] += r.Amount
		}
		if len(r.Date) >= 7 {
			s.ByMonth[r.Date[:7]] += r.Amount
		}
		s.Total += r.Amount
	}
	return s
}

// GroupEntry is one grouped total, used where a deterministic order is
// needed (chart rendering, templates).
type GroupEntry struct {
	Key    string
	Amount int64
}

// SortedEntries flattens a grouping map into entries ordered by descending
// amount, ties broken by key so the output is stable across runs.
func SortedEntries(group map[string]int64) []GroupEntry {
	entries := make([]GroupEntry, 0, len(group))
	for k, v := range group {
		entries = append(entries, GroupEntry{Key: k, Amount: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount > entries[j].Amount
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}
