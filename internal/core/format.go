package core

import (
	"fmt"
	"strconv"
	"time"
)

// FormatYen formats a whole-yen amount as "¥1,500" with thousands
// separators.
func FormatYen(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-¥" + s
	}
	return "¥" + s
}

// FormatDate renders an ISO date as "2024年1月2日". The input comes back
// unchanged when it is not a valid date.
func FormatDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d年%d月%d日", t.Year(), int(t.Month()), t.Day())
}
