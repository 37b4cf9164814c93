package util

import (
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

// DateLayout is the wire format of snapshot and query dates.
const DateLayout = "2006-01-02"

// DateLayoutCompact is the YYYYMMDD form some exports use.
const DateLayoutCompact = "20060102"

// ParseTime tries YYYY-MM-DD, YYYYMMDD, RFC3339, RFC3339Nano, and unix seconds
// of at least 9 digits. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if len(s) == len(DateLayoutCompact) {
		t, err := time.Parse(DateLayoutCompact, s)
		return t, err == nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if len(s) < 9 {
		return time.Time{}, false
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseDate normalizes any ParseTime input to a calendar date in the value's own zone.
func ParseDate(s string) (civil.Date, bool) {
	t, ok := ParseTime(s)
	if !ok {
		return civil.Date{}, false
	}
	return civil.DateOf(t), true
}
