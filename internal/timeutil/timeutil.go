// Package timeutil formats session timestamps for display and
// JSON output.
package timeutil

import (
	"fmt"
	"time"
)

// Format returns t as an RFC 3339 UTC string, or "" for the zero
// time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Ptr is Format for nullable JSON fields: nil for the zero time.
func Ptr(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := Format(t)
	return &s
}

// Ago renders the age of t relative to now as "Nm ago" under an
// hour, "Nh ago" under a day and "Nd ago" beyond that. Units are
// truncated, not rounded. The zero time renders as "unknown".
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := now.Sub(t)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int64(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int64(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int64(d/(24*time.Hour)))
	}
}
