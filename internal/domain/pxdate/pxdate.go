// Package pxdate implements the compact PX date representation "CCYYMMDD hh:mm".
//
// The encoding is fixed width, so byte-wise comparison of two encoded values
// orders them chronologically regardless of locale.
package pxdate

import (
	"fmt"
	"time"
)

// Layout is the time layout of a PX date.
const Layout = "20060102 15:04"

// Len is the length of an encoded PX date.
const Len = len(Layout)

// Format encodes t as a PX date in UTC, so Parse returns the same instant and
// encodings from different zones compare chronologically. Seconds are truncated.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// IsValid reports whether s is a well-formed PX date.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse decodes a PX date as UTC wall clock time.
func Parse(s string) (time.Time, error) {
	return ParseIn(s, time.UTC)
}

// ParseIn decodes a PX date in the given location.
func ParseIn(s string, loc *time.Location) (time.Time, error) {
	if !hasShape(s) {
		return time.Time{}, fmt.Errorf("pxdate: malformed %q", s)
	}
	t, err := time.ParseInLocation(Layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("pxdate: %w", err)
	}
	return t, nil
}

// hasShape checks the fixed-width digit layout; time.Parse alone accepts
// single digit hours and minutes.
func hasShape(s string) bool {
	if len(s) != Len {
		return false
	}
	for i := 0; i < Len; i++ {
		c := s[i]
		switch i {
		case 8:
			if c != ' ' {
				return false
			}
		case 11:
			if c != ':' {
				return false
			}
		default:
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}
