// Package timefmt formats and parses timestamps in the three modeled wire
// formats: date-time, http-date and epoch-seconds.
package timefmt

import (
	"math"
	"strconv"
	"time"

	smithytime "github.com/aws/smithy-go/time"
)

// FormatDateTime renders t as an RFC 3339 UTC date-time.
func FormatDateTime(t time.Time) string {
	return smithytime.FormatDateTime(t.UTC())
}

// ParseDateTime accepts RFC 3339 date-times with or without fractional
// seconds and with any offset.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}

	return t.UTC(), nil
}

// FormatHTTPDate renders t as an IMF-fixdate.
func FormatHTTPDate(t time.Time) string {
	return smithytime.FormatHTTPDate(t.UTC())
}

// ParseHTTPDate parses an IMF-fixdate.
func ParseHTTPDate(s string) (time.Time, error) {
	t, err := smithytime.ParseHTTPDate(s)
	if err != nil {
		return time.Time{}, err
	}

	return t.UTC(), nil
}

// EpochSeconds returns t as fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return smithytime.FormatEpochSeconds(t)
}

// FromEpochSeconds converts fractional epoch seconds to a UTC time, rounded to
// the millisecond.
func FromEpochSeconds(v float64) time.Time {
	ms := math.Round(v * 1e3)
	return time.UnixMilli(int64(ms)).UTC()
}

// FormatEpochString renders t as a decimal epoch-seconds literal.
func FormatEpochString(t time.Time) string {
	return strconv.FormatFloat(EpochSeconds(t), 'f', -1, 64)
}

// ParseEpochString parses a decimal epoch-seconds literal.
func ParseEpochString(s string) (time.Time, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}

	return FromEpochSeconds(v), nil
}
