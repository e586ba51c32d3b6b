package daterange

import (
	"errors"
	"fmt"
	"time"
)

const (
	// Layout is the zero-padded MM-DD-YYYY layout used when printing dates.
	Layout = "01-02-2006"

	// parseLayout also accepts single-digit months and days (1-5-2024).
	parseLayout = "1-2-2006"

	// LayoutHint is Layout as shown to users.
	LayoutHint = "MM-DD-YYYY"
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrInvalidRange      = errors.New("start date must not be after end date")
)

// DateFormatError reports a date argument that does not match Layout.
type DateFormatError struct {
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("Not a valid date: '%s'. Expected format: %s.", e.Value, LayoutHint)
}

func (e *DateFormatError) Unwrap() error {
	return ErrInvalidDateFormat
}

// Range is an inclusive pair of calendar dates with Start <= End.
type Range struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses a MM-DD-YYYY date; month and day may omit the leading zero.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(parseLayout, s)
	if err != nil {
		return time.Time{}, &DateFormatError{Value: s}
	}
	return t, nil
}

// New builds a Range, rejecting inverted ranges.
func New(start, end time.Time) (Range, error) {
	if start.After(end) {
		return Range{}, ErrInvalidRange
	}
	return Range{Start: start, End: end}, nil
}

// Parse parses both ends of a range and validates their order.
func Parse(start, end string) (Range, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, err
	}
	return New(s, e)
}

// Format renders both ends with the given layout.
func (r Range) Format(layout string) (string, string) {
	return r.Start.Format(layout), r.End.Format(layout)
}
