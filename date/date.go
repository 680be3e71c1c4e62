// Package date provides a day-granularity date value and the dd/mm/yyyy
// parsing used across morningstar.co.uk pages.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// DMYLayout is the day/month/year layout instrument pages render dates in.
const DMYLayout = "02/01/2006"

// ISOLayout is the layout dates are rendered back out in.
const ISOLayout = "2006-01-02"

// Date is a calendar date with no time component and no location.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns the Date for the given year, month and day. Out-of-range
// values are normalized the way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// ParseDMY converts dd/mm/yyyy text into a Date. Text in any other layout,
// or naming an impossible calendar date such as 31/02/2023, is rejected
// with a *FormatError.
func ParseDMY(value string) (Date, error) {
	t, err := time.Parse(DMYLayout, value)
	if err != nil {
		return Date{}, &FormatError{Input: value, Err: err}
	}
	return New(t.Date()), nil
}

// time returns the canonical time.Time for the date, midnight UTC.
func (d Date) time() time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC)
}

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// String renders the date in ISO-8601 form, e.g. "2022-03-05".
func (d Date) String() string { return d.time().Format(ISOLayout) }

// MarshalJSON renders the date as an ISO-8601 JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reads an ISO-8601 JSON string back into a date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: want format %q: %w", s, ISOLayout, err)
	}
	*d = New(t.Date())
	return nil
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = (*Date)(nil)

// FormatError reports date text that does not match the dd/mm/yyyy layout
// or names an impossible calendar date.
type FormatError struct {
	Input string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid date %q: want format %q", e.Input, DMYLayout)
}

// Unwrap returns the underlying parse error.
func (e *FormatError) Unwrap() error { return e.Err }
