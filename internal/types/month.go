// Package types implements value types shared by models, services and handlers.
package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Month is a calendar month, stored and transported as the literal "YYYY-MM".
type Month struct {
	year  int
	month time.Month
}

// NewMonth returns a new Month.
func NewMonth(year int, month time.Month) Month {
	return Month{year: year, month: month}
}

// ParseMonth parses a "YYYY-MM" string with the month in 01..12.
func ParseMonth(s string) (Month, error) {
	if !IsMonth(s) {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, err
	}
	return Month{year: t.Year(), month: t.Month()}, nil
}

// IsMonth reports whether s is a well-formed "YYYY-MM" string.
func IsMonth(s string) bool {
	return monthPattern.MatchString(s)
}

// MonthOf returns the Month in which t occurs in loc.
func MonthOf(t time.Time, loc *time.Location) Month {
	year, month, _ := t.In(loc).Date()
	return Month{year: year, month: month}
}

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.year, m.month)
}

// IsZero reports if the month is the zero value.
func (m Month) IsZero() bool {
	return m.year == 0 && m.month == 0
}

// AddMonths moves the month forward or backward.
func (m Month) AddMonths(n int) Month {
	t := time.Date(m.year, m.month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return Month{year: t.Year(), month: t.Month()}
}

// Start is the first instant of the month in loc.
func (m Month) Start(loc *time.Location) time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, loc)
}

// Range returns the inclusive bounds of the month in loc: its first instant
// and the instant immediately preceding the next month's first instant.
// Both bounds are returned in UTC.
func (m Month) Range(loc *time.Location) (time.Time, time.Time) {
	start := m.Start(loc)
	next := m.AddMonths(1).Start(loc)
	return start.UTC(), next.Add(-time.Nanosecond).UTC()
}

// MarshalJSON renders the month as "YYYY-MM".
func (m Month) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a "YYYY-MM" string.
func (m *Month) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Scan reads a "YYYY-MM" text column.
func (m *Month) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Month", value)
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value writes the month as text.
func (m Month) Value() (driver.Value, error) {
	return m.String(), nil
}

// GormDataType defines the data type used by gorm for the type.
func (Month) GormDataType() string {
	return "varchar(7)"
}
