package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar day that decodes from "2006-01-02" or RFC3339 input.
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts either the date layout or a full RFC3339 timestamp.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return NewDate(t), nil
}

// String renders the date using DateLayout.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON writes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON reads a date string; null and "" leave the zero value.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimePtr converts an optional date into the pointer form used by models.
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// DatePtr wraps an optional model time.
func DatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := NewDate(*t)
	return &d
}
