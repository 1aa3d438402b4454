package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// FlexDate is a read date that unmarshals from any of:
//   - a calendar date: "2024-01-15"
//   - an RFC3339 timestamp: "2024-01-15T10:30:00Z"
//   - epoch milliseconds, as a number or a string
//
// It marshals to the calendar date form.
type FlexDate struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (fd *FlexDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano} {
			if t, err := time.Parse(layout, s); err == nil {
				fd.Time = t
				return nil
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			fd.Time = time.UnixMilli(ms).UTC()
			return nil
		}
		return fmt.Errorf("cannot parse date %q", s)
	}

	var ms float64
	if err := json.Unmarshal(data, &ms); err == nil {
		fd.Time = time.UnixMilli(int64(ms)).UTC()
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into a date", string(data))
}

// MarshalJSON implements json.Marshaler.
func (fd FlexDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(fd.Format(time.DateOnly))
}

// Schema documents FlexDate as a string in the OpenAPI spec.
func (FlexDate) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:        huma.TypeString,
		Description: "Date as YYYY-MM-DD, an RFC3339 timestamp, or epoch milliseconds in a string",
		Examples:    []any{"2024-01-15"},
	}
}

// Ptr returns the date as a *time.Time, or nil for a nil receiver.
func (fd *FlexDate) Ptr() *time.Time {
	if fd == nil {
		return nil
	}
	t := fd.Time
	return &t
}
