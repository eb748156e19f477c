// Package timex holds time helpers shared by configuration and storage code.
package timex

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration wraps time.Duration for JSON configuration files. It accepts either
// a duration string such as "5s" or an integer number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

// SQLTimestampLayout is the sortable text form used for observed_at columns.
const SQLTimestampLayout = "2006-01-02 15:04:05.000"

// FormatSQLTimestamp renders t in UTC using SQLTimestampLayout.
func FormatSQLTimestamp(t time.Time) string {
	return t.UTC().Format(SQLTimestampLayout)
}

// ParseSQLTimestamp is the inverse of FormatSQLTimestamp.
func ParseSQLTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(SQLTimestampLayout, s, time.UTC)
}
