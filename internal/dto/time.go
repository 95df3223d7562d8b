package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"shareit/internal/models"
)

// LocalTime is a wall-clock timestamp without zone on the wire
// ("2006-01-02T15:04:05"), interpreted in the server's local zone.
// RFC 3339 input is accepted as well.
type LocalTime struct {
	time.Time
}

func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.In(time.Local).Format(models.TimeLayout))
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	parsed, err := ParseLocalTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseLocalTime parses the wire format, falling back to RFC 3339.
func ParseLocalTime(raw string) (time.Time, error) {
	if parsed, err := time.ParseInLocation(models.TimeLayout, raw, time.Local); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q, expected %s", raw, models.TimeLayout)
}
