package codec

import (
	"encoding/json"
	"fmt"
	"time"
)

// isoTime reads the date shapes found in ledger files (date-only form input,
// local date-times and full ISO-8601 timestamps) and always writes RFC 3339 in UTC.
type isoTime time.Time

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

func (t isoTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339Nano))
}

func (t *isoTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}

	*t = isoTime(parsed)

	return nil
}

// ParseTime reads a date-only, local date-time or RFC 3339 timestamp and
// returns it in UTC. The empty string is the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func (t isoTime) Time() time.Time {
	return time.Time(t)
}

func optionalTime(t *time.Time) *isoTime {
	if t == nil {
		return nil
	}

	v := isoTime(t.UTC())

	return &v
}

func (t *isoTime) ptr() *time.Time {
	if t == nil {
		return nil
	}

	v := time.Time(*t)

	return &v
}
