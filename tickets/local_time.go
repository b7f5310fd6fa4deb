package tickets

import (
	"encoding/json"
	"fmt"
	"time"
)

// LocalTimeLayout is the wire format of ticket timestamps. They carry no zone.
const LocalTimeLayout = "2006-01-02T15:04:05"

// LocalTime is a wall-clock timestamp without a time zone.
type LocalTime struct {
	time.Time
}

// MustParseLocalTime parses value with LocalTimeLayout and panics on failure.
func MustParseLocalTime(value string) LocalTime {
	t, err := time.Parse(LocalTimeLayout, value)
	if err != nil {
		panic(err)
	}
	return LocalTime{t}
}

func (t LocalTime) String() string {
	return t.Format(LocalTimeLayout)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("local time must be a string: %w", err)
	}

	parsed, err := time.Parse(LocalTimeLayout, raw)
	if err != nil {
		withZone, zErr := time.Parse(time.RFC3339, raw)
		if zErr != nil {
			return fmt.Errorf("invalid local time %q: %w", raw, err)
		}
		parsed = withZone
	}

	t.Time = parsed
	return nil
}
