// Package timex provides a Duration wrapper that can be unmarshalled from
// JSON either as a duration string ("90s", "1h30m") or as a number of
// nanoseconds. It is used by the configuration packages.
package timex

import (
	"encoding/json"
	"errors"
	"time"
)

// Duration wraps a time.Duration for JSON configuration files.
type Duration struct {
	Duration time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.New("invalid duration")
	}

	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}
