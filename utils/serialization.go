package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// StringDuration is a duration that is written in Json/Yaml as a Go
// duration string e.g. "2m", "1h30m"
type StringDuration time.Duration

// ParseStringDuration parses a Go duration string, an empty string is 0
func ParseStringDuration(s string) (StringDuration, error) {
	var retVal StringDuration
	if len(s) == 0 {
		return retVal, nil
	}
	err := retVal.fromString(s)
	return retVal, err
}

func (t StringDuration) String() string {
	return time.Duration(t).String()
}

func (t *StringDuration) UnmarshalJSON(b []byte) error {
	if t == nil {
		return errors.New("nil pointer passed to UnmarshalJSON")
	}
	var buffer string
	if err := json.Unmarshal(b, &buffer); err != nil {
		log.Error().Err(err).Msg("Duration is not a Json string")
		return err
	}
	return t.fromString(buffer)
}

func (t StringDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *StringDuration) UnmarshalYAML(unmarshal func(any) error) error {
	if t == nil {
		return errors.New("nil pointer passed to UnmarshalYAML")
	}
	var buffer string
	if err := unmarshal(&buffer); err != nil {
		log.Error().Err(err).Msg("Duration is not a Yaml string")
		return err
	}
	return t.fromString(buffer)
}

func (t StringDuration) MarshalYAML() (any, error) {
	return t.String(), nil
}

func (t *StringDuration) fromString(s string) error {
	duration, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration '%s': %w", s, err)
	}
	*t = StringDuration(duration)
	return nil
}
