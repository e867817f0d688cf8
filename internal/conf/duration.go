// Package conf holds shared configuration value types.
package conf

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from yaml strings like
// "500ms" or "1s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("conf.Duration: failed to parse: %s", err)
	}

	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Or returns the duration, or fallback when unset or negative.
func (d Duration) Or(fallback time.Duration) time.Duration {
	if time.Duration(d) <= 0 {
		return fallback
	}
	return time.Duration(d)
}
