// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package peripheral

import (
	"strings"

	"emperror.dev/errors"
	"github.com/spf13/cast"
)

// ID identifies a single digital line on a board
type ID int

// Level is the state of a digital line
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "high"
	}

	return "low"
}

// Not returns the opposite level
func (l Level) Not() Level {
	if l == High {
		return Low
	}

	return High
}

// ParseLevel coerces a loosely typed configuration value into a Level.  Strings
// "high", "on", "low", and "off" are accepted along with anything spf13/cast can
// turn into a bool.
func ParseLevel(v interface{}) (Level, error) {
	if s, ok := v.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "high", "on":
			return High, nil
		case "low", "off":
			return Low, nil
		}
	}

	b, err := cast.ToBoolE(v)
	if err != nil {
		return Low, errors.WrapWithDetails(err, "invalid level", "value", v)
	}

	if b {
		return High, nil
	}

	return Low, nil
}

// OutputSink drives digital outputs.  Implementations must not block and cannot fail.
type OutputSink interface {
	SetOutput(ID, Level)
	ToggleOutput(ID)
}

// InputSource samples digital inputs
type InputSource interface {
	ReadInput(ID) Level
}

// Readier reports whether a device is usable.  A non-nil error means the device is not ready.
type Readier interface {
	Ready() error
}

// ReadierFunc is a function type that implements Readier
type ReadierFunc func() error

func (rf ReadierFunc) Ready() error {
	return rf()
}
