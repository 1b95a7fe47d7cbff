// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"github.com/spf13/viper"
)

const (
	// LoggingKey is the Viper key under which logging options are stored
	LoggingKey = "log"

	// DefaultLevel is used when the configuration does not name a level
	DefaultLevel = "INFO"
)

// FromViper produces an Options from the LoggingKey of a (possibly nil) Viper instance.
// A missing key yields DefaultLevel console output on stdout.
func FromViper(v *viper.Viper) (*Options, error) {
	o := &Options{
		Level: DefaultLevel,
	}

	if v != nil && v.IsSet(LoggingKey) {
		if err := v.UnmarshalKey(LoggingKey, o); err != nil {
			return nil, err
		}
	}

	return o, nil
}
