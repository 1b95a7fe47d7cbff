// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// KeyUnmarshaler is the subset of Viper behavior that decodes a single key
type KeyUnmarshaler interface {
	UnmarshalKey(string, interface{}, ...viper.DecoderConfigOption) error
}

// DecodeHook converts strings into durations, comma-separated slices, and any
// encoding.TextUnmarshaler
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// UnmarshalKey decodes key into target using DecodeHook
func UnmarshalKey(u KeyUnmarshaler, key string, target interface{}) error {
	return u.UnmarshalKey(key, target, viper.DecodeHook(DecodeHook()))
}
