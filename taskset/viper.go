// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"github.com/spf13/viper"
	"github.com/xmidt-org/rtcore/xviper"
)

const (
	// TasksKey is the Viper key under which the task set options are stored
	TasksKey = "tasks"
)

// FromViper overlays the TasksKey of a (possibly nil) Viper instance onto DefaultOptions
func FromViper(v *viper.Viper) (Options, error) {
	o := DefaultOptions()
	if v != nil && v.IsSet(TasksKey) {
		if err := xviper.UnmarshalKey(v, TasksKey, &o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}
