// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"emperror.dev/errors"
	"github.com/spf13/cast"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/peripheral"
	"github.com/xmidt-org/rtcore/peripheral/sim"
	"go.uber.org/zap"
)

// NewBoard creates the simulated board described by the options
func NewBoard(o Board, logger *zap.Logger, c clock.Interface) (*sim.Board, error) {
	inputs := make(map[peripheral.ID]peripheral.Level, len(o.Inputs))
	for key, value := range o.Inputs {
		id, err := cast.ToIntE(key)
		if err != nil {
			return nil, errors.WrapWithDetails(err, "invalid input id", "input", key)
		}

		level, err := peripheral.ParseLevel(value)
		if err != nil {
			return nil, errors.WrapWithDetails(err, "invalid input level", "input", key)
		}

		inputs[peripheral.ID(id)] = level
	}

	return sim.New(
		sim.WithClock(c),
		sim.WithLogger(logger),
		sim.WithHistory(o.History),
		sim.WithInputs(inputs),
	), nil
}
