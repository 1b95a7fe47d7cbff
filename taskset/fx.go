// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"context"
	"io"

	"github.com/go-kit/kit/metrics/provider"
	"github.com/xmidt-org/rtcore/clock"
	"github.com/xmidt-org/rtcore/peripheral"
	"github.com/xmidt-org/rtcore/peripheral/sim"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// In is the set of components used to build a TaskSet
type In struct {
	fx.In

	Options     Options
	Peripherals Peripherals
	Logger      *zap.Logger

	Clock    clock.Interface   `optional:"true"`
	Provider provider.Provider `optional:"true"`
}

// Provide builds a TaskSet from injected components
func Provide(in In) (*TaskSet, error) {
	var m *Measures
	if in.Provider != nil {
		m = NewMeasures(in.Provider)
	}

	return New(in.Options, Dependencies{
		Peripherals: in.Peripherals,
		Logger:      in.Logger,
		Clock:       in.Clock,
		Measures:    m,
	})
}

// SimulatedPeripherals drives a simulated board, using the given streams as the serial port
func SimulatedPeripherals(b *sim.Board, uartIn io.Reader, uartOut io.Writer) Peripherals {
	return Peripherals{
		Outputs:  b,
		Inputs:   b,
		Readiers: []peripheral.Readier{b},
		UARTIn:   uartIn,
		UARTOut:  uartOut,
	}
}

// Module provides Options from Viper and the TaskSet, and binds the TaskSet to the
// application lifecycle.  Initialization and start happen in OnStart, and a failed
// initialization aborts the application.  Tasks are stopped cooperatively in OnStop.
func Module() fx.Option {
	return fx.Module(
		"taskset",
		fx.Provide(
			FromViper,
			Provide,
		),
		fx.Invoke(
			func(lc fx.Lifecycle, ts *TaskSet) {
				lc.Append(fx.Hook{
					OnStart: func(context.Context) error {
						if err := ts.Init(); err != nil {
							return err
						}

						// tasks outlive the start context
						return ts.Start(context.Background())
					},
					OnStop: func(context.Context) error {
						return ts.Shutdown()
					},
				})
			},
		),
	)
}
