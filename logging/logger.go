// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogger returns the logger used when nothing else has been configured
func DefaultLogger() *zap.Logger {
	return sallust.Default()
}

// New creates a zap Logger from a set of options.  The options object can be nil,
// in which case a logger that writes ERROR entries to os.Stdout is returned.
func New(o *Options) *zap.Logger {
	return zap.New(
		zapcore.NewCore(o.encoder(), o.output(), o.level()),
		zap.AddCaller(),
	)
}

// OrDefault returns l, or DefaultLogger() if l is nil
func OrDefault(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}

	return DefaultLogger()
}
