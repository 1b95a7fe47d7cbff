// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package wait

import (
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/xmidt-org/rtcore/clock"
)

const (
	// ErrTimeout is returned by any blocking operation whose Timeout policy expired
	// before the operation could complete.
	ErrTimeout = errors.Sentinel("the wait timed out")
)

type kind uint8

const (
	kindNoWait kind = iota
	kindTimeout
	kindForever
)

// Policy describes how long a blocking operation may suspend its caller.  The zero value
// is NoWait.
type Policy struct {
	k kind
	d time.Duration
}

var (
	// NoWait fails immediately when an operation cannot complete
	NoWait = Policy{k: kindNoWait}

	// Forever blocks until the operation completes or the caller's context is canceled
	Forever = Policy{k: kindForever}
)

// Timeout creates a Policy that waits at most d.  A nonpositive d is NoWait.
func Timeout(d time.Duration) Policy {
	if d <= 0 {
		return NoWait
	}

	return Policy{k: kindTimeout, d: d}
}

// IsNoWait tests if this policy never suspends
func (p Policy) IsNoWait() bool {
	return p.k == kindNoWait
}

// IsForever tests if this policy waits without bound
func (p Policy) IsForever() bool {
	return p.k == kindForever
}

// Duration returns the timeout of this policy.  NoWait returns 0 and Forever returns -1.
func (p Policy) Duration() time.Duration {
	switch p.k {
	case kindTimeout:
		return p.d
	case kindForever:
		return -1
	default:
		return 0
	}
}

// Timer returns a channel that receives when this policy expires, together with
// a function that releases the underlying timer.  Only Timeout policies create a timer;
// NoWait and Forever return a nil channel, which never receives, and a noop stop.
func (p Policy) Timer(c clock.Interface) (<-chan time.Time, func() bool) {
	if p.k != kindTimeout {
		return nil, func() bool { return false }
	}

	t := clock.OrSystem(c).NewTimer(p.d)
	return t.C(), t.Stop
}

func (p Policy) String() string {
	switch p.k {
	case kindTimeout:
		return p.d.String()
	case kindForever:
		return "forever"
	default:
		return "nowait"
	}
}

// MarshalText writes the same form that Parse accepts
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText allows a Policy to be decoded from configuration
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*p = parsed
	return nil
}

// Parse produces a Policy from its text form: "nowait" (or "none", or the empty string),
// "forever", or anything accepted by time.ParseDuration.
func Parse(v string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "nowait":
		return NoWait, nil

	case "forever":
		return Forever, nil

	default:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return NoWait, errors.WithDetails(
				errors.Wrap(err, "invalid wait policy"),
				"value", v,
			)
		}

		return Timeout(d), nil
	}
}
