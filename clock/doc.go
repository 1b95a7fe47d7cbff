// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package clock provides the timer service for the concurrency core: wall time, timers, tickers,
and interruptible sleeps.  Production code uses System(); tests use clocktest.Fake to drive
timeouts deterministically.
*/
package clock
