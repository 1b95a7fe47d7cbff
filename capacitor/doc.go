// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package capacitor provides a configurable delay for a series of function calls.  A capacitor is discharged
when it is time to actually invoke the target function.  Input debouncing uses a capacitor so that a burst
of raw changes results in a single confirmation read.
*/
package capacitor
