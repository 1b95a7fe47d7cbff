// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package queue implements a bounded message queue of fixed-size items with blocking,
timed, and non-blocking put and get.
*/
package queue
