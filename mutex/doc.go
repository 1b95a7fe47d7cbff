// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package mutex provides an owned lock whose acquisition can be bounded by a wait.Policy,
along with a Guarded value that is only reachable under that lock.

Waiters are granted the lock either in arrival order or by priority.  There is no priority
inheritance and no deadlock detection.
*/
package mutex
