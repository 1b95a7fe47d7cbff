// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package task coordinates a fixed set of long-lived tasks: declaration, initialization,
an explicit start phase, cooperative shutdown, and restart after failure.  It also supplies
the loop bodies that connect tasks to queues, semaphores, and mutexes.
*/
package task
