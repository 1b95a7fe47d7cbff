// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package taskset declares the fixed set of tasks run by rtcore.

Each group of tasks exercises one primitive:

	alternation   thread_a and thread_b take strict turns toggling one output each
	mqueue        a sender and a reader alternate over a purge-on-full queue
	relay         relay_a and relay_b pass a single item back and forth over two queues
	contention    two contenders increment a counter under a lock with a timeout
	uart          received lines are framed into a queue and echoed back
	rotation      outputs are toggled in sequence while the button-controlled mode is on

Any group can be disabled through Options.  Module binds the resulting TaskSet to an
fx application lifecycle.
*/
package taskset
