// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package alternation drives two tasks in strict ping-pong order using a pair of binary semaphores.
*/
package alternation
