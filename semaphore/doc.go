// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package semaphore provides a channel-based counting semaphore with a saturating Give and a
Take that honors wait policies and context cancellation.
*/
package semaphore
