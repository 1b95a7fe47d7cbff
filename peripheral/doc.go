// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package peripheral defines the boundary between the concurrency core and board hardware:
digital outputs and inputs, readiness checks, input debouncing, and serial line framing.
*/
package peripheral
