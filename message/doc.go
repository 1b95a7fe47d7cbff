// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package message defines the item relayed between tasks and its fixed-size slot encoding.
*/
package message
