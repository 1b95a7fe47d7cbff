// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package gate provides an atomic open/closed flag with an optional gauge reporting its state.
*/
package gate
