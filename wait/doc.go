// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package wait defines the policies every suspending operation accepts: fail immediately,
wait up to a bound, or wait forever.
*/
package wait
