// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xmetrics provides the metric interfaces every primitive is instrumented with, and a
Prometheus registry that doubles as a go-kit metrics provider.
*/
package xmetrics
