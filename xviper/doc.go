// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package xviper provides customizations on use of viper for configuration loading.

Configuration is looked up in /etc/<app>, $HOME/.<app>, and the working directory, may be
overridden by environment variables prefixed with the application name, and may be pointed at
an explicit file from the command line.  UnmarshalKey decodes durations and any type that
implements encoding.TextUnmarshaler, such as wait.Policy, from their string forms.
*/
package xviper
