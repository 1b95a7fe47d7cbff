// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package xviper

import (
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultNameFlag = "name"
	DefaultFileFlag = "file"
)

// Option is a configuration step applied to a Viper instance
type Option func(*viper.Viper) error

func AddConfigPaths(paths ...string) Option {
	return func(v *viper.Viper) error {
		for _, p := range paths {
			v.AddConfigPath(p)
		}

		return nil
	}
}

// SetEnvPrefix sets the environment prefix.  Nested keys map onto environment
// variables with '.' and '-' replaced by '_', e.g. RTCORE_LOG_LEVEL.
func SetEnvPrefix(prefix string) Option {
	return func(v *viper.Viper) error {
		v.SetEnvPrefix(prefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		return nil
	}
}

func SetConfigName(name string) Option {
	return func(v *viper.Viper) error {
		v.SetConfigName(name)
		return nil
	}
}

func AutomaticEnv(v *viper.Viper) error {
	v.AutomaticEnv()
	return nil
}

func BindPFlags(fs *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		if fs == nil {
			return nil
		}

		return v.BindPFlags(fs)
	}
}

// BindConfig lets the command line choose the configuration.  A nonempty file flag sets
// the exact configuration file.  Failing that, a nonempty name flag sets the name that
// is searched for in the configuration paths.  Missing flags are ignored.
func BindConfig(fs *pflag.FlagSet, fileFlag, nameFlag string) Option {
	return func(v *viper.Viper) error {
		if fs == nil {
			return nil
		}

		if f := fs.Lookup(fileFlag); f != nil && len(f.Value.String()) > 0 {
			v.SetConfigFile(f.Value.String())
		} else if f := fs.Lookup(nameFlag); f != nil && len(f.Value.String()) > 0 {
			v.SetConfigName(f.Value.String())
		}

		return nil
	}
}

// Defaults sets a default value for each key
func Defaults(d map[string]interface{}) Option {
	return func(v *viper.Viper) error {
		for key, value := range d {
			v.SetDefault(key, value)
		}

		return nil
	}
}

// StdOptions is the standard configuration layout for an application.  The flagset
// may be nil, in which case no flags are bound.
func StdOptions(applicationName string, fs *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		_, err := Configure(
			v,
			AddConfigPaths(
				fmt.Sprintf("/etc/%s", applicationName),
				fmt.Sprintf("$HOME/.%s", applicationName),
				".",
			),
			SetEnvPrefix(applicationName),
			AutomaticEnv,
			SetConfigName(applicationName),
			BindConfig(fs, DefaultFileFlag, DefaultNameFlag),
			BindPFlags(fs),
		)

		return err
	}
}

func New(o ...Option) (*viper.Viper, error) {
	return Configure(viper.New(), o...)
}

func Configure(v *viper.Viper, o ...Option) (*viper.Viper, error) {
	if v != nil {
		for _, f := range o {
			if err := f(v); err != nil {
				return nil, err
			}
		}
	}

	return v, nil
}

// ReadInConfig reads the configuration file, if any.  When no file is found in any of the
// configuration paths, this function returns false with no error and the instance is left
// to defaults, the environment, and flags.  An explicitly set file that is missing is an error.
func ReadInConfig(v *viper.Viper) (bool, error) {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		return true, nil

	case errors.As(err, &notFound):
		return false, nil

	default:
		return false, errors.WrapWithDetails(err, "unable to read configuration", "file", v.ConfigFileUsed())
	}
}
