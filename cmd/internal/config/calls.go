package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// Sub returns subsection of the Config by name.
//
// Missing subsection is a degenerate tree, all its values are nil.
func (x *Config) Sub(name string) *Config {
	path := make([]string, len(x.path), len(x.path)+1)
	copy(path, x.path)

	return &Config{
		v:    x.v,
		path: append(path, name),
	}
}

// Value returns configuration value by name.
//
// Result can be casted to a particular type
// via corresponding function (e.g. StringSlice).
// Note: casting via Go `.()` operator is not
// recommended.
func (x *Config) Value(name string) any {
	return x.v.Get(x.key(name))
}

// BindFlag makes a changed command line flag take precedence over
// the configuration value by name.
func (x *Config) BindFlag(name string, f *pflag.Flag) error {
	return x.v.BindPFlag(x.key(name), f)
}

func (x *Config) key(name string) string {
	return strings.Join(append(x.path[:len(x.path):len(x.path)], name), separator)
}
