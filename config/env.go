package config

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

var (
	// EnvPrefix defines name prefix for environment variables
	// with struct-path selector and value, for example:
	//    CHRONOS_LOG_VERBOSITY=DEBUG
	EnvPrefix = "CHRONOS_"
	// ConfigEnv defines environment variable for config file path
	ConfigEnv = "CHRONOS_CONFIG"
)

// AddFlags registers the flags that rename the environment variables
// above. Call ApplyFlags after parsing.
func AddFlags(flags *pflag.FlagSet) {
	flags.StringVar(&EnvPrefix, "env-prefix", EnvPrefix,
		`prefix for environment variables`)
	flags.StringVar(&ConfigEnv, "config-env", ConfigEnv,
		`environment variable for config file path`)
}

// ApplyFlags keeps ConfigEnv under EnvPrefix after the flags changed
// either of them.
func ApplyFlags() {
	name := strings.TrimPrefix(ConfigEnv, "CHRONOS_")
	name = strings.TrimPrefix(name, EnvPrefix)
	ConfigEnv = EnvPrefix + name
}

func applyEnv(v ...interface{}) error {
	var ee []error
	for i := range v {
		if err := env.ParseWithOptions(v[i], env.Options{Prefix: EnvPrefix}); err != nil {
			ee = append(ee, err)
		}
	}
	return errors.Join(ee...)
}
