package env

import (
	"flag"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables overriding flags,
// e.g. SCOPE_MQTT for -mqtt.
const EnvPrefix = "SCOPE"

// EnvName returns the environment variable for a flag.
func EnvName(flagName string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// LoadFile applies a config file to the flags in fs which were not set
// on the command line. Keys are flag names. An environment variable
// named by EnvName takes precedence over the file.
func LoadFile(fs *flag.FlagSet, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil || explicit[f.Name] || !v.IsSet(f.Name) {
			return
		}
		if setErr := f.Value.Set(v.GetString(f.Name)); setErr != nil {
			err = fmt.Errorf("config %s: %s: %w", path, f.Name, setErr)
		}
	})
	return err
}
