package server

import (
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/lockswap/errors"
	"github.com/tendermint/tendermint/libs/log"
	yaml "gopkg.in/yaml.v2"
)

// ConfigFile is the name of the optional configuration file kept in the
// home directory.
const ConfigFile = "lockswapd.yaml"

const (
	flagBind     = "bind"
	flagDebug    = "debug"
	flagMetrics  = "metrics"
	flagLogLevel = "log_level"
)

// Config holds the settings of a running node. Values are read from the
// configuration file and can be overwritten by command line flags.
type Config struct {
	// Bind is the address the ABCI server listens on.
	Bind string `yaml:"bind"`
	// Metrics is the address prometheus metrics are served on. Empty
	// disables the metrics server.
	Metrics string `yaml:"metrics"`
	// LogLevel is one of debug, info, error or none.
	LogLevel string `yaml:"log_level"`
	// Debug includes the stack trace in returned errors.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Bind:     "tcp://localhost:26658",
		Metrics:  "",
		LogLevel: "info",
		Debug:    false,
	}
}

// LoadConfig reads the configuration file from the home directory. A
// missing file results in the default configuration.
func LoadConfig(home string) (Config, error) {
	conf := DefaultConfig()
	raw, err := ioutil.ReadFile(filepath.Join(home, ConfigFile))
	switch {
	case err == nil:
	case os.IsNotExist(err):
		return conf, nil
	default:
		return conf, errors.Wrapf(errors.ErrDatabase, "read config: %s", err)
	}
	if err := yaml.UnmarshalStrict(raw, &conf); err != nil {
		return conf, errors.Wrapf(errors.ErrInvalidInput, "config: %s", err)
	}
	return conf, conf.Validate()
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	if c.Bind == "" {
		return errors.Wrap(errors.ErrEmpty, "bind")
	}
	if _, err := logFilter(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// parseFlags applies the command line flags on top of given
// configuration. Only explicitly set flags change the configuration.
func parseFlags(conf Config, args []string) (Config, error) {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	bind := fs.String(flagBind, conf.Bind, "address server listens on")
	metrics := fs.String(flagMetrics, conf.Metrics, "address prometheus metrics are served on")
	level := fs.String(flagLogLevel, conf.LogLevel, "one of debug, info, error or none")
	debug := fs.Bool(flagDebug, conf.Debug, "call stack returned on error")
	if err := fs.Parse(args); err != nil {
		return conf, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case flagBind:
			conf.Bind = *bind
		case flagMetrics:
			conf.Metrics = *metrics
		case flagLogLevel:
			conf.LogLevel = *level
		case flagDebug:
			conf.Debug = *debug
		}
	})
	return conf, conf.Validate()
}

// logFilter returns the tendermint log filter for given level name.
func logFilter(level string) (log.Option, error) {
	switch level {
	case "debug":
		return log.AllowDebug(), nil
	case "info", "":
		return log.AllowInfo(), nil
	case "error":
		return log.AllowError(), nil
	case "none":
		return log.AllowNone(), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown log level %q", level)
	}
}
