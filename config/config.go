// Package config loads chronos settings from built-in defaults, an
// optional YAML file and CHRONOS_ prefixed environment variables, in
// that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/blockberries/chronos/logsink"
	"github.com/blockberries/chronos/types"
)

// Config is the complete chronos configuration.
// see Defaults() for the values used when nothing is set
type Config struct {
	Formats Formats `envPrefix:"FORMAT_" yaml:"formats"`
	Log     Log     `envPrefix:"LOG_" yaml:"log"`
	Server  Server  `envPrefix:"SERVER_" yaml:"server"`
}

// Formats holds the layouts used when a caller passes an empty one.
type Formats struct {
	Duration string `env:"DURATION" yaml:"duration"`
	Infinity string `env:"INFINITY" yaml:"infinity"`
	Time     string `env:"TIME" yaml:"time"`
}

// Log configures the logger built by Log.Options.
type Log struct {
	Verbosity logsink.Verbosity `env:"VERBOSITY" yaml:"verbosity"`
	// Stream accepts "stderr"|"stdout"|"none"
	Stream      string `env:"STREAM" yaml:"stream"`
	Colour      bool   `env:"COLOUR" yaml:"colour"`
	TimeFormat  string `env:"TIMEFORMAT" yaml:"timeFormat"`
	EntryFormat string `env:"ENTRYFORMAT" yaml:"entryFormat"`
	// File accepts a time layout such as "logs/chronos_%F_%H%M%S.log",
	// empty turns off the file sink
	File        string `env:"FILE" yaml:"file"`
	FileMaxSize int64  `env:"FILEMAXSIZE" yaml:"fileMaxSize"`
	FileRotate  int    `env:"FILEROTATE" yaml:"fileRotate"`
	// Condense accepts time duration for condensing similar records
	// if 0 turn off condensing
	Condense types.Duration `env:"CONDENSE" yaml:"condense"`
}

// Server configures the gRPC transport.
type Server struct {
	// Listen accepts value for combined "host:port"
	Listen string `env:"LISTEN" yaml:"listen"`
	// Dial names a remote clock server, empty means the local clock
	Dial            string         `env:"DIAL" yaml:"dial"`
	DialTimeout     types.Duration `env:"DIALTIMEOUT" yaml:"dialTimeout"`
	MinTickInterval types.Duration `env:"MINTICKINTERVAL" yaml:"minTickInterval"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Formats: Formats{
			Duration: types.DefaultDurationFormat,
			Infinity: types.DefaultInfinityFormat,
			Time:     types.DefaultTimeFormat,
		},
		Log: Log{
			Verbosity:   logsink.Info,
			Stream:      "stderr",
			TimeFormat:  logsink.DefaultTimeFormat,
			EntryFormat: logsink.DefaultEntryFormat,
			FileMaxSize: 10 << 20,
			FileRotate:  5,
		},
		Server: Server{
			Listen:          "127.0.0.1:7410",
			DialTimeout:     types.Seconds(5),
			MinTickInterval: types.Milliseconds(1),
		},
	}
}

// Load builds the configuration. The YAML file at path is read when path
// is not empty, otherwise the file named by ConfigEnv, if any. Environment
// variables are applied last.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (cfg Config) Validate() error {
	return errors.Join(cfg.Formats.Validate(), cfg.Log.Validate(), cfg.Server.Validate())
}

func (f Formats) Validate() error {
	var ee []error
	if err := types.ValidateDurationFormat(f.Duration); err != nil {
		ee = append(ee, fmt.Errorf("formats.duration: %w", err))
	}
	if err := types.ValidateDurationFormat(f.Infinity); err != nil {
		ee = append(ee, fmt.Errorf("formats.infinity: %w", err))
	}
	if err := types.ValidateTimeFormat(f.Time); err != nil {
		ee = append(ee, fmt.Errorf("formats.time: %w", err))
	}
	return errors.Join(ee...)
}

func (l Log) Validate() error {
	var ee []error
	switch l.Stream {
	case "stderr", "stdout", "none", "":
	default:
		ee = append(ee, fmt.Errorf("log.stream: unknown stream %q", l.Stream))
	}
	if err := types.ValidateTimeFormat(l.TimeFormat); err != nil {
		ee = append(ee, fmt.Errorf("log.timeFormat: %w", err))
	}
	if err := logsink.ValidateEntryFormat(l.EntryFormat); err != nil {
		ee = append(ee, fmt.Errorf("log.entryFormat: %w", err))
	}
	if l.File != "" {
		if err := types.ValidateTimeFormat(l.File); err != nil {
			ee = append(ee, fmt.Errorf("log.file: %w", err))
		}
	}
	if l.FileMaxSize < 0 || l.FileRotate < 0 {
		ee = append(ee, errors.New("log: file size and rotation must not be negative"))
	}
	if !l.Condense.IsFinite() || l.Condense.Sign() < 0 {
		ee = append(ee, fmt.Errorf("log.condense: %v is not a finite non-negative duration", l.Condense))
	}
	return errors.Join(ee...)
}

func (s Server) Validate() error {
	var ee []error
	if !s.DialTimeout.IsFinite() || s.DialTimeout.Sign() <= 0 {
		ee = append(ee, fmt.Errorf("server.dialTimeout: %v is not a finite positive duration", s.DialTimeout))
	}
	if !s.MinTickInterval.IsFinite() || s.MinTickInterval.Sign() < 0 {
		ee = append(ee, fmt.Errorf("server.minTickInterval: %v is not a finite non-negative duration", s.MinTickInterval))
	}
	return errors.Join(ee...)
}

// Options converts l for logsink.NewLogger, picking the console stream
// from stdout and stderr.
func (l Log) Options(stdout, stderr io.Writer) logsink.Options {
	opts := logsink.Options{
		Verbosity:   l.Verbosity,
		Colour:      l.Colour,
		TimeFormat:  l.TimeFormat,
		EntryFormat: l.EntryFormat,
		File:        l.File,
		FileMaxSize: l.FileMaxSize,
		FileRotate:  l.FileRotate,
		Condense:    l.Condense,
	}
	switch l.Stream {
	case "stdout":
		opts.Stream = stdout
	case "stderr", "":
		opts.Stream = stderr
	}
	return opts
}

// Hashsum calculates xxhash of the YAML form suitable for checking the
// equality
func (cfg Config) Hashsum() (uint64, error) {
	return Hashsum(cfg)
}
