package main

import (
	"bytes"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"

	"github.com/lwproc/lwproc/gen"
)

const (
	defaultProcesses = 100000
	defaultMessages  = 1000000
	defaultWorkers   = 4
	defaultLogLevel  = "info"
)

var (
	errDecodeConfigFile = errors.Normalize(
		"decode config file failed: %s",
		errors.RFCCodeText("LWP:ErrDecodeConfigFile"),
	)
	errConfigUnknownItem = errors.Normalize(
		"unknown config item: %s",
		errors.RFCCodeText("LWP:ErrConfigUnknownItem"),
	)
	errConfigInvalid = errors.Normalize(
		"invalid config: %s",
		errors.RFCCodeText("LWP:ErrConfigInvalid"),
	)
)

// Config is the configuration of lwpbench.
type Config struct {
	LogLevel    string `toml:"log-level"`
	LogFile     string `toml:"log-file"`
	MetricsAddr string `toml:"metrics-addr"`

	Runtime gen.RuntimeOptions `toml:"runtime"`

	// Kind is the process kind to measure: stateless, stateful or both
	Kind      string `toml:"kind"`
	Processes int    `toml:"processes"`
	Messages  int    `toml:"messages"`
	// Workers is the number of goroutines calling Spawn or Send at once
	Workers int `toml:"workers"`
}

// GetDefaultConfig returns a default config
func GetDefaultConfig() *Config {
	return &Config{
		LogLevel:  defaultLogLevel,
		Runtime:   gen.RuntimeOptions{Name: "lwpbench"},
		Kind:      "both",
		Processes: defaultProcesses,
		Messages:  defaultMessages,
		Workers:   defaultWorkers,
	}
}

// Toml returns TOML format representation of config.
func (c *Config) Toml() (string, error) {
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", errors.Trace(err)
	}
	return b.String(), nil
}

// ValidateAndAdjust checks the config values.
func (c *Config) ValidateAndAdjust() error {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	switch c.Kind {
	case "":
		c.Kind = "both"
	case "both", gen.KindStateless.String(), gen.KindStateful.String():
	default:
		return errConfigInvalid.GenWithStackByArgs("kind must be stateless, stateful or both")
	}
	if c.Processes < 1 {
		return errConfigInvalid.GenWithStackByArgs("processes must be greater than zero")
	}
	if c.Messages < 1 {
		return errConfigInvalid.GenWithStackByArgs("messages must be greater than zero")
	}
	if c.Workers < 1 {
		return errConfigInvalid.GenWithStackByArgs("workers must be greater than zero")
	}
	if c.Runtime.PoolSize < 0 {
		return errConfigInvalid.GenWithStackByArgs("runtime.pool-size can't be negative")
	}
	return nil
}

// kinds returns the process kinds to measure
func (c *Config) kinds() []gen.ProcessKind {
	switch c.Kind {
	case gen.KindStateless.String():
		return []gen.ProcessKind{gen.KindStateless}
	case gen.KindStateful.String():
		return []gen.ProcessKind{gen.KindStateful}
	}
	return []gen.ProcessKind{gen.KindStateless, gen.KindStateful}
}

// configFromFile loads config from file and merges items into Config.
func (c *Config) configFromFile(path string) error {
	metaData, err := toml.DecodeFile(path, c)
	if err != nil {
		return errDecodeConfigFile.GenWithStackByArgs(err)
	}
	return checkUndecodedItems(metaData)
}

func (c *Config) configFromString(data string) error {
	metaData, err := toml.Decode(data, c)
	if err != nil {
		return errDecodeConfigFile.GenWithStackByArgs(err)
	}
	return checkUndecodedItems(metaData)
}

func checkUndecodedItems(metaData toml.MetaData) error {
	undecoded := metaData.Undecoded()
	if len(undecoded) > 0 {
		var undecodedItems []string
		for _, item := range undecoded {
			undecodedItems = append(undecodedItems, item.String())
		}
		return errConfigUnknownItem.GenWithStackByArgs(strings.Join(undecodedItems, ","))
	}
	return nil
}
