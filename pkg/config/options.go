package config

import (
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/dsx-project/dsx/pkg/config/types"
)

type Option func(options *Params)

func WithFileName(name string) Option {
	return func(options *Params) {
		options.FileName = name
	}
}

func WithDefaultConfig(cfg types.Config) Option {
	return func(options *Params) {
		options.DefaultConfig = cfg
	}
}

func WithFileHandler(handler func(name string) error) Option {
	return func(options *Params) {
		options.FileHandler = handler
	}
}

// WithEnvFile sets the dotenv file loaded before reading the environment.
// An empty name loads nothing.
func WithEnvFile(name string) Option {
	return func(options *Params) {
		options.EnvFile = name
	}
}

func NoopConfigHandler(filename string) error {
	return nil
}

func ReadConfigHandler(fileName string) error {
	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		// if the config file doesn't exist that's fine, we will just use default configuration values
		return nil
	} else if err != nil {
		return err
	}
	// else we will read values set from the config, and accept those over the default values.
	return viper.ReadInConfig()
}

// Write stores cfg as yaml in fileName.
func Write(fileName string, cfg types.Config) error {
	cfgBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(fileName, cfgBytes, os.FileMode(0o644)) //nolint:gomnd
}

// Marshal renders cfg as yaml.
func Marshal(cfg types.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
