package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/dsx-project/dsx/pkg/config/types"
)

const (
	environmentVariablePrefix = "DSX"
	inferConfigTypes          = true

	configType = "yaml"
	configName = "config"
	envFile    = ".env"
)

var (
	environmentVariableReplace = strings.NewReplacer(".", "_")
	configDecoderHook          = viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
)

type Params struct {
	FileName      string
	FileType      string
	FileHandler   func(fileName string) error
	EnvFile       string
	DefaultConfig types.Config
}

// Load reads the configuration from, in increasing precedence: the
// defaults, config.yaml in path, the legacy environment variables, the
// DSX_ environment variables and finally any flag bound to a key. A .env
// file in the working directory is loaded first when present.
func Load(path string, opts ...Option) (types.Config, error) {
	defaultConfig := types.Default
	if path != "" {
		defaultConfig.DataDir = path
	}
	return initConfig(path, append([]Option{
		WithDefaultConfig(defaultConfig),
		WithFileHandler(ReadConfigHandler),
		WithEnvFile(envFile),
	}, opts...)...)
}

func initConfig(path string, opts ...Option) (types.Config, error) {
	params := &Params{
		FileName:      configName,
		FileType:      configType,
		FileHandler:   NoopConfigHandler,
		DefaultConfig: types.Default,
	}
	for _, opt := range opts {
		opt(params)
	}

	if params.EnvFile != "" {
		if err := godotenv.Load(params.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return types.Config{}, fmt.Errorf("failed to load %s: %w", params.EnvFile, err)
		}
	}

	if path != "" {
		viper.AddConfigPath(path)
	}
	viper.SetConfigName(params.FileName)
	viper.SetConfigType(params.FileType)
	viper.SetEnvPrefix(environmentVariablePrefix)
	viper.SetTypeByDefaultValue(inferConfigTypes)
	viper.SetEnvKeyReplacer(environmentVariableReplace)
	SetDefault(params.DefaultConfig)

	if path != "" {
		if err := params.FileHandler(filepath.Join(path, fmt.Sprintf("%s.%s", params.FileName, params.FileType))); err != nil {
			return types.Config{}, err
		}
	}

	if err := bindEnv(); err != nil {
		return types.Config{}, err
	}

	var out types.Config
	if err := viper.Unmarshal(&out, configDecoderHook); err != nil {
		return types.Config{}, err
	}
	applyLegacySwitches(&out)
	return out, Validate(out)
}

// Reset clears all configuration, useful for testing.
func Reset() {
	viper.Reset()
}

// Getenv wraps os.Getenv and retrieves the value of the environment variable named by the config key.
// It returns the value, which will be empty if the variable is not present.
func Getenv(key string) string {
	return os.Getenv(KeyAsEnvVar(key))
}

// KeyAsEnvVar returns the environment variable corresponding to a config key
func KeyAsEnvVar(key string) string {
	return strings.ToUpper(
		fmt.Sprintf("%s_%s", environmentVariablePrefix, environmentVariableReplace.Replace(key)),
	)
}
