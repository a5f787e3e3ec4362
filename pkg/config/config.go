// Package config loads and validates extentvol's configuration: the three
// extent-map tunables (block size, slice size, prealloc size), logging, and
// metrics.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/extentvol/internal/bytesize"
)

// Config is extentvol's top-level configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (EXTENTVOL_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// Environment variables override only keys that the configuration file
// sets. When no configuration file is found, Load returns DefaultConfig()
// and does not read the environment.
type Config struct {
	// Volume controls the extent-map table's block/slice/prealloc sizing.
	Volume VolumeConfig `mapstructure:"volume" yaml:"volume"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics controls Prometheus metrics collection.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// VolumeConfig holds the three tunables of a SliceTable's Config, in
// human-readable byte-size form.
type VolumeConfig struct {
	// BlockSize is the allocation and alignment quantum. Must be a power of
	// two.
	BlockSize bytesize.ByteSize `mapstructure:"block_size" validate:"required" yaml:"block_size"`

	// SliceSize is the logical region covered by one slice. Must be a
	// multiple of BlockSize.
	SliceSize bytesize.ByteSize `mapstructure:"slice_size" validate:"required" yaml:"slice_size"`

	// PreallocSize is the minimum length of a speculative allocation. Must
	// be a multiple of BlockSize.
	PreallocSize bytesize.ByteSize `mapstructure:"prealloc_size" validate:"required" yaml:"prealloc_size"`

	// VolumeCapacity sizes the reference in-memory volume.Store/Allocator
	// used by extentctl and integration tests.
	VolumeCapacity bytesize.ByteSize `mapstructure:"volume_capacity" validate:"required" yaml:"volume_capacity"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is the log output format: "text" or "json".
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is "stdout", "stderr", or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls Prometheus metrics collection.
type MetricsConfig struct {
	// Enabled turns on metrics collection and registration.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// ListenAddr is an address for a metrics HTTP endpoint. Nothing in this
	// repository serves HTTP; extentctl only loads and displays the value.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg := DefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML
// form.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper configures viper with environment variable and config file
// search settings.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("EXTENTVOL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")
	v.SetConfigName("extentvol")
	v.SetConfigType("yaml")
}

// readConfigFile reads the configuration file if it exists. Returns
// (fileFound, error).
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks returns the combined decode hook for custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(byteSizeDecodeHook())
}

// byteSizeDecodeHook converts strings and numbers to bytesize.ByteSize,
// allowing config files to use human-readable sizes like "4Ki" or "64Ki".
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path, honouring
// XDG_CONFIG_HOME, then $HOME/.config/extentvol, and falling back to the
// current directory only if the home directory cannot be determined.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "extentvol")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "extentvol")
}

// structValidator is the shared go-playground/validator instance used by
// Validate.
var structValidator = validator.New()

// Validate checks the struct `validate` tags and the cross-field
// relationships between the volume tunables (BlockSize must be a power of
// two; SliceSize and PreallocSize must be multiples of it).
func Validate(cfg *Config) error {
	if err := structValidator.Struct(cfg); err != nil {
		return err
	}

	b := uint64(cfg.Volume.BlockSize)
	if b == 0 || b&(b-1) != 0 {
		return fmt.Errorf("volume.block_size %d is not a power of two", b)
	}
	if uint64(cfg.Volume.SliceSize)%b != 0 {
		return fmt.Errorf("volume.slice_size %d is not a multiple of block_size %d", cfg.Volume.SliceSize, b)
	}
	if uint64(cfg.Volume.PreallocSize)%b != 0 {
		return fmt.Errorf("volume.prealloc_size %d is not a multiple of block_size %d", cfg.Volume.PreallocSize, b)
	}

	return nil
}
