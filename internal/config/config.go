package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. PIXULI_WASM_MEMORY_PAGES.
const EnvPrefix = "PIXULI"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the host configuration: where plugins live, how verbose the
// logger is, and the limits applied to the Wasm runtime.
type Config struct {
	PluginPaths   []string   `mapstructure:"plugin_paths" validate:"required,min=1,dive,required"`
	LogLevel      string     `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	DefaultPlugin string     `mapstructure:"default_plugin"`
	Wasm          WasmConfig `mapstructure:"wasm"`
}

// WasmConfig holds Wasm runtime configuration.
type WasmConfig struct {
	// Memory limit per module (in pages, 64KB each). A module whose declared
	// minimum exceeds it fails to compile; Go wasip1 guests declare at least
	// 29 pages, so values below that only suit hand-written modules.
	MemoryPages uint32 `mapstructure:"memory_pages" validate:"min=1,max=65536"`
	// Enable debug info in compiled modules.
	Debug bool `mapstructure:"debug"`
	// Compilation cache directory. Empty keeps the cache in memory.
	CacheDir string `mapstructure:"cache_dir"`
	// Maximum concurrent instances.
	MaxInstances int `mapstructure:"max_instances" validate:"min=1"`
	// Export call timeout (seconds). Zero disables it.
	ExecutionTimeout int `mapstructure:"execution_timeout" validate:"min=0"`
}

// Timeout returns ExecutionTimeout as a duration.
func (w WasmConfig) Timeout() time.Duration {
	return time.Duration(w.ExecutionTimeout) * time.Second
}

// Load reads configuration from defaults, PIXULI_* environment variables and,
// when configPath is set, that file. The result is validated.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("plugin_paths", []string{"./plugins"})
	v.SetDefault("log_level", "info")
	v.SetDefault("default_plugin", "")

	// Wasm defaults
	v.SetDefault("wasm.memory_pages", 256) // 16MB
	v.SetDefault("wasm.debug", false)
	v.SetDefault("wasm.cache_dir", "")
	v.SetDefault("wasm.max_instances", 100)
	v.SetDefault("wasm.execution_timeout", 30)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
