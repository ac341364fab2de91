// Package config loads datahobbit settings from defaults, an optional config
// file and DATAHOBBIT_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/TFMV/datahobbit/pkg/generate"
	"github.com/TFMV/datahobbit/pkg/progress"
	"github.com/TFMV/datahobbit/pkg/writers"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DATAHOBBIT_GENERATE_WORKERS.
const EnvPrefix = "DATAHOBBIT"

// --- Configuration Structs ---

type GenerateConfig struct {
	Format      string `mapstructure:"format"`
	Delimiter   string `mapstructure:"delimiter"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
	BatchSize   int    `mapstructure:"batch_size"`
	ChunkSize   int    `mapstructure:"chunk_size"`
	Workers     int    `mapstructure:"workers"`
	Seed        uint64 `mapstructure:"seed"`
	Compression string `mapstructure:"compression"`
	Ordered     bool   `mapstructure:"ordered"`
	Progress    string `mapstructure:"progress"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
	// OutputDir confines every file written through the HTTP API.
	OutputDir string `mapstructure:"output_dir"`
}

type Config struct {
	Generate GenerateConfig `mapstructure:"generate"`
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
}

// --- Load Configuration ---

// SetDefaults registers the default of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generate.format", "csv")
	v.SetDefault("generate.delimiter", ",")
	v.SetDefault("generate.max_file_size", generate.DefaultMaxFileSize)
	v.SetDefault("generate.batch_size", generate.DefaultBatchSize)
	v.SetDefault("generate.chunk_size", 10000)
	v.SetDefault("generate.workers", 0)
	v.SetDefault("generate.seed", 0)
	v.SetDefault("generate.compression", "none")
	v.SetDefault("generate.ordered", true)
	v.SetDefault("generate.progress", progress.KindBar)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "datahobbit.log")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.output_dir", ".")
}

// New returns a viper instance with defaults and environment overrides wired.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads configPath (YAML, JSON or TOML by extension) over the
// defaults. An empty path uses defaults and the environment only.
func LoadConfig(configPath string) (*Config, error) {
	v := New()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}
	return Decode(v)
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// --- Validation Functions ---

// validate is a helper function to reduce repetition.
func validate(condition bool, format string, a ...any) error {
	if !condition {
		return fmt.Errorf(format, a...)
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.Generate.Validate(); err != nil {
		return fmt.Errorf("generate config validation failed: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	return nil
}

func (gc *GenerateConfig) Validate() error {
	if err := validate(writers.DefaultFactory.Supports(gc.Format), "unsupported format %q", gc.Format); err != nil {
		return err
	}
	if _, err := generate.ParseDelimiter(gc.Delimiter); err != nil {
		return fmt.Errorf("invalid delimiter %q: %w", gc.Delimiter, err)
	}
	if err := validate(gc.MaxFileSize > 0, "max_file_size must be positive"); err != nil {
		return err
	}
	if err := validate(gc.BatchSize > 0, "batch_size must be positive"); err != nil {
		return err
	}
	if err := validate(gc.ChunkSize > 0, "chunk_size must be positive"); err != nil {
		return err
	}
	if err := validate(gc.Workers >= 0, "workers must not be negative"); err != nil {
		return err
	}
	if err := writers.ValidateCompression(gc.Format, gc.Compression); err != nil {
		return err
	}
	_, err := progress.New(gc.Progress, nil)
	return err
}

func (lc *LogConfig) Validate() error {
	switch strings.ToLower(lc.Level) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level %q", lc.Level)
	}
}

func (sc *ServerConfig) Validate() error {
	if err := validate(sc.Port > 0 && sc.Port < 65536, "port must be between 1 and 65535"); err != nil {
		return err
	}
	return validate(sc.OutputDir != "", "output_dir is required")
}
