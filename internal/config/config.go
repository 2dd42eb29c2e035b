// Package config loads server and storage settings from file, environment
// and runtime overrides.
//
// Precedence, highest first: IRON_* environment variables, runtime
// overrides merged over the config file, defaults.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (IRON_SERVER_ADDRESS, ...).
const EnvPrefix = "IRON"

// Supported storage drivers.
const (
	DriverMinio = "minio"
	DriverS3    = "s3"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is json or console.
	Format string `mapstructure:"format"`
}

// StorageConfig holds browsing limits and the named backend sources.
type StorageConfig struct {
	PageSize        int                     `mapstructure:"page_size"`
	SearchPageLimit int                     `mapstructure:"search_page_limit"`
	DefaultSource   string                  `mapstructure:"default_source"`
	Sources         map[string]SourceConfig `mapstructure:"sources"`
}

// SourceConfig configures one S3-compatible backend.
type SourceConfig struct {
	DisplayName   string `mapstructure:"display_name"`
	Driver        string `mapstructure:"driver"`
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	SessionToken  string `mapstructure:"session_token"`
	DefaultBucket string `mapstructure:"default_bucket"`
	PathStyle     *bool  `mapstructure:"path_style"`
	Insecure      bool   `mapstructure:"insecure"`
}

// UsePathStyle reports whether bucket names go in the URL path. Unset
// means true, which most S3-compatible stores require.
func (s SourceConfig) UsePathStyle() bool {
	return s.PathStyle == nil || *s.PathStyle
}

// Error reports an invalid configuration value.
type Error struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return "config: " + e.Field + ": " + e.Message
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("storage.page_size", 200)
	v.SetDefault("storage.search_page_limit", 10)
	v.SetDefault("storage.default_source", "")
}

// Load reads configuration from path (or the default search locations when
// path is empty), applies environment and runtime overrides, fills derived
// defaults and validates the result.
func Load(path string, overrides ...map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("iron-browser")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/iron-browser")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for _, o := range overrides {
		if err := v.MergeConfigMap(o); err != nil {
			return nil, fmt.Errorf("apply overrides: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDerivedDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDerivedDefaults fills values that depend on other settings.
func (c *Config) applyDerivedDefaults() {
	for name, src := range c.Storage.Sources {
		if strings.TrimSpace(src.Driver) == "" {
			src.Driver = DriverMinio
		}
		src.Driver = strings.ToLower(src.Driver)
		if strings.TrimSpace(src.DisplayName) == "" {
			src.DisplayName = DisplayName(name)
		}
		c.Storage.Sources[name] = src
	}
	if strings.TrimSpace(c.Storage.DefaultSource) == "" {
		if names := c.SourceNames(); len(names) > 0 {
			c.Storage.DefaultSource = names[0]
		}
	}
}

// Validate checks limits and source definitions.
func (c *Config) Validate() error {
	if c.Storage.PageSize < 1 || c.Storage.PageSize > 1000 {
		return &Error{Field: "storage.page_size", Message: "must be between 1 and 1000"}
	}
	if c.Storage.SearchPageLimit < 1 {
		return &Error{Field: "storage.search_page_limit", Message: "must be at least 1"}
	}
	if len(c.Storage.Sources) == 0 {
		return &Error{Field: "storage.sources", Message: "at least one source is required"}
	}
	if _, ok := c.Storage.Sources[c.Storage.DefaultSource]; !ok {
		return &Error{Field: "storage.default_source", Message: fmt.Sprintf("unknown source %q", c.Storage.DefaultSource)}
	}

	for _, name := range c.SourceNames() {
		src := c.Storage.Sources[name]
		field := "storage.sources." + name
		switch src.Driver {
		case DriverMinio:
			if src.Endpoint == "" {
				return &Error{Field: field + ".endpoint", Message: "endpoint is required for the minio driver"}
			}
		case DriverS3:
		default:
			return &Error{Field: field + ".driver", Message: fmt.Sprintf("unsupported driver %q", src.Driver)}
		}
		if (src.AccessKey != "") != (src.SecretKey != "") {
			return &Error{Field: field + ".access_key", Message: "access key and secret key must be provided together"}
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return &Error{Field: "logging.format", Message: fmt.Sprintf("unsupported format %q", c.Logging.Format)}
	}
	return nil
}

// SourceNames returns the configured source names in sorted order.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Storage.Sources))
	for name := range c.Storage.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DisplayName derives a human label from a source name ("eu-archive" -> "eu archive").
func DisplayName(name string) string {
	return strings.ReplaceAll(name, "-", " ")
}
