// Package config loads the server configuration from defaults, an optional YAML file and
// STROKEREF_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix = "STROKEREF"

	DefaultPort           = 8080
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultSQLitePath     = "./strokeref.db"
	DefaultImagesDir      = "./images"
	DefaultRepresentation = "base64"
	DefaultMetadata       = "sqlite"
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultSourceRef      = "main"
	DefaultMaxAttempts    = 3
)

type Config struct {
	Port      int    `json:"port,omitempty"       mapstructure:"port"`
	LogLevel  string `json:"log_level,omitempty"  mapstructure:"log_level"`
	LogFormat string `json:"log_format,omitempty" mapstructure:"log_format"`

	SQLite  SQLiteConfig  `json:"sqlite"  mapstructure:"sqlite"`
	Images  ImagesConfig  `json:"images"  mapstructure:"images"`
	Redis   RedisConfig   `json:"redis"   mapstructure:"redis"`
	Source  SourceConfig  `json:"source"  mapstructure:"source"`
	Retry   RetryConfig   `json:"retry"   mapstructure:"retry"`
	Webhook WebhookConfig `json:"webhook" mapstructure:"webhook"`
}

type SQLiteConfig struct {
	Path string `json:"path,omitempty" mapstructure:"path"`
}

type ImagesConfig struct {
	Dir string `json:"dir,omitempty" mapstructure:"dir"`
	// Representation is base64 or file.
	Representation string `json:"representation,omitempty" mapstructure:"representation"`
	// MetadataBackend is sqlite or redis.
	MetadataBackend string `json:"metadata_backend,omitempty" mapstructure:"metadata_backend"`
}

type RedisConfig struct {
	Addr string `json:"addr,omitempty" mapstructure:"addr"`
	DB   int    `json:"db,omitempty"   mapstructure:"db"`
}

// SourceConfig locates the GitHub content repository.
type SourceConfig struct {
	Owner string `json:"owner,omitempty" mapstructure:"owner"`
	Repo  string `json:"repo,omitempty"  mapstructure:"repo"`
	Ref   string `json:"ref,omitempty"   mapstructure:"ref"`
	Token string `json:"-"               mapstructure:"token"`
	// BaseURL overrides the GitHub API endpoint, for GitHub Enterprise.
	BaseURL string `json:"base_url,omitempty" mapstructure:"base_url"`
	// RawBaseURL prefixes relative image links in markdown content.
	RawBaseURL string `json:"raw_base_url,omitempty" mapstructure:"raw_base_url"`
}

type RetryConfig struct {
	MaxAttempts int           `json:"max_attempts,omitempty" mapstructure:"max_attempts"`
	Backoff     time.Duration `json:"backoff,omitempty"      mapstructure:"backoff"`
}

type WebhookConfig struct {
	Secret string `json:"-" mapstructure:"secret"`
}

var defaults = map[string]any{
	"port":                    DefaultPort,
	"log_level":               DefaultLogLevel,
	"log_format":              DefaultLogFormat,
	"sqlite.path":             DefaultSQLitePath,
	"images.dir":              DefaultImagesDir,
	"images.representation":   DefaultRepresentation,
	"images.metadata_backend": DefaultMetadata,
	"redis.addr":              DefaultRedisAddr,
	"redis.db":                0,
	"source.owner":            "",
	"source.repo":             "",
	"source.ref":              DefaultSourceRef,
	"source.token":            "",
	"source.base_url":         "",
	"source.raw_base_url":     "",
	"retry.max_attempts":      DefaultMaxAttempts,
	"retry.backoff":           "0s",
	"webhook.secret":          "",
}

// Load reads the configuration. file may be empty, in which case only defaults and the
// environment apply.
func Load(file string) (*Config, error) {
	v := viper.NewWithOptions(
		viper.KeyDelimiter("."),
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)

	v.SetEnvPrefix(DefaultEnvPrefix)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	for key, value := range defaults {
		_ = v.BindEnv(key)
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	decodeHooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)

	config := &Config{}
	if err := v.Unmarshal(config, viper.DecodeHook(decodeHooks)); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log_format %q", c.LogFormat))
	}
	switch c.Images.Representation {
	case "base64", "file":
	default:
		errs = append(errs, fmt.Errorf("unknown images.representation %q", c.Images.Representation))
	}
	switch c.Images.MetadataBackend {
	case "sqlite":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required by the redis metadata backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown images.metadata_backend %q", c.Images.MetadataBackend))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts))
	}
	if c.Retry.Backoff < 0 {
		errs = append(errs, fmt.Errorf("retry.backoff must not be negative, got %s", c.Retry.Backoff))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validate checks that the content repository is identified.
func (s SourceConfig) Validate() error {
	if s.Owner == "" || s.Repo == "" {
		return errors.New("source.owner and source.repo are required")
	}
	return nil
}

// FullName returns owner/repo.
func (s SourceConfig) FullName() string {
	return s.Owner + "/" + s.Repo
}
