// Package config loads the agent configuration from a YAML file,
// a .env file and KINDER_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/messages"
	"github.com/aretw0/kinder/pkg/pipeline"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "KINDER_"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Inbound transports for serve.
const (
	TransportLongPoll = "longpoll"
	TransportCallback = "callback"
)

// Config is the full agent configuration.
type Config struct {
	VK       VKConfig         `mapstructure:"vk"`
	Storage  StorageConfig    `mapstructure:"storage"`
	Search   SearchConfig     `mapstructure:"search"`
	Runner   RunnerConfig     `mapstructure:"runner"`
	HTTP     HTTPConfig       `mapstructure:"http"`
	Log      LogConfig        `mapstructure:"log"`
	Messages messages.Catalog `mapstructure:"messages"`
}

// VKConfig holds the platform credentials.
// The group token sends messages; users.search needs a user token.
type VKConfig struct {
	GroupToken   string `mapstructure:"group_token"`
	UserToken    string `mapstructure:"user_token"`
	GroupID      int64  `mapstructure:"group_id"`
	APIVersion   string `mapstructure:"api_version"`
	BaseURL      string `mapstructure:"base_url"`
	Transport    string `mapstructure:"transport"`
	Confirmation string `mapstructure:"confirmation"`
	Secret       string `mapstructure:"secret"`
}

// StorageConfig selects the history backend.
type StorageConfig struct {
	Backend  string `mapstructure:"backend"`
	Path     string `mapstructure:"path"`
	Table    string `mapstructure:"table"`
	RedisURL string `mapstructure:"redis_url"`
	Prefix   string `mapstructure:"prefix"`
}

// SearchConfig mirrors pipeline.Config.
type SearchConfig struct {
	BatchSize        int           `mapstructure:"batch_size"`
	PageSize         int           `mapstructure:"page_size"`
	MediaCount       int           `mapstructure:"media_count"`
	DeliveryDelay    time.Duration `mapstructure:"delivery_delay"`
	MediaConcurrency int           `mapstructure:"media_concurrency"`
}

// Pipeline converts the section into pipeline limits.
func (s SearchConfig) Pipeline() pipeline.Config {
	return pipeline.Config{
		BatchSize:        s.BatchSize,
		PageSize:         s.PageSize,
		MediaCount:       s.MediaCount,
		DeliveryDelay:    s.DeliveryDelay,
		MediaConcurrency: s.MediaConcurrency,
	}
}

// RunnerConfig sizes the dispatch loop.
type RunnerConfig struct {
	// QueueSize caps the events one user may have pending; 0 disables the cap.
	QueueSize int `mapstructure:"queue_size"`
}

// HTTPConfig configures the callback, health and metrics listener.
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Logging converts the section into logger options.
func (l LogConfig) Logging() logging.Options {
	return logging.Options{Level: l.Level, Format: l.Format, File: l.File}
}

// Default returns the built-in configuration.
func Default() *Config {
	p := pipeline.DefaultConfig()
	return &Config{
		VK: VKConfig{
			APIVersion: "5.199",
			Transport:  TransportLongPoll,
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    "data/kinder.db",
			Table:   "shown_candidates",
			Prefix:  "kinder:history:",
		},
		Search: SearchConfig{
			BatchSize:        p.BatchSize,
			PageSize:         p.PageSize,
			MediaCount:       p.MediaCount,
			DeliveryDelay:    p.DeliveryDelay,
			MediaConcurrency: p.MediaConcurrency,
		},
		Runner:   RunnerConfig{QueueSize: 64},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Messages: messages.Default(),
	}
}

// envKeys lists every setting that can be overridden from the environment.
// vk.group_token is read from KINDER_VK_GROUP_TOKEN, and so on.
var envKeys = []string{
	"vk.group_token", "vk.user_token", "vk.group_id", "vk.api_version", "vk.base_url",
	"vk.transport", "vk.confirmation", "vk.secret",
	"storage.backend", "storage.path", "storage.table", "storage.redis_url", "storage.prefix",
	"search.batch_size", "search.page_size", "search.media_count", "search.delivery_delay", "search.media_concurrency",
	"runner.queue_size",
	"http.addr",
	"log.level", "log.format", "log.file",
}

// EnvName returns the environment variable overriding a dotted key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load builds the configuration. path may be empty; a missing envFile is ignored.
// The result is not validated.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := decode(environment(), cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	cfg.Messages = cfg.Messages.Merge(messages.Default())
	return cfg, nil
}

// environment collects the KINDER_* overrides into a nested map.
func environment() map[string]any {
	out := map[string]any{}
	for _, key := range envKeys {
		value, ok := os.LookupEnv(EnvName(key))
		if !ok {
			continue
		}
		section, field, _ := strings.Cut(key, ".")
		m, _ := out[section].(map[string]any)
		if m == nil {
			m = map[string]any{}
			out[section] = m
		}
		m[field] = value
	}
	return out
}

func decode(input map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite backend"))
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			errs = append(errs, errors.New("storage.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of memory, sqlite, redis", c.Storage.Backend))
	}

	if c.Search.BatchSize <= 0 {
		errs = append(errs, errors.New("search.batch_size must be > 0"))
	}
	if c.Search.PageSize <= 0 {
		errs = append(errs, errors.New("search.page_size must be > 0"))
	}
	if c.Search.MediaCount < 0 {
		errs = append(errs, errors.New("search.media_count must be >= 0"))
	}
	if c.Search.DeliveryDelay < 0 {
		errs = append(errs, errors.New("search.delivery_delay must be >= 0"))
	}
	if c.Runner.QueueSize < 0 {
		errs = append(errs, errors.New("runner.queue_size must be >= 0"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}
	return errors.Join(errs...)
}

// ValidateVK checks the platform settings needed by serve.
func (c *Config) ValidateVK() error {
	var errs []error
	if c.VK.GroupToken == "" {
		errs = append(errs, fmt.Errorf("vk.group_token is required (%s)", EnvName("vk.group_token")))
	}
	if c.VK.UserToken == "" {
		errs = append(errs, fmt.Errorf("vk.user_token is required (%s)", EnvName("vk.user_token")))
	}
	switch c.VK.Transport {
	case TransportLongPoll:
		if c.VK.GroupID <= 0 {
			errs = append(errs, errors.New("vk.group_id is required for long poll"))
		}
	case TransportCallback:
		if c.VK.Confirmation == "" {
			errs = append(errs, errors.New("vk.confirmation is required for the callback API"))
		}
	default:
		errs = append(errs, fmt.Errorf("vk.transport %q is not one of longpoll, callback", c.VK.Transport))
	}
	return errors.Join(errs...)
}
