// Package config loads server settings from defaults, an optional YAML or
// JSON file and GOOD_* environment variables, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. GOOD_LISTEN_ADDR.
const EnvPrefix = "GOOD_"

// Config holds every server setting.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`

	Mainnet    bool   `mapstructure:"mainnet"`
	LensAPIURL string `mapstructure:"lens_api_url"`
	UserAgent  string `mapstructure:"user_agent"`

	SQLitePath string `mapstructure:"sqlite_path"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`

	ClickHouseDSN string `mapstructure:"clickhouse_dsn"`

	IPAPIKey    string        `mapstructure:"ipapi_key"`
	IPAPIURL    string        `mapstructure:"ipapi_url"`
	GeoCacheTTL time.Duration `mapstructure:"geo_cache_ttl"`

	SlackWebhookURL string `mapstructure:"slack_webhook_url"`
	WebhookSecret   string `mapstructure:"webhook_secret"`

	RecentEvents int    `mapstructure:"recent_events"`
	CatalogPath  string `mapstructure:"catalog_path"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		ListenAddr:   ":4784",
		MetricsAddr:  "",
		LogLevel:     "info",
		LogFormat:    "text",
		UserAgent:    "Goodcast",
		SQLitePath:   "goodapi.db",
		RedisPrefix:  "goodapi:",
		GeoCacheTTL:  24 * time.Hour,
		RecentEvents: 50,
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	raw := map[string]any{}

	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range file {
			raw[k] = v
		}
	}

	for _, key := range Keys() {
		if v, ok := lookup(EnvPrefix + strings.ToUpper(key)); ok {
			raw[key] = v
		}
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	out := map[string]any{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return out, nil
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return out, nil
}

// Keys lists every setting name, as used in files and (upper-cased) in env.
func Keys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("mapstructure"); tag != "" {
			keys = append(keys, tag)
		}
	}
	return keys
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen_addr is required"))
	}
	if c.RecentEvents <= 0 {
		errs = append(errs, errors.New("recent_events must be positive"))
	}
	if c.GeoCacheTTL < 0 {
		errs = append(errs, errors.New("geo_cache_ttl must not be negative"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
