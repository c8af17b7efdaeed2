// Package config loads fetchkit defaults from built-in values, an optional
// YAML file and FETCH_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/gaborage/fetchkit/fetch"
	"github.com/gaborage/fetchkit/logger"
	"github.com/gaborage/fetchkit/observability"
)

const (
	envPrefix     = "FETCH_"
	envConfigFile = "FETCH_CONFIG_FILE"
)

// envKeys maps each supported environment variable to its config path.
var envKeys = map[string]string{
	"FETCH_TIMEOUT_MS":           "fetch.timeout_ms",
	"FETCH_RETRIES":              "fetch.retries",
	"FETCH_RETRY_DELAY_MS":       "fetch.retry_delay_ms",
	"FETCH_INSECURE_SKIP_VERIFY": "fetch.insecure_skip_verify",
	"FETCH_FOLLOW_REDIRECTS":     "fetch.follow_redirects",
	"FETCH_FORM_ENCODING":        "fetch.form_encoding",
	"FETCH_USER_AGENT":           "fetch.user_agent",
	"FETCH_LOG_LEVEL":            "log.level",
	"FETCH_LOG_PRETTY":           "log.pretty",
	"FETCH_TELEMETRY_ENABLED":    "telemetry.enabled",
	"FETCH_SERVICE_NAME":         "telemetry.service_name",
	"FETCH_SERVICE_VERSION":      "telemetry.service_version",
	"FETCH_METRIC_INTERVAL_MS":   "telemetry.metric_interval_ms",
}

func envVarFor(path string) (string, bool) {
	for envVar, key := range envKeys {
		if key == path {
			return envVar, true
		}
	}
	return "", false
}

func defaults() map[string]any {
	d := fetch.DefaultOptions()
	return map[string]any{
		"fetch.timeout_ms":             int(d.Timeout / time.Millisecond),
		"fetch.retries":                d.Retries,
		"fetch.retry_delay_ms":         int(d.RetryDelay / time.Millisecond),
		"fetch.insecure_skip_verify":   d.InsecureSkipVerify,
		"fetch.follow_redirects":       d.FollowRedirects,
		"fetch.form_encoding":          d.FormEncoding.String(),
		"fetch.user_agent":             "",
		"log.level":                    "info",
		"log.pretty":                   false,
		"telemetry.enabled":            false,
		"telemetry.service_name":       "fetchkit",
		"telemetry.service_version":    "",
		"telemetry.metric_interval_ms": int(observability.DefaultMetricInterval / time.Millisecond),
	}
}

// Load reads defaults, then the YAML file named by FETCH_CONFIG_FILE when set,
// then FETCH_* environment variables.
func Load() (*Config, error) {
	if path := os.Getenv(envConfigFile); path != "" {
		return LoadFile(path)
	}
	return load(nil)
}

// LoadFile is Load with an explicit YAML file. The file must exist.
func LoadFile(path string) (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return &ConfigError{Category: "load", Field: path, Message: err.Error(), Action: "check the file path and YAML syntax"}
		}
		return nil
	})
}

// LoadBytes is Load with YAML content supplied in memory.
func LoadBytes(data []byte) (*Config, error) {
	return load(func(k *koanf.Koanf) error {
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return &ConfigError{Category: "load", Message: err.Error(), Action: "check the YAML syntax"}
		}
		return nil
	})
}

func load(source func(*koanf.Koanf) error) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if source != nil {
		if err := source(k); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			// Unknown FETCH_* variables, FETCH_CONFIG_FILE included, are skipped.
			return envKeys[key], value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &ConfigError{Category: "invalid", Message: err.Error(), Action: "check value types in the config file and environment"}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FetchOptions converts the loaded values into fetch.Options.
// Fields with no config counterpart keep their DefaultOptions values.
func (c *Config) FetchOptions() fetch.Options {
	opts := fetch.DefaultOptions()
	opts.Timeout = time.Duration(c.Fetch.TimeoutMS) * time.Millisecond
	opts.Retries = c.Fetch.Retries
	opts.RetryDelay = time.Duration(c.Fetch.RetryDelayMS) * time.Millisecond
	opts.InsecureSkipVerify = c.Fetch.InsecureSkipVerify
	opts.FollowRedirects = c.Fetch.FollowRedirects
	if enc, err := fetch.ParseFormEncoding(c.Fetch.FormEncoding); err == nil {
		opts.FormEncoding = enc
	}
	if c.Fetch.UserAgent != "" {
		opts.Headers = map[string][]string{"User-Agent": {c.Fetch.UserAgent}}
	}
	return opts
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger() logger.Logger {
	return logger.New(c.Log.Level, c.Log.Pretty)
}

// NewTelemetry builds the provider described by the telemetry section.
// Exports go to w, or stdout when w is nil. The caller must shut it down.
func (c *Config) NewTelemetry(w io.Writer) (observability.Provider, error) {
	return observability.NewProvider(observability.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    c.Telemetry.ServiceName,
		ServiceVersion: c.Telemetry.ServiceVersion,
		Writer:         w,
		MetricInterval: time.Duration(c.Telemetry.MetricIntervalMS) * time.Millisecond,
	})
}

// NewFactory returns a fetch.Factory seeded with FetchOptions and NewLogger.
// A nil provider leaves fetchers on the global OTel providers.
func (c *Config) NewFactory(provider observability.Provider) *fetch.Factory {
	opts := c.FetchOptions()
	if provider != nil {
		opts.TracerProvider = provider.TracerProvider()
		opts.MeterProvider = provider.MeterProvider()
	}
	return fetch.NewFactory(opts, c.NewLogger())
}
