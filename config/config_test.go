package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/fetchkit/fetch"
	"github.com/gaborage/fetchkit/observability"
)

func clearFetchEnv(t *testing.T) {
	t.Helper()
	for key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv(envConfigFile, "")
	os.Unsetenv(envConfigFile)
}

func TestLoadDefaults(t *testing.T) {
	clearFetchEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30000, cfg.Fetch.TimeoutMS)
	assert.Equal(t, 3, cfg.Fetch.Retries)
	assert.Equal(t, 1000, cfg.Fetch.RetryDelayMS)
	assert.True(t, cfg.Fetch.InsecureSkipVerify)
	assert.True(t, cfg.Fetch.FollowRedirects)
	assert.Equal(t, "legacy", cfg.Fetch.FormEncoding)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.Pretty)

	opts := cfg.FetchOptions()
	assert.Equal(t, fetch.DefaultOptions().Timeout, opts.Timeout)
	assert.Equal(t, fetch.DefaultOptions().RetryDelay, opts.RetryDelay)
	assert.Nil(t, opts.Headers)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearFetchEnv(t)
	t.Setenv("FETCH_TIMEOUT_MS", "250")
	t.Setenv("FETCH_RETRIES", "5")
	t.Setenv("FETCH_RETRY_DELAY_MS", "20")
	t.Setenv("FETCH_INSECURE_SKIP_VERIFY", "false")
	t.Setenv("FETCH_FOLLOW_REDIRECTS", "false")
	t.Setenv("FETCH_FORM_ENCODING", "standard")
	t.Setenv("FETCH_USER_AGENT", "fetchkit-test")
	t.Setenv("FETCH_LOG_LEVEL", "debug")
	t.Setenv("FETCH_UNRELATED", "ignored")

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.FetchOptions()
	assert.Equal(t, 250*time.Millisecond, opts.Timeout)
	assert.Equal(t, 5, opts.Retries)
	assert.Equal(t, 20*time.Millisecond, opts.RetryDelay)
	assert.False(t, opts.InsecureSkipVerify)
	assert.False(t, opts.FollowRedirects)
	assert.Equal(t, fetch.FormEncodingStandard, opts.FormEncoding)
	assert.Equal(t, "fetchkit-test", opts.Headers.Get("User-Agent"))
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	clearFetchEnv(t)
	path := filepath.Join(t.TempDir(), "fetch.yaml")
	yamlContent := `
fetch:
  timeout_ms: 1500
  retries: 1
  form_encoding: standard
log:
  level: warn
  pretty: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1500, cfg.Fetch.TimeoutMS)
	assert.Equal(t, 1, cfg.Fetch.Retries)
	assert.Equal(t, 1000, cfg.Fetch.RetryDelayMS, "unset keys keep defaults")
	assert.Equal(t, "standard", cfg.Fetch.FormEncoding)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoadFileFromEnvironmentWithOverride(t *testing.T) {
	clearFetchEnv(t)
	path := filepath.Join(t.TempDir(), "fetch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch:\n  retries: 7\n"), 0o600))
	t.Setenv(envConfigFile, path)
	t.Setenv("FETCH_RETRIES", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Fetch.Retries, "environment wins over the file")
}

func TestLoadFileMissing(t *testing.T) {
	clearFetchEnv(t)

	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "load", cfgErr.Category)
}

func TestLoadBytes(t *testing.T) {
	clearFetchEnv(t)

	cfg, err := LoadBytes([]byte("fetch:\n  retry_delay_ms: 0\n  follow_redirects: false\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Fetch.RetryDelayMS)
	assert.False(t, cfg.Fetch.FollowRedirects)
}

func TestLoadBytesInvalidYAML(t *testing.T) {
	clearFetchEnv(t)

	_, err := LoadBytes([]byte("fetch: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config_load:")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearFetchEnv(t)
	t.Setenv("FETCH_RETRIES", "-1")
	t.Setenv("FETCH_FORM_ENCODING", "multipart")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "invalid", cfgErr.Category)
	assert.Contains(t, err.Error(), "fetch.retries must be >= 0")
	assert.Contains(t, err.Error(), "fetch.form_encoding must be one of [legacy standard]")
	assert.Contains(t, err.Error(), "FETCH_RETRIES")
}

func TestLoadRejectsNonNumericEnvironment(t *testing.T) {
	clearFetchEnv(t)
	t.Setenv("FETCH_TIMEOUT_MS", "soon")

	_, err := Load()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "invalid", cfgErr.Category)
}

func TestNewFactoryUsesLoadedDefaults(t *testing.T) {
	clearFetchEnv(t)
	t.Setenv("FETCH_RETRIES", "4")

	cfg, err := Load()
	require.NoError(t, err)

	factory := cfg.NewFactory(nil)
	assert.Equal(t, 4, factory.Defaults().Retries)
	assert.Nil(t, factory.Defaults().TracerProvider)
	assert.NotNil(t, cfg.NewLogger())
}

func TestTelemetryDisabledByDefault(t *testing.T) {
	clearFetchEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "fetchkit", cfg.Telemetry.ServiceName)
	assert.Equal(t, 30000, cfg.Telemetry.MetricIntervalMS)
}

func TestNewTelemetryWiresFactory(t *testing.T) {
	clearFetchEnv(t)
	t.Setenv("FETCH_TELEMETRY_ENABLED", "true")
	t.Setenv("FETCH_SERVICE_NAME", "orders")
	t.Setenv("FETCH_METRIC_INTERVAL_MS", "3600000")

	cfg, err := Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	provider, err := cfg.NewTelemetry(&buf)
	require.NoError(t, err)

	factory := cfg.NewFactory(provider)
	assert.Same(t, provider.TracerProvider(), factory.Defaults().TracerProvider)

	require.NoError(t, observability.Shutdown(provider, time.Second))
}

func TestTelemetryRequiresServiceName(t *testing.T) {
	clearFetchEnv(t)
	t.Setenv("FETCH_TELEMETRY_ENABLED", "true")
	t.Setenv("FETCH_SERVICE_NAME", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telemetry.service_name is required")
}
