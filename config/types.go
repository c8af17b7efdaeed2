package config

// Config is the process-start configuration for fetchkit consumers.
type Config struct {
	Fetch     FetchConfig     `koanf:"fetch" json:"fetch" yaml:"fetch"`
	Log       LogConfig       `koanf:"log" json:"log" yaml:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry" json:"telemetry" yaml:"telemetry"`
}

// FetchConfig holds the default overrides applied to new Fetchers.
// Durations are in milliseconds to match the FETCH_*_MS environment variables.
type FetchConfig struct {
	TimeoutMS          int    `koanf:"timeout_ms" json:"timeout_ms" yaml:"timeout_ms" validate:"gte=0"`
	Retries            int    `koanf:"retries" json:"retries" yaml:"retries" validate:"gte=0,lte=100"`
	RetryDelayMS       int    `koanf:"retry_delay_ms" json:"retry_delay_ms" yaml:"retry_delay_ms" validate:"gte=0"`
	InsecureSkipVerify bool   `koanf:"insecure_skip_verify" json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	FollowRedirects    bool   `koanf:"follow_redirects" json:"follow_redirects" yaml:"follow_redirects"`
	FormEncoding       string `koanf:"form_encoding" json:"form_encoding" yaml:"form_encoding" validate:"oneof=legacy standard"`
	UserAgent          string `koanf:"user_agent" json:"user_agent" yaml:"user_agent"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// TelemetryConfig enables the stdout OpenTelemetry exporters.
// When disabled, fetchers report to the global OTel providers.
type TelemetryConfig struct {
	Enabled          bool   `koanf:"enabled" json:"enabled" yaml:"enabled"`
	ServiceName      string `koanf:"service_name" json:"service_name" yaml:"service_name" validate:"required_if=Enabled true"`
	ServiceVersion   string `koanf:"service_version" json:"service_version" yaml:"service_version"`
	MetricIntervalMS int    `koanf:"metric_interval_ms" json:"metric_interval_ms" yaml:"metric_interval_ms" validate:"gte=0"`
}
