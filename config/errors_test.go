package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		expected string
	}{
		{
			name:     "invalid_field_with_env_var",
			err:      NewInvalidFieldError("fetch.retries", "must be >= 0, got -1"),
			expected: "config_invalid: fetch.retries must be >= 0, got -1 (fix FETCH_RETRIES or fetch.retries in the config file)",
		},
		{
			name:     "invalid_field_without_env_var",
			err:      NewInvalidFieldError("fetch", "failed required validation"),
			expected: "config_invalid: fetch failed required validation",
		},
		{
			name:     "load_error",
			err:      &ConfigError{Category: "load", Field: "app.yaml", Message: "no such file"},
			expected: "config_load: app.yaml no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
