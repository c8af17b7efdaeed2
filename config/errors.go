package config

import (
	"fmt"
	"strings"
)

// ConfigError represents a configuration error with actionable guidance.
// All error messages are lowercase following Go conventions.
//
//nolint:revive // ConfigError is intentionally named for clarity in external API usage
type ConfigError struct {
	Category string // "invalid" or "load"
	Field    string // config path, e.g. "fetch.retries"
	Message  string
	Action   string
}

func (e *ConfigError) Error() string {
	var parts []string
	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Action != "" {
		parts = append(parts, "("+e.Action+")")
	}
	return strings.Join(parts, " ")
}

// NewInvalidFieldError creates an error for an invalid configuration value.
// The action names the environment variable that overrides field, when there is one.
func NewInvalidFieldError(field, message string) *ConfigError {
	err := &ConfigError{Category: "invalid", Field: field, Message: message}
	if envVar, ok := envVarFor(field); ok {
		err.Action = fmt.Sprintf("fix %s or %s in the config file", envVar, field)
	}
	return err
}
