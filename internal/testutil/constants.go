// Package testutil provides shared constants and helpers for fetchkit tests.
package testutil

const (
	// TestBody is a generic response body used by echo handlers.
	TestBody = "hello, fetch"

	// TestConnectionRefused is the substring Go reports for refused dials.
	TestConnectionRefused = "connection refused"

	// TestUser and TestPassword are throwaway credentials for basic auth tests.
	TestUser     = "alice"
	TestPassword = "s3cret"
	TestDomain   = "CORP"
)
