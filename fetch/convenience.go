package fetch

import "context"

// The functions below build a fresh Fetcher from DefaultOptions for every call
// and log nothing. Use a Factory to change defaults or attach a logger.

func defaultFactory() *Factory {
	return NewFactory(DefaultOptions(), nil)
}

// Get fetches rawURL and returns the raw body.
func Get(ctx context.Context, rawURL string) ([]byte, error) {
	return defaultFactory().Get(ctx, rawURL)
}

// GetAs fetches rawURL and decodes the body into T.
func GetAs[T Scalar](ctx context.Context, rawURL string) (T, error) {
	return GetAsWith[T](ctx, defaultFactory(), rawURL)
}

// Post submits fields to rawURL and returns the raw body.
func Post(ctx context.Context, rawURL string, fields map[string]string) ([]byte, error) {
	return defaultFactory().Post(ctx, rawURL, fields)
}

// PostAs submits fields to rawURL and decodes the body into T.
func PostAs[T Scalar](ctx context.Context, rawURL string, fields map[string]string) (T, error) {
	return PostAsWith[T](ctx, defaultFactory(), rawURL, fields)
}
