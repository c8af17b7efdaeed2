package fetch

import (
	"context"
	"sync"

	"github.com/gaborage/fetchkit/logger"
)

// Factory creates Fetchers from a shared set of defaults.
// SetDefaults affects only Fetchers created afterward.
type Factory struct {
	mu       sync.RWMutex
	defaults Options
	log      logger.Logger
}

// NewFactory creates a Factory; a nil logger discards all output.
func NewFactory(defaults Options, log logger.Logger) *Factory {
	if log == nil {
		log = logger.NewNop()
	}
	return &Factory{defaults: defaults.clone(), log: log}
}

// Defaults returns a copy of the current defaults.
func (fa *Factory) Defaults() Options {
	fa.mu.RLock()
	defer fa.mu.RUnlock()
	return fa.defaults.clone()
}

// SetDefaults replaces the defaults used by subsequent calls to New.
func (fa *Factory) SetDefaults(opts Options) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	fa.defaults = opts.clone()
}

// New creates a Fetcher for rawURL using the current defaults.
func (fa *Factory) New(rawURL string) *Fetcher {
	return New(rawURL, fa.Defaults(), fa.log)
}

// Get fetches rawURL and returns the body, or the *FetchError on failure.
// A 302 succeeds with a nil body.
func (fa *Factory) Get(ctx context.Context, rawURL string) ([]byte, error) {
	f := fa.New(rawURL)
	if !f.Get(ctx) {
		return nil, f.Err()
	}
	return f.Body(), nil
}

// Post submits fields to rawURL and returns the body, or the *FetchError on failure.
func (fa *Factory) Post(ctx context.Context, rawURL string, fields map[string]string) ([]byte, error) {
	f := fa.New(rawURL)
	if !f.Post(ctx, fields) {
		return nil, f.Err()
	}
	return f.Body(), nil
}

// GetAsWith fetches rawURL with the factory's defaults and decodes the body into T.
func GetAsWith[T Scalar](ctx context.Context, fa *Factory, rawURL string) (T, error) {
	f := fa.New(rawURL)
	if !f.Get(ctx) {
		var zero T
		return zero, f.Err()
	}
	return As[T](f)
}

// PostAsWith posts fields with the factory's defaults and decodes the body into T.
func PostAsWith[T Scalar](ctx context.Context, fa *Factory, rawURL string, fields map[string]string) (T, error) {
	f := fa.New(rawURL)
	if !f.Post(ctx, fields) {
		var zero T
		return zero, f.Err()
	}
	return As[T](f)
}
