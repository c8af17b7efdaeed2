package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	nethttp "net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// newHTTPClient builds the client used for every attempt of one execution.
// The returned release func drops idle connections so no sockets outlive the call.
func (f *Fetcher) newHTTPClient() (*nethttp.Client, func()) {
	base := f.transport
	release := func() {}

	if base == nil {
		t := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
		t.TLSClientConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: f.insecureSkipVerify, //#nosec G402 -- opt-out flag, see Options.InsecureSkipVerify
		}
		base = t
		release = t.CloseIdleConnections
	}

	client := &nethttp.Client{
		Timeout: f.timeout,
		Transport: otelhttp.NewTransport(base,
			otelhttp.WithTracerProvider(f.tracerProvider),
			otelhttp.WithMeterProvider(f.meterProvider),
		),
	}
	if !f.followRedirects {
		client.CheckRedirect = func(*nethttp.Request, []*nethttp.Request) error {
			return nethttp.ErrUseLastResponse
		}
	}
	return client, release
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
