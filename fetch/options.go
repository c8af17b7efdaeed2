package fetch

import (
	"fmt"
	nethttp "net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTimeout is the per-attempt timeout
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the total attempt budget
	DefaultRetries = 3

	// DefaultRetryDelay is the pause after a timed-out attempt
	DefaultRetryDelay = 1 * time.Second
)

// FormEncoding selects how Post serializes form fields.
type FormEncoding int

const (
	// FormEncodingLegacy writes key=QueryEscape(value)& for every field,
	// keeping the trailing separator and leaving keys unescaped.
	FormEncodingLegacy FormEncoding = iota
	// FormEncodingStandard uses url.Values encoding.
	FormEncodingStandard
)

func (e FormEncoding) String() string {
	switch e {
	case FormEncodingLegacy:
		return "legacy"
	case FormEncodingStandard:
		return "standard"
	default:
		return fmt.Sprintf("FormEncoding(%d)", int(e))
	}
}

// ParseFormEncoding maps "legacy" or "standard" to a FormEncoding.
func ParseFormEncoding(s string) (FormEncoding, error) {
	switch s {
	case "", "legacy":
		return FormEncodingLegacy, nil
	case "standard":
		return FormEncodingStandard, nil
	default:
		return FormEncodingLegacy, fmt.Errorf("unknown form encoding %q", s)
	}
}

// Credential is passed through as HTTP basic auth.
// A non-empty Domain is sent as DOMAIN\Username.
type Credential struct {
	Username string
	Password string
	Domain   string
}

func (c *Credential) user() string {
	if c.Domain == "" {
		return c.Username
	}
	return c.Domain + `\` + c.Username
}

// Options configures new Fetchers. Fetchers copy it at construction, so
// changing an Options value later never affects existing Fetchers.
type Options struct {
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration

	// InsecureSkipVerify accepts any server certificate.
	// SECURITY: it defaults to true to match the behavior existing callers rely on,
	// which exposes HTTPS traffic to interception. Set it to false wherever possible.
	InsecureSkipVerify bool

	// FollowRedirects lets the transport follow redirects transparently.
	// When false a 302 is returned to the fetcher and counted as success without a body.
	FollowRedirects bool

	FormEncoding FormEncoding

	// Headers and Credential are copied into each new Fetcher
	Headers    nethttp.Header
	Credential *Credential

	// Transport overrides the base round tripper. TLS and proxy settings are then
	// the caller's responsibility and InsecureSkipVerify is ignored.
	Transport nethttp.RoundTripper

	// MeterProvider and TracerProvider default to the global OTel providers
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:            DefaultTimeout,
		Retries:            DefaultRetries,
		RetryDelay:         DefaultRetryDelay,
		InsecureSkipVerify: true,
		FollowRedirects:    true,
		FormEncoding:       FormEncodingLegacy,
	}
}

// clone returns a copy that shares no mutable state with o.
func (o Options) clone() Options {
	c := o
	if o.Headers != nil {
		c.Headers = o.Headers.Clone()
	}
	if o.Credential != nil {
		cred := *o.Credential
		c.Credential = &cred
	}
	return c
}
