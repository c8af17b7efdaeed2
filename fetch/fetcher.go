package fetch

import (
	"bytes"
	"context"
	"io"
	nethttp "net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/fetchkit/fetch/internal/tracking"
	"github.com/gaborage/fetchkit/logger"
	gotrace "github.com/gaborage/fetchkit/trace"
)

const contentTypeForm = "application/x-www-form-urlencoded"

// Fetcher performs one logical request: a GET or form POST retried on timeouts.
//
// Configuration must be set before calling Get or Post. The outcome accessors
// are meaningful only after an execution returns, and every execution replaces
// the previous outcome. A Fetcher is not safe for concurrent use.
type Fetcher struct {
	url     string
	logURL  string
	header  nethttp.Header
	cred    *Credential
	timeout time.Duration
	retries int
	delay   time.Duration

	insecureSkipVerify bool
	followRedirects    bool
	formEncoding       FormEncoding

	transport      nethttp.RoundTripper
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	recorder       *tracking.Recorder
	log            logger.Logger

	success  bool
	response *Response
	body     []byte
	attempts int
	err      *FetchError
	elapsed  time.Duration
}

// New creates a Fetcher for rawURL from a snapshot of opts.
// A nil logger discards all output.
func New(rawURL string, opts Options, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.NewNop()
	}
	opts = opts.clone()

	header := opts.Headers
	if header == nil {
		header = make(nethttp.Header)
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	f := &Fetcher{
		url:                rawURL,
		logURL:             redactURL(rawURL),
		header:             header,
		cred:               opts.Credential,
		timeout:            opts.Timeout,
		insecureSkipVerify: opts.InsecureSkipVerify,
		followRedirects:    opts.FollowRedirects,
		formEncoding:       opts.FormEncoding,
		delay:              opts.RetryDelay,
		transport:          opts.Transport,
		meterProvider:      mp,
		tracerProvider:     tp,
		recorder:           tracking.New(mp, tp),
	}
	f.SetRetries(opts.Retries)
	f.log = log.WithFields(map[string]any{"component": "fetch", "url": f.logURL})
	return f
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

// URL returns the target URL fixed at construction
func (f *Fetcher) URL() string { return f.url }

// Header returns the live header set; names are case-insensitive.
func (f *Fetcher) Header() nethttp.Header { return f.header }

// SetHeader replaces any values of the named header
func (f *Fetcher) SetHeader(name, value string) { f.header.Set(name, value) }

// AddHeader appends a value to the named header
func (f *Fetcher) AddHeader(name, value string) { f.header.Add(name, value) }

// DelHeader removes the named header
func (f *Fetcher) DelHeader(name string) { f.header.Del(name) }

// SetCredential sets the basic auth credential; nil removes it.
func (f *Fetcher) SetCredential(c *Credential) {
	if c == nil {
		f.cred = nil
		return
	}
	cred := *c
	f.cred = &cred
}

// Credential returns a copy of the configured credential, or nil.
func (f *Fetcher) Credential() *Credential {
	if f.cred == nil {
		return nil
	}
	cred := *f.cred
	return &cred
}

// SetTimeout sets the per-attempt timeout; zero disables it.
func (f *Fetcher) SetTimeout(d time.Duration) { f.timeout = d }

func (f *Fetcher) Timeout() time.Duration { return f.timeout }

// SetRetryDelay sets the pause between a timed-out attempt and the next one.
func (f *Fetcher) SetRetryDelay(d time.Duration) { f.delay = d }

func (f *Fetcher) RetryDelay() time.Duration { return f.delay }

// SetInsecureSkipVerify toggles certificate validation. See Options.InsecureSkipVerify.
func (f *Fetcher) SetInsecureSkipVerify(skip bool) { f.insecureSkipVerify = skip }

func (f *Fetcher) InsecureSkipVerify() bool { return f.insecureSkipVerify }

func (f *Fetcher) SetFollowRedirects(follow bool) { f.followRedirects = follow }

func (f *Fetcher) SetFormEncoding(enc FormEncoding) { f.formEncoding = enc }

func (f *Fetcher) Retries() int { return f.retries }

// SetRetries sets the total attempt budget. Negative values are treated as 0.
func (f *Fetcher) SetRetries(n int) {
	if n < 0 {
		n = 0
	}
	f.retries = n
}

// Success reports whether the last execution got a 200 or a 302.
func (f *Fetcher) Success() bool { return f.success }

// Response returns metadata of the last attempt that produced a response, or nil.
func (f *Fetcher) Response() *Response { return f.response }

// Body returns the body of a 200 response, or nil.
func (f *Fetcher) Body() []byte { return f.body }

// StatusCode returns the last status code, or 0 if no response arrived.
func (f *Fetcher) StatusCode() int {
	if f.response == nil {
		return 0
	}
	return f.response.StatusCode
}

// Attempts returns how many attempts the last execution made.
func (f *Fetcher) Attempts() int { return f.attempts }

// Elapsed returns the wall time of the last execution, retry delays included.
func (f *Fetcher) Elapsed() time.Duration { return f.elapsed }

// Err explains why the last execution failed. It is nil after a success.
func (f *Fetcher) Err() error {
	if f.err == nil {
		return nil
	}
	return f.err
}

// Get performs a GET and reports success.
func (f *Fetcher) Get(ctx context.Context) bool {
	return f.execute(ctx, nethttp.MethodGet, nil)
}

// Post sends fields as a form-encoded body and reports success.
// A nil or empty map sends no body.
func (f *Fetcher) Post(ctx context.Context, fields map[string]string) bool {
	return f.execute(ctx, nethttp.MethodPost, EncodeForm(fields, f.formEncoding))
}

func (f *Fetcher) reset() {
	f.success = false
	f.response = nil
	f.body = nil
	f.attempts = 0
	f.err = nil
	f.elapsed = 0
}

type attemptResult struct {
	outcome string
	resp    *nethttp.Response
	body    []byte
	err     error
}

// execute runs the retry loop. Only timeouts consume further attempts; any
// response or other failure ends the loop.
func (f *Fetcher) execute(ctx context.Context, method string, body []byte) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	f.reset()
	start := time.Now()
	ctx, span := f.recorder.StartExecution(ctx, method, f.logURL)

	client, release := f.newHTTPClient()
	defer release()

	requestID := f.header.Get(gotrace.HeaderXRequestID)
	if requestID == "" {
		requestID = gotrace.EnsureRequestID(ctx)
	}
	log := f.log.WithFields(map[string]any{"method": method, "request_id": requestID})
	ctx = gotrace.WithRequestID(ctx, requestID)

retry:
	for attempt := 0; attempt < f.retries; attempt++ {
		f.attempts = attempt + 1
		attemptStart := time.Now()
		res := f.doAttempt(ctx, client, method, body, log)
		f.recorder.RecordAttempt(ctx, method, res.outcome, time.Since(attemptStart))
		f.response = newResponse(res.resp)

		switch res.outcome {
		case tracking.OutcomeOK:
			f.body = res.body
			f.success = true
			log.Info().Int("status", res.resp.StatusCode).Int("bytes", len(res.body)).Int("attempt", f.attempts).Msg("fetch succeeded")
		case tracking.OutcomeFound:
			f.success = true
			log.Info().Int("status", res.resp.StatusCode).Str("location", res.resp.Header.Get("Location")).Msg("redirect not followed, no body fetched")
		case tracking.OutcomeStatus:
			f.err = f.newError(method, HTTPError, nil)
			log.Warn().Int("status", res.resp.StatusCode).Msg("fetch returned non-OK status")
		case tracking.OutcomeTimeout:
			if f.attempts < f.retries {
				log.Warn().Err(res.err).Int("attempt", f.attempts).Dur("retry_delay", f.delay).Msg("attempt timed out, retrying")
				if err := sleepContext(ctx, f.delay); err != nil {
					f.err = f.newError(method, CancelledError, err)
					break retry
				}
				continue
			}
			f.err = f.newError(method, TimeoutError, res.err)
			log.Warn().Err(res.err).Int("attempts", f.attempts).Msg("fetch retries exhausted")
		case tracking.OutcomeCancelled:
			f.err = f.newError(method, CancelledError, res.err)
			log.Warn().Err(res.err).Msg("fetch cancelled")
		default:
			f.err = f.newError(method, NetworkError, res.err)
			log.Error().Err(res.err).Int("attempt", f.attempts).Msg("fetch failed")
		}
		break
	}

	if f.retries == 0 {
		f.err = f.newError(method, NotAttemptedError, nil)
	}

	f.elapsed = time.Since(start)
	exec := tracking.Execution{
		Method:     method,
		Success:    f.success,
		Attempts:   f.attempts,
		StatusCode: f.StatusCode(),
		Duration:   f.elapsed,
	}
	if f.err != nil {
		exec.ErrorType = string(f.err.Type)
		exec.Err = f.err
	}
	f.recorder.EndExecution(ctx, span, exec)
	return f.success
}

func (f *Fetcher) newError(method string, errType ErrorType, err error) *FetchError {
	return &FetchError{
		Type:       errType,
		Method:     method,
		URL:        f.logURL,
		Attempts:   f.attempts,
		StatusCode: f.StatusCode(),
		Err:        err,
	}
}

// doAttempt sends one request. The response body is always closed before it returns.
func (f *Fetcher) doAttempt(ctx context.Context, client *nethttp.Client, method string, body []byte, log logger.Logger) attemptResult {
	req, err := f.buildRequest(ctx, method, body)
	if err != nil {
		return attemptResult{outcome: tracking.OutcomeError, err: err}
	}

	log.Debug().
		Int("attempt", f.attempts).
		Dur("timeout", f.timeout).
		Interface("headers", req.Header).
		Msg("sending request")

	resp, err := client.Do(req)
	if err != nil {
		// A response alongside an error comes from the redirect policy; its body is already closed.
		return f.classifyFailure(ctx, resp, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case nethttp.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return f.classifyFailure(ctx, resp, err)
		}
		return attemptResult{outcome: tracking.OutcomeOK, resp: resp, body: data}
	case nethttp.StatusFound:
		return attemptResult{outcome: tracking.OutcomeFound, resp: resp}
	default:
		return attemptResult{outcome: tracking.OutcomeStatus, resp: resp}
	}
}

func (f *Fetcher) classifyFailure(ctx context.Context, resp *nethttp.Response, err error) attemptResult {
	switch {
	case ctx.Err() != nil:
		return attemptResult{outcome: tracking.OutcomeCancelled, resp: resp, err: err}
	case isTimeout(err):
		// Partial responses are dropped on timeout so exhaustion leaves no metadata behind.
		return attemptResult{outcome: tracking.OutcomeTimeout, err: err}
	default:
		return attemptResult{outcome: tracking.OutcomeError, resp: resp, err: err}
	}
}

func (f *Fetcher) buildRequest(ctx context.Context, method string, body []byte) (*nethttp.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, f.url, reader)
	if err != nil {
		return nil, err
	}

	req.Header = f.header.Clone()
	if method == nethttp.MethodPost {
		req.Header.Set("Content-Type", contentTypeForm)
	}
	gotrace.ApplyRequestID(ctx, req.Header)

	if f.cred != nil {
		req.SetBasicAuth(f.cred.user(), f.cred.Password)
	}
	return req, nil
}
