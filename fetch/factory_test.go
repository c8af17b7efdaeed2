package fetch

import (
	"context"
	"io"
	nethttp "net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryDefaultsIsolation(t *testing.T) {
	factory := NewFactory(testOptions(3), createTestLogger())

	before := factory.New("http://example.test")

	updated := factory.Defaults()
	updated.Retries = 9
	updated.Timeout = time.Minute
	updated.RetryDelay = 5 * time.Second
	factory.SetDefaults(updated)

	after := factory.New("http://example.test")

	assert.Equal(t, 3, before.Retries())
	assert.Equal(t, 2*time.Second, before.Timeout())
	assert.Equal(t, 10*time.Millisecond, before.RetryDelay())

	assert.Equal(t, 9, after.Retries())
	assert.Equal(t, time.Minute, after.Timeout())
	assert.Equal(t, 5*time.Second, after.RetryDelay())
}

func TestFactoryDefaultsAreCopies(t *testing.T) {
	opts := testOptions(1)
	opts.Headers = nethttp.Header{"X-A": {"1"}}
	factory := NewFactory(opts, nil)

	opts.Headers.Set("X-A", "2")
	got := factory.Defaults()
	assert.Equal(t, "1", got.Headers.Get("X-A"))

	got.Headers.Set("X-A", "3")
	assert.Equal(t, "1", factory.New("http://example.test").Header().Get("X-A"))
}

func TestFactoryConcurrentUse(t *testing.T) {
	factory := NewFactory(testOptions(1), nil)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			opts := factory.Defaults()
			opts.Retries = i
			factory.SetDefaults(opts)
		}()
		go func() {
			defer wg.Done()
			_ = factory.New("http://example.test")
		}()
	}
	wg.Wait()
}

func TestFactoryGetAndPost(t *testing.T) {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/number", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		_, _ = io.WriteString(w, "42")
	})
	mux.HandleFunc("/echo", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.NoError(t, r.ParseForm())
		_, _ = io.WriteString(w, r.PostForm.Get("n"))
	})
	mux.HandleFunc("/missing", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.WriteHeader(nethttp.StatusNotFound)
	})
	server := newIPv4TestServer(t, mux)
	factory := NewFactory(testOptions(2), createTestLogger())
	ctx := context.Background()

	body, err := factory.Get(ctx, server.URL+"/number")
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), body)

	n, err := GetAsWith[int](ctx, factory, server.URL+"/number")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	body, err = factory.Post(ctx, server.URL+"/echo", map[string]string{"n": "7"})
	require.NoError(t, err)
	assert.Equal(t, []byte("7"), body)

	f, err := PostAsWith[float64](ctx, factory, server.URL+"/echo", map[string]string{"n": "2.5"})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f, 1e-9)

	_, err = factory.Get(ctx, server.URL+"/missing")
	assert.True(t, IsHTTPStatusError(err, nethttp.StatusNotFound))

	_, err = GetAsWith[int](ctx, factory, server.URL+"/missing")
	assert.True(t, IsErrorType(err, HTTPError))
}

func TestConvenienceFunctions(t *testing.T) {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/number", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		_, _ = io.WriteString(w, "42")
	})
	mux.HandleFunc("/word", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		_, _ = io.WriteString(w, "forty-two")
	})
	mux.HandleFunc("/form", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})
	server := newIPv4TestServer(t, mux)
	ctx := context.Background()

	body, err := Get(ctx, server.URL+"/number")
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), body)

	n, err := GetAs[int](ctx, server.URL+"/number")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = GetAs[int](ctx, server.URL+"/word")
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "int", convErr.Target)

	echoed, err := Post(ctx, server.URL+"/form", map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)
	assert.Equal(t, "a=1&b=2&", string(echoed))

	text, err := PostAs[string](ctx, server.URL+"/form", map[string]string{"q": "x y"})
	require.NoError(t, err)
	assert.Equal(t, "q=x+y&", text)
}

func TestConvenienceNetworkFailure(t *testing.T) {
	_, err := Get(context.Background(), closedPortURL(t))
	assert.True(t, IsErrorType(err, NetworkError))

	_, err = PostAs[int](context.Background(), closedPortURL(t), nil)
	assert.True(t, IsErrorType(err, NetworkError))
}
