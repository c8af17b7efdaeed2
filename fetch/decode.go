package fetch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

var errEmptyBody = errors.New("empty body")

// Scalar is the closed set of types a response body can be decoded into.
type Scalar interface {
	[]byte | string | int | int64 | uint64 | float64 | bool | time.Duration
}

// DecodeBytes returns body unchanged.
func DecodeBytes(body []byte) []byte {
	return body
}

// DecodeText decodes body using the declared charset label, UTF-8 when empty.
// An absent body decodes to "".
func DecodeText(body []byte, charsetLabel string) (string, error) {
	if len(body) == 0 {
		return "", nil
	}
	label := strings.TrimSpace(charsetLabel)
	if label == "" {
		return string(body), nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return "", &ConversionError{Target: "string", Err: fmt.Errorf("unsupported charset %q", label)}
	}
	if name == "utf-8" {
		return string(body), nil
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", &ConversionError{Target: "string", Err: fmt.Errorf("decode %s: %w", name, err)}
	}
	return string(decoded), nil
}

// scalarText decodes body to trimmed text for numeric and boolean parsing.
func scalarText(body []byte, charsetLabel, target string) (string, error) {
	text, err := DecodeText(body, charsetLabel)
	if err != nil {
		var convErr *ConversionError
		if errors.As(err, &convErr) {
			return "", &ConversionError{Target: target, Err: convErr.Err}
		}
		return "", &ConversionError{Target: target, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ConversionError{Target: target, Err: errEmptyBody}
	}
	return text, nil
}

// DecodeInt parses the body as a base-10 int.
func DecodeInt(body []byte, charsetLabel string) (int, error) {
	text, err := scalarText(body, charsetLabel, "int")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, &ConversionError{Target: "int", Err: err}
	}
	return n, nil
}

// DecodeInt64 parses the body as a base-10 int64.
func DecodeInt64(body []byte, charsetLabel string) (int64, error) {
	text, err := scalarText(body, charsetLabel, "int64")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &ConversionError{Target: "int64", Err: err}
	}
	return n, nil
}

// DecodeUint64 parses the body as a base-10 uint64.
func DecodeUint64(body []byte, charsetLabel string) (uint64, error) {
	text, err := scalarText(body, charsetLabel, "uint64")
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, &ConversionError{Target: "uint64", Err: err}
	}
	return n, nil
}

// DecodeFloat64 parses the body as a float64.
func DecodeFloat64(body []byte, charsetLabel string) (float64, error) {
	text, err := scalarText(body, charsetLabel, "float64")
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, &ConversionError{Target: "float64", Err: err}
	}
	return v, nil
}

// DecodeBool parses the body with strconv.ParseBool rules.
func DecodeBool(body []byte, charsetLabel string) (bool, error) {
	text, err := scalarText(body, charsetLabel, "bool")
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(text)
	if err != nil {
		return false, &ConversionError{Target: "bool", Err: err}
	}
	return v, nil
}

// DecodeDuration parses the body as a Go duration such as "1.5s".
func DecodeDuration(body []byte, charsetLabel string) (time.Duration, error) {
	text, err := scalarText(body, charsetLabel, "time.Duration")
	if err != nil {
		return 0, err
	}
	d, err := time.ParseDuration(text)
	if err != nil {
		return 0, &ConversionError{Target: "time.Duration", Err: err}
	}
	return d, nil
}

// Decode converts body into T by dispatching to the matching DecodeX function.
func Decode[T Scalar](body []byte, charsetLabel string) (T, error) {
	var zero T
	var (
		out any
		err error
	)

	switch any(zero).(type) {
	case []byte:
		out = DecodeBytes(body)
	case string:
		out, err = DecodeText(body, charsetLabel)
	case int:
		out, err = DecodeInt(body, charsetLabel)
	case int64:
		out, err = DecodeInt64(body, charsetLabel)
	case uint64:
		out, err = DecodeUint64(body, charsetLabel)
	case float64:
		out, err = DecodeFloat64(body, charsetLabel)
	case bool:
		out, err = DecodeBool(body, charsetLabel)
	case time.Duration:
		out, err = DecodeDuration(body, charsetLabel)
	}
	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// As decodes the fetcher's stored body into T using the response charset.
func As[T Scalar](f *Fetcher) (T, error) {
	return Decode[T](f.body, f.charset())
}

func (f *Fetcher) charset() string {
	if f.response == nil {
		return ""
	}
	return f.response.Charset
}

// Text decodes the stored body as text.
func (f *Fetcher) Text() (string, error) { return DecodeText(f.body, f.charset()) }

// Int decodes the stored body as an int.
func (f *Fetcher) Int() (int, error) { return DecodeInt(f.body, f.charset()) }

// Int64 decodes the stored body as an int64.
func (f *Fetcher) Int64() (int64, error) { return DecodeInt64(f.body, f.charset()) }

// Float64 decodes the stored body as a float64.
func (f *Fetcher) Float64() (float64, error) { return DecodeFloat64(f.body, f.charset()) }

// Bool decodes the stored body as a bool.
func (f *Fetcher) Bool() (bool, error) { return DecodeBool(f.body, f.charset()) }

// Bytes returns the stored body unchanged.
func (f *Fetcher) Bytes() []byte { return DecodeBytes(f.body) }

// Uint64 decodes the stored body as a uint64.
func (f *Fetcher) Uint64() (uint64, error) { return DecodeUint64(f.body, f.charset()) }

// Duration decodes the stored body as a time.Duration.
func (f *Fetcher) Duration() (time.Duration, error) { return DecodeDuration(f.body, f.charset()) }
