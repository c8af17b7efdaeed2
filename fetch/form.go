package fetch

import (
	"net/url"
	"slices"
	"strings"
)

// EncodeForm serializes fields as an application/x-www-form-urlencoded body.
// Keys are written in sorted order. A nil or empty map yields a nil body.
//
// FormEncodingLegacy reproduces the wire format existing consumers expect:
// keys are written verbatim and every pair ends with '&', so "a=1&b=2&".
func EncodeForm(fields map[string]string, encoding FormEncoding) []byte {
	if len(fields) == 0 {
		return nil
	}

	if encoding == FormEncodingStandard {
		values := make(url.Values, len(fields))
		for k, v := range fields {
			values.Set(k, v)
		}
		return []byte(values.Encode())
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(fields[k]))
		b.WriteByte('&')
	}
	return []byte(b.String())
}
