package fetch

import (
	"mime"
	nethttp "net/http"
	"strings"
)

// Response holds the status metadata of the last attempt.
// Raw is the underlying response; its body has already been read and closed.
type Response struct {
	StatusCode    int
	Status        string
	ContentType   string
	Charset       string
	ContentLength int64
	Header        nethttp.Header
	Raw           *nethttp.Response
}

func newResponse(resp *nethttp.Response) *Response {
	if resp == nil {
		return nil
	}
	mediaType, charset := parseContentType(resp.Header.Get("Content-Type"))
	return &Response{
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		ContentType:   mediaType,
		Charset:       charset,
		ContentLength: resp.ContentLength,
		Header:        resp.Header,
		Raw:           resp,
	}
}

// parseContentType splits a Content-Type header into media type and charset.
// Malformed headers keep whatever precedes the first ';' as the media type.
func parseContentType(header string) (mediaType, charset string) {
	if header == "" {
		return "", ""
	}
	mt, params, err := mime.ParseMediaType(header)
	if err != nil {
		mt, _, _ = strings.Cut(header, ";")
		return strings.ToLower(strings.TrimSpace(mt)), ""
	}
	return mt, params["charset"]
}
