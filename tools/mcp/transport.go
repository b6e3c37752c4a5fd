package mcp

import "net/http"

// headerTransport adds fixed headers to every request of an MCP session.
type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

// withHeaders wraps base so that requests carry headers. Empty names are
// skipped; base is returned as is when nothing is left to add.
func withHeaders(base http.RoundTripper, headers map[string]string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	header := make(http.Header, len(headers))
	for name, value := range headers {
		if name != "" {
			header.Set(name, value)
		}
	}
	if len(header) == 0 {
		return base
	}
	return &headerTransport{base: base, header: header}
}

// RoundTrip sends a copy of req; a RoundTripper must not modify its request.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for name, values := range t.header {
		req.Header[name] = append([]string(nil), values...)
	}
	return t.base.RoundTrip(req)
}
