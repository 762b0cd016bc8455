// Package probe sends a single request to the benchmark target to learn
// what the report cannot get from the load test itself.
package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

const unknown = "?"

// Fields are the report values a probe can fill.
type Fields struct {
	ServerHeader  string
	TLSVersion    string
	RequestLength string
}

// Probe issues one request with the given method and headers. HEAD
// responses report Content-Length when the server sends one.
func Probe(ctx context.Context, client *http.Client, url, method string, headers map[string]string) (Fields, error) {
	f := Fields{ServerHeader: unknown, TLSVersion: unknown, RequestLength: unknown}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return f, fmt.Errorf("probe %s: %w", url, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return f, fmt.Errorf("probe %s: %w", url, err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return f, fmt.Errorf("probe %s: %w", url, err)
	}
	if n == 0 && resp.ContentLength > 0 {
		n = resp.ContentLength
	}

	if s := resp.Header.Get("Server"); s != "" {
		f.ServerHeader = s
	}
	if resp.TLS != nil {
		f.TLSVersion = tls.VersionName(resp.TLS.Version)
	}
	f.RequestLength = strconv.FormatInt(n, 10)

	log.Debug().Str("url", url).Int("status", resp.StatusCode).Str("server", f.ServerHeader).Msg("probe done")
	return f, nil
}
