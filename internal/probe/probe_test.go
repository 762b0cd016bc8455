package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_Plain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v", r.Header.Get("X-Test"))
		w.Header().Set("Server", "nginx/1.25")
		w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	f, err := Probe(context.Background(), srv.Client(), srv.URL, http.MethodGet, map[string]string{"X-Test": "v"})
	require.NoError(t, err)
	assert.Equal(t, "nginx/1.25", f.ServerHeader)
	assert.Equal(t, "?", f.TLSVersion)
	assert.Equal(t, "10", f.RequestLength)
}

func TestProbe_TLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f, err := Probe(context.Background(), srv.Client(), srv.URL, http.MethodGet, nil)
	require.NoError(t, err)
	assert.Contains(t, f.TLSVersion, "TLS 1.")
	assert.Equal(t, "?", f.ServerHeader)
	assert.Equal(t, "2", f.RequestLength)
}

func TestProbe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f, err := Probe(context.Background(), nil, url, http.MethodGet, nil)
	assert.Error(t, err)
	assert.Equal(t, "?", f.RequestLength)
}
