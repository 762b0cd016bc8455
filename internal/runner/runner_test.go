package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Iterations(t *testing.T) {
	var hits int64
	var gotMethod, gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		gotMethod.Store(r.Method)
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	r := NewRunner(Config{
		URL:        srv.URL,
		Method:     http.MethodPost,
		Headers:    map[string]string{"Authorization": "Basic dTpw"},
		TimeoutSec: 5,
		NumUsers:   3,
		Iterations: 4,
	}, nil)
	r.Run(context.Background())

	assert.Equal(t, int64(12), atomic.LoadInt64(&hits))
	assert.Equal(t, uint64(12), r.Stats.Success)
	assert.Equal(t, uint64(12), r.Stats.Iterations)
	assert.Equal(t, uint64(60), r.Stats.Bytes)
	assert.Equal(t, http.MethodPost, gotMethod.Load())
	assert.Equal(t, "Basic dTpw", gotAuth.Load())
	assert.Equal(t, int64(0), r.GetInflight())
}

func TestRunner_FailuresCounted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRunner(Config{URL: srv.URL, TimeoutSec: 5, NumUsers: 1, Iterations: 2}, nil)
	r.Run(context.Background())

	assert.Equal(t, uint64(2), r.Stats.Fail)
	assert.Equal(t, uint64(2), r.Stats.IterationFails)
	assert.Equal(t, map[string]uint64{"HTTP 500": 2}, r.Stats.GetErrorCounts())
}

func TestRunner_DurationAndCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	r := NewRunner(Config{URL: srv.URL, TimeoutSec: 5, NumUsers: 2, SteadyDur: 60, ThinkTime: 10 * time.Millisecond}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "runner did not stop on cancel")
	}
	assert.Greater(t, r.Stats.Requests, uint64(0))
}

func TestRunner_Defaults(t *testing.T) {
	r := NewRunner(Config{URL: "http://localhost"}, nil)
	assert.Equal(t, http.MethodGet, r.Cfg.Method)
	assert.Equal(t, 1, r.Cfg.NumUsers)
	assert.NotNil(t, r.Updates)
}

func TestRunner_Steps(t *testing.T) {
	var a, b int64
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) { atomic.AddInt64(&a, 1) })
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&b, 1)
		assert.Equal(t, http.MethodHead, r.Method)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewRunner(Config{
		Steps: []Request{
			{URL: srv.URL + "/a"},
			{URL: srv.URL + "/b", Method: http.MethodHead},
		},
		TimeoutSec: 5,
		NumUsers:   2,
		Iterations: 3,
	}, nil)
	r.Run(context.Background())

	assert.Equal(t, int64(6), atomic.LoadInt64(&a))
	assert.Equal(t, int64(6), atomic.LoadInt64(&b))
	assert.Equal(t, uint64(12), r.Stats.Requests)
	assert.Equal(t, uint64(6), r.Stats.Iterations)
}
