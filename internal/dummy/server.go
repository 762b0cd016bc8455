// Package dummy is a local stand-in for the execution service. It accepts
// project uploads, runs constant-load scenarios against real targets and
// serves a few sample endpoints to aim them at.
package dummy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type ServerConfig struct {
	Port int
}

type Service struct {
	mu      sync.RWMutex
	tests   map[string]*uploadedTest
	results map[string]*run

	metrics *metrics
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewService() *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		tests:   make(map[string]*uploadedTest),
		results: make(map[string]*run),
		metrics: newMetrics(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close stops every active run.
func (s *Service) Close() {
	s.cancel()
}

func (s *Service) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/v3/workspaces/{workspace}").Subrouter()
	api.HandleFunc("/tests/{test}/project", s.handleUpload).Methods("POST")
	api.HandleFunc("/tests/{test}/execute", s.handleExecute).Methods("POST")
	api.HandleFunc("/test-results/{id}", s.handleResult).Methods("GET")
	api.HandleFunc("/test-results/{id}/statistics", s.handleStatistics).Methods("GET")
	api.HandleFunc("/test-results/{id}/stop", s.handleStop).Methods("POST")

	sample := router.PathPrefix("/sample").Subrouter()
	sample.HandleFunc("/fast", s.metrics.instrument("fast", fastHandler))
	sample.HandleFunc("/medium", s.metrics.instrument("medium", mediumHandler))
	sample.HandleFunc("/slow", s.metrics.instrument("slow", slowHandler))
	sample.HandleFunc("/spike", s.metrics.instrument("spike", spikeHandler))
	sample.HandleFunc("/error", s.metrics.instrument("error", errorHandler))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	router.Handle("/metrics", s.metrics.handler()).Methods("GET")

	return router
}

// Start serves the dummy service in the background.
func Start(cfg ServerConfig) (*http.Server, *Service) {
	svc := NewService()
	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Printf("👻 Dummy Server running on http://localhost%s\n", addr)
	fmt.Println("   API:       /v3/workspaces/{workspace}/...")
	fmt.Println("   Endpoints: /sample/fast, /sample/medium, /sample/slow, /sample/spike, /sample/error")
	fmt.Println("   Metrics:   /metrics")

	server := &http.Server{
		Addr:              addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("dummy server failed")
		}
	}()
	return server, svc
}

// 10-50ms
func fastHandler(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(rand.Intn(40)+10) * time.Millisecond)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Fast response"))
}

// 100-300ms
func mediumHandler(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(rand.Intn(200)+100) * time.Millisecond)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Medium response"))
}

// 1s-2s, useful for timeouts
func slowHandler(w http.ResponseWriter, r *http.Request) {
	time.Sleep(time.Duration(rand.Intn(1000)+1000) * time.Millisecond)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Slow response"))
}

// Usually fast, 5% of requests take 2s. P99 will be terrible, P50 fine.
func spikeHandler(w http.ResponseWriter, r *http.Request) {
	if rand.Float32() < 0.05 {
		time.Sleep(2 * time.Second)
	} else {
		time.Sleep(20 * time.Millisecond)
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Spikey response"))
}

func errorHandler(w http.ResponseWriter, r *http.Request) {
	rnd := rand.Float32()
	switch {
	case rnd < 0.2:
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("500 Internal Server Error"))
	case rnd < 0.4:
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("429 Too Many Requests"))
	default:
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
