package runner

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"loadcompose/internal/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StatsSnapshot is sent over the channel
type StatsSnapshot struct {
	Requests uint64
	Success  uint64
	Fail     uint64
	Bytes    uint64
	Inflight int64

	P50ServiceMs float64
	P90ServiceMs float64
	P99ServiceMs float64
	MaxServiceMs float64
}

// StatsUpdateChan is the channel type
type StatsUpdateChan chan StatsSnapshot

type Runner struct {
	Cfg    Config
	Stats  *stats.Stats
	Client *http.Client

	inflight int64
	started  time.Time

	// Event Channel
	Updates StatsUpdateChan
}

func NewRunner(cfg Config, updates StatsUpdateChan) *Runner {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxConnsPerHost = 2000
	t.MaxIdleConnsPerHost = 2000
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	client := &http.Client{
		Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		Transport: t,
	}

	if updates == nil {
		// Avoid nil panics if not provided
		updates = make(StatsUpdateChan, 10)
	}
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	if cfg.NumUsers < 1 {
		cfg.NumUsers = 1
	}

	return &Runner{
		Cfg:     cfg,
		Stats:   stats.NewStats(),
		Client:  client,
		Updates: updates,
	}
}

// StartTickLoop starts a goroutine that pushes stats updates
func (r *Runner) StartTickLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.sendUpdate()
			}
		}
	}()
}

func (r *Runner) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Requests:     atomic.LoadUint64(&r.Stats.Requests),
		Success:      atomic.LoadUint64(&r.Stats.Success),
		Fail:         atomic.LoadUint64(&r.Stats.Fail),
		Bytes:        atomic.LoadUint64(&r.Stats.Bytes),
		Inflight:     atomic.LoadInt64(&r.inflight),
		P50ServiceMs: r.Stats.GetP50Service(),
		P90ServiceMs: r.Stats.GetP90Service(),
		P99ServiceMs: r.Stats.GetP99Service(),
		MaxServiceMs: r.Stats.ServiceTime.MaxMs(),
	}
}

func (r *Runner) sendUpdate() {
	// Non-blocking send
	select {
	case r.Updates <- r.Snapshot():
	default:
		// Drop update if channel full, UI acts as backpressure
	}
}

// Run blocks until every user is done or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	r.started = time.Now()
	tickCtx, stop := context.WithCancel(ctx)
	defer stop()
	r.StartTickLoop(tickCtx, 200*time.Millisecond)

	log.Debug().
		Str("url", r.Cfg.URL).
		Int("users", r.Cfg.NumUsers).
		Int("iterations", r.Cfg.Iterations).
		Int("duration_s", r.Cfg.SteadyDur).
		Msg("runner started")

	r.runUsers(ctx)
	r.sendUpdate()
}

func (r *Runner) runUsers(ctx context.Context) {
	var wg sync.WaitGroup
	totalDur := r.Cfg.TotalDuration()
	steps := r.Cfg.steps()

	for i := 0; i < r.Cfg.NumUsers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := uuid.New().String()
			for n := 0; ; n++ {
				if r.Cfg.Iterations > 0 {
					if n >= r.Cfg.Iterations {
						return
					}
				} else if time.Since(r.started) >= totalDur {
					return
				}
				select {
				case <-ctx.Done():
					return
				default:
				}

				start := time.Now()
				ok := true
				for _, step := range steps {
					if res := r.executeRequest(ctx, step, userID); !res.Success {
						ok = false
					}
				}
				r.Stats.AddIteration(ok, time.Since(start))

				if r.Cfg.ThinkTime > 0 {
					select {
					case <-ctx.Done():
						return
					case <-time.After(r.Cfg.ThinkTime):
					}
				}
			}
		}()
	}
	wg.Wait()
}

func (r *Runner) executeRequest(ctx context.Context, step Request, userID string) ExperimentResult {
	atomic.AddInt64(&r.inflight, 1)
	defer atomic.AddInt64(&r.inflight, -1)

	start := time.Now()
	res := ExperimentResult{TimeStamp: start, UserID: userID}

	method := step.Method
	if method == "" {
		method = r.Cfg.Method
	}
	req, err := http.NewRequestWithContext(ctx, method, step.URL, nil)
	if err == nil {
		for k, v := range step.Headers {
			if strings.EqualFold(k, "Host") {
				req.Host = v
				continue
			}
			req.Header.Set(k, v)
		}
		var resp *http.Response
		resp, err = r.Client.Do(req)
		if err == nil {
			res.Status = resp.StatusCode
			n, _ := io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			res.Bytes = n
			res.Success = resp.StatusCode >= 200 && resp.StatusCode < 400
		}
	}
	res.ServiceTime = time.Since(start)
	res.Err = err

	errKey := ""
	switch {
	case err != nil:
		errKey = err.Error()
	case !res.Success:
		errKey = fmt.Sprintf("HTTP %d", res.Status)
	}
	r.Stats.Add(res.Success, uint64(res.Bytes), res.ServiceTime, errKey)
	return res
}

func (r *Runner) GetInflight() int64 {
	return atomic.LoadInt64(&r.inflight)
}
