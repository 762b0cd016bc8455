package dummy

import (
	"context"
	"sync"
	"time"

	"loadcompose/internal/remote"
	"loadcompose/internal/runner"
	"loadcompose/internal/stats"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// run is one execution of an uploaded test.
type run struct {
	id      string
	test    string
	project string
	plan    *plan
	stats   *stats.Stats

	mu      sync.Mutex
	cancel  context.CancelFunc
	status  string
	reason  string
	started time.Time
	ended   time.Time
	done    chan struct{}
}

func newRun(test, projectName string, pl *plan) *run {
	return &run{
		id:      uuid.New().String(),
		test:    test,
		project: projectName,
		plan:    pl,
		stats:   stats.NewStats(),
		status:  remote.StatusStarting,
		done:    make(chan struct{}),
	}
}

func (r *run) start(parent context.Context, onFinish func(status string)) {
	ctx, cancel := context.WithCancel(parent)

	r.mu.Lock()
	r.cancel = cancel
	r.status = remote.StatusRunning
	r.started = time.Now()
	r.mu.Unlock()

	go func() {
		defer cancel()
		defer close(r.done)

		var wg sync.WaitGroup
		for _, job := range r.plan.Jobs {
			rn := runner.NewRunner(job, nil)
			rn.Stats = r.stats
			wg.Add(1)
			go func() {
				defer wg.Done()
				rn.Run(ctx)
			}()
		}
		wg.Wait()

		r.mu.Lock()
		r.ended = time.Now()
		if r.status == remote.StatusStopping {
			r.status = remote.StatusStopped
		} else {
			r.status = remote.StatusTerminated
			r.reason = "POLICY"
		}
		status := r.status
		r.mu.Unlock()

		log.Info().Str("result", r.id).Str("status", status).Uint64("requests", r.stats.RequestCount()).Msg("run finished")
		if onFinish != nil {
			onFinish(status)
		}
	}()
}

// stop cancels the run. It reports false when the run already ended.
func (r *run) stop(force bool) bool {
	r.mu.Lock()
	if remote.IsTerminal(r.status) {
		r.mu.Unlock()
		return false
	}
	r.status = remote.StatusStopping
	if force {
		r.reason = "CANCELLED"
	} else {
		r.reason = "MANUAL"
	}
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}

func (r *run) elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started.IsZero() {
		return 0
	}
	if !r.ended.IsZero() {
		return r.ended.Sub(r.started)
	}
	return time.Since(r.started)
}

func (r *run) progress() float64 {
	r.mu.Lock()
	status := r.status
	r.mu.Unlock()
	if remote.IsTerminal(status) {
		return 100
	}

	var pct float64
	if total := r.plan.expected(); total > 0 {
		pct = float64(r.stats.IterationCount()) / float64(total) * 100
	} else if r.plan.Duration > 0 {
		pct = r.elapsed().Seconds() / r.plan.Duration.Seconds() * 100
	}
	if pct > 99 {
		pct = 99
	}
	return pct
}

func (r *run) quality() string {
	if r.stats.FailCount() > 0 {
		return "FAILED"
	}
	return "PASSED"
}

// result is the document served for GET test-results/{id}.
func (r *run) result() map[string]any {
	elapsed := r.elapsed()
	progress := r.progress()

	r.mu.Lock()
	defer r.mu.Unlock()
	doc := map[string]any{
		"id":            r.id,
		"name":          r.test,
		"project":       r.project,
		"scenario":      r.plan.Scenario,
		"status":        r.status,
		"qualityStatus": r.quality(),
		"duration":      elapsed.Milliseconds(),
		"progress":      progress,
		"startDate":     r.started.UnixMilli(),
		"vus":           r.plan.Users,
	}
	if !r.ended.IsZero() {
		doc["endDate"] = r.ended.UnixMilli()
	}
	if r.reason != "" {
		doc["terminationReason"] = r.reason
	}
	return doc
}

func (r *run) statistics() map[string]any {
	return r.stats.Statistics(r.elapsed())
}
