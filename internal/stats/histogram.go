package stats

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// maxTrackable caps recorded durations; longer samples are clamped.
const maxTrackable = 10 * time.Minute

// Histogram records durations at microsecond resolution and reports
// them in milliseconds. Safe for concurrent use.
type Histogram struct {
	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

func NewHistogram() *Histogram {
	// 1us to 10min, 3 significant figures
	return &Histogram{hist: hdrhistogram.New(1, int64(maxTrackable/time.Microsecond), 3)}
}

func (h *Histogram) Record(d time.Duration) {
	if d > maxTrackable {
		d = maxTrackable
	}
	us := d.Microseconds()
	if us < 1 {
		us = 1
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_ = h.hist.RecordValue(us)
}

// QuantileMs takes q in percent, e.g. 99 for p99.
func (h *Histogram) QuantileMs(q float64) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return toMs(float64(h.hist.ValueAtQuantile(q)))
}

func (h *Histogram) MeanMs() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return toMs(h.hist.Mean())
}

func (h *Histogram) MaxMs() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return toMs(float64(h.hist.Max()))
}

func (h *Histogram) Count() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hist.TotalCount()
}

func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hist.Reset()
}

func toMs(us float64) float64 { return us / 1000.0 }
