package stats

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Stats holds real-time aggregated metrics for one run
type Stats struct {
	Requests uint64
	Success  uint64
	Fail     uint64
	Bytes    uint64

	Iterations     uint64
	IterationFails uint64

	ServiceTime   *Histogram
	IterationTime *Histogram

	errMu  sync.Mutex
	errors map[string]uint64
}

func NewStats() *Stats {
	return &Stats{
		ServiceTime:   NewHistogram(),
		IterationTime: NewHistogram(),
		errors:        make(map[string]uint64),
	}
}

// Add records one request. errKey groups failures in GetErrorCounts.
func (s *Stats) Add(success bool, bytes uint64, serviceTime time.Duration, errKey string) {
	atomic.AddUint64(&s.Requests, 1)
	if success {
		atomic.AddUint64(&s.Success, 1)
	} else {
		atomic.AddUint64(&s.Fail, 1)
		if errKey != "" {
			s.errMu.Lock()
			s.errors[errKey]++
			s.errMu.Unlock()
		}
	}
	atomic.AddUint64(&s.Bytes, bytes)

	s.ServiceTime.Record(serviceTime)
}

// AddIteration records one full pass over a user path.
func (s *Stats) AddIteration(ok bool, d time.Duration) {
	atomic.AddUint64(&s.Iterations, 1)
	if !ok {
		atomic.AddUint64(&s.IterationFails, 1)
	}
	s.IterationTime.Record(d)
}

func (s *Stats) Reset() {
	atomic.StoreUint64(&s.Requests, 0)
	atomic.StoreUint64(&s.Success, 0)
	atomic.StoreUint64(&s.Fail, 0)
	atomic.StoreUint64(&s.Bytes, 0)
	atomic.StoreUint64(&s.Iterations, 0)
	atomic.StoreUint64(&s.IterationFails, 0)
	s.ServiceTime.Reset()
	s.IterationTime.Reset()
	s.errMu.Lock()
	s.errors = make(map[string]uint64)
	s.errMu.Unlock()
}

func (s *Stats) RequestCount() uint64   { return atomic.LoadUint64(&s.Requests) }
func (s *Stats) FailCount() uint64      { return atomic.LoadUint64(&s.Fail) }
func (s *Stats) IterationCount() uint64 { return atomic.LoadUint64(&s.Iterations) }

func (s *Stats) ErrorRate() float64 {
	reqs := atomic.LoadUint64(&s.Requests)
	if reqs == 0 {
		return 0
	}
	fails := atomic.LoadUint64(&s.Fail)
	return (float64(fails) / float64(reqs)) * 100
}

// GetErrorCounts returns a copy of the failure counts by error.
func (s *Stats) GetErrorCounts() map[string]uint64 {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	out := make(map[string]uint64, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

func (s *Stats) GetP50Service() float64 { return s.ServiceTime.QuantileMs(50) }
func (s *Stats) GetP90Service() float64 { return s.ServiceTime.QuantileMs(90) }
func (s *Stats) GetP99Service() float64 { return s.ServiceTime.QuantileMs(99) }

// AvgServiceMs returns the mean request duration in milliseconds
func (s *Stats) AvgServiceMs() float64 {
	if s.ServiceTime.Count() == 0 {
		return 0
	}
	return s.ServiceTime.MeanMs()
}

// Statistics returns the run totals under the keys the execution service
// API uses for its statistics document.
func (s *Stats) Statistics(elapsed time.Duration) map[string]any {
	reqs := atomic.LoadUint64(&s.Requests)
	success := atomic.LoadUint64(&s.Success)
	fail := atomic.LoadUint64(&s.Fail)
	bytes := atomic.LoadUint64(&s.Bytes)
	iters := atomic.LoadUint64(&s.Iterations)
	iterFails := atomic.LoadUint64(&s.IterationFails)

	secs := elapsed.Seconds()
	perSecond := func(v uint64) float64 {
		if secs <= 0 {
			return 0
		}
		return round2(float64(v) / secs)
	}

	return map[string]any{
		"totalRequestCountSuccess":            success,
		"totalRequestCountFailure":            fail,
		"totalRequestDurationAverage":         round2(s.AvgServiceMs()),
		"totalRequestDurationPercentile50":    round2(s.GetP50Service()),
		"totalRequestDurationPercentile90":    round2(s.GetP90Service()),
		"totalRequestDurationPercentile99":    round2(s.GetP99Service()),
		"totalRequestDurationMaximum":         round2(s.ServiceTime.MaxMs()),
		"totalRequestCountPerSecond":          perSecond(reqs),
		"totalIterationCountSuccess":          iters - iterFails,
		"totalIterationCountFailure":          iterFails,
		"totalGlobalDownloadedBytes":          bytes,
		"totalGlobalDownloadedBytesPerSecond": perSecond(bytes),
		"totalGlobalCountFailure":             fail,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
