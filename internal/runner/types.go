package runner

import (
	"time"
)

// Request is one step of a user iteration.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
}

// Config drives one closed-loop run. Each iteration sends URL, or every
// entry of Steps in order when Steps is set.
type Config struct {
	URL        string
	Method     string
	Headers    map[string]string
	Steps      []Request
	TimeoutSec int

	// Users loop until Iterations passes are done (per user) or SteadyDur
	// seconds elapse. Iterations wins when both are set.
	NumUsers   int
	Iterations int
	SteadyDur  int
	ThinkTime  time.Duration
}

func (c Config) TotalDuration() time.Duration {
	return time.Duration(c.SteadyDur) * time.Second
}

func (c Config) steps() []Request {
	if len(c.Steps) > 0 {
		return c.Steps
	}
	return []Request{{URL: c.URL, Method: c.Method, Headers: c.Headers}}
}

type ExperimentResult struct {
	TimeStamp   time.Time
	ServiceTime time.Duration
	Status      int
	Success     bool
	Bytes       int64
	UserID      string
	Err         error
}
