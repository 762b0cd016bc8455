package dummy

import (
	"fmt"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"loadcompose/internal/project"
	"loadcompose/internal/runner"
)

const requestTimeoutSec = 30

// plan is a scenario resolved into runner jobs.
type plan struct {
	Scenario   string
	Users      int
	Iterations int
	Duration   time.Duration
	Jobs       []runner.Config
}

// expected is the iteration total of an iteration-bound plan.
func (p *plan) expected() uint64 {
	var n uint64
	for _, j := range p.Jobs {
		n += uint64(j.NumUsers * j.Iterations)
	}
	return n
}

func planScenario(p *project.Project, name string) (*plan, error) {
	sc, ok := p.Scenario(name)
	if !ok {
		return nil, fmt.Errorf("scenario %q not found", name)
	}
	pl := &plan{Scenario: sc.Name}

	for _, sp := range sc.Populations {
		if sp.ConstantLoad == nil {
			return nil, fmt.Errorf("population %q: only constant_load is supported", sp.Name)
		}
		iterations, d, err := parseLoadDuration(sp.ConstantLoad.Duration)
		if err != nil {
			return nil, fmt.Errorf("population %q: %w", sp.Name, err)
		}
		if iterations > pl.Iterations {
			pl.Iterations = iterations
		}
		if d > pl.Duration {
			pl.Duration = d
		}
		pl.Users += sp.ConstantLoad.Users

		pop, ok := p.Population(sp.Name)
		if !ok {
			return nil, fmt.Errorf("population %q not found", sp.Name)
		}
		for _, share := range pop.UserPaths {
			pct, err := parsePercent(share.Distribution)
			if err != nil {
				return nil, fmt.Errorf("population %q: %w", pop.Name, err)
			}
			users := shareUsers(sp.ConstantLoad.Users, pct)
			if users == 0 {
				continue
			}
			path, ok := p.UserPath(share.Name)
			if !ok {
				return nil, fmt.Errorf("user path %q not found", share.Name)
			}
			steps, err := pathSteps(p, path)
			if err != nil {
				return nil, err
			}
			pl.Jobs = append(pl.Jobs, runner.Config{
				Steps:      steps,
				TimeoutSec: requestTimeoutSec,
				NumUsers:   users,
				Iterations: iterations,
				SteadyDur:  int(math.Ceil(d.Seconds())),
			})
		}
	}
	if len(pl.Jobs) == 0 {
		return nil, fmt.Errorf("scenario %q has nothing to run", sc.Name)
	}
	return pl, nil
}

func pathSteps(p *project.Project, path *project.UserPath) ([]runner.Request, error) {
	reqs := path.Requests()
	if len(reqs) == 0 {
		return nil, fmt.Errorf("user path %q has no requests", path.Name)
	}
	steps := make([]runner.Request, 0, len(reqs))
	for _, r := range reqs {
		srv, ok := p.Server(r.Server)
		if !ok {
			return nil, fmt.Errorf("user path %q: server %q not found", path.Name, r.Server)
		}
		headers := make(map[string]string)
		for _, h := range r.Headers {
			for k, v := range h {
				headers[k] = v
			}
		}
		steps = append(steps, runner.Request{
			URL:     baseURL(srv) + r.URL,
			Method:  r.Method,
			Headers: headers,
		})
	}
	return steps, nil
}

func baseURL(s *project.Server) string {
	host := s.Host
	if s.Port != nil {
		host = net.JoinHostPort(s.Host, strconv.Itoa(*s.Port))
	}
	return s.Scheme + "://" + host
}

// parseLoadDuration accepts "<n> iteration(s)" or a Go duration such as
// "30s" or "2m".
func parseLoadDuration(s string) (int, time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, ok := strings.CutSuffix(s, " iterations"); ok {
		s = n + " iteration"
	}
	if n, ok := strings.CutSuffix(s, " iteration"); ok {
		it, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil || it < 1 {
			return 0, 0, fmt.Errorf("invalid iteration count %q", n)
		}
		return it, 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, 0, fmt.Errorf("invalid duration %q", s)
	}
	return 0, d, nil
}

func parsePercent(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil || v < 0 || v > 100 {
		return 0, fmt.Errorf("invalid distribution %q", s)
	}
	return v, nil
}

func shareUsers(users int, pct float64) int {
	if users <= 0 || pct <= 0 {
		return 0
	}
	n := int(math.Round(float64(users) * pct / 100))
	if n < 1 {
		n = 1
	}
	return n
}
