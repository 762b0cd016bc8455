package remote

import (
	"encoding/json"
	"strings"
)

// Result statuses reported by the execution service.
const (
	StatusStarting   = "STARTING"
	StatusRunning    = "RUNNING"
	StatusStopping   = "STOPPING"
	StatusTerminated = "TERMINATED"
	StatusFailed     = "FAILED"
	StatusStopped    = "STOPPED"
)

// Stop policies.
const (
	StopGraceful  = "GRACEFUL"
	StopTerminate = "TERMINATE"
)

type ScenarioInfo struct {
	Name string `json:"scenarioName"`
	VUs  int    `json:"scenarioVUs"`
}

type ProjectInfo struct {
	ProjectName string         `json:"projectName"`
	Scenarios   []ScenarioInfo `json:"scenarios"`
}

// Primary returns the first scenario, the one a run uses by default.
func (p *ProjectInfo) Primary() (ScenarioInfo, bool) {
	if len(p.Scenarios) == 0 {
		return ScenarioInfo{}, false
	}
	return p.Scenarios[0], true
}

type RunRequest struct {
	NameOrID string `json:"-"`
	Scenario string `json:"scenarioName,omitempty"`
	WebVU    int    `json:"reservationWebVUs"`
}

type runResponse struct {
	ResultID string `json:"resultId"`
}

type Status struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	QualityStatus string  `json:"qualityStatus"`
	Duration      int64   `json:"duration"`
	Progress      float64 `json:"progress"`
}

func IsTerminal(status string) bool {
	switch strings.ToUpper(status) {
	case StatusTerminated, StatusFailed, StatusStopped:
		return true
	}
	return false
}

// Summary holds the raw result and statistics documents of a run.
type Summary struct {
	Result     map[string]any
	Statistics map[string]any
}

// Maps returns the documents keyed by report category.
func (s *Summary) Maps() map[string]map[string]any {
	return map[string]map[string]any{
		"result":     s.Result,
		"statistics": s.Statistics,
	}
}

// Int reads a numeric statistics field, 0 when absent.
func (s *Summary) Int(key string) uint64 { return Uint(s.Statistics, key) }

// Float reads a numeric statistics field, 0 when absent.
func (s *Summary) Float(key string) float64 { return Float(s.Statistics, key) }

// Uint reads a non-negative number from a decoded document.
func Uint(doc map[string]any, key string) uint64 {
	switch v := doc[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil && n >= 0 {
			return uint64(n)
		}
		if f, err := v.Float64(); err == nil && f >= 0 {
			return uint64(f)
		}
	case float64:
		if v >= 0 {
			return uint64(v)
		}
	}
	return 0
}

// Float reads a number from a decoded document.
func Float(doc map[string]any, key string) float64 {
	switch v := doc[key].(type) {
	case json.Number:
		f, _ := v.Float64()
		return f
	case float64:
		return v
	}
	return 0
}
