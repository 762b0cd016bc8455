package live

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"loadcompose/internal/remote"
)

func TestFromRemote(t *testing.T) {
	st := &remote.Status{Status: remote.StatusRunning, QualityStatus: "PASSED", Progress: 40, Duration: 2500}
	stats := map[string]any{
		"totalRequestCountSuccess":    json.Number("90"),
		"totalRequestCountFailure":    json.Number("10"),
		"totalGlobalDownloadedBytes":  json.Number("2048"),
		"totalRequestDurationAverage": json.Number("12.5"),
	}

	snap := FromRemote(st, stats)
	assert.Equal(t, uint64(100), snap.Requests)
	assert.Equal(t, uint64(10), snap.Fail)
	assert.Equal(t, uint64(2048), snap.Bytes)
	assert.Equal(t, 12.5, snap.AvgMs)
	assert.Equal(t, 2500*time.Millisecond, snap.Elapsed)
}

func TestModel_RatesFromServiceClock(t *testing.T) {
	m := NewModel()
	m, _ = m.Update(Snapshot{Status: remote.StatusRunning, Elapsed: time.Second, Requests: 10, AvgMs: 5})
	m, _ = m.Update(Snapshot{Status: remote.StatusRunning, Elapsed: 3 * time.Second, Requests: 50, Fail: 5, AvgMs: 7})

	assert.Equal(t, []float64{10, 20}, m.RpsLine.Data)
	assert.Equal(t, []float64{5, 7}, m.LatencyLine.Data)
	assert.InDelta(t, 10.0, m.ErrorRate(), 0.001)

	// Same clock reading adds no sample.
	m, _ = m.Update(Snapshot{Status: remote.StatusRunning, Elapsed: 3 * time.Second, Requests: 50})
	assert.Len(t, m.RpsLine.Data, 2)

	view := m.View()
	assert.Contains(t, view, "REQ: 50")
	assert.Contains(t, view, "RUNNING")
}
