package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"loadcompose/internal/remote"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu     sync.Mutex
	status string
	err    error
	stops  []bool
}

func (f *fakeSource) Status(ctx context.Context, id string) (*remote.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &remote.Status{ID: id, Status: f.status, Progress: 50, Duration: 1000}, nil
}

func (f *fakeSource) Statistics(ctx context.Context, id string) (map[string]any, error) {
	return map[string]any{"totalRequestCountSuccess": float64(10)}, nil
}

func (f *fakeSource) Stop(ctx context.Context, id string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, force)
	return nil
}

func run(t *testing.T, m tea.Model, cmd tea.Cmd) (tea.Model, tea.Msg) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	next, _ := m.Update(msg)
	return next, msg
}

func TestModel_PollUntilTerminal(t *testing.T) {
	src := &fakeSource{status: remote.StatusRunning}
	m := NewModel(context.Background(), src, "r-1", time.Millisecond)

	next, _ := run(t, m, m.Init())
	wm := next.(Model)
	assert.Nil(t, wm.Final)
	assert.Equal(t, uint64(10), wm.Live.Stats.Requests)
	assert.False(t, wm.Quitting)

	src.status = remote.StatusTerminated
	next, _ = run(t, wm, wm.poll())
	wm = next.(Model)
	require.NotNil(t, wm.Final)
	assert.Equal(t, remote.StatusTerminated, wm.Final.Status)
	assert.True(t, wm.Quitting)
}

func TestModel_PollError(t *testing.T) {
	src := &fakeSource{err: errors.New("down")}
	m := NewModel(context.Background(), src, "r-1", time.Millisecond)

	next, _ := run(t, m, m.Init())
	wm := next.(Model)
	assert.EqualError(t, wm.Err, "down")
	assert.True(t, wm.Quitting)
}

func TestModel_CtrlCEscalates(t *testing.T) {
	src := &fakeSource{status: remote.StatusRunning}
	m := NewModel(context.Background(), src, "r-1", time.Millisecond)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	next, _ = run(t, next, cmd)
	assert.Contains(t, next.(Model).Notice, "graceful")

	next, cmd = next.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	next, _ = run(t, next, cmd)
	assert.Contains(t, next.(Model).Notice, "Terminating")

	assert.Equal(t, []bool{false, true}, src.stops)
}
