package cli

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"loadcompose/internal/remote"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	statuses []string
	polls    int
	stops    []bool
}

func (f *fakeSource) Status(ctx context.Context, id string) (*remote.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.polls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.polls++
	return &remote.Status{ID: id, Status: f.statuses[i], Progress: 50}, nil
}

func (f *fakeSource) Stop(ctx context.Context, id string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, force)
	f.statuses = append(f.statuses[:0], remote.StatusStopped)
	f.polls = 0
	return nil
}

func TestWait_UntilTerminal(t *testing.T) {
	src := &fakeSource{statuses: []string{remote.StatusStarting, remote.StatusRunning, remote.StatusTerminated}}
	var out bytes.Buffer

	st, err := Wait(context.Background(), WatchOptions{Source: src, ResultID: "r-1", Interval: time.Millisecond, Out: &out})
	require.NoError(t, err)
	assert.Equal(t, remote.StatusTerminated, st.Status)
	assert.Equal(t, 3, src.polls)
	assert.Contains(t, out.String(), "WATCHING RESULT r-1")
	assert.Contains(t, out.String(), "100%")
}

func TestWait_InterruptStops(t *testing.T) {
	src := &fakeSource{statuses: []string{remote.StatusRunning}}
	sig := make(chan os.Signal, 1)
	sig <- os.Interrupt
	var out bytes.Buffer

	st, err := Wait(context.Background(), WatchOptions{Source: src, ResultID: "r-1", Interval: 20 * time.Millisecond, Out: &out, Interrupts: sig})
	require.NoError(t, err)
	assert.Equal(t, remote.StatusStopped, st.Status)
	assert.Equal(t, []bool{false}, src.stops)
	assert.Contains(t, out.String(), "graceful")
}

func TestWait_ContextCancelled(t *testing.T) {
	src := &fakeSource{statuses: []string{remote.StatusRunning}}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := Wait(ctx, WatchOptions{Source: src, ResultID: "r-1", Interval: 5 * time.Millisecond, Out: &bytes.Buffer{}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[##--]", replaceBlocks(progressBar(0.5, 4)))
	assert.Equal(t, "[####]", replaceBlocks(progressBar(1.5, 4)))
	assert.Equal(t, "[----]", replaceBlocks(progressBar(-1, 4)))
}

func replaceBlocks(s string) string {
	return string(bytes.ReplaceAll([]byte(s), []byte("█"), []byte("#")))
}
