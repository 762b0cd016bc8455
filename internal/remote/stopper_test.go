package remote

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopper_Escalates(t *testing.T) {
	var forces []bool
	s := NewStopper("r-1", func(ctx context.Context, id string, force bool) error {
		assert.Equal(t, "r-1", id)
		forces = append(forces, force)
		return nil
	})

	for i := 0; i < 3; i++ {
		sent, err := s.Interrupt(context.Background())
		require.NoError(t, err)
		assert.True(t, sent)
	}
	assert.Equal(t, []bool{false, true, true}, forces)
	assert.Equal(t, 3, s.Count())
}

func TestStopper_FailureDoesNotAdvance(t *testing.T) {
	var forces []bool
	fail := true
	s := NewStopper("r-1", func(ctx context.Context, id string, force bool) error {
		forces = append(forces, force)
		if fail {
			return errors.New("unreachable")
		}
		return nil
	})

	_, err := s.Interrupt(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, s.Count())

	fail = false
	_, err = s.Interrupt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false}, forces)
}

func TestStopper_DropsWhilePending(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	s := NewStopper("r-1", func(ctx context.Context, id string, force bool) error {
		close(entered)
		<-release
		return nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sent, err := s.Interrupt(context.Background())
		assert.True(t, sent)
		assert.NoError(t, err)
	}()

	<-entered
	sent, err := s.Interrupt(context.Background())
	assert.False(t, sent)
	assert.NoError(t, err)

	close(release)
	wg.Wait()
	assert.Equal(t, 1, s.Count())
}
