package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopStepsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var elapsed []time.Duration
	var reported []error
	l := NewLoop(time.Millisecond)
	l.OnError = func(err error) { reported = append(reported, err) }

	step := StepFunc(func(_ context.Context, d time.Duration) error {
		elapsed = append(elapsed, d)
		if len(elapsed) == 2 {
			return errors.New("frame dropped")
		}
		if len(elapsed) == 4 {
			cancel()
		}
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, step) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}

	require.GreaterOrEqual(t, len(elapsed), 4)
	assert.Equal(t, time.Duration(0), elapsed[0], "first step has no elapsed time")
	for _, d := range elapsed[1:] {
		assert.Greater(t, d, time.Duration(0))
	}
	require.Len(t, reported, 1, "errors are reported and the loop continues")
}

func TestLoopElapsedFromClock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Unix(0, 0)
	l := NewLoop(time.Millisecond)
	l.now = func() time.Time {
		now = now.Add(60 * time.Millisecond)
		return now
	}

	var got []time.Duration
	_ = l.Run(ctx, StepFunc(func(_ context.Context, d time.Duration) error {
		got = append(got, d)
		if len(got) == 3 {
			cancel()
		}
		return nil
	}))
	assert.Equal(t, []time.Duration{0, 60 * time.Millisecond, 60 * time.Millisecond}, got)
}
