package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualTick(t *testing.T) {
	m := NewManual()

	var calls int
	cancel := m.Every(time.Second, func() { calls++ })

	m.Tick()
	m.Tick()
	require.Equal(t, 2, calls)

	cancel()
	m.Tick()
	require.Equal(t, 2, calls)
}

func TestManualFireClearsOneShots(t *testing.T) {
	m := NewManual()

	var calls int
	m.After(time.Second, func() { calls++ })
	require.Equal(t, 1, m.PendingAfter())

	m.Fire()
	m.Fire()
	require.Equal(t, 1, calls)
	require.Zero(t, m.PendingAfter())
}

func TestManualCancelledAfterNeverFires(t *testing.T) {
	m := NewManual()

	var calls int
	cancel := m.After(time.Second, func() { calls++ })
	cancel()

	m.Fire()
	require.Zero(t, calls)
}

func TestTimersCancelIsIdempotent(t *testing.T) {
	s := NewTimers()

	cancel := s.Every(time.Hour, func() {})
	cancel()
	cancel()

	cancelAfter := s.After(time.Hour, func() {})
	cancelAfter()
	cancelAfter()
}
