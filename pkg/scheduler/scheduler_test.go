package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAfterFires(t *testing.T) {
	s := New()
	defer s.Stop()

	var fired atomic.Int32
	id := s.After(0, func() { fired.Add(1) })
	require.NotZero(t, id)

	require.Eventually(t, func() bool { return fired.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Zero(t, s.Pending())
}

func TestNegativeDelayClampsToZero(t *testing.T) {
	s := New()
	defer s.Stop()

	var fired atomic.Int32
	s.After(-time.Hour, func() { fired.Add(1) })
	require.Eventually(t, func() bool { return fired.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestPendingCountsUnfiredJobs(t *testing.T) {
	s := New()
	defer s.Stop()

	s.After(time.Hour, func() {})
	s.After(time.Hour, func() {})
	require.Equal(t, 2, s.Pending())
}

func TestStopDropsPendingAndBlocksNewJobs(t *testing.T) {
	s := New()

	var fired atomic.Int32
	s.After(time.Hour, func() { fired.Add(1) })
	s.Stop()

	require.Zero(t, s.Pending())
	require.Zero(t, fired.Load())

	// a stopped scheduler refuses new work
	require.Zero(t, s.After(0, func() { fired.Add(1) }))
	time.Sleep(20 * time.Millisecond)
	require.Zero(t, fired.Load())
}

func TestJobIDsAreDistinct(t *testing.T) {
	s := New()
	defer s.Stop()

	a := s.After(time.Hour, func() {})
	b := s.After(time.Hour, func() {})
	require.NotEqual(t, a, b)
}
