// internal/retry/adaptive_test.go
package retry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashvolt/grabbit-cli/api/schemas"
)

func newTestAdaptive() *AdaptiveHistory {
	return NewAdaptiveHistory(time.Second, time.Minute, 3, 50, 10)
}

func TestAdaptiveHistory_DelayScalesWithSuccessRate(t *testing.T) {
	s := newTestAdaptive()
	baseline := expDelay(s.Base, s.MaxDelay, 1)

	// Empty history: no multiplier.
	assert.Equal(t, baseline, s.NextDelay(1))

	// Mostly failures: recent rate < 0.5 doubles the delay.
	for i := 0; i < 10; i++ {
		s.Record(schemas.KindNetwork, i%5 == 0)
	}
	assert.Equal(t, 2*baseline, s.NextDelay(1))

	// Flood with successes: recent rate > 0.8 halves the delay.
	for i := 0; i < 10; i++ {
		s.Record("", true)
	}
	assert.Equal(t, baseline/2, s.NextDelay(1))
}

func TestAdaptiveHistory_DelayFloorAndCap(t *testing.T) {
	s := newTestAdaptive()

	// Healthy history halves delays, but never below half the base.
	for i := 0; i < 10; i++ {
		s.Record("", true)
	}
	assert.GreaterOrEqual(t, s.NextDelay(0), s.Base/2)

	// Unhealthy history doubles delays, but never above MaxDelay.
	for i := 0; i < 10; i++ {
		s.Record(schemas.KindNetwork, false)
	}
	assert.LessOrEqual(t, s.NextDelay(20), s.MaxDelay)
}

// TestAdaptiveHistory_PersistentFailureShrinksBudget verifies the "give up
// sooner on kinds that keep failing" behavior.
func TestAdaptiveHistory_PersistentFailureShrinksBudget(t *testing.T) {
	s := newTestAdaptive()

	// Budget is 3: attempt index 2 is normally retryable.
	assert.True(t, s.ShouldRetry(schemas.KindNetwork, 2, ""))

	// Push KindNetwork past the failure threshold.
	for i := 0; i < 11; i++ {
		s.Record(schemas.KindNetwork, false)
	}
	assert.False(t, s.ShouldRetry(schemas.KindNetwork, 2, ""),
		"persistently failing kind must lose one attempt")
	assert.True(t, s.ShouldRetry(schemas.KindNetwork, 1, ""))

	// Other kinds keep their full budget.
	assert.True(t, s.ShouldRetry(schemas.KindRateLimited, 2, ""))
}

func TestAdaptiveHistory_WindowIsBounded(t *testing.T) {
	s := NewAdaptiveHistory(time.Second, time.Minute, 3, 20, 10)
	for i := 0; i < 500; i++ {
		s.Record(schemas.KindUnknown, i%2 == 0)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.LessOrEqual(t, len(s.window), 20)
}

func TestAdaptiveHistory_Reset(t *testing.T) {
	s := newTestAdaptive()
	for i := 0; i < 15; i++ {
		s.Record(schemas.KindNetwork, false)
	}
	require.False(t, s.ShouldRetry(schemas.KindNetwork, 2, ""))

	s.Reset()

	assert.True(t, s.ShouldRetry(schemas.KindNetwork, 2, ""))
	assert.Equal(t, expDelay(s.Base, s.MaxDelay, 1), s.NextDelay(1), "reset clears the rate multiplier")
}

// TestAdaptiveHistory_ConcurrentRecording exercises the shared-state path
// the way concurrent acquisitions do. Run with -race.
func TestAdaptiveHistory_ConcurrentRecording(t *testing.T) {
	s := newTestAdaptive()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.Record(schemas.KindNetwork, (g+i)%2 == 0)
				_ = s.NextDelay(i % 4)
				_ = s.ShouldRetry(schemas.KindNetwork, i%4, "")
			}
		}(g)
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.LessOrEqual(t, len(s.window), s.WindowSize)
}
