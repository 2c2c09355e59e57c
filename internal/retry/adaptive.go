// File: internal/retry/adaptive.go
package retry

import (
	"sync"
	"time"

	"github.com/dashvolt/grabbit-cli/api/schemas"
)

const (
	// recentSampleSize is how many of the newest recorded outcomes feed the
	// success-rate multiplier.
	recentSampleSize = 10
	// slowdownMultiplier / speedupMultiplier scale the exponential delay
	// when recent history looks unhealthy / healthy.
	slowdownMultiplier = 2.0
	speedupMultiplier  = 0.5
)

// AdaptiveHistory is the one stateful strategy variant. It owns a bounded
// rolling window of recent attempt outcomes and a per-kind failure counter,
// both shared across every concurrent acquisition in the process. Created
// once at startup and injected; reset only by explicit administrative
// action.
type AdaptiveHistory struct {
	Base        time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	// WindowSize bounds the rolling outcome window.
	WindowSize int
	// FailureThreshold is the per-kind failure count past which the
	// effective attempt budget shrinks by one: kinds that keep failing get
	// given up on sooner.
	FailureThreshold int

	mu       sync.Mutex
	window   []bool
	failures map[schemas.ErrorKind]int
}

// NewAdaptiveHistory constructs the shared adaptive strategy. windowSize and
// failureThreshold fall back to sensible values when non-positive.
func NewAdaptiveHistory(base, maxDelay time.Duration, maxAttempts, windowSize, failureThreshold int) *AdaptiveHistory {
	if windowSize <= 0 {
		windowSize = 50
	}
	if failureThreshold <= 0 {
		failureThreshold = 10
	}
	return &AdaptiveHistory{
		Base:             base,
		MaxDelay:         maxDelay,
		MaxAttempts:      maxAttempts,
		WindowSize:       windowSize,
		FailureThreshold: failureThreshold,
		failures:         make(map[schemas.ErrorKind]int),
	}
}

// Record appends one attempt outcome to the rolling window and bumps the
// per-kind failure counter on failure. Called by the orchestrator after
// every classified attempt, successful or not.
func (s *AdaptiveHistory) Record(kind schemas.ErrorKind, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window = append(s.window, success)
	if len(s.window) > s.WindowSize {
		s.window = s.window[len(s.window)-s.WindowSize:]
	}
	if !success {
		s.failures[kind]++
	}
}

// Reset clears all accumulated history. Administrative action only.
func (s *AdaptiveHistory) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window = nil
	s.failures = make(map[schemas.ErrorKind]int)
}

// ShouldRetry enforces the attempt budget, shrunk by one once the kind's
// failure count crosses the threshold.
func (s *AdaptiveHistory) ShouldRetry(kind schemas.ErrorKind, attempt int, _ string) bool {
	budget := s.MaxAttempts

	s.mu.Lock()
	persistent := s.failures[kind] > s.FailureThreshold
	s.mu.Unlock()

	if persistent && budget > 1 {
		budget--
	}
	return attempt < budget
}

// NextDelay scales the exponential base delay by the recent success rate:
// doubled below 0.5, halved above 0.8, unchanged in between. The result is
// floored at half the base delay so a healthy window never collapses the
// pause entirely.
func (s *AdaptiveHistory) NextDelay(attempt int) time.Duration {
	delay := expDelay(s.Base, s.MaxDelay, attempt)

	switch rate, ok := s.recentSuccessRate(); {
	case ok && rate < 0.5:
		delay = time.Duration(float64(delay) * slowdownMultiplier)
	case ok && rate > 0.8:
		delay = time.Duration(float64(delay) * speedupMultiplier)
	}

	if floor := s.Base / 2; delay < floor {
		delay = floor
	}
	if s.MaxDelay > 0 && delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	return delay
}

// recentSuccessRate returns the success fraction over the newest
// recentSampleSize outcomes. ok is false when no outcomes are recorded yet.
func (s *AdaptiveHistory) recentSuccessRate() (rate float64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.window) == 0 {
		return 0, false
	}
	sample := s.window
	if len(sample) > recentSampleSize {
		sample = sample[len(sample)-recentSampleSize:]
	}
	succeeded := 0
	for _, success := range sample {
		if success {
			succeeded++
		}
	}
	return float64(succeeded) / float64(len(sample)), true
}
