// File: internal/retry/strategy.go
// The retry strategy family. Each variant answers two questions for the
// orchestrator: should the attempt loop continue, and how long to pause
// before the next call into the extraction engine.
package retry

import (
	"math/rand"
	"strings"
	"time"

	"github.com/dashvolt/grabbit-cli/api/schemas"
)

// Strategy decides retry continuation and pacing for one error kind.
//
// attempt is the zero-based index of the attempt that just failed; rawMsg is
// the engine's unstructured failure text, which some variants inspect for
// non-retryable causes hiding inside an otherwise retryable kind.
type Strategy interface {
	ShouldRetry(kind schemas.ErrorKind, attempt int, rawMsg string) bool
	NextDelay(attempt int) time.Duration
}

// -- NoRetry --

// NoRetry never retries. Registered for parsing failures and content that is
// confirmed gone.
type NoRetry struct{}

func (NoRetry) ShouldRetry(schemas.ErrorKind, int, string) bool { return false }
func (NoRetry) NextDelay(int) time.Duration                     { return 0 }

// -- FixedDelay --

// FixedDelay retries up to MaxAttempts with a constant pause.
type FixedDelay struct {
	Delay       time.Duration
	MaxAttempts int
}

func (s FixedDelay) ShouldRetry(_ schemas.ErrorKind, attempt int, _ string) bool {
	return attempt < s.MaxAttempts
}

func (s FixedDelay) NextDelay(int) time.Duration { return s.Delay }

// -- ExponentialBackoff --

// nonRetryableMarkers short-circuits retries even within the attempt budget.
// Some kinds (notably platform rejections) bucket both transient and
// permanent causes; these phrases identify the permanent ones. The scan is
// skipped for KindTemporarilyUnavailable, whose normal vocabulary ("HTTP
// Error 503: Service Unavailable") collides with the marker list while the
// kind itself already asserts the outage is transient.
var nonRetryableMarkers = []string{
	"private",
	"unavailable",
	"forbidden",
	"copyright",
}

// ExponentialBackoff doubles the pause per attempt up to MaxDelay, with an
// optional uniform perturbation of up to ±JitterPct.
type ExponentialBackoff struct {
	Base        time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	// JitterPct is a fraction in [0, 1); zero disables jitter.
	JitterPct float64
}

func (s ExponentialBackoff) ShouldRetry(kind schemas.ErrorKind, attempt int, rawMsg string) bool {
	if attempt >= s.MaxAttempts {
		return false
	}
	if kind == schemas.KindTemporarilyUnavailable {
		return true
	}
	lower := strings.ToLower(rawMsg)
	for _, marker := range nonRetryableMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

func (s ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := expDelay(s.Base, s.MaxDelay, attempt)
	if s.JitterPct > 0 {
		delay = applyJitter(delay, s.JitterPct)
		if delay > s.MaxDelay {
			delay = s.MaxDelay
		}
	}
	return delay
}

// -- RateLimitBackoff --

// RateLimitBackoff grows the pause linearly. Rate-limit cooldowns are
// usually fixed server-side windows, so exponential growth overshoots them.
type RateLimitBackoff struct {
	Base        time.Duration
	MaxAttempts int
}

func (s RateLimitBackoff) ShouldRetry(_ schemas.ErrorKind, attempt int, _ string) bool {
	return attempt < s.MaxAttempts
}

func (s RateLimitBackoff) NextDelay(attempt int) time.Duration {
	return s.Base * time.Duration(attempt+1)
}

// -- helpers --

// expDelay computes base*2^attempt clamped to max, guarding the shift
// against overflow for large attempt indices.
func expDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if attempt > 30 {
		attempt = 30
	}
	delay := base << uint(attempt)
	if delay <= 0 || (max > 0 && delay > max) {
		delay = max
	}
	return delay
}

// applyJitter perturbs d uniformly within ±pct.
func applyJitter(d time.Duration, pct float64) time.Duration {
	offset := (rand.Float64()*2 - 1) * pct * float64(d)
	return d + time.Duration(offset)
}
