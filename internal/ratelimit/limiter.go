// File: internal/ratelimit/limiter.go
// Per-platform pacing for outbound extraction attempts. One limiter is
// shared process-wide so concurrent acquisitions targeting the same platform
// queue behind each other instead of stampeding it.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dashvolt/grabbit-cli/api/schemas"
)

// Limiter enforces a minimum inter-request interval plus a small uniform
// jitter per platform. Spacing is anchored on the previous Wait admission
// for that platform, applied consistently whether the attempt afterwards
// succeeded or not.
type Limiter struct {
	defaultInterval time.Duration
	jitterMax       time.Duration
	logger          *zap.Logger

	mu        sync.Mutex
	intervals map[schemas.Platform]time.Duration
	limiters  map[schemas.Platform]*rate.Limiter
}

// New builds a limiter. intervals seeds per-platform spacing; platforms not
// listed get defaultInterval on first use.
func New(defaultInterval, jitterMax time.Duration, intervals map[schemas.Platform]time.Duration, logger *zap.Logger) *Limiter {
	if intervals == nil {
		intervals = make(map[schemas.Platform]time.Duration)
	}
	return &Limiter{
		defaultInterval: defaultInterval,
		jitterMax:       jitterMax,
		logger:          logger.With(zap.String("component", "ratelimit")),
		intervals:       intervals,
		limiters:        make(map[schemas.Platform]*rate.Limiter),
	}
}

// Wait sleeps a uniform jitter, then blocks until the platform's minimum
// interval has elapsed since the previous admission. The jitter comes first
// so the admission gap is the last thing before returning: two back-to-back
// Waits are never closer than the interval, jitter or not. Returns early
// with the context's error on cancellation.
func (l *Limiter) Wait(ctx context.Context, platform schemas.Platform) error {
	lim := l.limiterFor(platform)
	started := time.Now()

	if l.jitterMax > 0 {
		jitter := time.Duration(rand.Int63n(int64(l.jitterMax)))
		timer := time.NewTimer(jitter)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := lim.Wait(ctx); err != nil {
		return err
	}

	if waited := time.Since(started); waited > 50*time.Millisecond {
		l.logger.Debug("Paced outbound attempt",
			zap.String("platform", string(platform)),
			zap.Duration("waited", waited),
		)
	}
	return nil
}

// limiterFor lazily creates the shared per-platform limiter. Burst 1 with an
// every-interval refill is exactly "no two admissions closer than interval".
func (l *Limiter) limiterFor(platform schemas.Platform) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[platform]; ok {
		return lim
	}
	interval, ok := l.intervals[platform]
	if !ok || interval <= 0 {
		interval = l.defaultInterval
	}
	var lim *rate.Limiter
	if interval <= 0 {
		lim = rate.NewLimiter(rate.Inf, 1)
	} else {
		lim = rate.NewLimiter(rate.Every(interval), 1)
	}
	l.limiters[platform] = lim
	return lim
}
