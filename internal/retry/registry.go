// File: internal/retry/registry.go
package retry

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dashvolt/grabbit-cli/api/schemas"
)

// Registry maps each error kind to its active strategy. Lookups happen on
// every failed attempt from any number of concurrent acquisitions, while
// overrides are rare administrative actions, so reads take an RLock and
// writes a full lock.
type Registry struct {
	mu         sync.RWMutex
	strategies map[schemas.ErrorKind]Strategy
	// fallback serves kinds nobody configured. Conservative by design.
	fallback Strategy
	logger   *zap.Logger
}

// NewRegistry builds a registry with the given fallback strategy for
// unconfigured kinds.
func NewRegistry(fallback Strategy, logger *zap.Logger) *Registry {
	return &Registry{
		strategies: make(map[schemas.ErrorKind]Strategy),
		fallback:   fallback,
		logger:     logger.With(zap.String("component", "retry_registry")),
	}
}

// StrategyFor returns the active strategy for kind, falling back to the
// conservative default when none is registered.
func (r *Registry) StrategyFor(kind schemas.ErrorKind) Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.strategies[kind]; ok {
		return s
	}
	return r.fallback
}

// SetStrategyFor installs an override for kind. Takes effect for all
// subsequent lookups immediately.
func (r *Registry) SetStrategyFor(kind schemas.ErrorKind, s Strategy) {
	r.mu.Lock()
	r.strategies[kind] = s
	r.mu.Unlock()

	r.logger.Debug("Retry strategy installed", zap.String("kind", string(kind)))
}

// DefaultRegistry wires the standard kind-to-strategy table:
// hard failures never retry, rate limits back off linearly, network and
// availability blips back off exponentially, and everything unclassified
// goes through the shared adaptive strategy.
func DefaultRegistry(base, maxDelay time.Duration, maxAttempts int, adaptive *AdaptiveHistory, logger *zap.Logger) *Registry {
	r := NewRegistry(adaptive, logger)

	r.SetStrategyFor(schemas.KindParsing, NoRetry{})
	r.SetStrategyFor(schemas.KindCriticalUnavailable, NoRetry{})
	r.SetStrategyFor(schemas.KindAuthRequired, NoRetry{})

	r.SetStrategyFor(schemas.KindRateLimited, RateLimitBackoff{Base: base * 5, MaxAttempts: maxAttempts})
	r.SetStrategyFor(schemas.KindQuotaExceeded, RateLimitBackoff{Base: base * 10, MaxAttempts: maxAttempts})

	exp := ExponentialBackoff{Base: base, MaxDelay: maxDelay, MaxAttempts: maxAttempts, JitterPct: 0.2}
	r.SetStrategyFor(schemas.KindNetwork, exp)
	r.SetStrategyFor(schemas.KindTemporarilyUnavailable, exp)
	r.SetStrategyFor(schemas.KindPlatformRejected, exp)

	r.SetStrategyFor(schemas.KindUnknown, adaptive)

	return r
}
