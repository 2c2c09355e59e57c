// File: internal/service/initializers.go
// Builds the acquisition component graph from configuration. Mirrors the
// construction order of the dependency chain: leaves first, orchestrator
// last.
package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dashvolt/grabbit-cli/api/schemas"
	"github.com/dashvolt/grabbit-cli/internal/classify"
	"github.com/dashvolt/grabbit-cli/internal/config"
	"github.com/dashvolt/grabbit-cli/internal/extractor"
	"github.com/dashvolt/grabbit-cli/internal/orchestrator"
	"github.com/dashvolt/grabbit-cli/internal/platform"
	"github.com/dashvolt/grabbit-cli/internal/quality"
	"github.com/dashvolt/grabbit-cli/internal/ratelimit"
	"github.com/dashvolt/grabbit-cli/internal/retry"
	"github.com/dashvolt/grabbit-cli/internal/variant"
)

// InitializeComponents wires every acquisition component from the resolved
// configuration. The returned Components are ready for concurrent use.
func InitializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	engine, err := extractor.NewEngine(cfg.Engine, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing extraction engine: %w", err)
	}
	return initializeWithEngine(cfg, logger, engine)
}

// InitializeComponentsWithEngine is the test seam: identical wiring with a
// substitute engine.
func InitializeComponentsWithEngine(cfg *config.Config, logger *zap.Logger, engine schemas.Extractor) (*Components, error) {
	return initializeWithEngine(cfg, logger, engine)
}

func initializeWithEngine(cfg *config.Config, logger *zap.Logger, engine schemas.Extractor) (*Components, error) {
	resolver, err := platform.NewDefaultResolver(platformOverrides(cfg))
	if err != nil {
		return nil, fmt.Errorf("building platform resolver: %w", err)
	}

	adaptive := retry.NewAdaptiveHistory(
		cfg.Retry.BaseDelay,
		cfg.Retry.MaxDelay,
		maxAttemptsCeiling(resolver),
		cfg.Retry.AdaptiveWindow,
		cfg.Retry.AdaptiveFailureThreshold,
	)
	registry := retry.DefaultRegistry(
		cfg.Retry.BaseDelay,
		cfg.Retry.MaxDelay,
		maxAttemptsCeiling(resolver),
		adaptive,
		logger,
	)

	limiter := ratelimit.New(
		cfg.RateLimit.DefaultInterval,
		cfg.RateLimit.JitterMax,
		platformIntervals(resolver),
		logger,
	)

	cascade, err := quality.New(cfg.Quality.LadderHeights, cfg.Engine.DeliveryMaxBytes)
	if err != nil {
		return nil, fmt.Errorf("building quality cascade: %w", err)
	}

	orch, err := orchestrator.New(
		orchestrator.Options{
			AttemptTimeout:  cfg.Engine.AttemptTimeout,
			CascadeMaxSteps: cfg.Engine.CascadeMaxSteps,
		},
		logger,
		resolver,
		classify.New(),
		registry,
		adaptive,
		limiter,
		variant.New(),
		cascade,
		engine,
	)
	if err != nil {
		return nil, fmt.Errorf("building orchestrator: %w", err)
	}

	return &Components{
		Acquirer: orch,
		Registry: registry,
		Adaptive: adaptive,
		Limiter:  limiter,
	}, nil
}

// platformOverrides converts config's per-platform section into resolver
// overrides.
func platformOverrides(cfg *config.Config) map[string]platform.Override {
	out := make(map[string]platform.Override, len(cfg.Platforms))
	for name, pc := range cfg.Platforms {
		out[name] = platform.Override{
			MinInterval: pc.MinInterval,
			MaxAttempts: pc.MaxAttempts,
		}
	}
	return out
}

// platformIntervals seeds the limiter from the resolved profile table so
// both components agree on pacing.
func platformIntervals(resolver *platform.Resolver) map[schemas.Platform]time.Duration {
	out := make(map[schemas.Platform]time.Duration)
	for _, p := range resolver.Profiles() {
		out[p.Identity] = p.MinInterval
	}
	return out
}

// maxAttemptsCeiling picks the largest per-variant budget in the table; the
// registry's strategy-level budgets must never be the binding constraint
// below it.
func maxAttemptsCeiling(resolver *platform.Resolver) int {
	max := 1
	for _, p := range resolver.Profiles() {
		if p.MaxAttempts > max {
			max = p.MaxAttempts
		}
	}
	return max
}
