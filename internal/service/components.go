// File: internal/service/components.go
package service

import (
	"go.uber.org/zap"

	"github.com/dashvolt/grabbit-cli/api/schemas"
	"github.com/dashvolt/grabbit-cli/internal/observability"
	"github.com/dashvolt/grabbit-cli/internal/ratelimit"
	"github.com/dashvolt/grabbit-cli/internal/retry"
)

// Components holds all initialized services an acquisition run needs.
// Built once at startup by the initializers and shared for the process
// lifetime; the orchestrator is safe for concurrent Acquire calls.
type Components struct {
	Acquirer schemas.Acquirer

	// Registry and Adaptive are exposed for administrative actions:
	// strategy overrides and history resets.
	Registry *retry.Registry
	Adaptive *retry.AdaptiveHistory
	Limiter  *ratelimit.Limiter
}

// Shutdown flushes whatever needs flushing. The acquisition core holds no
// connections or pools; only buffered log output is at stake.
func (c *Components) Shutdown() {
	logger := observability.GetLogger()
	logger.Debug("Components shutdown complete.")
	observability.Sync()
}

// ResetAdaptiveHistory clears the shared adaptive retry state. This is the
// administrative reset described by the retry subsystem; it never runs
// implicitly.
func (c *Components) ResetAdaptiveHistory() {
	c.Adaptive.Reset()
	observability.GetLogger().Info("Adaptive retry history reset", zap.String("component", "service"))
}
