// File: internal/orchestrator/orchestrator.go
// Drives one logical "fetch media for URL" operation to completion or
// exhaustion. The orchestrator owns the acquisition state machine; platform
// resolution, error classification, retry policy, pacing, URL rewriting and
// quality degradation are all injected as fully configured components.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dashvolt/grabbit-cli/api/schemas"
	"github.com/dashvolt/grabbit-cli/internal/classify"
	"github.com/dashvolt/grabbit-cli/internal/platform"
	"github.com/dashvolt/grabbit-cli/internal/quality"
	"github.com/dashvolt/grabbit-cli/internal/ratelimit"
	"github.com/dashvolt/grabbit-cli/internal/retry"
	"github.com/dashvolt/grabbit-cli/internal/variant"
)

// Options are the orchestrator-level tunables not owned by any component.
type Options struct {
	// AttemptTimeout bounds a single engine call.
	AttemptTimeout time.Duration
	// CascadeMaxSteps caps quality downgrades per variant.
	CascadeMaxSteps int
}

// Orchestrator composes the acquisition components around the single
// external engine contract. Safe for concurrent use: per-acquisition state
// lives on the stack of Acquire, and the two intentionally shared pieces
// (rate limiter, adaptive history) synchronize internally.
type Orchestrator struct {
	opts       Options
	logger     *zap.Logger
	resolver   *platform.Resolver
	classifier *classify.Classifier
	registry   *retry.Registry
	adaptive   *retry.AdaptiveHistory
	limiter    *ratelimit.Limiter
	variants   *variant.Generator
	cascade    *quality.Cascade
	engine     schemas.Extractor
}

// New wires an orchestrator from its fully configured dependencies.
func New(
	opts Options,
	logger *zap.Logger,
	resolver *platform.Resolver,
	classifier *classify.Classifier,
	registry *retry.Registry,
	adaptive *retry.AdaptiveHistory,
	limiter *ratelimit.Limiter,
	variants *variant.Generator,
	cascade *quality.Cascade,
	engine schemas.Extractor,
) (*Orchestrator, error) {
	if logger == nil || resolver == nil || classifier == nil || registry == nil ||
		adaptive == nil || limiter == nil || variants == nil || cascade == nil || engine == nil {
		return nil, fmt.Errorf("cannot initialize orchestrator with nil dependencies")
	}
	if opts.CascadeMaxSteps <= 0 {
		opts.CascadeMaxSteps = 3
	}
	return &Orchestrator{
		opts:       opts,
		logger:     logger.With(zap.String("component", "orchestrator")),
		resolver:   resolver,
		classifier: classifier,
		registry:   registry,
		adaptive:   adaptive,
		limiter:    limiter,
		variants:   variants,
		cascade:    cascade,
		engine:     engine,
	}, nil
}

// acquisition is the mutable state of one in-flight Acquire call. Owned
// exclusively by that call; never shared.
type acquisition struct {
	id         string
	url        string
	profile    *platform.Profile
	constraint schemas.Constraint
	attempts   []schemas.AttemptRecord
	downgrades int
	logger     *zap.Logger
}

// variantVerdict is the disposition of one variant's attempt loop.
type variantVerdict int

const (
	verdictSucceeded variantVerdict = iota
	verdictExhausted                // budget or strategy stopped; rotate to next variant
	verdictCritical                 // content confirmed gone; abort all variants
	verdictSizeExceeded
	verdictCancelled
)

// Acquire runs the full state machine for one URL. It always returns a
// terminal result, never an error: every engine failure is classified and
// recorded, and cancellation surfaces as a distinct Cancelled status.
func (o *Orchestrator) Acquire(ctx context.Context, url string) *schemas.Result {
	profile := o.resolver.Resolve(url)

	id := uuid.New().String()
	acq := &acquisition{
		id:         id,
		url:        url,
		profile:    profile,
		constraint: o.cascade.Top(),
		logger: o.logger.With(
			zap.String("acquisition_id", id[:8]),
			zap.String("platform", string(profile.Identity)),
		),
	}
	acq.logger.Info("Starting acquisition", zap.String("url", url))

	variants := o.variants.Variants(url, profile.Identity)
	var lastKind schemas.ErrorKind
	var lastArtifact *schemas.Artifact

	for i, candidate := range variants {
		if i > 0 {
			acq.logger.Info("Rotating to alternate URL form",
				zap.Int("variant", i),
				zap.String("candidate", candidate),
			)
		}

		verdict, artifact, kind := o.runVariant(ctx, acq, candidate)
		switch verdict {
		case verdictSucceeded:
			return o.terminalSuccess(acq, artifact)
		case verdictCancelled:
			return o.terminal(acq, schemas.StatusCancelled, lastKind, "acquisition cancelled by caller")
		case verdictCritical:
			return o.terminal(acq, schemas.StatusFailure, schemas.KindCriticalUnavailable,
				"content is permanently unavailable")
		case verdictSizeExceeded:
			lastArtifact = artifact
			return o.terminal(acq, schemas.StatusSizeExceeded, lastKind,
				fmt.Sprintf("artifact exceeds delivery ceiling even at the quality floor (%d bytes)",
					artifactSize(lastArtifact)))
		case verdictExhausted:
			lastKind = kind
		}
	}

	summary := fmt.Sprintf("all %d URL variants exhausted after %d attempts", len(variants), len(acq.attempts))
	if last := lastAttemptMessage(acq.attempts); last != "" {
		summary += "; last error: " + last
	}
	return o.terminal(acq, schemas.StatusFailure, lastKind, summary)
}

// runVariant executes the bounded attempt loop for one candidate URL,
// including the quality-cascade sub-loop on oversized successes. Cascade
// re-fetches do not consume the ordinary attempt budget.
func (o *Orchestrator) runVariant(ctx context.Context, acq *acquisition, candidate string) (variantVerdict, *schemas.Artifact, schemas.ErrorKind) {
	var (
		attempt      int
		cascadeSteps int
		nextDelay    time.Duration
		lastKind     schemas.ErrorKind
	)

	for {
		if ctx.Err() != nil {
			return verdictCancelled, nil, lastKind
		}
		if err := o.limiter.Wait(ctx, acq.profile.Identity); err != nil {
			return verdictCancelled, nil, lastKind
		}

		record := schemas.AttemptRecord{
			Index:      len(acq.attempts),
			VariantURL: candidate,
			StartedAt:  time.Now(),
			Delay:      nextDelay,
		}

		artifact, err := o.engine.Extract(ctx, candidate, o.extractOptions(acq))

		if err == nil {
			record.Outcome = schemas.Outcome{Success: true}
			acq.attempts = append(acq.attempts, record)
			o.adaptive.Record("", true)

			if artifact.SizeBytes <= acq.constraint.MaxBytes {
				return verdictSucceeded, artifact, ""
			}

			// Oversized success: tighten the constraint and re-fetch the
			// same variant, outside the ordinary attempt budget.
			cascadeSteps++
			next, ok := o.cascade.Next(acq.constraint)
			if !ok || cascadeSteps > o.opts.CascadeMaxSteps {
				return verdictSizeExceeded, artifact, lastKind
			}
			acq.logger.Info("Artifact exceeds delivery ceiling; degrading quality",
				zap.Int64("size_bytes", artifact.SizeBytes),
				zap.Int64("ceiling_bytes", acq.constraint.MaxBytes),
				zap.Int("next_max_height", next.MaxHeight),
			)
			acq.constraint = next
			acq.downgrades++
			nextDelay = 0
			continue
		}

		if ctx.Err() != nil {
			// The engine call died because the caller gave up, not because
			// the platform failed us.
			return verdictCancelled, nil, lastKind
		}

		rawMsg := err.Error()
		kind := o.classifier.Classify(rawMsg)
		lastKind = kind
		record.Outcome = schemas.Outcome{Success: false, Kind: kind, RawMessage: rawMsg}
		acq.attempts = append(acq.attempts, record)
		o.adaptive.Record(kind, false)

		acq.logger.Warn("Attempt failed",
			zap.Int("attempt", attempt),
			zap.String("kind", string(kind)),
			zap.String("error", rawMsg),
		)

		if kind == schemas.KindCriticalUnavailable {
			// No value in rotating addresses for content confirmed gone.
			return verdictCritical, nil, kind
		}

		strategy := o.strategyFor(acq.profile, kind)
		if !strategy.ShouldRetry(kind, attempt, rawMsg) {
			return verdictExhausted, nil, kind
		}

		attempt++
		if attempt >= acq.profile.MaxAttempts {
			return verdictExhausted, nil, kind
		}

		nextDelay = strategy.NextDelay(attempt)
		if !o.sleep(ctx, nextDelay) {
			return verdictCancelled, nil, kind
		}
	}
}

// strategyFor applies profile-level overrides before the global registry.
func (o *Orchestrator) strategyFor(p *platform.Profile, kind schemas.ErrorKind) retry.Strategy {
	if s, ok := p.StrategyFor(kind); ok {
		return s
	}
	return o.registry.StrategyFor(kind)
}

// extractOptions derives the engine option bundle from the profile and the
// acquisition's currently active constraint.
func (o *Orchestrator) extractOptions(acq *acquisition) schemas.ExtractOptions {
	return schemas.ExtractOptions{
		UserAgent:      acq.profile.RandomUserAgent(),
		Headers:        acq.profile.Headers,
		Constraint:     acq.constraint,
		ExtractorHints: acq.profile.ExtractorHints,
		Timeout:        o.opts.AttemptTimeout,
	}
}

// sleep pauses for the strategy-computed delay, honoring cancellation.
// Returns false when the context was cancelled.
func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// terminalSuccess assembles the success result.
func (o *Orchestrator) terminalSuccess(acq *acquisition, artifact *schemas.Artifact) *schemas.Result {
	acq.logger.Info("Acquisition succeeded",
		zap.Int("attempts", len(acq.attempts)),
		zap.Int("quality_downgrades", acq.downgrades),
		zap.Int64("size_bytes", artifact.SizeBytes),
	)
	return &schemas.Result{
		ID:                acq.id,
		URL:               acq.url,
		Platform:          acq.profile.Identity,
		Status:            schemas.StatusSuccess,
		Artifact:          artifact,
		QualityDowngrades: acq.downgrades,
		Attempts:          acq.attempts,
	}
}

// terminal assembles a non-success result with the full audit trail.
func (o *Orchestrator) terminal(acq *acquisition, status schemas.ResultStatus, kind schemas.ErrorKind, summary string) *schemas.Result {
	acq.logger.Info("Acquisition finished without artifact",
		zap.String("status", string(status)),
		zap.String("kind", string(kind)),
		zap.Int("attempts", len(acq.attempts)),
	)
	return &schemas.Result{
		ID:                acq.id,
		URL:               acq.url,
		Platform:          acq.profile.Identity,
		Status:            status,
		Kind:              kind,
		Summary:           summary,
		QualityDowngrades: acq.downgrades,
		Attempts:          acq.attempts,
	}
}

func artifactSize(a *schemas.Artifact) int64 {
	if a == nil {
		return 0
	}
	return a.SizeBytes
}

func lastAttemptMessage(attempts []schemas.AttemptRecord) string {
	for i := len(attempts) - 1; i >= 0; i-- {
		if msg := attempts[i].Outcome.RawMessage; msg != "" {
			return msg
		}
	}
	return ""
}
