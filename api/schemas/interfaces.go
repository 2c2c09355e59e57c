package schemas

import (
	"context"
	"time"
)

// -- Extraction Engine Contract --

// ExtractOptions is the behavioral option bundle handed to the engine for
// one attempt. It is derived from the resolved platform profile and the
// currently active quality constraint.
type ExtractOptions struct {
	// UserAgent is drawn from the profile's user-agent pool per attempt.
	UserAgent string
	// Headers are static profile headers sent alongside the user agent.
	Headers map[string]string
	// Constraint bounds the requested quality/size for this attempt.
	Constraint Constraint
	// ExtractorHints are platform-specific switches passed through to the
	// engine verbatim (e.g. player-client selection).
	ExtractorHints []string
	// Timeout bounds the whole engine call. The engine must honor it in
	// addition to context cancellation so a stuck attempt cannot block an
	// acquisition indefinitely.
	Timeout time.Duration
	// OutputDir is where the engine writes the fetched artifact.
	OutputDir string
}

// Extractor is the single external collaborator the orchestrator drives.
// The real implementation shells out to an opaque third-party extraction
// engine; tests substitute fakes. On failure the returned error carries the
// engine's raw, unstructured text; classifying it is the caller's job.
type Extractor interface {
	Extract(ctx context.Context, url string, opts ExtractOptions) (*Artifact, error)
}

// -- Orchestrator Contract --

// Acquirer is the single downstream surface exposed to the chat-delivery
// layer: it drives one logical "fetch media for URL" operation to completion
// or exhaustion. The context carries the caller's cancellation and timeout
// handle; cancellation yields a distinct Cancelled result, never a generic
// failure.
type Acquirer interface {
	Acquire(ctx context.Context, url string) *Result
}
