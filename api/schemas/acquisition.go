package schemas

import (
	"time"
)

// -- Error Taxonomy --

// ErrorKind is the closed classification assigned to a failed extraction
// attempt. It is assigned exactly once per failure by the classifier and
// drives retry-policy selection; no other component inspects raw error text.
type ErrorKind string

const (
	KindNetwork                ErrorKind = "network"
	KindRateLimited            ErrorKind = "rate_limited"
	KindParsing                ErrorKind = "parsing"
	KindPlatformRejected       ErrorKind = "platform_rejected"
	KindAuthRequired           ErrorKind = "auth_required"
	KindQuotaExceeded          ErrorKind = "quota_exceeded"
	KindTemporarilyUnavailable ErrorKind = "temporarily_unavailable"
	// KindCriticalUnavailable marks content that is confirmed gone
	// (private, deleted, removed, account suspended). Never retried.
	KindCriticalUnavailable ErrorKind = "critical_unavailable"
	KindUnknown             ErrorKind = "unknown"
)

// AllErrorKinds lists every classifier-assignable kind. Useful for
// registry initialization and exhaustive tests.
var AllErrorKinds = []ErrorKind{
	KindNetwork,
	KindRateLimited,
	KindParsing,
	KindPlatformRejected,
	KindAuthRequired,
	KindQuotaExceeded,
	KindTemporarilyUnavailable,
	KindCriticalUnavailable,
	KindUnknown,
}

// -- Platforms --

// Platform identifies a remote content platform. The resolver maps every
// URL to exactly one platform, falling back to PlatformGeneric.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformReddit    Platform = "reddit"
	PlatformGeneric   Platform = "generic"
)

// -- Quality Constraints --

// Constraint bounds a single acquisition attempt. The cascade walks a
// descending ladder of these after a successful-but-oversized fetch.
type Constraint struct {
	// MaxHeight caps the requested vertical resolution in pixels.
	// Zero means "smallest available".
	MaxHeight int `json:"max_height"`
	// MaxBytes is the delivery ceiling the fetched artifact must fit under.
	MaxBytes int64 `json:"max_bytes"`
}

// -- Artifacts --

// Artifact describes a successfully fetched media file as reported by the
// extraction engine. The local path is handed off to the delivery layer.
type Artifact struct {
	Title     string        `json:"title"`
	Uploader  string        `json:"uploader"`
	Duration  time.Duration `json:"duration"`
	SizeBytes int64         `json:"size_bytes"`
	LocalPath string        `json:"local_path"`
}

// -- Attempt Audit Trail --

// Outcome is the terminal disposition of one attempt. Write-once.
type Outcome struct {
	Success bool      `json:"success"`
	Kind    ErrorKind `json:"kind,omitempty"`
	// RawMessage preserves the engine's unstructured failure text for
	// diagnostics. Only the classifier ever interprets it.
	RawMessage string `json:"raw_message,omitempty"`
}

// AttemptRecord captures a single call into the extraction engine. The
// ordered sequence of records forms the audit trail attached to the final
// result.
type AttemptRecord struct {
	Index      int           `json:"index"`
	VariantURL string        `json:"variant_url"`
	StartedAt  time.Time     `json:"started_at"`
	Delay      time.Duration `json:"delay"`
	Outcome    Outcome       `json:"outcome"`
}

// -- Terminal Results --

// ResultStatus distinguishes the terminal states of the acquisition state
// machine. Cancelled and SizeExceeded are orchestrator-level outcomes, not
// classifier outputs.
type ResultStatus string

const (
	StatusSuccess      ResultStatus = "success"
	StatusFailure      ResultStatus = "failure"
	StatusSizeExceeded ResultStatus = "size_exceeded"
	StatusCancelled    ResultStatus = "cancelled"
)

// Result is the terminal value of one Acquire call. Produced exactly once;
// ownership transfers to the caller.
type Result struct {
	ID       string       `json:"id"`
	URL      string       `json:"url"`
	Platform Platform     `json:"platform"`
	Status   ResultStatus `json:"status"`

	// Artifact is populated only when Status is StatusSuccess.
	Artifact *Artifact `json:"artifact,omitempty"`

	// Kind and Summary describe the aggregated failure when Status is
	// StatusFailure. The caller can map Kind to a category-appropriate
	// user message without re-sniffing raw error text.
	Kind    ErrorKind `json:"kind,omitempty"`
	Summary string    `json:"summary,omitempty"`

	// QualityDowngrades counts cascade steps taken before the terminal
	// state was reached.
	QualityDowngrades int `json:"quality_downgrades"`

	// Attempts is the full, ordered audit trail across all variants.
	Attempts []AttemptRecord `json:"attempts"`
}

// AttemptsUsed returns the number of engine calls recorded for this result.
func (r *Result) AttemptsUsed() int {
	return len(r.Attempts)
}

// LastAttempt returns the final attempt record, or nil when no engine call
// was ever made (e.g. cancellation before the first attempt).
func (r *Result) LastAttempt() *AttemptRecord {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[len(r.Attempts)-1]
}
