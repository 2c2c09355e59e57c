// File: internal/classify/classifier.go
// Boundary adapter between the opaque extraction engine and the retry
// machinery. The engine's failures carry no guaranteed structure, so the
// classifier reduces them to a closed ErrorKind via one ordered,
// case-insensitive substring rule table. No other component is allowed to
// interpret raw error text.
package classify

import (
	"strings"

	"github.com/dashvolt/grabbit-cli/api/schemas"
)

// rule pairs a lowercase substring with the kind it selects. Rules are
// evaluated top to bottom; the first hit wins, so ordering is part of the
// classifier's contract.
type rule struct {
	marker string
	kind   schemas.ErrorKind
}

// rules is the canonical classification table. Critical-unavailability
// markers sit first so that content confirmed gone is never scheduled for
// retries, whatever else the message happens to mention.
//
// Note: "blocked" plausibly belongs to both PlatformRejected and
// RateLimited; this table pins it to PlatformRejected so the choice is made
// in exactly one place.
var rules = []rule{
	// CriticalUnavailable: gone for good.
	{"this video is private", schemas.KindCriticalUnavailable},
	{"content is private", schemas.KindCriticalUnavailable},
	{"private video", schemas.KindCriticalUnavailable},
	{"has been removed", schemas.KindCriticalUnavailable},
	{"video unavailable", schemas.KindCriticalUnavailable},
	{"no longer available", schemas.KindCriticalUnavailable},
	{"account suspended", schemas.KindCriticalUnavailable},
	{"account has been terminated", schemas.KindCriticalUnavailable},
	{"deleted", schemas.KindCriticalUnavailable},
	{"removed", schemas.KindCriticalUnavailable},
	{"private", schemas.KindCriticalUnavailable},

	// AuthRequired: content exists but needs credentials.
	{"login required", schemas.KindAuthRequired},
	{"sign in to confirm", schemas.KindAuthRequired},
	{"authentication", schemas.KindAuthRequired},
	{"subscriber", schemas.KindAuthRequired},
	{"members-only", schemas.KindAuthRequired},
	{"age-restricted", schemas.KindAuthRequired},

	// RateLimited.
	{"429", schemas.KindRateLimited},
	{"too many requests", schemas.KindRateLimited},
	{"rate limit", schemas.KindRateLimited},
	{"rate-limit", schemas.KindRateLimited},

	// QuotaExceeded.
	{"quota", schemas.KindQuotaExceeded},
	{"exceeded", schemas.KindQuotaExceeded},

	// PlatformRejected: upstream actively refused the client.
	{"403", schemas.KindPlatformRejected},
	{"forbidden", schemas.KindPlatformRejected},
	{"access denied", schemas.KindPlatformRejected},
	{"blocked", schemas.KindPlatformRejected},
	{"captcha", schemas.KindPlatformRejected},
	{"unable to extract", schemas.KindPlatformRejected},

	// TemporarilyUnavailable: server-side blips.
	{"500", schemas.KindTemporarilyUnavailable},
	{"502", schemas.KindTemporarilyUnavailable},
	{"503", schemas.KindTemporarilyUnavailable},
	{"504", schemas.KindTemporarilyUnavailable},
	{"service unavailable", schemas.KindTemporarilyUnavailable},
	{"bad gateway", schemas.KindTemporarilyUnavailable},
	{"try again later", schemas.KindTemporarilyUnavailable},
	{"temporarily", schemas.KindTemporarilyUnavailable},

	// Network: transport-level trouble.
	{"timed out", schemas.KindNetwork},
	{"timeout", schemas.KindNetwork},
	{"connection reset", schemas.KindNetwork},
	{"connection refused", schemas.KindNetwork},
	{"network", schemas.KindNetwork},
	{"dns", schemas.KindNetwork},
	{"eof", schemas.KindNetwork},

	// Parsing: the engine could not make sense of what it fetched.
	{"unable to parse", schemas.KindParsing},
	{"json", schemas.KindParsing},
	{"malformed", schemas.KindParsing},
	{"unsupported url", schemas.KindParsing},
}

// Classifier maps raw extraction failures onto the error taxonomy.
type Classifier struct {
	rules []rule
}

// New returns a classifier backed by the canonical rule table.
func New() *Classifier {
	return &Classifier{rules: rules}
}

// Classify assigns exactly one kind to a raw failure. Total over arbitrary
// input: unmatched (or empty) messages classify as Unknown, never an error.
func (c *Classifier) Classify(rawMsg string) schemas.ErrorKind {
	lower := strings.ToLower(rawMsg)
	for _, r := range c.rules {
		if strings.Contains(lower, r.marker) {
			return r.kind
		}
	}
	return schemas.KindUnknown
}

// ClassifyErr is a convenience wrapper over error values.
func (c *Classifier) ClassifyErr(err error) schemas.ErrorKind {
	if err == nil {
		return schemas.KindUnknown
	}
	return c.Classify(err.Error())
}
