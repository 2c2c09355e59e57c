// File: internal/platform/profile.go
package platform

import (
	"math/rand"
	"time"

	"github.com/dashvolt/grabbit-cli/api/schemas"
	"github.com/dashvolt/grabbit-cli/internal/retry"
)

// Profile bundles the behavioral knobs for one remote platform: how to
// present ourselves, how hard to hammer it, and how to react to its failure
// modes. Immutable once the resolver is constructed; one instance per
// platform.
type Profile struct {
	Identity schemas.Platform

	// Patterns are the host substrings the resolver matches this profile
	// against. First declared match wins.
	Patterns []string

	// UserAgents is the pool a user agent is drawn from per attempt.
	UserAgents []string
	// Headers are static headers sent with every request for this platform.
	Headers map[string]string
	// ExtractorHints are engine switches passed through verbatim.
	ExtractorHints []string

	// MinInterval is the minimum spacing between requests to this platform.
	MinInterval time.Duration
	// MaxAttempts bounds the attempt loop per URL variant.
	MaxAttempts int

	// StrategyOverrides take precedence over the global registry for the
	// listed kinds.
	StrategyOverrides map[schemas.ErrorKind]retry.Strategy
}

// RandomUserAgent draws one agent from the pool, or returns the package
// default when the pool is empty.
func (p *Profile) RandomUserAgent() string {
	if len(p.UserAgents) == 0 {
		return defaultUserAgents[rand.Intn(len(defaultUserAgents))]
	}
	return p.UserAgents[rand.Intn(len(p.UserAgents))]
}

// StrategyFor returns the profile-level override for kind, if any.
func (p *Profile) StrategyFor(kind schemas.ErrorKind) (retry.Strategy, bool) {
	s, ok := p.StrategyOverrides[kind]
	return s, ok
}

// defaultUserAgents is a small pool of current desktop browser agents used
// when a profile declares none of its own.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
}

// DefaultProfiles builds the static platform table. Pacing and attempt
// budgets are overridable through configuration; identity, matching patterns
// and header templates are code-owned.
func DefaultProfiles() []*Profile {
	return []*Profile{
		{
			Identity:    schemas.PlatformYouTube,
			Patterns:    []string{"youtube.com", "youtu.be"},
			MinInterval: 3 * time.Second,
			MaxAttempts: 3,
			Headers: map[string]string{
				"Accept-Language": "en-US,en;q=0.9",
			},
			ExtractorHints: []string{"--extractor-args", "youtube:player_client=android,web"},
		},
		{
			Identity:    schemas.PlatformTikTok,
			Patterns:    []string{"tiktok.com"},
			MinInterval: 5 * time.Second,
			MaxAttempts: 2,
			Headers: map[string]string{
				"Accept-Language": "en-US,en;q=0.9",
				"Referer":         "https://www.tiktok.com/",
			},
		},
		{
			Identity:    schemas.PlatformInstagram,
			Patterns:    []string{"instagram.com"},
			MinInterval: 8 * time.Second,
			MaxAttempts: 2,
			Headers: map[string]string{
				"Accept-Language": "en-US,en;q=0.9",
			},
			// Instagram rejections are almost always permanent for an
			// anonymous client; keep retries tight.
			StrategyOverrides: map[schemas.ErrorKind]retry.Strategy{
				schemas.KindPlatformRejected: retry.FixedDelay{Delay: 10 * time.Second, MaxAttempts: 1},
			},
		},
		{
			Identity:    schemas.PlatformTwitter,
			Patterns:    []string{"twitter.com", "x.com"},
			MinInterval: 4 * time.Second,
			MaxAttempts: 3,
		},
		{
			Identity:    schemas.PlatformReddit,
			Patterns:    []string{"reddit.com", "redd.it"},
			MinInterval: 3 * time.Second,
			MaxAttempts: 3,
		},
		{
			// Generic catch-all. Must stay last; it matches everything.
			Identity:    schemas.PlatformGeneric,
			Patterns:    nil,
			MinInterval: 2 * time.Second,
			MaxAttempts: 2,
		},
	}
}
