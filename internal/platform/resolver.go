// File: internal/platform/resolver.go
package platform

import (
	"fmt"
	"strings"
	"time"
)

// Resolver maps a URL to its platform profile. Resolution is a pure, total
// function: any URL resolves to some profile, with the generic profile as
// the guaranteed fallback.
type Resolver struct {
	profiles []*Profile
	fallback *Profile
}

// NewResolver validates the profile table and builds a resolver.
//
// Two invariants are enforced at construction rather than at call time:
// every pattern belongs to exactly one platform, and no pattern contains
// another platform's pattern (which would make first-match ordering decide
// resolution by accident). The table must end in a generic profile with no
// patterns.
func NewResolver(profiles []*Profile) (*Resolver, error) {
	if len(profiles) == 0 {
		return nil, fmt.Errorf("platform: profile table is empty")
	}

	seen := make(map[string]*Profile)
	var fallback *Profile
	for _, p := range profiles {
		if p.MaxAttempts <= 0 {
			return nil, fmt.Errorf("platform %q: max_attempts must be positive", p.Identity)
		}
		if len(p.Patterns) == 0 {
			if fallback != nil {
				return nil, fmt.Errorf("platform: both %q and %q declare no patterns; only one fallback allowed",
					fallback.Identity, p.Identity)
			}
			fallback = p
			continue
		}
		for _, pat := range p.Patterns {
			pat = strings.ToLower(pat)
			if prev, dup := seen[pat]; dup {
				return nil, fmt.Errorf("platform: pattern %q claimed by both %q and %q",
					pat, prev.Identity, p.Identity)
			}
			for other, owner := range seen {
				if owner == p {
					continue
				}
				if strings.Contains(pat, other) || strings.Contains(other, pat) {
					return nil, fmt.Errorf("platform: ambiguous overlap between %q (%s) and %q (%s)",
						pat, p.Identity, other, owner.Identity)
				}
			}
			seen[pat] = p
		}
	}
	if fallback == nil {
		return nil, fmt.Errorf("platform: profile table has no generic fallback")
	}

	return &Resolver{profiles: profiles, fallback: fallback}, nil
}

// NewDefaultResolver builds a resolver over the static profile table with
// per-platform pacing/attempt overrides applied.
func NewDefaultResolver(overrides map[string]Override) (*Resolver, error) {
	profiles := DefaultProfiles()
	for _, p := range profiles {
		if ov, ok := overrides[string(p.Identity)]; ok {
			if ov.MinInterval > 0 {
				p.MinInterval = ov.MinInterval
			}
			if ov.MaxAttempts > 0 {
				p.MaxAttempts = ov.MaxAttempts
			}
		}
	}
	return NewResolver(profiles)
}

// Override adjusts the configurable knobs of one built-in profile.
type Override struct {
	MinInterval time.Duration
	MaxAttempts int
}

// Resolve returns the profile for url. First declared match wins; anything
// unmatched gets the generic fallback. Never errors.
func (r *Resolver) Resolve(url string) *Profile {
	lower := strings.ToLower(url)
	for _, p := range r.profiles {
		for _, pat := range p.Patterns {
			if strings.Contains(lower, pat) {
				return p
			}
		}
	}
	return r.fallback
}

// Profiles exposes the resolver's table for the rate limiter to seed
// per-platform intervals from.
func (r *Resolver) Profiles() []*Profile {
	return r.profiles
}
