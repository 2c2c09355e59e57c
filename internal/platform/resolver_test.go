// internal/platform/resolver_test.go
package platform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashvolt/grabbit-cli/api/schemas"
)

func TestResolve_KnownPlatforms(t *testing.T) {
	r, err := NewResolver(DefaultProfiles())
	require.NoError(t, err)

	tests := []struct {
		url  string
		want schemas.Platform
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", schemas.PlatformYouTube},
		{"https://youtu.be/dQw4w9WgXcQ", schemas.PlatformYouTube},
		{"https://m.youtube.com/watch?v=abc", schemas.PlatformYouTube},
		{"https://www.tiktok.com/@user/video/123", schemas.PlatformTikTok},
		{"https://vm.tiktok.com/ZM123/", schemas.PlatformTikTok},
		{"https://www.instagram.com/reel/Xyz/", schemas.PlatformInstagram},
		{"https://twitter.com/user/status/1", schemas.PlatformTwitter},
		{"https://x.com/user/status/1", schemas.PlatformTwitter},
		{"https://old.reddit.com/r/videos/comments/abc/", schemas.PlatformReddit},
		{"https://redd.it/abc", schemas.PlatformReddit},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.url).Identity)
		})
	}
}

// TestResolve_TotalFunction verifies every URL resolves to some profile.
func TestResolve_TotalFunction(t *testing.T) {
	r, err := NewResolver(DefaultProfiles())
	require.NoError(t, err)

	for _, url := range []string{
		"https://example.com/some/video.mp4",
		"not even a url",
		"",
		"ftp://weird.host/file",
	} {
		p := r.Resolve(url)
		require.NotNil(t, p, "resolution must be total for %q", url)
		assert.Equal(t, schemas.PlatformGeneric, p.Identity)
	}
}

func TestResolve_CaseInsensitive(t *testing.T) {
	r, err := NewResolver(DefaultProfiles())
	require.NoError(t, err)
	assert.Equal(t, schemas.PlatformYouTube, r.Resolve("HTTPS://WWW.YOUTUBE.COM/WATCH?V=ABC").Identity)
}

// TestNewResolver_FailsFastOnOverlap verifies construction-time rejection of
// ambiguous pattern tables.
func TestNewResolver_FailsFastOnOverlap(t *testing.T) {
	tests := []struct {
		name     string
		profiles []*Profile
	}{
		{
			name: "duplicate pattern across platforms",
			profiles: []*Profile{
				{Identity: "a", Patterns: []string{"video.example"}, MaxAttempts: 1},
				{Identity: "b", Patterns: []string{"video.example"}, MaxAttempts: 1},
				{Identity: "generic", MaxAttempts: 1},
			},
		},
		{
			name: "substring containment across platforms",
			profiles: []*Profile{
				{Identity: "a", Patterns: []string{"tube.example.com"}, MaxAttempts: 1},
				{Identity: "b", Patterns: []string{"example.com"}, MaxAttempts: 1},
				{Identity: "generic", MaxAttempts: 1},
			},
		},
		{
			name: "two fallbacks",
			profiles: []*Profile{
				{Identity: "generic", MaxAttempts: 1},
				{Identity: "also-generic", MaxAttempts: 1},
			},
		},
		{
			name: "no fallback",
			profiles: []*Profile{
				{Identity: "a", Patterns: []string{"a.example"}, MaxAttempts: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(tt.profiles)
			assert.Error(t, err)
		})
	}
}

func TestNewDefaultResolver_AppliesOverrides(t *testing.T) {
	r, err := NewDefaultResolver(map[string]Override{
		"youtube": {MinInterval: 9 * time.Second, MaxAttempts: 7},
	})
	require.NoError(t, err)

	p := r.Resolve("https://youtu.be/abc")
	assert.Equal(t, 9*time.Second, p.MinInterval)
	assert.Equal(t, 7, p.MaxAttempts)

	// Untouched platforms keep their built-in values.
	assert.Equal(t, 2, r.Resolve("https://www.tiktok.com/v/1").MaxAttempts)
}

func TestProfile_RandomUserAgent(t *testing.T) {
	p := &Profile{UserAgents: []string{"agent-one"}}
	assert.Equal(t, "agent-one", p.RandomUserAgent())

	// Empty pool falls back to the package defaults.
	empty := &Profile{}
	assert.NotEmpty(t, empty.RandomUserAgent())
}
