// File: internal/variant/generator.go
// Alternate address forms for platforms that expose several equivalent URL
// shapes. Generating a variant is pure string rewriting; actually trying one
// is the orchestrator's job.
package variant

import (
	"strings"

	"github.com/dashvolt/grabbit-cli/api/schemas"
)

// maxVariants caps the sequence length per URL, original included.
const maxVariants = 5

// rewriteRule transforms a URL into an equivalent form, or returns
// ("", false) when it does not apply.
type rewriteRule func(url string) (string, bool)

// rulesByPlatform declares the per-platform rewrite rules, applied in order
// against the original URL only. Platforms without an entry get the
// single-element sequence.
var rulesByPlatform = map[schemas.Platform][]rewriteRule{
	schemas.PlatformYouTube: {
		shortToWatch,
		watchToShort,
		swapPrefix("https://m.youtube.com/", "https://www.youtube.com/"),
		swapPrefix("https://www.youtube.com/", "https://m.youtube.com/"),
		shortsToWatch,
	},
	schemas.PlatformTikTok: {
		swapPrefix("https://vm.tiktok.com/", "https://www.tiktok.com/"),
		swapPrefix("https://m.tiktok.com/", "https://www.tiktok.com/"),
	},
	schemas.PlatformTwitter: {
		swapHost("twitter.com", "x.com"),
		swapHost("x.com", "twitter.com"),
		swapHost("mobile.twitter.com", "twitter.com"),
	},
	schemas.PlatformInstagram: {
		stripQuery,
	},
	schemas.PlatformReddit: {
		swapHost("old.reddit.com", "www.reddit.com"),
		swapHost("www.reddit.com", "old.reddit.com"),
	},
}

// Generator produces ordered, deduplicated variant sequences.
type Generator struct{}

// New returns a variant generator over the built-in rule table.
func New() *Generator {
	return &Generator{}
}

// Variants returns the candidate URLs for one acquisition: the original
// first, then each applicable rewrite in rule order, deduplicated and capped
// at maxVariants.
func (g *Generator) Variants(url string, platform schemas.Platform) []string {
	out := []string{url}
	seen := map[string]struct{}{url: {}}

	for _, apply := range rulesByPlatform[platform] {
		if len(out) >= maxVariants {
			break
		}
		rewritten, ok := apply(url)
		if !ok || rewritten == url {
			continue
		}
		if _, dup := seen[rewritten]; dup {
			continue
		}
		seen[rewritten] = struct{}{}
		out = append(out, rewritten)
	}
	return out
}

// -- rewrite rules --

// shortToWatch expands youtu.be share links into canonical watch URLs.
func shortToWatch(url string) (string, bool) {
	const prefix = "https://youtu.be/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(url, prefix)
	id, query, _ := strings.Cut(rest, "?")
	if id == "" {
		return "", false
	}
	watch := "https://www.youtube.com/watch?v=" + id
	if query != "" {
		watch += "&" + query
	}
	return watch, true
}

// watchToShort collapses canonical watch URLs into the youtu.be share form.
func watchToShort(url string) (string, bool) {
	const prefix = "https://www.youtube.com/watch?v="
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(url, prefix)
	id, _, _ := strings.Cut(rest, "&")
	if id == "" {
		return "", false
	}
	return "https://youtu.be/" + id, true
}

// shortsToWatch rewrites the shorts shape into a plain watch URL.
func shortsToWatch(url string) (string, bool) {
	const marker = "youtube.com/shorts/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	rest := url[idx+len(marker):]
	id, _, _ := strings.Cut(rest, "?")
	if id == "" {
		return "", false
	}
	return "https://www.youtube.com/watch?v=" + id, true
}

// swapPrefix replaces a full URL prefix.
func swapPrefix(from, to string) rewriteRule {
	return func(url string) (string, bool) {
		if !strings.HasPrefix(url, from) {
			return "", false
		}
		return to + strings.TrimPrefix(url, from), true
	}
}

// swapHost replaces the host component, keeping scheme and path.
func swapHost(from, to string) rewriteRule {
	return func(url string) (string, bool) {
		needle := "://" + from + "/"
		if !strings.Contains(url, needle) {
			// Tolerate URLs without a trailing slash after the host.
			if strings.HasSuffix(url, "://"+from) {
				return strings.Replace(url, "://"+from, "://"+to, 1), true
			}
			return "", false
		}
		return strings.Replace(url, needle, "://"+to+"/", 1), true
	}
}

// stripQuery removes tracking parameters; share links frequently carry an
// igsh/utm tail that some endpoints refuse.
func stripQuery(url string) (string, bool) {
	base, _, found := strings.Cut(url, "?")
	if !found || base == "" {
		return "", false
	}
	return base, true
}
