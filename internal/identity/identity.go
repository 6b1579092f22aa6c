// Package identity derives stable content fingerprints for posts.
//
// A post is identified by a hash of its canonical permalink when one
// exists, falling back to a hash of a normalized prefix of its cleaned
// text. Canonicalization keeps only the query parameters that actually
// disambiguate distinct posts, so the same permalink decorated with
// different tracking parameters always hashes identically.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

// allowedParams are the only query parameters that distinguish one post
// from another. Everything else (click tracking, referral markers,
// session state) is dropped when rebuilding the URL.
var allowedParams = map[string]bool{
	"story_fbid": true,
	"id":         true,
	"fbid":       true,
	"set":        true,
	"v":          true,
}

// textPrefixRunes is how much normalized text feeds the fallback hash.
const textPrefixRunes = 200

var whitespaceRuns = regexp.MustCompile(`\s+`)

// CanonicalizeURL rebuilds a permalink from scheme, host, path and the
// allow-listed query parameters, in deterministic parameter order. It
// returns the input unchanged when it does not parse. Applying it twice
// yields the same string as applying it once.
func CanonicalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	kept := url.Values{}
	for key, vals := range u.Query() {
		if allowedParams[key] {
			kept[key] = vals
		}
	}

	out := url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   u.Path,
	}
	if len(kept) > 0 {
		out.RawQuery = kept.Encode()
	}
	return out.String()
}

// PostID returns the 16-hex-character fingerprint for a post. When link
// is non-empty the fingerprint depends only on the canonicalized link;
// otherwise it is computed over the first 200 runes of text with all
// whitespace runs collapsed, so two scrapes of the same post differing
// only in incidental whitespace agree.
func PostID(link, text string) string {
	if link != "" {
		return hashString(CanonicalizeURL(link))
	}

	collapsed := strings.TrimSpace(whitespaceRuns.ReplaceAllString(text, " "))
	runes := []rune(collapsed)
	if len(runes) > textPrefixRunes {
		runes = runes[:textPrefixRunes]
	}
	return hashString(string(runes))
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
