// Package normalize strips platform chrome from raw post text: author
// headers, relative timestamps, engagement footers, action-button rows and
// truncation affordances. Locale strings live in tables (locale.go); the
// cleaner itself is locale-agnostic.
package normalize

import (
	"regexp"
	"strings"
)

// Normalizer cleans raw extracted text for one configured language.
type Normalizer struct {
	tsLine    *regexp.Regexp
	tsPhrase  *regexp.Regexp
	reactions *regexp.Regexp
	actions   *regexp.Regexp
	seeMore   *regexp.Regexp
	separator *regexp.Regexp
	collapse  *regexp.Regexp
}

// New builds a Normalizer for the given language tag. Unknown tags fall
// back to English; known tags are merged with English so chrome rendered
// in either language is removed.
func New(lang string) *Normalizer {
	loc := forLanguage(lang)

	units := quoteAll(loc.TimeUnits)
	return &Normalizer{
		tsLine: regexp.MustCompile(
			`(?im)^\d+\s*(?:` + strings.Join(units, "|") + `)\b[^\n]*\n?[\s·.]*`),
		tsPhrase: regexp.MustCompile(
			`(?im)^(?:` + strings.Join(loc.TimePhrases, "|") + `)\n?[\s·.]*`),
		reactions: regexp.MustCompile(
			`(?is)\n*(?:` + strings.Join(quoteAll(loc.Reactions), "|") + `):.*$`),
		actions: regexp.MustCompile(
			`(?is)\n*(?:` + strings.Join(quoteAll(loc.Like), "|") + `)\n+(?:` +
				strings.Join(quoteAll(loc.Comment), "|") + `)(?:\n+(?:` +
				strings.Join(quoteAll(loc.Share), "|") + `))?.*$`),
		seeMore: regexp.MustCompile(
			`(?i)\s*(?:` + strings.Join(quoteAll(loc.SeeMore), "|") + `)\s*`),
		separator: regexp.MustCompile(`(?m)^[·.]\s*$`),
		collapse:  regexp.MustCompile(`\n{3,}`),
	}
}

// Clean removes platform chrome from raw post text. pageName, when
// non-empty, anchors removal of the "page name + timestamp" header block.
// Clean never fails and is idempotent on already-cleaned input.
func (n *Normalizer) Clean(raw, pageName string) string {
	text := raw

	// Page name and timestamp header, e.g. "Freguesia de Caranguejeira\n1 h\n".
	if pageName != "" {
		header := regexp.MustCompile(
			`(?i)^` + regexp.QuoteMeta(pageName) + `\n.*?\n+\.?\n*`)
		text = header.ReplaceAllString(text, "")
	}

	text = n.tsLine.ReplaceAllString(text, "")
	text = n.tsPhrase.ReplaceAllString(text, "")
	text = n.reactions.ReplaceAllString(text, "")
	text = n.actions.ReplaceAllString(text, "")
	text = n.seeMore.ReplaceAllString(text, "")
	text = n.separator.ReplaceAllString(text, "")
	text = n.collapse.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// Truncated reports whether raw text carries a "see more" style
// truncation affordance, meaning the feed preview cut the post short.
func (n *Normalizer) Truncated(raw string) bool {
	return n.seeMore.MatchString(raw)
}

// IsLoginWall reports whether a page title indicates a redirect to the
// authentication wall. The check spans every supported locale regardless
// of the configured language, since the wall renders in the platform's
// guess of the visitor's language. Empty titles never match.
func IsLoginWall(title string) bool {
	if title == "" {
		return false
	}
	lower := strings.ToLower(title)
	for _, loc := range Locales {
		for _, frag := range loc.LoginTitles {
			if strings.Contains(lower, strings.ToLower(frag)) {
				return true
			}
		}
	}
	return false
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = regexp.QuoteMeta(s)
	}
	return out
}
