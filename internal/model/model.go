// Package model defines the domain types used across the application.
package model

// Post is one piece of content extracted from a monitored page.
// It is created once by the extractor and never mutated afterwards;
// after delivery only its ID survives, inside the dedup store.
type Post struct {
	// ID is the stable content fingerprint: a hash of the canonical
	// permalink when one exists, otherwise a hash of the cleaned text.
	ID string

	// Text is the cleaned post body. Posts whose cleaned text falls
	// below the configured minimum never become a Post at all.
	Text string

	// Link is the canonical permalink, or empty when none was found.
	Link string

	// Images holds up to MaxImages CDN image URLs in document order.
	Images []string

	// PageName is the display name of the source page at extraction
	// time. May be empty when the page header could not be read.
	PageName string
}
