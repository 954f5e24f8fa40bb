// Package translation provides the localization port consumed by the status
// service, plus a YAML-bundle-backed resolver implementation. Message keys
// are scoped to the owning provider's namespace, so two providers may use
// colliding keys safely.
package translation

import (
	"golang.org/x/text/language"
)

// Resolver turns a message key plus arguments into a human-readable string
// for a locale.
type Resolver interface {
	// Resolve looks up key inside the given namespace for the given locale
	// and substitutes args into the resulting template. defaultText is used
	// when the key is unknown; an empty defaultText means no fallback text.
	// The second return value is false when no text could be resolved.
	Resolve(namespace, key, defaultText string, locale language.Tag, args ...any) (string, bool)
}
