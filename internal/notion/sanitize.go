package notion

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// badURLChars are invisible or spacing code points that break the store's
// URL fields: narrow no-break space, zero width space, byte-order mark,
// left-to-right and right-to-left marks, word joiner, no-break space and
// ideographic space.
const badURLChars = "\u202f\u200b\ufeff\u200e\u200f\u2060\u00a0\u3000"

// SanitizeURL validates and normalizes a URL destined for a store block.
// An empty result means the URL is unusable and the referencing block must
// be dropped. Scheme-less URLs are assumed to be https.
func SanitizeURL(raw string) string {
	if raw == "" || strings.ContainsAny(raw, badURLChars) {
		return ""
	}

	u := norm.NFC.String(strings.TrimSpace(raw))
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + strings.TrimLeft(u, "/")
}
