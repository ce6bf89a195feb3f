package tycache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Key derives a stable cache key by hashing its components joined with a
// separator byte not expected in any component.
func Key(components ...string) string {
	h := sha256.New()
	for i, c := range components {
		if i > 0 {
			h.Write([]byte{0x1f}) // unit separator
		}
		h.Write([]byte(c))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashString is a convenience wrapper for hashing a single string, used
// as a sub-component of a larger key (e.g. H(installationPath)).
func HashString(s string) string {
	return Key(s)
}

// SanitizeComponent strips path separators from a component so it can be
// embedded in a cache key destined for use as a filename segment.
func SanitizeComponent(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(s)
}
