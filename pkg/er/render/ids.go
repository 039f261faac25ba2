package render

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// idHashLen is the number of hex characters of the hash kept in generated ids.
// Eight characters (32 bits) keep ids short while making collisions between
// distinct (value, prefix) pairs practically impossible within one diagram.
const idHashLen = 8

// GenerateID derives a stable, DOM-safe element id from a semantic value and
// a disambiguating prefix. The function is pure: identical inputs always
// produce identical output, so the same logical element keeps its id across
// renders of unchanged input. Distinct prefixes salt the hash, so equal
// values under different prefixes do not collide.
func GenerateID(value, prefix string) string {
	sum := sha256.Sum256([]byte(prefix + ":" + value))
	return prefix + "-" + sanitizeID(value) + "-" + hex.EncodeToString(sum[:])[:idHashLen]
}

// sanitizeID replaces characters that are unsafe in XML ids or CSS selectors.
func sanitizeID(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
