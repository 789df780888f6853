package cache

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Fingerprint keys the result cache. It is "<language>-<hash>" where hash is
// a 32-bit rolling hash of the code rendered in base 36. Distinct inputs may
// share a fingerprint, so a lookup must also compare the stored code.
type Fingerprint string

// NewFingerprint hashes code with hash = hash*31 + unit over its UTF-16 code
// units, wrapping at 32 bits. The language is lower-cased and trimmed.
func NewFingerprint(language, code string) Fingerprint {
	var h int32
	for _, unit := range utf16.Encode([]rune(code)) {
		h = (h << 5) - h + int32(unit)
	}
	return Fingerprint(normalizeLanguage(language) + "-" + strconv.FormatInt(int64(h), 36))
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

func (f Fingerprint) String() string { return string(f) }
