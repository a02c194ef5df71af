package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint computes the stable content hash spec.md §4.9 assigns to a
// Finding: SHA-256 hex of (debtType, filePath, normalizedSpanText) when a
// span is supplied, or (debtType, filePath, title) when it is not.
//
// normalizedSpanText is produced by NormalizeSpan and must already have
// trailing whitespace stripped per line with a single LF separator;
// Fingerprint itself does no normalization so it stays agnostic to
// whether the caller had a span or a title to hash.
func Fingerprint(debtType, filePath, spanOrTitle string) string {
	h := sha256.New()
	h.Write([]byte(debtType))
	h.Write([]byte{0})
	h.Write([]byte(filePath))
	h.Write([]byte{0})
	h.Write([]byte(spanOrTitle))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeSpan joins the given source lines with a single LF separator
// after stripping trailing whitespace from each line, matching spec.md
// §4.9's normalized-span-text definition.
func NormalizeSpan(lines []string) string {
	normalized := make([]string, len(lines))
	for i, l := range lines {
		normalized[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.Join(normalized, "\n")
}
