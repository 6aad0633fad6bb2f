package anim

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CleanPath trims surrounding whitespace and NFC-normalizes a channel or
// camera path so visually identical paths compare equal.
func CleanPath(p string) string {
	return norm.NFC.String(strings.TrimSpace(p))
}
