package preprocess

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Normalizer canonicalizes comment text: lowercase, drop every rune that
// is neither a word character nor whitespace, trim. Idempotent.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

func (n *Normalizer) Normalize(text string) string {
	lowered := strings.ToLower(text)
	cleaned := nonWord.ReplaceAllString(lowered, "")
	return strings.TrimSpace(cleaned)
}
