// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize cleans and canonicalizes raw clause text before comparison.
// Normalization is deterministic and idempotent: Normalize(Normalize(x)) == Normalize(x).
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// bracketed matches masking placeholders such as "[Plan Name]" or "[X]".
var bracketed = regexp.MustCompile(`\[[^\]]*\]`)

// maskedPercent matches redacted percentages left after punctuation stripping.
var maskedPercent = regexp.MustCompile(`^x+%$`)

// DefaultStopWords is a small English function-word list.
var DefaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"if", "in", "into", "is", "it", "its", "of", "on", "or", "such",
	"that", "the", "their", "then", "there", "these", "this", "to", "was",
	"will", "with",
}

// Normalizer canonicalizes clause text. The zero value keeps stop words.
type Normalizer struct {
	stopWords map[string]bool
}

// New returns a Normalizer. When removeStopWords is set, DefaultStopWords
// are dropped from the output.
func New(removeStopWords bool) *Normalizer {
	n := &Normalizer{}
	if removeStopWords {
		n.stopWords = make(map[string]bool, len(DefaultStopWords))
		for _, w := range DefaultStopWords {
			n.stopWords[w] = true
		}
	}
	return n
}

// Normalize lower-cases text, folds accents, strips masking placeholders and
// punctuation (keeping '%'), drops stop words if configured, and collapses
// whitespace. Empty input yields empty output.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	s := foldAccents(strings.ToLower(text))
	s = bracketed.ReplaceAllString(s, " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '%' {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if maskedPercent.MatchString(f) {
			continue
		}
		if n != nil && n.stopWords[f] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

// defaultNormalizer keeps stop words.
var defaultNormalizer = New(false)

// Normalize applies the default normalizer.
func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}

// Tokens splits normalized text into terms.
func Tokens(normalized string) []string {
	return strings.Fields(normalized)
}

// foldAccents decomposes compatibility characters, removes combining marks
// and recomposes the result ("é" -> "e", "ﬁ" -> "fi").
func foldAccents(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
