// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/data"
	"github.com/neurosnap/sentences/english"

	"github.com/pdiddy/clause-classifier/internal/convert"
)

// ErrNoConverter is returned for PDF documents when no converter is set.
var ErrNoConverter = errors.New("no PDF converter configured")

// blockElements end a paragraph in HTML documents.
const blockElements = "p, li, h1, h2, h3, h4, h5, h6, tr, td, th, div, section, article, br, blockquote"

// ReadDocument returns the plain text of the document at path. Text and
// Markdown files are read as-is, HTML is flattened with paragraph breaks
// between block elements, and PDFs go through conv.
func ReadDocument(ctx context.Context, path string, conv convert.Converter) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		if conv == nil {
			return "", fmt.Errorf("%s: %w", path, ErrNoConverter)
		}
		return conv.Convert(ctx, path)
	case ".html", ".htm":
		return readHTML(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return string(data), nil
	}
}

func readHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parsing HTML %s: %w", path, err)
	}
	doc.Find("script, style, noscript, head").Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}
	return body.Text(), nil
}

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)
	spaceRun       = regexp.MustCompile(`\s+`)
	initialism     = regexp.MustCompile(`^(?:[A-Za-z]\.){2,}$`)
)

// abbreviations never end a sentence. Single-letter initials are left to
// the tokenizer so "Fee Schedule A." can still close one.
var abbreviations = map[string]bool{
	"art": true, "co": true, "corp": true, "dr": true, "inc": true,
	"ltd": true, "mr": true, "mrs": true, "ms": true, "no": true,
	"nos": true, "para": true, "sec": true, "st": true, "u.s": true,
	"u.s.c": true, "vs": true,
}

const (
	closers = `"')]”’`
	openers = `("“[`
)

var (
	punktOnce sync.Once
	punkt     *sentences.DefaultSentenceTokenizer
)

// tokenizer returns the shared Punkt tokenizer trained on English, or nil
// when the bundled training data cannot be loaded.
func tokenizer() *sentences.DefaultSentenceTokenizer {
	punktOnce.Do(func() {
		b, err := data.Asset("data/english.json")
		if err != nil {
			return
		}
		training, err := sentences.LoadTraining(b)
		if err != nil {
			return
		}
		for abbr := range abbreviations {
			training.AbbrevTypes.Add(abbr)
		}
		t, err := english.NewSentenceTokenizer(training)
		if err != nil {
			return
		}
		punkt = t
	})
	return punkt
}

func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Sentences splits text into sentences. Blank lines always end a sentence.
// Within a paragraph a candidate break follows '.', '!' or '?' (plus any
// closing quotes or brackets) when the next word starts with an upper-case
// letter, digit, or opening bracket. A candidate is kept only when the
// previous word is not a known abbreviation and the Punkt tokenizer agrees.
// Whitespace inside a sentence is collapsed.
func Sentences(text string) []string {
	var out []string
	for _, para := range paragraphBreak.Split(text, -1) {
		p := collapseSpace(para)
		if p == "" {
			continue
		}
		out = append(out, splitParagraph(p)...)
	}
	return out
}

func splitParagraph(p string) []string {
	pieces := candidateSplit(p)
	if len(pieces) < 2 {
		return pieces
	}

	// Boundaries are compared by the number of non-space runes before them,
	// ignoring closing quotes and brackets, so whitespace differences between
	// the two splitters do not matter.
	var agreed map[int]bool
	if t := tokenizer(); t != nil {
		agreed = make(map[int]bool)
		n := 0
		for _, s := range t.Tokenize(p) {
			n += nonSpaceLen(s.Text)
			agreed[n-trailingClosers(s.Text)] = true
		}
	}

	var out []string
	cur := pieces[0]
	n := nonSpaceLen(cur)
	for _, next := range pieces[1:] {
		keep := !endsWithAbbreviation(cur)
		if keep && agreed != nil {
			keep = agreed[n-trailingClosers(cur)]
		}
		if keep {
			out = append(out, cur)
			cur = next
		} else {
			cur += " " + next
		}
		n += nonSpaceLen(next)
	}
	return append(out, cur)
}

// endsWithAbbreviation reports whether s ends in an abbreviation or a
// multi-letter initialism such as "U.S.C.".
func endsWithAbbreviation(s string) bool {
	word := strings.TrimRight(s[strings.LastIndexByte(s, ' ')+1:], closers)
	if !strings.HasSuffix(word, ".") {
		return false
	}
	word = strings.TrimLeft(word, openers+closers)
	if initialism.MatchString(word) {
		return true
	}
	return abbreviations[strings.ToLower(strings.TrimSuffix(word, "."))]
}

func nonSpaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func trailingClosers(s string) int {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	return utf8.RuneCountInString(s) - utf8.RuneCountInString(strings.TrimRight(s, closers))
}

func candidateSplit(p string) []string {
	rs := []rune(p)
	var out []string
	start := 0
	for i := 0; i < len(rs); i++ {
		if rs[i] != '.' && rs[i] != '!' && rs[i] != '?' {
			continue
		}
		end := i + 1
		for end < len(rs) && strings.ContainsRune(closers, rs[end]) {
			end++
		}
		if end >= len(rs) || rs[end] != ' ' || end+1 >= len(rs) {
			continue
		}
		next := rs[end+1]
		if !unicode.IsUpper(next) && !unicode.IsDigit(next) && !strings.ContainsRune(openers, next) {
			continue
		}
		if s := strings.TrimSpace(string(rs[start:end])); s != "" {
			out = append(out, s)
		}
		start = end + 1
		i = end
	}
	if s := strings.TrimSpace(string(rs[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
