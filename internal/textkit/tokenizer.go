// Package textkit provides the sentence and paragraph splitting the rule checks
// run on.
package textkit

import (
	"regexp"
	"strings"
)

// Sentence is one tokenized sentence with its byte offset in the source text.
type Sentence struct {
	Text  string
	Start int
}

// Tokenizer splits raw text into sentences and paragraphs. Rule logic depends
// only on this interface, so a stricter boundary detector can be substituted
// without touching the checks.
type Tokenizer interface {
	Sentences(text string) []Sentence
	Paragraphs(text string) []string
}

// sentenceEnd matches a terminator followed by whitespace. Abbreviations are
// not guarded against: "e.g. this" splits in two. That inaccuracy is part of
// the validator's contract; see the package tests before changing it.
var sentenceEnd = regexp.MustCompile(`[.!?](\s+|$)`)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// RegexTokenizer is the default punctuation-boundary tokenizer.
type RegexTokenizer struct{}

// NewRegexTokenizer returns the default tokenizer.
func NewRegexTokenizer() *RegexTokenizer {
	return &RegexTokenizer{}
}

// Sentences splits text on `.`, `!` or `?` followed by whitespace. Empty
// fragments are dropped; offsets index into the original text.
func (*RegexTokenizer) Sentences(text string) []Sentence {
	var out []Sentence
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		raw := text[start:loc[1]]
		if s := strings.TrimSpace(raw); s != "" {
			out = append(out, Sentence{Text: s, Start: start + leadingSpace(raw)})
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, Sentence{Text: s, Start: start + leadingSpace(text[start:])})
	}
	return out
}

// Paragraphs splits text on blank lines, trimming each block.
func (*RegexTokenizer) Paragraphs(text string) []string {
	var out []string
	for _, block := range blankLine.Split(text, -1) {
		if p := strings.TrimSpace(block); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t\n\r"))
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// FirstWord returns the first whitespace-delimited token of s, lowercased and
// stripped of surrounding punctuation. Empty input yields "".
func FirstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(fields[0], `"'**#>()[],.;:!?`))
}
