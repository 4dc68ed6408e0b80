package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Deterministic cleanup applied to every generated text before validation.
// Applying it to already-clean text changes nothing, so texts can pass
// through it any number of times.

var (
	spacedDash   = regexp.MustCompile(`\s+(?:\x{2014}|\x{2013}|--)\s+`)
	attachedDash = regexp.MustCompile(`(?:\x{2014}|\x{2013}|--)`)
	bangRun      = regexp.MustCompile(`!{2,}`)
	happyCloser  = regexp.MustCompile(`Happy \w+ing[.!]?$`)
)

var formulaicOpeners = []string{
	"Here's the thing:",
	"Here's the thing.",
	"Let me explain.",
	"Let me be clear:",
	"Picture this:",
	"In today's fast-paced world,",
	"In this article, we will",
}

var formulaicClosers = []string{
	"The rest is up to you.",
	"And that's a wrap.",
}

// PostProcess runs the ordered transforms: dash removal, exclamation
// damping, formulaic opener and closer stripping.
func PostProcess(text string) string {
	text = replaceDashes(text)
	text = dampExclamations(text)
	text = stripFormulaic(text)
	return text
}

func replaceDashes(text string) string {
	text = spacedDash.ReplaceAllString(text, ", ")
	for {
		loc := attachedDash.FindStringIndex(text)
		if loc == nil {
			return text
		}
		rest := strings.TrimLeft(text[loc[1]:], " ")
		sep := ", "
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsUpper(r) {
			sep = ". "
		}
		text = strings.TrimRight(text[:loc[0]], " ") + sep + rest
	}
}

// dampExclamations collapses runs of exclamation marks and keeps at most
// one exclamation in the whole text. The last one survives; every earlier
// one becomes a period.
func dampExclamations(text string) string {
	text = bangRun.ReplaceAllString(text, "!")
	last := strings.LastIndexByte(text, '!')
	if last < 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range text {
		if r == '!' && i != last {
			b.WriteRune('.')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripFormulaic(text string) string {
	for changed := true; changed; {
		changed = false
		trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
		for _, opener := range formulaicOpeners {
			if strings.HasPrefix(trimmed, opener) {
				text = strings.TrimLeftFunc(trimmed[len(opener):], unicode.IsSpace)
				changed = true
				break
			}
		}
	}
	for changed := true; changed; {
		changed = false
		trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
		if loc := happyCloser.FindStringIndex(trimmed); loc != nil {
			text = strings.TrimRightFunc(trimmed[:loc[0]], unicode.IsSpace)
			changed = true
			continue
		}
		for _, closer := range formulaicClosers {
			if strings.HasSuffix(trimmed, closer) {
				text = strings.TrimRightFunc(trimmed[:len(trimmed)-len(closer)], unicode.IsSpace)
				changed = true
				break
			}
		}
	}
	return text
}
