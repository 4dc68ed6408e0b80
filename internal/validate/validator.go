// Package validate implements the deterministic draft validator: a pure rule
// pass that scores a text artifact against a rule catalog entry and reports
// structured violations. It never performs semantic judgment; that stays with
// the generation service.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/copyforge/copyforge/internal/rules"
	"github.com/copyforge/copyforge/internal/textkit"
)

// Kind classifies a violation.
type Kind string

const (
	KindForbiddenWord      Kind = "forbidden_word"
	KindForbiddenPattern   Kind = "forbidden_pattern"
	KindEmDash             Kind = "em_dash"
	KindSentenceTooLong    Kind = "sentence_too_long"
	KindAdjectiveStacking  Kind = "adjective_stacking"
	KindBadFirstWord       Kind = "bad_first_word"
	KindMissingSpecificity Kind = "missing_specificity"
)

// Severity is the weight of a violation. Only errors make a draft invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is one rule breach, produced fresh on every validation call.
type Violation struct {
	Kind     Kind     `json:"kind"`
	Location string   `json:"location"`
	Details  string   `json:"details"`
	Severity Severity `json:"severity"`
}

// Result is the outcome of one validation pass.
type Result struct {
	IsValid    bool        `json:"is_valid"`
	Violations []Violation `json:"violations"`
	Score      int         `json:"score"`
}

// specificityMinChars is the minimum combined length a sentence group must
// reach before a missing-specificity warning applies. Short groups carry too
// little text to owe a concrete detail.
const specificityMinChars = 80

// badOpeners is the fixed set of transition/conjunction words a paragraph may
// not start with.
var badOpeners = map[string]bool{
	"additionally": true, "however": true, "because": true, "furthermore": true,
	"moreover": true, "also": true, "basically": true, "essentially": true,
	"ultimately": true, "importantly": true, "interestingly": true,
	"and": true, "but": true, "so": true, "plus": true,
}

// genericNouns closes the adjective-stacking heuristic: only stacks in front of
// these marketing nouns are flagged. This is a pattern match, not a POS tagger.
var genericNouns = []string{
	"interface", "system", "solution", "platform", "product", "service",
	"tool", "experience", "approach", "framework", "process", "technology",
}

var (
	emDashPattern       = regexp.MustCompile(`\x{2014}|\x{2013}|--`)
	digitRun            = regexp.MustCompile(`\d`)
	adjectiveStackRegex = regexp.MustCompile(
		`(?i)\b([a-z-]+), ([a-z-]+),? (?:and )?([a-z-]+) (` + strings.Join(genericNouns, "|") + `)\b`)
)

// Validator checks text artifacts against the rule catalog. Safe for
// concurrent use.
type Validator struct {
	tok textkit.Tokenizer
	cat *rules.Catalog

	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

// New returns a validator over the given tokenizer and catalog.
func New(tok textkit.Tokenizer, cat *rules.Catalog) *Validator {
	return &Validator{tok: tok, cat: cat, cache: make(map[string]*regexp.Regexp)}
}

// Validate checks text against the catalog entry for ch plus the universal
// forbidden lists.
func (v *Validator) Validate(text string, ch rules.Channel) (Result, error) {
	entry, err := v.cat.ForChannel(ch)
	if err != nil {
		return Result{}, err
	}
	return v.ValidateWith(text, entry), nil
}

// ValidateWith checks text against an explicit entry; callers use it to
// tighten catalog limits per beat. The universal forbidden lists still apply.
// The pass is deterministic and always returns a result: empty text yields
// zero violations and a score of 100, so callers must reject empty output
// upstream.
func (v *Validator) ValidateWith(text string, entry rules.Entry) Result {
	var violations []Violation

	sentences := v.tok.Sentences(text)

	violations = append(violations, v.checkSentenceLength(sentences, entry.MaxSentenceWords)...)
	violations = append(violations, v.checkForbiddenWords(text, entry.ForbiddenWords)...)
	violations = append(violations, v.checkForbiddenPatterns(text, entry.ForbiddenPatterns)...)
	violations = append(violations, v.checkEmDash(text)...)
	violations = append(violations, v.checkParagraphOpeners(text)...)
	violations = append(violations, v.checkAdjectiveStacking(text)...)
	violations = append(violations, v.checkSpecificity(sentences, entry.SpecificDetailEveryNSentences)...)

	return summarize(violations)
}

func summarize(violations []Violation) Result {
	errors, warnings := 0, 0
	for _, viol := range violations {
		if viol.Severity == SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	score := 100 - 15*errors - 5*warnings
	if score < 0 {
		score = 0
	}
	return Result{IsValid: errors == 0, Violations: violations, Score: score}
}

func (v *Validator) checkSentenceLength(sentences []textkit.Sentence, maxWords int) []Violation {
	if maxWords <= 0 {
		return nil
	}
	var out []Violation
	for i, s := range sentences {
		if count := textkit.WordCount(s.Text); count > maxWords {
			out = append(out, Violation{
				Kind:     KindSentenceTooLong,
				Location: fmt.Sprintf("sentence %d", i+1),
				Details:  fmt.Sprintf("%d words, limit %d: %q", count, maxWords, truncate(s.Text, 60)),
				Severity: SeverityError,
			})
		}
	}
	return out
}

// checkForbiddenWords scans case-insensitively for whole-word occurrences of
// each term, combining the entry list with the universal list. One violation
// per term, at its first match.
func (v *Validator) checkForbiddenWords(text string, entryWords []string) []Violation {
	var out []Violation
	seen := map[string]bool{}
	words := append(append([]string{}, v.cat.Universal().ForbiddenWords...), entryWords...)
	for _, word := range words {
		key := strings.ToLower(word)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		re := v.compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if re == nil {
			continue
		}
		if loc := re.FindStringIndex(text); loc != nil {
			out = append(out, Violation{
				Kind:     KindForbiddenWord,
				Location: fmt.Sprintf("offset %d", loc[0]),
				Details:  fmt.Sprintf("forbidden word %q", word),
				Severity: SeverityError,
			})
		}
	}
	return out
}

func (v *Validator) checkForbiddenPatterns(text string, entryPatterns []string) []Violation {
	var out []Violation
	patterns := append(append([]string{}, v.cat.Universal().ForbiddenPatterns...), entryPatterns...)
	for _, pat := range patterns {
		re := v.compile(pat)
		if re == nil {
			continue
		}
		if loc := re.FindStringIndex(text); loc != nil {
			out = append(out, Violation{
				Kind:     KindForbiddenPattern,
				Location: fmt.Sprintf("offset %d", loc[0]),
				Details:  fmt.Sprintf("matched forbidden pattern %q: %q", pat, text[loc[0]:loc[1]]),
				Severity: SeverityError,
			})
		}
	}
	return out
}

// checkEmDash emits at most one violation no matter how many dashes appear.
func (v *Validator) checkEmDash(text string) []Violation {
	loc := emDashPattern.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	return []Violation{{
		Kind:     KindEmDash,
		Location: fmt.Sprintf("offset %d", loc[0]),
		Details:  "em dash or double hyphen",
		Severity: SeverityError,
	}}
}

func (v *Validator) checkParagraphOpeners(text string) []Violation {
	var out []Violation
	for i, para := range v.tok.Paragraphs(text) {
		first := textkit.FirstWord(para)
		if badOpeners[first] {
			out = append(out, Violation{
				Kind:     KindBadFirstWord,
				Location: fmt.Sprintf("paragraph %d", i+1),
				Details:  fmt.Sprintf("paragraph opens with %q", first),
				Severity: SeverityError,
			})
		}
	}
	return out
}

func (v *Validator) checkAdjectiveStacking(text string) []Violation {
	var out []Violation
	for _, m := range adjectiveStackRegex.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, Violation{
			Kind:     KindAdjectiveStacking,
			Location: fmt.Sprintf("offset %d", m[0]),
			Details:  fmt.Sprintf("stacked adjectives before generic noun: %q", text[m[0]:m[1]]),
			Severity: SeverityError,
		})
	}
	return out
}

// checkSpecificity partitions sentences into consecutive groups of n and
// requires each sufficiently long group to carry either a digit or a
// mid-sentence capitalized token. Failures are warnings.
func (v *Validator) checkSpecificity(sentences []textkit.Sentence, n int) []Violation {
	if n <= 0 || len(sentences) == 0 {
		return nil
	}
	var out []Violation
	for start := 0; start < len(sentences); start += n {
		end := start + n
		if end > len(sentences) {
			end = len(sentences)
		}
		group := sentences[start:end]
		chars := 0
		specific := false
		for _, s := range group {
			chars += len(s.Text)
			if digitRun.MatchString(s.Text) || hasMidSentenceCapital(s.Text) {
				specific = true
			}
		}
		if !specific && chars >= specificityMinChars {
			out = append(out, Violation{
				Kind:     KindMissingSpecificity,
				Location: fmt.Sprintf("sentences %d-%d", start+1, end),
				Details:  fmt.Sprintf("no concrete detail in %d consecutive sentences", end-start),
				Severity: SeverityWarning,
			})
		}
	}
	return out
}

func hasMidSentenceCapital(sentence string) bool {
	fields := strings.Fields(sentence)
	for i, f := range fields {
		if i == 0 {
			continue
		}
		trimmed := strings.TrimLeft(f, `"'(`)
		if trimmed == "" {
			continue
		}
		c := trimmed[0]
		if c >= 'A' && c <= 'Z' && trimmed != "I" {
			return true
		}
	}
	return false
}

func (v *Validator) compile(pattern string) *regexp.Regexp {
	v.mu.Lock()
	defer v.mu.Unlock()
	if re, ok := v.cache[pattern]; ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		log.Warn().Str("pattern", pattern).Err(err).Msg("skipping uncompilable rule pattern")
		v.cache[pattern] = nil
		return nil
	}
	v.cache[pattern] = re
	return re
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
