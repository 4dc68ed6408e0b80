// Package slop layers lexical and pattern checks into a single pass/fail
// quality score, with an optional paid second opinion from the generation
// service. Cheap layers run first so a clearly failing draft never costs an
// external call.
package slop

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/copyforge/copyforge/internal/genai"
	"github.com/copyforge/copyforge/internal/immersion"
	"github.com/copyforge/copyforge/internal/rules"
)

// PassThreshold is the fixed minimum passing score.
const PassThreshold = 70

// opinionThreshold gates the external opinion: below it the rule layers have
// already decided and the call is skipped.
const opinionThreshold = 50

const (
	ruleWeight    = 0.4
	opinionWeight = 0.6
)

// violationPenalty mirrors the validator's error weight.
const violationPenalty = 15

// CheckResult is the outcome of one scoring pass.
type CheckResult struct {
	Passed              bool     `json:"passed"`
	Score               int      `json:"score"`
	Violations          []string `json:"violations"`
	UniversalViolations []string `json:"universal_violations"`
	DomainViolations    []string `json:"domain_violations"`
}

const opinionSystem = `You rate marketing copy for substance on a 0-100 scale.
100 means every sentence earns its place with concrete, specific writing.
0 means hollow filler. Judge substance only, not grammar or formatting.`

const opinionSchema = `{
  "type": "object",
  "properties": {
    "score": {"type": "integer", "minimum": 0, "maximum": 100},
    "notes": {"type": "string"}
  },
  "required": ["score", "notes"],
  "additionalProperties": false
}`

const fixSystem = `You repair flagged spans in marketing copy.
Rewrite ONLY the flagged language. Preserve every other sentence exactly.
Never add facts, claims, or numbers that are not already in the text.`

const fixSchema = `{
  "type": "object",
  "properties": {
    "text": {"type": "string"}
  },
  "required": ["text"],
  "additionalProperties": false
}`

// Scorer runs the layered slop check. client may be nil, which disables the
// external opinion layer.
type Scorer struct {
	universal rules.Universal
	client    genai.Client
}

// NewScorer builds a scorer over the catalog's universal lists.
func NewScorer(cat *rules.Catalog, client genai.Client) *Scorer {
	return &Scorer{universal: cat.Universal(), client: client}
}

// Score runs the layers cheapest-first and blends in the external opinion only
// when the rule layers leave the text plausibly passable.
func (s *Scorer) Score(ctx context.Context, text string, profile *immersion.Profile) CheckResult {
	var res CheckResult

	res.UniversalViolations = s.universalLayer(text)
	if profile != nil {
		res.DomainViolations = append(res.DomainViolations, domainPhraseLayer(text, profile)...)
		res.DomainViolations = append(res.DomainViolations, badExampleLayer(text, profile)...)
	}
	res.Violations = append(append([]string{}, res.UniversalViolations...), res.DomainViolations...)

	ruleScore := 100 - violationPenalty*len(res.Violations)
	if ruleScore < 0 {
		ruleScore = 0
	}
	res.Score = ruleScore

	if s.client != nil && ruleScore > opinionThreshold {
		if opinion, err := s.externalOpinion(ctx, text); err != nil {
			log.Warn().Err(err).Msg("external opinion unavailable, using rule score alone")
		} else {
			res.Score = int(ruleWeight*float64(ruleScore) + opinionWeight*float64(opinion))
		}
	}

	res.Passed = res.Score >= PassThreshold
	return res
}

// FixSlop asks the service for one corrective rewrite of the flagged spans.
// Convergence is not guaranteed: callers re-score and accept the result either
// way.
func (s *Scorer) FixSlop(ctx context.Context, text string, violations []string, profile *immersion.Profile) (string, error) {
	if s.client == nil {
		return text, nil
	}
	var b strings.Builder
	b.WriteString("Flagged spans:\n")
	for _, v := range violations {
		b.WriteString("- " + v + "\n")
	}
	if profile != nil && len(profile.Terminology) > 0 {
		b.WriteString("\nPrefer this niche's working vocabulary: ")
		b.WriteString(strings.Join(profile.Terminology, ", "))
		b.WriteString("\n")
	}
	b.WriteString("\nText:\n")
	b.WriteString(text)

	var out struct {
		Text string `json:"text"`
	}
	err := s.client.Generate(ctx, genai.Request{
		System:     fixSystem,
		Prompt:     b.String(),
		SchemaName: "slop_fix",
		Schema:     fixSchema,
		Out:        &out,
	})
	if err != nil {
		return "", fmt.Errorf("fix slop: %w", err)
	}
	return out.Text, nil
}

func (s *Scorer) universalLayer(text string) []string {
	var out []string
	for _, word := range s.universal.ForbiddenWords {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			out = append(out, fmt.Sprintf("forbidden word %q", word))
		}
	}
	for _, pat := range s.universal.ForbiddenPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			continue
		}
		if m := re.FindString(text); m != "" {
			out = append(out, fmt.Sprintf("forbidden pattern match %q", m))
		}
	}
	return out
}

func domainPhraseLayer(text string, profile *immersion.Profile) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, phrase := range profile.ForbiddenInNiche {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			out = append(out, fmt.Sprintf("niche-forbidden phrase %q", phrase))
		}
	}
	for _, phrase := range profile.GenericPhrases {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			out = append(out, fmt.Sprintf("generic phrase %q", phrase))
		}
	}
	return out
}

// badExampleLayer flags text that re-treads a known bad example: more than
// half of the example's significant words present, with at least 3 matching.
func badExampleLayer(text string, profile *immersion.Profile) []string {
	textWords := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		textWords[strings.Trim(w, `.,;:!?"'()`)] = true
	}

	var out []string
	for _, example := range profile.BadExamples {
		var significant []string
		for _, w := range strings.Fields(strings.ToLower(example)) {
			w = strings.Trim(w, `.,;:!?"'()`)
			if len(w) > 4 {
				significant = append(significant, w)
			}
		}
		if len(significant) == 0 {
			continue
		}
		matches := 0
		for _, w := range significant {
			if textWords[w] {
				matches++
			}
		}
		if matches >= 3 && float64(matches)/float64(len(significant)) > 0.5 {
			out = append(out, fmt.Sprintf("echoes known bad example %q", truncate(example, 60)))
		}
	}
	return out
}

func (s *Scorer) externalOpinion(ctx context.Context, text string) (int, error) {
	var out struct {
		Score int    `json:"score"`
		Notes string `json:"notes"`
	}
	err := s.client.Generate(ctx, genai.Request{
		System:     opinionSystem,
		Prompt:     "Rate this copy:\n\n" + text,
		SchemaName: "slop_opinion",
		Schema:     opinionSchema,
		Out:        &out,
	})
	if err != nil {
		return 0, err
	}
	return out.Score, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
