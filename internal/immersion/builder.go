package immersion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/copyforge/copyforge/internal/genai"
)

const analyzeSystem = `You analyze writing from a market niche and distill how its audience talks.
Work only from the supplied pages and keyword data.
- terminology: words of art this niche actually uses
- forbidden_in_niche: phrases overused in this niche to the point of emptiness
- generic_phrases: filler constructions that appear across the pages
- good_examples: verbatim sentences from the pages with concrete, specific writing
- bad_examples: verbatim sentences from the pages that are hollow or templated
- voice_descriptors: short adjectives for the niche's working register`

const profileSchema = `{
  "type": "object",
  "properties": {
    "terminology": {"type": "array", "items": {"type": "string"}},
    "forbidden_in_niche": {"type": "array", "items": {"type": "string"}},
    "generic_phrases": {"type": "array", "items": {"type": "string"}},
    "good_examples": {"type": "array", "items": {"type": "string"}},
    "bad_examples": {"type": "array", "items": {"type": "string"}},
    "voice_descriptors": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["terminology", "forbidden_in_niche", "generic_phrases", "good_examples", "bad_examples", "voice_descriptors"],
  "additionalProperties": false
}`

// ErrNoMaterial is returned when neither the source page nor any discovered
// page could be read.
var ErrNoMaterial = errors.New("no readable material for domain immersion")

// Builder assembles domain profiles from a source URL.
type Builder struct {
	scraper    Scraper
	researcher Researcher
	client     genai.Client
	maxSources int
}

// NewBuilder wires the immersion collaborators. researcher may be nil, in
// which case keyword enrichment is skipped.
func NewBuilder(scraper Scraper, researcher Researcher, client genai.Client, maxSources int) *Builder {
	if maxSources <= 0 {
		maxSources = 4
	}
	return &Builder{scraper: scraper, researcher: researcher, client: client, maxSources: maxSources}
}

// Build scrapes sourceURL, fans out over pages it links to, enriches with
// keyword research, and asks the generation service to distill a profile.
// Individual collaborator failures reduce context; only a fully empty corpus
// is an error.
func (b *Builder) Build(ctx context.Context, sourceURL string) (*Profile, error) {
	var corpus []string
	var links []string
	topic := sourceURL

	main, err := b.scraper.Scrape(ctx, sourceURL)
	if err != nil || main == nil {
		log.Warn().Str("url", sourceURL).Err(err).Msg("source page unreadable, continuing with reduced context")
	} else {
		corpus = append(corpus, fmt.Sprintf("SOURCE %s:\n%s", sourceURL, main.Content))
		links = main.Links
		if main.Title != "" {
			topic = main.Title
		}
	}

	var keywords Keywords
	if b.researcher != nil {
		keywords, err = b.researcher.Research(ctx, topic)
		if err != nil {
			log.Warn().Str("topic", topic).Err(err).Msg("keyword research unavailable")
		}
	}

	corpus = append(corpus, b.fanOut(ctx, links)...)
	if len(corpus) == 0 {
		return nil, ErrNoMaterial
	}

	var decoded struct {
		Terminology      []string `json:"terminology"`
		ForbiddenInNiche []string `json:"forbidden_in_niche"`
		GenericPhrases   []string `json:"generic_phrases"`
		GoodExamples     []string `json:"good_examples"`
		BadExamples      []string `json:"bad_examples"`
		VoiceDescriptors []string `json:"voice_descriptors"`
	}
	prompt := buildAnalysisPrompt(corpus, keywords)
	if err := b.client.Generate(ctx, genai.Request{
		System:     analyzeSystem,
		Prompt:     prompt,
		SchemaName: "domain_profile",
		Schema:     profileSchema,
		Out:        &decoded,
	}); err != nil {
		return nil, fmt.Errorf("analyze domain: %w", err)
	}

	return &Profile{
		SourceURL:        sourceURL,
		Terminology:      decoded.Terminology,
		ForbiddenInNiche: decoded.ForbiddenInNiche,
		GenericPhrases:   decoded.GenericPhrases,
		GoodExamples:     decoded.GoodExamples,
		BadExamples:      decoded.BadExamples,
		VoiceDescriptors: decoded.VoiceDescriptors,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// fanOut scrapes up to maxSources discovered links concurrently. No ordering
// between branches matters; failed branches are omitted.
func (b *Builder) fanOut(ctx context.Context, links []string) []string {
	if len(links) > b.maxSources {
		links = links[:b.maxSources]
	}
	results := make([]string, len(links))
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(i int, link string) {
			defer wg.Done()
			page, err := b.scraper.Scrape(ctx, link)
			if err != nil || page == nil || page.Content == "" {
				log.Debug().Str("url", link).Err(err).Msg("discovered source skipped")
				return
			}
			results[i] = fmt.Sprintf("DISCOVERED %s:\n%s", link, page.Content)
		}(i, link)
	}
	wg.Wait()

	var out []string
	for _, r := range results {
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

func buildAnalysisPrompt(corpus []string, keywords Keywords) string {
	var b strings.Builder
	b.WriteString("Distill a domain profile from the following material.\n\n")
	for _, section := range corpus {
		b.WriteString(section)
		b.WriteString("\n\n")
	}
	if len(keywords.Suggestions) > 0 {
		b.WriteString("RELATED SEARCH TERMS:\n")
		for _, kw := range keywords.Suggestions {
			b.WriteString("- " + kw + "\n")
		}
	}
	if len(keywords.Questions) > 0 {
		b.WriteString("QUESTIONS THE AUDIENCE ASKS:\n")
		for _, q := range keywords.Questions {
			b.WriteString("- " + q + "\n")
		}
	}
	return b.String()
}
