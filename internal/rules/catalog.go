// Package rules holds the channel-keyed rule catalog: the static limits and
// forbidden-language lists every draft is checked against.
package rules

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Channel is the delivery context for generated text. It selects a catalog entry.
type Channel string

const (
	ChannelWebsite     Channel = "website"
	ChannelEmail       Channel = "email"
	ChannelArticle     Channel = "article"
	ChannelSocial      Channel = "social"
	ChannelSalesPage   Channel = "sales_page"
	ChannelBookChapter Channel = "book_chapter"
)

// Channels lists every known channel in a stable order.
func Channels() []Channel {
	return []Channel{
		ChannelWebsite, ChannelEmail, ChannelArticle,
		ChannelSocial, ChannelSalesPage, ChannelBookChapter,
	}
}

// Valid reports whether c names a known channel.
func (c Channel) Valid() bool {
	for _, known := range Channels() {
		if c == known {
			return true
		}
	}
	return false
}

// Entry is the rule set for one channel. Entries are static configuration and
// never mutated at runtime; callers tighten limits on their own value copy.
type Entry struct {
	MaxBeats                      int      `yaml:"max_beats"            json:"max_beats"`
	MaxTotalWords                 int      `yaml:"max_total_words"      json:"max_total_words"`
	TargetWords                   int      `yaml:"target_words"         json:"target_words"`
	MaxSentenceWords              int      `yaml:"max_sentence_words"   json:"max_sentence_words"`
	MaxAdjectivesPerNoun          int      `yaml:"max_adjectives_per_noun" json:"max_adjectives_per_noun"`
	SpecificDetailEveryNSentences int      `yaml:"specific_detail_every_n_sentences" json:"specific_detail_every_n_sentences"`
	ForbiddenWords                []string `yaml:"forbidden_words"      json:"forbidden_words"`
	ForbiddenPatterns             []string `yaml:"forbidden_patterns"   json:"forbidden_patterns"`
	RequiredBeatSequence          []string `yaml:"required_beat_sequence" json:"required_beat_sequence"`
}

// Universal is the channel-independent forbidden-language layer shared by the
// validator and the slop scorer.
type Universal struct {
	ForbiddenWords    []string `yaml:"forbidden_words"    json:"forbidden_words"`
	ForbiddenPatterns []string `yaml:"forbidden_patterns" json:"forbidden_patterns"`
}

// Catalog is the full rule catalog. Safe for unlimited concurrent readers.
type Catalog struct {
	entries   map[Channel]Entry
	universal Universal
}

type catalogFile struct {
	Universal Universal         `yaml:"universal"`
	Channels  map[Channel]Entry `yaml:"channels"`
}

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Default returns the built-in catalog.
func Default() *Catalog {
	cat, err := parse(defaultCatalogYAML)
	if err != nil {
		// The embedded catalog is compiled in; a parse failure is a build defect.
		panic(fmt.Sprintf("rules: embedded catalog invalid: %v", err))
	}
	return cat
}

// Load returns the built-in catalog merged with overrides from path. Override
// entries replace the default entry for their channel wholesale.
func Load(path string) (*Catalog, error) {
	cat := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule overrides: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule overrides: %w", err)
	}
	for ch, entry := range file.Channels {
		if !ch.Valid() {
			return nil, fmt.Errorf("rule overrides: unknown channel %q", ch)
		}
		cat.entries[ch] = entry
	}
	if len(file.Universal.ForbiddenWords) > 0 {
		cat.universal.ForbiddenWords = file.Universal.ForbiddenWords
	}
	if len(file.Universal.ForbiddenPatterns) > 0 {
		cat.universal.ForbiddenPatterns = file.Universal.ForbiddenPatterns
	}
	return cat, nil
}

func parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, ch := range Channels() {
		if _, ok := file.Channels[ch]; !ok {
			return nil, fmt.Errorf("catalog missing channel %q", ch)
		}
	}
	return &Catalog{entries: file.Channels, universal: file.Universal}, nil
}

// ForChannel returns a deep value copy of the entry for ch, so callers may
// tighten limits without touching shared state.
func (c *Catalog) ForChannel(ch Channel) (Entry, error) {
	entry, ok := c.entries[ch]
	if !ok {
		return Entry{}, fmt.Errorf("no rule entry for channel %q", ch)
	}
	entry.ForbiddenWords = append([]string(nil), entry.ForbiddenWords...)
	entry.ForbiddenPatterns = append([]string(nil), entry.ForbiddenPatterns...)
	entry.RequiredBeatSequence = append([]string(nil), entry.RequiredBeatSequence...)
	return entry, nil
}

// Universal returns a value copy of the channel-independent forbidden lists.
func (c *Catalog) Universal() Universal {
	return Universal{
		ForbiddenWords:    append([]string(nil), c.universal.ForbiddenWords...),
		ForbiddenPatterns: append([]string(nil), c.universal.ForbiddenPatterns...),
	}
}
