// Package immersion builds domain profiles: vocabulary, niche-specific
// forbidden phrases, and example sentences learned from a source site, used to
// sharpen both generation prompts and the slop scorer.
package immersion

import "time"

// Profile is the read-only enrichment built from a source URL. A profile is
// never updated in place; refreshing a source produces a new value.
type Profile struct {
	SourceURL        string    `json:"source_url"`
	Terminology      []string  `json:"terminology"`
	ForbiddenInNiche []string  `json:"forbidden_in_niche"`
	GenericPhrases   []string  `json:"generic_phrases"`
	GoodExamples     []string  `json:"good_examples"`
	BadExamples      []string  `json:"bad_examples"`
	VoiceDescriptors []string  `json:"voice_descriptors"`
	CreatedAt        time.Time `json:"created_at"`
}
