package rules

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

func TestDefault_CoversEveryChannel(t *testing.T) {
	t.Parallel()

	cat := Default()
	for _, ch := range Channels() {
		entry, err := cat.ForChannel(ch)
		if err != nil {
			t.Fatalf("ForChannel(%q) returned error: %v", ch, err)
		}
		if entry.MaxSentenceWords <= 0 {
			t.Errorf("channel %q: max_sentence_words = %d, want > 0", ch, entry.MaxSentenceWords)
		}
		if entry.TargetWords > entry.MaxTotalWords {
			t.Errorf("channel %q: target_words %d exceeds max_total_words %d", ch, entry.TargetWords, entry.MaxTotalWords)
		}
		if len(entry.RequiredBeatSequence) == 0 {
			t.Errorf("channel %q: empty required_beat_sequence", ch)
		}
		if entry.MaxBeats < len(entry.RequiredBeatSequence) {
			t.Errorf("channel %q: max_beats %d below required beats %d", ch, entry.MaxBeats, len(entry.RequiredBeatSequence))
		}
	}
}

func TestDefault_UniversalPatternsCompile(t *testing.T) {
	t.Parallel()

	uni := Default().Universal()
	if len(uni.ForbiddenWords) == 0 {
		t.Fatal("universal forbidden word list is empty")
	}
	for _, pat := range uni.ForbiddenPatterns {
		if _, err := regexp.Compile(pat); err != nil {
			t.Errorf("pattern %q does not compile: %v", pat, err)
		}
	}
}

func TestForChannel_ReturnsIsolatedCopy(t *testing.T) {
	t.Parallel()

	cat := Default()
	first, err := cat.ForChannel(ChannelEmail)
	if err != nil {
		t.Fatalf("ForChannel: %v", err)
	}
	first.MaxSentenceWords = 1
	first.ForbiddenWords[0] = "mutated"

	second, err := cat.ForChannel(ChannelEmail)
	if err != nil {
		t.Fatalf("ForChannel: %v", err)
	}
	if second.MaxSentenceWords == 1 {
		t.Error("tightening one copy changed the catalog entry")
	}
	if second.ForbiddenWords[0] == "mutated" {
		t.Error("mutating a copied slice changed the catalog entry")
	}
}

func TestLoad_MergesOverrides(t *testing.T) {
	t.Parallel()

	override := `
channels:
  email:
    max_beats: 4
    max_total_words: 200
    target_words: 150
    max_sentence_words: 14
    max_adjectives_per_noun: 1
    specific_detail_every_n_sentences: 2
    required_beat_sequence: [hook, offer, cta]
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	email, err := cat.ForChannel(ChannelEmail)
	if err != nil {
		t.Fatalf("ForChannel: %v", err)
	}
	if email.MaxSentenceWords != 14 {
		t.Errorf("overridden max_sentence_words = %d, want 14", email.MaxSentenceWords)
	}
	article, err := cat.ForChannel(ChannelArticle)
	if err != nil {
		t.Fatalf("ForChannel: %v", err)
	}
	if article.MaxSentenceWords != 26 {
		t.Errorf("untouched channel changed: max_sentence_words = %d, want 26", article.MaxSentenceWords)
	}
}

func TestLoad_RejectsUnknownChannel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("channels:\n  billboard:\n    max_beats: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted an unknown channel")
	}
}
