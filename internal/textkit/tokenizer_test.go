package textkit

import "testing"

func TestSentences(t *testing.T) {
	t.Parallel()

	tok := NewRegexTokenizer()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single", "Revenue doubled.", []string{"Revenue doubled."}},
		{
			"three terminators",
			"Revenue doubled. Did it last? It did!",
			[]string{"Revenue doubled.", "Did it last?", "It did!"},
		},
		{
			"no trailing terminator",
			"First point. second half has none",
			[]string{"First point.", "second half has none"},
		},
		{
			// Known approximation: abbreviation periods split.
			"abbreviation splits",
			"We ship weekly, e.g. every Friday.",
			[]string{"We ship weekly, e.g.", "every Friday."},
		},
		{
			"newline boundary",
			"One done.\nTwo follows.",
			[]string{"One done.", "Two follows."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tok.Sentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Sentences(%q) = %d sentences, want %d: %v", tt.text, len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].Text != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i].Text, tt.want[i])
				}
			}
		})
	}
}

func TestSentences_OffsetsIndexSource(t *testing.T) {
	t.Parallel()

	text := "Alpha beta. Gamma delta!"
	got := NewRegexTokenizer().Sentences(text)
	if len(got) != 2 {
		t.Fatalf("want 2 sentences, got %d", len(got))
	}
	for _, s := range got {
		if text[s.Start:s.Start+len(s.Text)] != s.Text {
			t.Errorf("offset %d does not locate %q in source", s.Start, s.Text)
		}
	}
}

func TestParagraphs(t *testing.T) {
	t.Parallel()

	tok := NewRegexTokenizer()
	got := tok.Paragraphs("First block.\nSame block.\n\nSecond block.\n\n\n   \nThird.")
	want := []string{"First block.\nSame block.", "Second block.", "Third."}
	if len(got) != len(want) {
		t.Fatalf("Paragraphs = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("paragraph %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFirstWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"However, this fails.", "however"},
		{`"Quoted" start`, "quoted"},
		{"**Bold** opener", "bold"},
		{"   ", ""},
		{"Numbers 12 first", "numbers"},
	}
	for _, tt := range tests {
		if got := FirstWord(tt.in); got != tt.want {
			t.Errorf("FirstWord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	if got := WordCount("one two  three\nfour"); got != 4 {
		t.Errorf("WordCount = %d, want 4", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount(empty) = %d, want 0", got)
	}
}
