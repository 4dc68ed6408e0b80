package immersion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/copyforge/copyforge/internal/genai"
)

// --- mock collaborators ---

type mockScraper struct {
	pages map[string]*Page
}

func (m *mockScraper) Scrape(_ context.Context, url string) (*Page, error) {
	page, ok := m.pages[url]
	if !ok {
		return nil, fmt.Errorf("unreachable: %s", url)
	}
	return page, nil
}

type mockResearcher struct {
	kw  Keywords
	err error
}

func (m *mockResearcher) Research(_ context.Context, _ string) (Keywords, error) {
	return m.kw, m.err
}

const profileResponse = `{
  "terminology": ["drip campaign"],
  "forbidden_in_niche": ["growth hacking"],
  "generic_phrases": ["the results speak for themselves"],
  "good_examples": ["Open rates rose 12% after the subject-line change."],
  "bad_examples": ["We craft bespoke solutions for visionary brands."],
  "voice_descriptors": ["direct", "numerate"]
}`

func TestBuild_AssemblesProfileFromSourceAndLinks(t *testing.T) {
	t.Parallel()

	scraper := &mockScraper{pages: map[string]*Page{
		"https://acme.test": {
			Content: "Acme sells email tooling.",
			Title:   "Acme email tooling",
			Links:   []string{"https://acme.test/blog", "https://dead.test"},
		},
		"https://acme.test/blog": {Content: "Long posts about deliverability."},
	}}
	mock := &genai.MockClient{Responses: []string{profileResponse}}
	b := NewBuilder(scraper, &mockResearcher{kw: Keywords{Suggestions: []string{"email warmup"}}}, mock, 4)

	profile, err := b.Build(context.Background(), "https://acme.test")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if profile.SourceURL != "https://acme.test" {
		t.Errorf("SourceURL = %q", profile.SourceURL)
	}
	if len(profile.ForbiddenInNiche) != 1 || profile.ForbiddenInNiche[0] != "growth hacking" {
		t.Errorf("ForbiddenInNiche = %v", profile.ForbiddenInNiche)
	}

	prompt := mock.Requests[0].Prompt
	for _, want := range []string{"Acme sells email tooling.", "deliverability", "email warmup"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("analysis prompt missing %q", want)
		}
	}
	// The dead link is skipped, not fatal.
	if strings.Contains(prompt, "dead.test:") {
		t.Error("unreachable discovered source leaked into prompt")
	}
}

func TestBuild_ToleratesResearchFailure(t *testing.T) {
	t.Parallel()

	scraper := &mockScraper{pages: map[string]*Page{
		"https://acme.test": {Content: "Minimal page."},
	}}
	mock := &genai.MockClient{Responses: []string{profileResponse}}
	b := NewBuilder(scraper, &mockResearcher{err: errors.New("quota exceeded")}, mock, 4)

	if _, err := b.Build(context.Background(), "https://acme.test"); err != nil {
		t.Fatalf("Build failed on researcher error: %v", err)
	}
}

func TestBuild_FailsOnlyWithNoMaterial(t *testing.T) {
	t.Parallel()

	b := NewBuilder(&mockScraper{pages: map[string]*Page{}}, nil, &genai.MockClient{}, 4)
	_, err := b.Build(context.Background(), "https://gone.test")
	if !errors.Is(err, ErrNoMaterial) {
		t.Fatalf("err = %v, want ErrNoMaterial", err)
	}
}

func TestHTTPScraper_ExtractsTextTitleAndLinks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Acme Blog</title><script>var x=1;</script></head>
<body><h1>Hello</h1><p>Deliverability matters.</p>
<a href="https://peer.test/post">peer</a><a href="/relative">rel</a></body></html>`)
	}))
	defer srv.Close()

	page, err := NewHTTPScraper(5*time.Second).Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if page.Title != "Acme Blog" {
		t.Errorf("Title = %q", page.Title)
	}
	if !strings.Contains(page.Content, "Deliverability matters.") {
		t.Errorf("Content = %q", page.Content)
	}
	if strings.Contains(page.Content, "var x=1") {
		t.Error("script body leaked into content")
	}
	if len(page.Links) != 1 || page.Links[0] != "https://peer.test/post" {
		t.Errorf("Links = %v, want only the absolute link", page.Links)
	}
}

func TestHTTPScraper_NonOKStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewHTTPScraper(5 * time.Second).Scrape(context.Background(), srv.URL); err == nil {
		t.Fatal("Scrape accepted a 403")
	}
}

func TestHTTPResearcher_DecodesSuggestions(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "email warmup" {
			t.Errorf("query = %q", r.URL.Query().Get("q"))
		}
		fmt.Fprint(w, `{"suggestions":[{"keyword":"inbox placement"},{"keyword":""}],"questions":["what is warmup?"]}`)
	}))
	defer srv.Close()

	kw, err := NewHTTPResearcher(srv.URL, 5*time.Second).Research(context.Background(), "email warmup")
	if err != nil {
		t.Fatalf("Research: %v", err)
	}
	if len(kw.Suggestions) != 1 || kw.Suggestions[0] != "inbox placement" {
		t.Errorf("Suggestions = %v", kw.Suggestions)
	}
	if len(kw.Questions) != 1 {
		t.Errorf("Questions = %v", kw.Questions)
	}
}
