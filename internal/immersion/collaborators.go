package immersion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Page is the text a scrape collaborator returned for one URL. Links holds
// absolute URLs discovered on the page, used for immersion fan-out.
type Page struct {
	Content string
	Title   string
	Links   []string
}

// Scraper fetches page text for a URL. A nil page or an error means the
// source is unavailable; callers proceed with reduced context.
type Scraper interface {
	Scrape(ctx context.Context, pageURL string) (*Page, error)
}

// Keywords is the keyword-research collaborator's response.
type Keywords struct {
	Suggestions []string
	Questions   []string
}

// Researcher returns related terms and audience questions for a query.
type Researcher interface {
	Research(ctx context.Context, query string) (Keywords, error)
}

var (
	tagPattern    = regexp.MustCompile(`(?s)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>|<[^>]+>`)
	spaceRun      = regexp.MustCompile(`\s+`)
	titlePattern  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	linkPattern   = regexp.MustCompile(`(?i)href="(https?://[^"#]+)"`)
	maxPageLength = 40_000
)

// HTTPScraper is the default scrape collaborator: plain GET plus tag
// stripping. It trades fidelity for zero coupling to the page's structure.
type HTTPScraper struct {
	Client *http.Client
}

// NewHTTPScraper returns a scraper with the given timeout.
func NewHTTPScraper(timeout time.Duration) *HTTPScraper {
	return &HTTPScraper{Client: &http.Client{Timeout: timeout}}
}

// Scrape fetches pageURL and returns its visible text.
func (s *HTTPScraper) Scrape(ctx context.Context, pageURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("User-Agent", "copyforge/1.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scrape %s: status %d", pageURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxPageLength)*4))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}

	page := &Page{Content: stripHTML(string(body))}
	if m := titlePattern.FindStringSubmatch(string(body)); len(m) == 2 {
		page.Title = strings.TrimSpace(m[1])
	}
	seen := map[string]bool{}
	for _, m := range linkPattern.FindAllStringSubmatch(string(body), -1) {
		if link := m[1]; !seen[link] {
			seen[link] = true
			page.Links = append(page.Links, link)
		}
	}
	if len(page.Content) > maxPageLength {
		page.Content = page.Content[:maxPageLength]
	}
	return page, nil
}

func stripHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// HTTPResearcher is the default keyword-research collaborator. It expects a
// JSON endpoint shaped like
// {"suggestions":[{"keyword":"..."}],"questions":["..."]}.
type HTTPResearcher struct {
	Client  *http.Client
	BaseURL string
}

// NewHTTPResearcher returns a researcher against the given endpoint.
func NewHTTPResearcher(baseURL string, timeout time.Duration) *HTTPResearcher {
	return &HTTPResearcher{Client: &http.Client{Timeout: timeout}, BaseURL: baseURL}
}

// Research looks up related keywords and questions for query.
func (r *HTTPResearcher) Research(ctx context.Context, query string) (Keywords, error) {
	endpoint := fmt.Sprintf("%s?q=%s", r.BaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Keywords{}, fmt.Errorf("build research request: %w", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return Keywords{}, fmt.Errorf("research %q: %w", query, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Keywords{}, fmt.Errorf("research %q: status %d", query, resp.StatusCode)
	}

	var payload struct {
		Suggestions []struct {
			Keyword string `json:"keyword"`
		} `json:"suggestions"`
		Questions []string `json:"questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Keywords{}, fmt.Errorf("decode research response: %w", err)
	}

	out := Keywords{Questions: payload.Questions}
	for _, s := range payload.Suggestions {
		if s.Keyword != "" {
			out.Suggestions = append(out.Suggestions, s.Keyword)
		}
	}
	return out, nil
}
