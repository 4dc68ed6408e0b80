package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/copyforge/copyforge/internal/genai"
	"github.com/copyforge/copyforge/internal/rules"
	"github.com/copyforge/copyforge/internal/textkit"
	"github.com/copyforge/copyforge/internal/validate"
)

type memoryRecorder struct {
	mu        sync.Mutex
	artifacts []string
	events    []string
}

func (r *memoryRecorder) SaveArtifact(_ context.Context, _ int64, phase string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts = append(r.artifacts, phase)
	return nil
}

func (r *memoryRecorder) AddEvent(_ context.Context, _ int64, kind, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
	return nil
}

func happyPathResponses() []string {
	draft := `{"text": "` + cleanFinal + `", "notes": "revised"}`
	return []string{
		`{"single_job": "Get founders to start a trial", "proof_lane": "numbers", "stance": "Speed is the product"}`,
		`{"primary_claim": {"text": "Billing setup takes 4 minutes", "source": "task input"},
		  "supporting_claims": [{"text": "12 features shipped in Q2", "source": "proof"}],
		  "objection_handlers": [{"objection": "Migration is risky", "response": "Imports run read-only first"}],
		  "proof_points": [{"text": "40% fewer support tickets", "source": "proof"}]}`,
		`{"beats": [
		    {"name": "hook", "max_words": 60, "required_elements": ["number"], "first_word_types": ["noun"], "must_include_from_inputs": [], "handoff": "why it matters"},
		    {"name": "value", "max_words": 120, "required_elements": ["outcome"], "first_word_types": ["noun"], "must_include_from_inputs": [], "handoff": "prove it"},
		    {"name": "proof", "max_words": 120, "required_elements": ["statistic"], "first_word_types": ["number"], "must_include_from_inputs": [], "handoff": "what now"},
		    {"name": "cta", "max_words": 40, "required_elements": ["action"], "first_word_types": ["verb"], "must_include_from_inputs": [], "handoff": ""}
		  ]}`,
		draft, draft, draft, draft,
		`{"final": "` + cleanFinal + `",
		  "extras": {"headlines": ["Revenue doubled in 90 days"], "subject_lines": ["12 features, one quarter"], "ctas": ["Start the 14 day trial"]},
		  "qa_checklist": ["Confirm the 40% figure against the support dashboard"]}`,
		`{"text": "Shipping 12 features doubled revenue in 90 days."}`,
	}
}

func happyPathSpec() TaskSpec {
	return TaskSpec{
		Channel:  rules.ChannelWebsite,
		Audience: "startup founders",
		Goal:     "trial signups",
		Topic:    "billing setup speed",
		Proof:    []string{"12 features shipped in Q2", "40% fewer support tickets"},
	}
}

func TestRunHappyPath(t *testing.T) {
	mock := &genai.MockClient{Responses: happyPathResponses()}
	rec := &memoryRecorder{}
	validatorCat := rules.Default()
	o := NewOrchestrator(mock, newTestValidator(), validatorCat, nil, nil, Options{MaxAttempts: 2, Recorder: rec})

	res, err := o.Run(context.Background(), 7, happyPathSpec(), nil, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Package.Final != cleanFinal {
		t.Fatalf("got final %q", res.Package.Final)
	}
	if res.Brief.SingleJob == "" || res.Architecture.PrimaryClaim.Text == "" {
		t.Fatal("intermediate artifacts not populated")
	}
	if len(res.BeatSheet.Beats) != 4 {
		t.Fatalf("got %d beats, want 4", len(res.BeatSheet.Beats))
	}
	if len(res.Drafts) != 4 {
		t.Fatalf("got %d drafts, want 4", len(res.Drafts))
	}
	for i, d := range res.Drafts {
		if d.Version != i {
			t.Fatalf("draft %d has version %d", i, d.Version)
		}
	}
	if res.Package.Meta.Attempts != 1 || res.Package.Meta.BestEffort {
		t.Fatalf("unexpected meta: %+v", res.Package.Meta)
	}
	if len(res.Package.Variants) != len(VariantStyles) {
		t.Fatalf("got %d variants, want %d", len(res.Package.Variants), len(VariantStyles))
	}
	for _, style := range VariantStyles {
		if res.Package.Variants[style] == "" {
			t.Fatalf("missing %s variant", style)
		}
	}
	// 8 sequential phase calls plus one per variant style.
	if want := 8 + len(VariantStyles); mock.CallCount() != want {
		t.Fatalf("got %d generation calls, want %d", mock.CallCount(), want)
	}
	if len(rec.artifacts) != 8 {
		t.Fatalf("got %d persisted artifacts, want 8", len(rec.artifacts))
	}
	if len(rec.events) != 1 || rec.events[0] != "run_complete" {
		t.Fatalf("unexpected events: %v", rec.events)
	}
}

func TestRunRejectsUnknownChannel(t *testing.T) {
	o := NewOrchestrator(&genai.MockClient{}, newTestValidator(), rules.Default(), nil, nil, Options{})
	spec := happyPathSpec()
	spec.Channel = "billboard"
	if _, err := o.Run(context.Background(), 1, spec, nil, nil); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestRunFailsFastOnServiceError(t *testing.T) {
	boom := errors.New("service unavailable")
	mock := &genai.MockClient{Err: boom}
	o := NewOrchestrator(mock, newTestValidator(), rules.Default(), nil, nil, Options{})

	_, err := o.Run(context.Background(), 1, happyPathSpec(), nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected service error, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("got %d generation calls, want 1", mock.CallCount())
	}
}

func TestRunDetectsEmailCampaign(t *testing.T) {
	responses := happyPathResponses()
	mock := &genai.MockClient{Responses: responses}
	o := NewOrchestrator(mock, newTestValidator(), rules.Default(), nil, nil, Options{MaxAttempts: 2})

	spec := happyPathSpec()
	spec.Channel = rules.ChannelEmail
	spec.Context = "announce the launch of the new billing plan"
	if _, err := o.Run(context.Background(), 1, spec, nil, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	beatPrompt := mock.Requests[2].Prompt
	if !containsAll(beatPrompt, "launch", "campaign_type") {
		t.Fatalf("beat sheet prompt missing campaign shape:\n%s", beatPrompt)
	}
}

func newTestValidator() *validate.Validator {
	return validate.New(textkit.NewRegexTokenizer(), rules.Default())
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
