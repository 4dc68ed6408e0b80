// Package pipeline drives the phase sequence that turns a task spec into a
// validated final package. Each phase consumes the previous phase's artifact
// read-only and produces a new one through the generation service; nothing is
// mutated after creation.
package pipeline

import (
	"github.com/copyforge/copyforge/internal/rules"
	"github.com/copyforge/copyforge/internal/validate"
)

// TaskSpec is the immutable input for one generation request.
type TaskSpec struct {
	Channel     rules.Channel `json:"channel"`
	Audience    string        `json:"audience"`
	Goal        string        `json:"goal"`
	Topic       string        `json:"topic"`
	Offer       string        `json:"offer,omitempty"`
	Proof       []string      `json:"proof,omitempty"`
	MustInclude []string      `json:"must_include,omitempty"`
	Avoid       []string      `json:"avoid,omitempty"`
	Voice       string        `json:"voice,omitempty"`
	TargetWords int           `json:"target_words,omitempty"`
	MaxWords    int           `json:"max_words,omitempty"`
	Context     string        `json:"context,omitempty"`
}

// CreativeBrief pins down the one job the piece must do.
type CreativeBrief struct {
	SingleJob string `json:"single_job"`
	ProofLane string `json:"proof_lane"`
	Stance    string `json:"stance"`
}

// Claim is one assertion with the proof material it traces to.
type Claim struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// ObjectionHandler pairs an audience objection with its answer.
type ObjectionHandler struct {
	Objection string `json:"objection"`
	Response  string `json:"response"`
}

// MessageArchitecture is the claim structure every later phase writes against.
type MessageArchitecture struct {
	PrimaryClaim      Claim              `json:"primary_claim"`
	SupportingClaims  []Claim            `json:"supporting_claims"`
	ObjectionHandlers []ObjectionHandler `json:"objection_handlers"`
	ProofPoints       []Claim            `json:"proof_points"`
}

// Beat is one structural unit of the piece with its own budget and duties.
type Beat struct {
	Name                  string   `json:"name"`
	MaxWords              int      `json:"max_words"`
	RequiredElements      []string `json:"required_elements"`
	FirstWordTypes        []string `json:"first_word_types"`
	MustIncludeFromInputs []string `json:"must_include_from_inputs"`
	Handoff               string   `json:"handoff"`
}

// BeatSheet is the ordered beat plan. CampaignType is set only for email
// tasks where a campaign shape was detected in the free-text context.
type BeatSheet struct {
	Beats        []Beat `json:"beats"`
	CampaignType string `json:"campaign_type,omitempty"`
}

// DraftVersion is one draft revision: v0 initial execution, v1 cohesion pass,
// v2 rhythm pass, v3 channel pass.
type DraftVersion struct {
	Version int    `json:"version"`
	Text    string `json:"text"`
	Notes   string `json:"notes,omitempty"`
}

// Extras are the short companion pieces generated alongside the final text.
type Extras struct {
	Headlines    []string `json:"headlines"`
	SubjectLines []string `json:"subject_lines"`
	CTAs         []string `json:"ctas"`
}

// FinalPackage is the accepted output of a run. Final and Variants are the
// literal strings shown to the user; nothing transforms them after
// post-processing.
type FinalPackage struct {
	Final       string            `json:"final"`
	Variants    map[string]string `json:"variants"`
	Extras      Extras            `json:"extras"`
	QAChecklist []string          `json:"qa_checklist"`
	Meta        PackageMeta       `json:"meta"`
}

// PackageMeta records how the package was produced. BestEffort is set when
// validation attempts were exhausted and the remaining violations ship as
// metadata instead of blocking delivery.
type PackageMeta struct {
	Attempts   int                  `json:"attempts"`
	Score      int                  `json:"score"`
	BestEffort bool                 `json:"best_effort"`
	Violations []validate.Violation `json:"violations,omitempty"`
}

// VariantStyles are the three style treatments fanned out for every package.
var VariantStyles = []string{"punchy", "warm", "direct"}
