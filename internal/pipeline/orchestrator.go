package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/copyforge/copyforge/internal/facts"
	"github.com/copyforge/copyforge/internal/genai"
	"github.com/copyforge/copyforge/internal/immersion"
	"github.com/copyforge/copyforge/internal/rules"
	"github.com/copyforge/copyforge/internal/slop"
	"github.com/copyforge/copyforge/internal/validate"
)

// Recorder persists run progress. Failures are tolerated: a broken store must
// never lose a finished generation.
type Recorder interface {
	SaveArtifact(ctx context.Context, runID int64, phase string, payload any) error
	AddEvent(ctx context.Context, runID int64, kind, message string) error
}

// Orchestrator walks a task through the phase sequence and returns the final
// package. One orchestrator serves many runs.
type Orchestrator struct {
	client      genai.Client
	validator   *validate.Validator
	catalog     *rules.Catalog
	factsEngine *facts.Engine
	slopScorer  *slop.Scorer
	recorder    Recorder
	maxAttempts int
}

// Options tunes a single pipeline construction.
type Options struct {
	Recorder    Recorder
	MaxAttempts int
}

// NewOrchestrator wires the pipeline. factsEngine and slopScorer may be nil,
// which disables grounding and the slop gate respectively.
func NewOrchestrator(client genai.Client, validator *validate.Validator, cat *rules.Catalog,
	factsEngine *facts.Engine, slopScorer *slop.Scorer, opts Options) *Orchestrator {
	return &Orchestrator{
		client:      client,
		validator:   validator,
		catalog:     cat,
		factsEngine: factsEngine,
		slopScorer:  slopScorer,
		recorder:    opts.Recorder,
		maxAttempts: opts.MaxAttempts,
	}
}

// RunResult is everything one pipeline run produced, intermediate artifacts
// included.
type RunResult struct {
	Package      *FinalPackage       `json:"package"`
	Brief        CreativeBrief       `json:"brief"`
	Architecture MessageArchitecture `json:"architecture"`
	BeatSheet    BeatSheet           `json:"beat_sheet"`
	Drafts       []DraftVersion      `json:"drafts"`
	Slop         slop.CheckResult    `json:"slop"`
	FactWarnings []string            `json:"fact_warnings,omitempty"`
}

// Run executes the full phase sequence for spec. inv and profile are optional
// grounding context; runID keys persisted artifacts when a recorder is set.
func (o *Orchestrator) Run(ctx context.Context, runID int64, spec TaskSpec,
	inv *facts.Inventory, profile *immersion.Profile) (*RunResult, error) {
	entry, err := o.catalog.ForChannel(spec.Channel)
	if err != nil {
		return nil, err
	}
	in := promptInput{
		spec:      spec,
		entry:     entry,
		factBlock: facts.FormatConstraint(inv),
		profile:   profile,
	}

	res := &RunResult{}
	var prev *DraftVersion
	for ph := PhaseBrief; ph != PhaseFinalPackage; {
		log.Info().Str("phase", string(ph)).Msg("running phase")
		switch ph {
		case PhaseBrief:
			system, prompt := briefPrompt(in)
			err = o.generate(ctx, system, prompt, "creative_brief", briefSchema, &res.Brief)
		case PhaseArchitecture:
			system, prompt := architecturePrompt(in, res.Brief)
			err = o.generate(ctx, system, prompt, "message_architecture", architectureSchema, &res.Architecture)
			if err == nil && res.Architecture.PrimaryClaim.Text == "" {
				err = fmt.Errorf("architecture has no primary claim")
			}
		case PhaseBeatSheet:
			campaign := ""
			if spec.Channel == rules.ChannelEmail {
				campaign = DetectCampaignType(spec.Context + " " + spec.Goal)
			}
			system, prompt := beatSheetPrompt(in, res.Brief, res.Architecture, campaign)
			err = o.generate(ctx, system, prompt, "beat_sheet", beatSheetSchema, &res.BeatSheet)
			if err == nil && len(res.BeatSheet.Beats) == 0 {
				err = fmt.Errorf("beat sheet is empty")
			}
		case PhaseDraftV0, PhaseCohesion, PhaseRhythm, PhaseChannel:
			var resp struct {
				Text  string `json:"text"`
				Notes string `json:"notes"`
			}
			system, prompt := draftPrompt(in, ph, res.BeatSheet, res.Architecture, prev)
			err = o.generate(ctx, system, prompt, string(ph), draftSchema, &resp)
			if err == nil && strings.TrimSpace(resp.Text) == "" {
				err = fmt.Errorf("empty draft")
			}
			if err == nil {
				dv := DraftVersion{Version: draftVersions[ph], Text: resp.Text, Notes: resp.Notes}
				res.Drafts = append(res.Drafts, dv)
				prev = &res.Drafts[len(res.Drafts)-1]
			}
		}
		if err != nil {
			o.record(ctx, runID, string(ph), "phase_failed", err.Error())
			return nil, fmt.Errorf("phase %s: %w", ph, err)
		}
		o.saveArtifact(ctx, runID, ph, res)
		if ph, err = ph.Next(); err != nil {
			return nil, err
		}
	}

	if prev == nil {
		return nil, fmt.Errorf("no draft reached the final phase")
	}
	pkg, err := o.produceFinal(ctx, in, res.Architecture, *prev)
	if err != nil {
		o.record(ctx, runID, string(PhaseFinalPackage), "phase_failed", err.Error())
		return nil, fmt.Errorf("phase %s: %w", PhaseFinalPackage, err)
	}
	if strings.TrimSpace(pkg.Final) == "" {
		return nil, fmt.Errorf("final package has empty text")
	}
	res.Package = pkg

	o.applySlopGate(ctx, in, res, profile)
	o.verifyFacts(ctx, res, inv)
	pkg.Variants = o.fanOutVariants(ctx, in, pkg.Final)

	o.saveArtifact(ctx, runID, PhaseFinalPackage, res)
	o.record(ctx, runID, "done", "run_complete",
		fmt.Sprintf("score=%d best_effort=%t", pkg.Meta.Score, pkg.Meta.BestEffort))
	return res, nil
}

func (o *Orchestrator) generate(ctx context.Context, system, prompt, name, schema string, out any) error {
	return o.client.Generate(ctx, genai.Request{
		System:     system,
		Prompt:     prompt,
		SchemaName: name,
		Schema:     schema,
		Out:        out,
	})
}

// applySlopGate scores the final text and makes one repair attempt when it
// fails. A failed repair keeps the original text; the score ships either way.
func (o *Orchestrator) applySlopGate(ctx context.Context, in promptInput, res *RunResult, profile *immersion.Profile) {
	if o.slopScorer == nil {
		return
	}
	check := o.slopScorer.Score(ctx, res.Package.Final, profile)
	if !check.Passed {
		log.Warn().Int("score", check.Score).Strs("violations", check.Violations).Msg("final text failed slop gate")
		fixed, err := o.slopScorer.FixSlop(ctx, res.Package.Final, check.Violations, profile)
		if err != nil {
			log.Warn().Err(err).Msg("slop repair failed, keeping original text")
		} else if strings.TrimSpace(fixed) != "" {
			fixed = PostProcess(fixed)
			result := o.validator.ValidateWith(fixed, in.entry)
			if result.Score >= res.Package.Meta.Score {
				res.Package.Final = fixed
				res.Package.Meta.Score = result.Score
				res.Package.Meta.Violations = result.Violations
				check = o.slopScorer.Score(ctx, fixed, profile)
			} else {
				log.Warn().Int("score", result.Score).Msg("slop repair scored worse, keeping original text")
			}
		}
	}
	res.Slop = check
}

// verifyFacts runs the advisory grounding check. Violations become warnings on
// the result, never a rejection.
func (o *Orchestrator) verifyFacts(ctx context.Context, res *RunResult, inv *facts.Inventory) {
	if o.factsEngine == nil || inv == nil || len(inv.AllFacts) == 0 {
		return
	}
	verdict, err := o.factsEngine.Verify(ctx, res.Package.Final, inv)
	if err != nil {
		log.Warn().Err(err).Msg("fact verification unavailable")
		return
	}
	if !verdict.Valid {
		log.Warn().Strs("claims", verdict.Violations).Msg("final text carries unsupported claims")
		res.FactWarnings = verdict.Violations
	}
}

// fanOutVariants generates the style variants concurrently. A failed variant
// is omitted, never retried; the package stands without it.
func (o *Orchestrator) fanOutVariants(ctx context.Context, in promptInput, final string) map[string]string {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		variants = make(map[string]string, len(VariantStyles))
	)
	for _, style := range VariantStyles {
		wg.Add(1)
		go func(style string) {
			defer wg.Done()
			var resp struct {
				Text string `json:"text"`
			}
			system, prompt := variantPrompt(in, final, style)
			err := o.generate(ctx, system, prompt, "variant", variantSchema, &resp)
			if err != nil || strings.TrimSpace(resp.Text) == "" {
				log.Warn().Err(err).Str("style", style).Msg("variant generation failed, omitting")
				return
			}
			mu.Lock()
			variants[style] = PostProcess(resp.Text)
			mu.Unlock()
		}(style)
	}
	wg.Wait()
	return variants
}

func (o *Orchestrator) saveArtifact(ctx context.Context, runID int64, ph Phase, res *RunResult) {
	if o.recorder == nil {
		return
	}
	var payload any
	switch ph {
	case PhaseBrief:
		payload = res.Brief
	case PhaseArchitecture:
		payload = res.Architecture
	case PhaseBeatSheet:
		payload = res.BeatSheet
	case PhaseDraftV0, PhaseCohesion, PhaseRhythm, PhaseChannel:
		payload = res.Drafts[len(res.Drafts)-1]
	case PhaseFinalPackage:
		payload = res.Package
	}
	if err := o.recorder.SaveArtifact(ctx, runID, string(ph), payload); err != nil {
		log.Warn().Err(err).Str("phase", string(ph)).Msg("artifact not persisted")
	}
}

func (o *Orchestrator) record(ctx context.Context, runID int64, phase, kind, message string) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.AddEvent(ctx, runID, kind, fmt.Sprintf("%s: %s", phase, message)); err != nil {
		log.Warn().Err(err).Msg("event not persisted")
	}
}
