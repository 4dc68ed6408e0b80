package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/copyforge/copyforge/internal/genai"
	"github.com/copyforge/copyforge/internal/validate"
)

// DefaultMaxAttempts bounds the regeneration loop when the caller gives no
// budget of its own.
const DefaultMaxAttempts = 2

// finalResponse mirrors finalPackageSchema.
type finalResponse struct {
	Final       string   `json:"final"`
	Extras      Extras   `json:"extras"`
	QAChecklist []string `json:"qa_checklist"`
}

// produceFinal runs the bounded generate-validate-feedback loop for the final
// package. It makes at most maxAttempts generation calls and always hands back
// a package when at least one attempt produced text: the best-scoring candidate
// is returned with its remaining violations recorded in Meta when no attempt validated
// clean.
func (o *Orchestrator) produceFinal(ctx context.Context, in promptInput, arch MessageArchitecture, draft DraftVersion) (*FinalPackage, error) {
	maxAttempts := o.maxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var (
		best      *FinalPackage
		bestScore = -1
		feedback  string
		lastErr   error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		system, prompt := finalPrompt(in, arch, draft, feedback)
		var resp finalResponse
		err := o.client.Generate(ctx, genai.Request{
			System:     system,
			Prompt:     prompt,
			SchemaName: "final_package",
			Schema:     finalPackageSchema,
			Out:        &resp,
		})
		if err != nil {
			if !errors.Is(err, genai.ErrStructural) {
				return nil, fmt.Errorf("final package attempt %d: %w", attempt, err)
			}
			log.Warn().Int("attempt", attempt).Msg("final package response failed structural check, retrying")
			lastErr = err
			feedback = "Your previous response did not match the required JSON structure. Follow the schema exactly."
			continue
		}

		// Validation judges the text exactly as the service returned it.
		// Cleanup waits until a candidate is accepted.
		result := o.validator.ValidateWith(resp.Final, in.entry)
		log.Debug().
			Int("attempt", attempt).
			Int("score", result.Score).
			Int("violations", len(result.Violations)).
			Msg("final package validated")

		pkg := &FinalPackage{
			Final:       resp.Final,
			Extras:      resp.Extras,
			QAChecklist: resp.QAChecklist,
			Meta: PackageMeta{
				Attempts:   attempt,
				Score:      result.Score,
				Violations: result.Violations,
			},
		}
		if result.IsValid {
			return finishPackage(pkg), nil
		}
		if result.Score > bestScore {
			best, bestScore = pkg, result.Score
		}
		feedback = validate.FormatFeedback(result.Violations)
	}

	if best == nil {
		return nil, fmt.Errorf("no final package produced in %d attempts: %w", maxAttempts, lastErr)
	}
	best.Meta.Attempts = maxAttempts
	best.Meta.BestEffort = true
	log.Warn().
		Int("score", best.Meta.Score).
		Int("violations", len(best.Meta.Violations)).
		Msg("returning best-effort final package")
	return finishPackage(best), nil
}

// finishPackage applies deterministic cleanup to an accepted candidate. Meta
// keeps the score and violations of the raw text the candidate was judged on.
func finishPackage(pkg *FinalPackage) *FinalPackage {
	pkg.Final = PostProcess(pkg.Final)
	pkg.Extras = postProcessExtras(pkg.Extras)
	return pkg
}

func postProcessExtras(ex Extras) Extras {
	return Extras{
		Headlines:    postProcessAll(ex.Headlines),
		SubjectLines: postProcessAll(ex.SubjectLines),
		CTAs:         postProcessAll(ex.CTAs),
	}
}

func postProcessAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = PostProcess(item)
	}
	return out
}
