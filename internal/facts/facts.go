// Package facts builds and enforces the fact inventory: an allow-list of
// claims the user actually stated, used to keep the generation service from
// inventing support for the copy.
package facts

import (
	"context"
	"fmt"
	"strings"

	"github.com/copyforge/copyforge/internal/genai"
)

// Inventory is the allow-list extracted from user input. Immutable once built.
// Every entry in AllFacts must be traceable to the user's own words; the
// inventory filters, it never elaborates.
type Inventory struct {
	AllFacts    []string `json:"all_facts"`
	UnknownGaps []string `json:"unknown_gaps"`
	FocusAreas  []string `json:"focus_areas"`
}

// VerifyResult is the advisory outcome of re-checking generated text against
// an inventory. It is logged, never used as a gate: the check itself is a
// model call and can be wrong.
type VerifyResult struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

const inventorySchema = `{
  "type": "object",
  "properties": {
    "all_facts": {"type": "array", "items": {"type": "string"}},
    "unknown_gaps": {"type": "array", "items": {"type": "string"}},
    "focus_areas": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["all_facts", "unknown_gaps", "focus_areas"],
  "additionalProperties": false
}`

const verifySchema = `{
  "type": "object",
  "properties": {
    "valid": {"type": "boolean"},
    "violations": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["valid", "violations"],
  "additionalProperties": false
}`

const extractSystem = `You extract explicit factual claims from user-provided text.
Rules:
- Record ONLY what is explicitly stated. Never infer, estimate, or extrapolate.
- Each fact must be a short restatement of something present in the text.
- List topics the text raises but leaves unanswered under unknown_gaps.
- List safe angles that need no missing data under focus_areas.
- If the text contains no verifiable claims, return empty lists.`

const verifySystem = `You compare generated marketing text against an allow-list of facts.
For each concrete claim in the text, decide whether it traces to the allow-list.
Report claims that do not trace as violations, quoting the offending sentence.
Do not judge style or quality. Only claim traceability.`

// Engine extracts and checks fact inventories through the generation service.
type Engine struct {
	client genai.Client
}

// NewEngine returns an engine over the given client.
func NewEngine(client genai.Client) *Engine {
	return &Engine{client: client}
}

// Extract builds an inventory from raw user text. The extraction is delegated
// to the generation service under a no-inference instruction; the result is
// best effort and can be re-checked with Verify.
func (e *Engine) Extract(ctx context.Context, userText string) (*Inventory, error) {
	if strings.TrimSpace(userText) == "" {
		return &Inventory{}, nil
	}
	var inv Inventory
	err := e.client.Generate(ctx, genai.Request{
		System:     extractSystem,
		Prompt:     fmt.Sprintf("Extract the fact inventory from this input:\n\n%s", userText),
		SchemaName: "fact_inventory",
		Schema:     inventorySchema,
		Out:        &inv,
	})
	if err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}
	return &inv, nil
}

// Verify re-checks generated text against the inventory. Advisory only.
func (e *Engine) Verify(ctx context.Context, generated string, inv *Inventory) (*VerifyResult, error) {
	var res VerifyResult
	prompt := fmt.Sprintf("Allowed facts:\n%s\n\nGenerated text:\n%s",
		bulleted(inv.AllFacts), generated)
	err := e.client.Generate(ctx, genai.Request{
		System:     verifySystem,
		Prompt:     prompt,
		SchemaName: "fact_verification",
		Schema:     verifySchema,
		Out:        &res,
	})
	if err != nil {
		return nil, fmt.Errorf("verify facts: %w", err)
	}
	return &res, nil
}

// FormatConstraint renders the inventory as a prompt block. Deterministic:
// every fact appears verbatim, nothing is added. Downstream prompts must embed
// this block unchanged and must never ask the service to fill the gaps.
func FormatConstraint(inv *Inventory) string {
	if inv == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("FACTS YOU MAY USE (complete allow-list):\n")
	if len(inv.AllFacts) == 0 {
		b.WriteString("- none provided; make no factual claims\n")
	} else {
		b.WriteString(bulleted(inv.AllFacts))
	}
	if len(inv.UnknownGaps) > 0 {
		b.WriteString("KNOWN GAPS (acknowledge or write around; never fill with invented data):\n")
		b.WriteString(bulleted(inv.UnknownGaps))
	}
	if len(inv.FocusAreas) > 0 {
		b.WriteString("IF SHORT ON MATERIAL, LEAN ON THESE ANGLES:\n")
		b.WriteString(bulleted(inv.FocusAreas))
	}
	b.WriteString("Never state a number, name, result, or claim that is not in the list above.\n")
	return b.String()
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}
