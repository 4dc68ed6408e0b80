package facts

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyforge/copyforge/internal/genai"
)

func TestFormatConstraint_EmbedsEveryFactVerbatim(t *testing.T) {
	t.Parallel()

	inv := &Inventory{
		AllFacts: []string{
			"Shipped 12 releases in 2024",
			"Support response time averages 40 minutes",
			"Founded in Austin",
		},
		UnknownGaps: []string{"pricing for the enterprise tier"},
		FocusAreas:  []string{"release cadence"},
	}
	out := FormatConstraint(inv)
	for _, fact := range inv.AllFacts {
		assert.Contains(t, out, fact)
	}
	for _, gap := range inv.UnknownGaps {
		assert.Contains(t, out, gap)
	}
	assert.Contains(t, out, "Never state a number")
}

func TestFormatConstraint_Deterministic(t *testing.T) {
	t.Parallel()

	inv := &Inventory{AllFacts: []string{"a", "b"}, FocusAreas: []string{"c"}}
	first := FormatConstraint(inv)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, FormatConstraint(inv))
	}
}

func TestFormatConstraint_EmptyInventory(t *testing.T) {
	t.Parallel()

	out := FormatConstraint(&Inventory{})
	assert.Contains(t, out, "make no factual claims")
}

func TestExtract_EmptyInputSkipsServiceCall(t *testing.T) {
	t.Parallel()

	mock := &genai.MockClient{}
	eng := NewEngine(mock)
	inv, err := eng.Extract(context.Background(), "   \n")
	require.NoError(t, err)
	assert.Empty(t, inv.AllFacts)
	assert.Equal(t, 0, mock.CallCount())
}

func TestExtract_DelegatesWithNoInferenceInstruction(t *testing.T) {
	t.Parallel()

	mock := &genai.MockClient{Responses: []string{
		`{"all_facts":["Revenue doubled in Q2"],"unknown_gaps":[],"focus_areas":["growth"]}`,
	}}
	eng := NewEngine(mock)
	inv, err := eng.Extract(context.Background(), "Our revenue doubled in Q2.")
	require.NoError(t, err)
	require.Len(t, inv.AllFacts, 1)
	assert.Equal(t, "Revenue doubled in Q2", inv.AllFacts[0])

	require.Equal(t, 1, mock.CallCount())
	assert.Contains(t, mock.Requests[0].System, "Never infer")
}

func TestVerify_ReportsUntracedClaims(t *testing.T) {
	t.Parallel()

	mock := &genai.MockClient{Responses: []string{
		`{"valid":false,"violations":["\"Trusted by 500 companies\" has no source fact"]}`,
	}}
	eng := NewEngine(mock)
	res, err := eng.Verify(context.Background(), "Trusted by 500 companies.", &Inventory{AllFacts: []string{"Founded in Austin"}})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	require.Len(t, res.Violations, 1)

	prompt := mock.Requests[0].Prompt
	if !strings.Contains(prompt, "Founded in Austin") {
		t.Errorf("verify prompt missing allow-list fact: %q", prompt)
	}
}
