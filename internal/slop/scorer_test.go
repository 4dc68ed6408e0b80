package slop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyforge/copyforge/internal/genai"
	"github.com/copyforge/copyforge/internal/immersion"
	"github.com/copyforge/copyforge/internal/rules"
)

func TestScore_UniversalLayerCatchesSlop(t *testing.T) {
	t.Parallel()

	s := NewScorer(rules.Default(), nil)
	res := s.Score(context.Background(), "Our seamless platform will empower your team and unlock synergy at scale.", nil)
	assert.False(t, res.Passed)
	assert.GreaterOrEqual(t, len(res.UniversalViolations), 4)
	assert.Empty(t, res.DomainViolations)
}

func TestScore_CleanTextPassesWithoutClient(t *testing.T) {
	t.Parallel()

	s := NewScorer(rules.Default(), nil)
	res := s.Score(context.Background(), "Q2 revenue rose 18% after the checkout redesign shipped on May 2.", nil)
	assert.True(t, res.Passed)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Violations)
}

func TestScore_DomainLayerRequiresProfile(t *testing.T) {
	t.Parallel()

	s := NewScorer(rules.Default(), nil)
	profile := &immersion.Profile{
		ForbiddenInNiche: []string{"growth hacking"},
		GenericPhrases:   []string{"results speak for themselves"},
	}

	text := "We do growth hacking; the results speak for themselves."
	withProfile := s.Score(context.Background(), text, profile)
	require.Len(t, withProfile.DomainViolations, 2)

	withoutProfile := s.Score(context.Background(), text, nil)
	assert.Empty(t, withoutProfile.DomainViolations)
}

func TestScore_BadExampleOverlap(t *testing.T) {
	t.Parallel()

	s := NewScorer(rules.Default(), nil)
	profile := &immersion.Profile{
		BadExamples: []string{"We craft bespoke memorable experiences for visionary brands."},
	}

	// bespoke, memorable, visionary, brands: 4 of 6 significant words.
	echo := s.Score(context.Background(), "Our studio ships bespoke memorable work for visionary brands.", profile)
	require.Len(t, echo.DomainViolations, 1)
	assert.Contains(t, echo.DomainViolations[0], "bad example")

	fresh := s.Score(context.Background(), "The studio shipped 14 campaigns last quarter.", profile)
	assert.Empty(t, fresh.DomainViolations)
}

func TestScore_SkipsOpinionWhenRulesAlreadyFail(t *testing.T) {
	t.Parallel()

	mock := &genai.MockClient{Responses: []string{`{"score":90,"notes":"fine"}`}}
	s := NewScorer(rules.Default(), mock)

	// Four violations put the rule score at 40, under the opinion gate.
	res := s.Score(context.Background(), "Seamless, robust, holistic synergy.", nil)
	assert.False(t, res.Passed)
	assert.Equal(t, 0, mock.CallCount(), "external opinion must not run for clearly failing text")
}

func TestScore_BlendsOpinionWhenRulesPass(t *testing.T) {
	t.Parallel()

	mock := &genai.MockClient{Responses: []string{`{"score":50,"notes":"thin"}`}}
	s := NewScorer(rules.Default(), mock)

	res := s.Score(context.Background(), "Churn fell from 6% to 4% in March.", nil)
	require.Equal(t, 1, mock.CallCount())
	// 0.4*100 + 0.6*50 = 70.
	assert.Equal(t, 70, res.Score)
	assert.True(t, res.Passed)
}

func TestScore_OpinionFailureDegradesToRuleScore(t *testing.T) {
	t.Parallel()

	mock := &genai.MockClient{Err: context.DeadlineExceeded}
	s := NewScorer(rules.Default(), mock)

	res := s.Score(context.Background(), "Churn fell from 6% to 4% in March.", nil)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.Passed)
}

func TestFixSlop_SingleCorrectiveCall(t *testing.T) {
	t.Parallel()

	mock := &genai.MockClient{Responses: []string{`{"text":"Our platform handles peak load without manual tuning."}`}}
	s := NewScorer(rules.Default(), mock)

	fixed, err := s.FixSlop(context.Background(), "Our seamless platform handles peak load.", []string{`forbidden word "seamless"`}, nil)
	require.NoError(t, err)
	assert.NotContains(t, fixed, "seamless")
	require.Equal(t, 1, mock.CallCount())
	assert.Contains(t, mock.Requests[0].Prompt, "seamless")
}
