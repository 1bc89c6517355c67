package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDiagnosticScorePerfect(t *testing.T) {
	responses := map[string]string{
		"cf1": "daily",
		"cf2": "yes-exact",
		"cf3": "never",
		"cf4": "yes-separate",
		"cf5": "3months",
	}
	assert.Equal(t, 100, CalculateDiagnosticScore("cashflow", responses))
}

func TestCalculateDiagnosticScoreSingleZeroAnswer(t *testing.T) {
	// Four top answers plus one zero-score answer: 40 of 50 points
	responses := map[string]string{
		"co1": "yes-all",
		"co2": "no",
		"co3": "yes-using",
		"co4": "always",
		"co5": "yes-current",
	}
	assert.Equal(t, 80, CalculateDiagnosticScore("compliance", responses))
}

func TestCalculateDiagnosticScoreMissingAnswerDepressesScore(t *testing.T) {
	full := map[string]string{
		"cf1": "daily",
		"cf2": "yes-exact",
		"cf3": "never",
		"cf4": "yes-separate",
		"cf5": "3months",
	}
	partial := map[string]string{
		"cf1": "daily",
		"cf3": "never",
		"cf4": "yes-separate",
		"cf5": "3months",
	}
	assert.Equal(t, 100, CalculateDiagnosticScore("cashflow", full))
	assert.Equal(t, 80, CalculateDiagnosticScore("cashflow", partial))
}

func TestCalculateDiagnosticScoreRounding(t *testing.T) {
	// 7+5+3+5+7 = 27 of 50 -> 54
	responses := map[string]string{
		"cf1": "weekly",
		"cf2": "yes-estimate",
		"cf3": "sometimes",
		"cf4": "mostly",
		"cf5": "1month",
	}
	assert.Equal(t, 54, CalculateDiagnosticScore("cashflow", responses))
}

func TestCalculateDiagnosticScoreUnknownDomain(t *testing.T) {
	assert.Equal(t, 0, CalculateDiagnosticScore("marketing", map[string]string{"q1": "yes"}))
}

func TestCalculateDiagnosticScoreUnknownAnswerValue(t *testing.T) {
	responses := map[string]string{
		"cf1": "daily",
		"cf2": "not-an-option",
		"cf3": "never",
		"cf4": "yes-separate",
		"cf5": "3months",
	}
	// The bogus answer scores zero, same as unanswered
	assert.Equal(t, 80, CalculateDiagnosticScore("cashflow", responses))
}

func TestGenerateActionPlanCashflowTriggers(t *testing.T) {
	responses := map[string]string{
		"cf1": "rarely",
		"cf2": "no",
		"cf3": "often",
		"cf4": "no",
		"cf5": "none",
	}
	plan := GenerateActionPlan("cashflow", responses, 0)

	if assert.Len(t, plan, 3) {
		assert.Equal(t, "cashflow-basics", plan[0].PlaybookSlug)
		assert.Equal(t, "business-banking", plan[1].PlaybookSlug)
		assert.Equal(t, "emergency-fund", plan[2].PlaybookSlug)
	}
}

func TestGenerateActionPlanMissingAnswerTriggersTracking(t *testing.T) {
	// cf1 unanswered counts as not tracking
	plan := GenerateActionPlan("cashflow", map[string]string{}, 0)

	if assert.Len(t, plan, 1) {
		assert.Equal(t, "cashflow-basics", plan[0].PlaybookSlug)
	}
}

func TestGenerateActionPlanHealthyBusinessEmpty(t *testing.T) {
	responses := map[string]string{
		"cf1": "daily",
		"cf2": "yes-exact",
		"cf3": "never",
		"cf4": "yes-separate",
		"cf5": "3months",
	}
	assert.Empty(t, GenerateActionPlan("cashflow", responses, 100))
}

func TestGenerateActionPlanComplianceTriggers(t *testing.T) {
	responses := map[string]string{
		"co1": "yes-all",
		"co2": "no",
		"co3": "yes-not-using",
		"co4": "always",
		"co5": "some",
	}
	plan := GenerateActionPlan("compliance", responses, 0)

	if assert.Len(t, plan, 3) {
		assert.Equal(t, "kra-pin-registration", plan[0].PlaybookSlug)
		assert.Equal(t, "etims-setup", plan[1].PlaybookSlug)
		assert.Equal(t, "county-permits", plan[2].PlaybookSlug)
	}
}

func TestGenerateActionPlanUnknownDomain(t *testing.T) {
	assert.Empty(t, GenerateActionPlan("marketing", map[string]string{"co2": "no"}, 50))
}

func TestIsKnownDomain(t *testing.T) {
	assert.True(t, IsKnownDomain("cashflow"))
	assert.True(t, IsKnownDomain("compliance"))
	assert.False(t, IsKnownDomain("marketing"))
	assert.False(t, IsKnownDomain(""))
}
