package score

import (
	"testing"

	"github.com/ppiankov/briefguard/internal/model"
)

func sources(n int, tier model.AuthorityTier) []model.Source {
	out := make([]model.Source, n)
	for i := range out {
		out[i] = model.Source{Number: i + 1, URL: "https://example.com", Authority: tier}
	}
	return out
}

func findSignal(signals []model.Signal, t model.SignalType) (model.Signal, bool) {
	for _, s := range signals {
		if s.Type == t {
			return s, true
		}
	}
	return model.Signal{}, false
}

func TestScorer_Calculate_BasicScoring(t *testing.T) {
	scorer := NewScorer()

	// 10 claims, half supported, all tertiary sources
	result := scorer.Calculate(Input{
		Grounding: model.GroundingResult{
			Stats:   model.ClaimStats{Total: 10, Supported: 5, NeedsVerification: 5},
			Sources: sources(5, model.TierTertiary),
		},
	})

	// Coverage 30 (5/10 * 60), analysis share 10, authority 10 (5/15 * 30)
	if result.Index != 50 {
		t.Errorf("Expected index 50, got %d", result.Index)
	}

	if result.Confidence != "low" {
		t.Errorf("Expected low confidence, got %s", result.Confidence)
	}

	coverage, ok := findSignal(result.Signals, model.SignalGroundingCoverage)
	if !ok {
		t.Fatal("Expected grounding coverage signal")
	}
	if coverage.Severity != model.SeverityWarning {
		t.Errorf("Expected warning severity at 50%% coverage, got %s", coverage.Severity)
	}
	if coverage.Data["score"] != 30 {
		t.Errorf("Expected coverage score 30, got %v", coverage.Data["score"])
	}

	// Penalty signals only appear when there is something to penalize
	if _, ok := findSignal(result.Signals, model.SignalNumericFacts); ok {
		t.Error("Expected no numeric facts signal without fact check issues")
	}
}

func TestScorer_Calculate_EmptyInput(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Calculate(Input{})

	if result.Index != 0 {
		t.Errorf("Expected index 0 for empty input, got %d", result.Index)
	}

	if result.Confidence != "low" {
		t.Errorf("Expected low confidence for empty input, got %s", result.Confidence)
	}

	coverage, _ := findSignal(result.Signals, model.SignalGroundingCoverage)
	if coverage.Severity != model.SeverityCritical {
		t.Errorf("Expected critical coverage signal, got %s", coverage.Severity)
	}

	repairs, ok := findSignal(result.Signals, model.SignalContractRepairs)
	if !ok || repairs.Description != "Output satisfied the contract without repairs" {
		t.Errorf("Expected clean repair signal, got %+v", repairs)
	}
}

func TestScorer_Calculate_HighQuality(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Calculate(Input{
		Grounding: model.GroundingResult{
			Stats:   model.ClaimStats{Total: 10, Supported: 10},
			Sources: sources(4, model.TierPrimary),
		},
	})

	if result.Index != 100 {
		t.Errorf("Expected index 100, got %d", result.Index)
	}

	if result.Confidence != "high" {
		t.Errorf("Expected high confidence, got %s", result.Confidence)
	}
}

func TestScorer_Calculate_Penalties(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Calculate(Input{
		Grounding: model.GroundingResult{
			Stats:   model.ClaimStats{Total: 10, Supported: 10},
			Sources: sources(4, model.TierPrimary),
			Issues:  []string{"watchlist[0]: claim needs verification", "summary[1]: cited source 9 is not an allowed corpus entry"},
		},
		FactCheck: []string{"a", "b", "c", "d", "e"},
		Repairs:   7,
	})

	// 100 - 10 (two grounding issues) - 20 (fact check, capped)
	if result.Index != 70 {
		t.Errorf("Expected index 70, got %d", result.Index)
	}

	if result.Confidence != "low-medium" {
		t.Errorf("Expected low-medium confidence with fact check issues, got %s", result.Confidence)
	}

	facts, ok := findSignal(result.Signals, model.SignalNumericFacts)
	if !ok {
		t.Fatal("Expected numeric facts signal")
	}
	if facts.Severity != model.SeverityCritical || facts.Data["penalty"] != 20 {
		t.Errorf("Expected capped critical penalty, got %+v", facts)
	}

	strict, ok := findSignal(result.Signals, model.SignalStrictSections)
	if !ok || strict.Data["penalty"] != 10 {
		t.Errorf("Expected strict sections penalty 10, got %+v", strict)
	}

	repairs, _ := findSignal(result.Signals, model.SignalContractRepairs)
	if repairs.Severity != model.SeverityWarning {
		t.Errorf("Expected warning for heavy repairs, got %s", repairs.Severity)
	}
}

func TestScorer_Calculate_AnalysisHeavy(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Calculate(Input{
		Grounding: model.GroundingResult{
			Stats:   model.ClaimStats{Total: 10, Supported: 5, Analysis: 5},
			Sources: sources(2, model.TierPrimary),
		},
	})

	// Coverage 60 (5/5), analysis share 5, authority 30
	if result.Index != 95 {
		t.Errorf("Expected index 95, got %d", result.Index)
	}

	all := scorer.Calculate(Input{
		Grounding: model.GroundingResult{Stats: model.ClaimStats{Total: 3, Analysis: 3}},
	})
	coverage, _ := findSignal(all.Signals, model.SignalGroundingCoverage)
	if coverage.Severity != model.SeverityWarning {
		t.Errorf("Expected warning when every claim is analysis, got %s", coverage.Severity)
	}
}

func TestScorer_Calculate_NeverNegative(t *testing.T) {
	scorer := NewScorer()

	result := scorer.Calculate(Input{
		Grounding: model.GroundingResult{
			Stats:  model.ClaimStats{Total: 4, NeedsVerification: 4},
			Issues: []string{"a", "b", "c", "d", "e"},
		},
		FactCheck: []string{"x"},
	})

	if result.Index != 0 {
		t.Errorf("Expected index clamped to 0, got %d", result.Index)
	}
}
