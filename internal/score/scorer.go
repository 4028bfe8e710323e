package score

import (
	"fmt"
	"math"

	"github.com/ppiankov/briefguard/internal/model"
)

// Penalty applied per grounding or fact check issue, and the cap per category
const (
	issuePenalty    = 5
	maxIssuePenalty = 20
)

// Input is everything the quality index is computed from
type Input struct {
	Grounding model.GroundingResult
	FactCheck []string
	Repairs   int // Soft repairs applied during enforcement
}

// Scorer calculates the quality index and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate calculates the quality score and generates diagnostic signals. The
// result is informational only and never feeds back into enforcement.
func (s *Scorer) Calculate(in Input) model.Score {
	var signals []model.Signal
	stats := in.Grounding.Stats

	// 1. Grounding coverage (0-60 points)
	coverageScore, coverageSignal := s.calculateCoverage(stats)
	signals = append(signals, coverageSignal)

	// 2. Analysis share (0-10 points)
	analysisScore, analysisSignal := s.calculateAnalysisShare(stats)
	signals = append(signals, analysisSignal)

	// 3. Source authority (0-30 points)
	authorityScore, authoritySignal := s.calculateAuthority(in.Grounding.Sources)
	signals = append(signals, authoritySignal)

	// 4. Grounding issues (penalty)
	strictPenalty, strictSignal := s.issuePenalty(model.SignalStrictSections, "Grounding issues", in.Grounding.Issues)
	if strictPenalty > 0 {
		signals = append(signals, strictSignal)
	}

	// 5. Numeric fact check (penalty)
	factPenalty, factSignal := s.issuePenalty(model.SignalNumericFacts, "Fact check issues", in.FactCheck)
	if factPenalty > 0 {
		signals = append(signals, factSignal)
	}

	// 6. Contract repairs (informational)
	signals = append(signals, s.repairSignal(in.Repairs))

	totalScore := coverageScore + analysisScore + authorityScore - strictPenalty - factPenalty
	if totalScore < 0 {
		totalScore = 0
	}

	return model.Score{
		Index:      totalScore,
		Confidence: s.determineConfidence(totalScore, stats.Supported, factPenalty > 0),
		Signals:    signals,
	}
}

// calculateCoverage scores the supported share of claims that needed grounding (0-60 points)
func (s *Scorer) calculateCoverage(stats model.ClaimStats) (int, model.Signal) {
	checkable := stats.Total - stats.Analysis

	if stats.Total == 0 {
		return 0, model.Signal{
			Type:        model.SignalGroundingCoverage,
			Severity:    model.SeverityCritical,
			Description: "No claims extracted",
			Data:        map[string]interface{}{"claims": 0},
		}
	}
	if checkable == 0 {
		return 0, model.Signal{
			Type:        model.SignalGroundingCoverage,
			Severity:    model.SeverityWarning,
			Description: "Every claim is analysis; nothing was grounded",
			Data: map[string]interface{}{
				"claims":   stats.Total,
				"analysis": stats.Analysis,
			},
		}
	}

	ratio := float64(stats.Supported) / float64(checkable)
	score := int(math.Min(ratio*60, 60))

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 0.8 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalGroundingCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Supported claims: %d/%d (%.0f%%)", stats.Supported, checkable, ratio*100),
		Data: map[string]interface{}{
			"supported":          stats.Supported,
			"needs_verification": stats.NeedsVerification,
			"checkable":          checkable,
			"ratio":              ratio,
			"score":              score,
			"formula":            "min(supported / (total - analysis) * 60, 60)",
		},
	}
}

// calculateAnalysisShare rewards briefs that ground most of what they say (0-10 points)
func (s *Scorer) calculateAnalysisShare(stats model.ClaimStats) (int, model.Signal) {
	if stats.Total == 0 {
		return 0, model.Signal{
			Type:        model.SignalAnalysisShare,
			Severity:    model.SeverityInfo,
			Description: "No claims extracted",
			Data:        map[string]interface{}{"claims": 0},
		}
	}

	share := float64(stats.Analysis) / float64(stats.Total)
	score := int((1 - share) * 10)

	severity := model.SeverityInfo
	if share > 0.5 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalAnalysisShare,
		Severity:    severity,
		Description: fmt.Sprintf("Analysis claims: %d/%d (%.0f%%)", stats.Analysis, stats.Total, share*100),
		Data: map[string]interface{}{
			"analysis": stats.Analysis,
			"total":    stats.Total,
			"share":    share,
			"score":    score,
			"formula":  "(1 - analysis / total) * 10",
		},
	}
}

// calculateAuthority calculates the authority distribution of the catalog (0-30 points)
func (s *Scorer) calculateAuthority(sources []model.Source) (int, model.Signal) {
	if len(sources) == 0 {
		return 0, model.Signal{
			Type:        model.SignalSourceAuthority,
			Severity:    model.SeverityWarning,
			Description: "No sources in catalog",
			Data:        map[string]interface{}{"sources": 0},
		}
	}

	primaryCount := 0
	secondaryCount := 0
	tertiaryCount := 0

	for _, src := range sources {
		switch src.Authority {
		case model.TierPrimary:
			primaryCount++
		case model.TierSecondary:
			secondaryCount++
		case model.TierTertiary:
			tertiaryCount++
		}
	}

	total := len(sources)
	weightedSum := float64(primaryCount*3 + secondaryCount*2 + tertiaryCount*1)
	maxPossible := float64(total * 3)
	score := int((weightedSum / maxPossible) * 30)

	severity := model.SeverityInfo
	if primaryCount == 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalSourceAuthority,
		Severity:    severity,
		Description: fmt.Sprintf("Authority distribution: %d primary, %d secondary, %d tertiary", primaryCount, secondaryCount, tertiaryCount),
		Data: map[string]interface{}{
			"primary":   primaryCount,
			"secondary": secondaryCount,
			"tertiary":  tertiaryCount,
			"unknown":   total - primaryCount - secondaryCount - tertiaryCount,
			"total":     total,
			"score":     score,
			"formula":   "(primary*3 + secondary*2 + tertiary*1) / (total*3) * 30",
		},
	}
}

// issuePenalty converts an issue list into a capped penalty
func (s *Scorer) issuePenalty(signalType model.SignalType, label string, issues []string) (int, model.Signal) {
	penalty := len(issues) * issuePenalty
	if penalty > maxIssuePenalty {
		penalty = maxIssuePenalty
	}

	severity := model.SeverityWarning
	if penalty >= maxIssuePenalty {
		severity = model.SeverityCritical
	}

	return penalty, model.Signal{
		Type:        signalType,
		Severity:    severity,
		Description: fmt.Sprintf("%s: %d", label, len(issues)),
		Data: map[string]interface{}{
			"issues":  len(issues),
			"penalty": penalty,
			"formula": fmt.Sprintf("min(issues * %d, %d)", issuePenalty, maxIssuePenalty),
		},
	}
}

// repairSignal reports how much the normalizer had to change the raw output
func (s *Scorer) repairSignal(repairs int) model.Signal {
	severity := model.SeverityInfo
	if repairs > 5 {
		severity = model.SeverityWarning
	}

	description := "Output satisfied the contract without repairs"
	if repairs > 0 {
		description = fmt.Sprintf("Soft repairs applied: %d", repairs)
	}

	return model.Signal{
		Type:        model.SignalContractRepairs,
		Severity:    severity,
		Description: description,
		Data:        map[string]interface{}{"repairs": repairs},
	}
}

// determineConfidence determines the confidence level based on the score
func (s *Scorer) determineConfidence(score int, supported int, factIssues bool) string {
	if factIssues {
		return "low-medium"
	}

	if supported < 3 {
		return "low"
	}

	if score >= 80 {
		return "high"
	} else if score >= 60 {
		return "medium"
	} else {
		return "low"
	}
}
