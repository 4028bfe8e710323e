package model

import "time"

// Report is the complete result of checking one generation attempt
type Report struct {
	RunID       string            `json:"runId"`               // Unique per pipeline run
	RequestID   string            `json:"requestId,omitempty"` // Caller-supplied request id
	GeneratedAt time.Time         `json:"generatedAt"`
	Limits      Limits            `json:"limits"`
	Output      *StructuredOutput `json:"output,omitempty"`  // Contract-valid output, absent for ground-only reports
	Repairs     []string          `json:"repairs,omitempty"` // Soft repairs the normalizer applied
	Grounding   GroundingResult   `json:"grounding"`
	FactCheck   []string          `json:"factCheck,omitempty"` // Numeric fact check issues
	Score       Score             `json:"score"`               // Quality index (never affects enforcement)
}

// GroundingResult is the output of evidence grounding
type GroundingResult struct {
	Claims  []Claim    `json:"claims"`
	Sources []Source   `json:"sources"`
	Issues  []string   `json:"issues,omitempty"`
	Stats   ClaimStats `json:"stats"`
}

// Score represents the transparent quality breakdown
type Score struct {
	Index      int      `json:"index"`      // Overall quality index (0-100)
	Confidence string   `json:"confidence"` // "low", "low-medium", "medium", "high"
	Signals    []Signal `json:"signals"`    // Diagnostic signals with transparent data
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalGroundingCoverage SignalType = "grounding_coverage" // Supported share of checkable claims
	SignalAnalysisShare     SignalType = "analysis_share"     // Claims exempted from grounding
	SignalStrictSections    SignalType = "strict_sections"    // Grounding issues: unverified strict claims, bad tags
	SignalNumericFacts      SignalType = "numeric_facts"      // Fact check mismatches
	SignalSourceAuthority   SignalType = "source_authority"   // Authority tier balance of the catalog
	SignalContractRepairs   SignalType = "contract_repairs"   // Soft repairs applied by the normalizer
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Request is one unit of work for the check pipeline
type Request struct {
	ID              string         `json:"id,omitempty" yaml:"id,omitempty"`
	Raw             string         `json:"raw,omitempty" yaml:"raw,omitempty"`         // Raw model output
	RawFile         string         `json:"rawFile,omitempty" yaml:"rawFile,omitempty"` // Path to raw output, relative to the request file
	RequiredCount   int            `json:"requiredCount" yaml:"requiredCount"`
	MaxArticleIndex int            `json:"maxArticleIndex,omitempty" yaml:"maxArticleIndex,omitempty"`
	Corpus          []CorpusEntry  `json:"corpus" yaml:"corpus"`
	Indicators      []IndicatorRef `json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

// Limits derives enforcement limits, defaulting the index ceiling to the corpus size
func (r *Request) Limits() Limits {
	maxIndex := r.MaxArticleIndex
	if maxIndex <= 0 {
		for _, e := range r.Corpus {
			if e.Index > maxIndex {
				maxIndex = e.Index
			}
		}
	}
	return Limits{RequiredCount: r.RequiredCount, MaxArticleIndex: maxIndex}
}
