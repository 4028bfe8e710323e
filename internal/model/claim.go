package model

// Claim is a single user-visible assertion extracted from generated text
type Claim struct {
	ID       string     `json:"id"`                 // Stable hash of section, position and text
	Section  Section    `json:"section"`            // Which part of the brief the claim came from
	Text     string     `json:"text"`               // Claim text with any evidence tag stripped
	Status   Status     `json:"status"`             // supported, analysis, needs_verification
	Evidence []Evidence `json:"evidence,omitempty"` // Supporting excerpts (only for supported claims)
}

// Section names the brief field a claim was taken from
type Section string

const (
	SectionSummary            Section = "summary"
	SectionHighlight          Section = "highlight"
	SectionProcurementAction  Section = "procurement_action"
	SectionWatchlist          Section = "watchlist"
	SectionDelta              Section = "delta"
	SectionTopStory           Section = "top_story"
	SectionCategoryImportance Section = "category_importance"
	SectionMarketIndicator    Section = "market_indicator"
	SectionVPSnapshot         Section = "vp_snapshot"
	SectionCMSnapshot         Section = "cm_snapshot"
	SectionOther              Section = "other"
)

// Sections lists every section in display order
var Sections = []Section{
	SectionSummary,
	SectionHighlight,
	SectionProcurementAction,
	SectionWatchlist,
	SectionDelta,
	SectionTopStory,
	SectionCategoryImportance,
	SectionMarketIndicator,
	SectionVPSnapshot,
	SectionCMSnapshot,
	SectionOther,
}

// Valid reports whether s is a known section
func (s Section) Valid() bool {
	switch s {
	case SectionSummary, SectionHighlight, SectionProcurementAction, SectionWatchlist,
		SectionDelta, SectionTopStory, SectionCategoryImportance, SectionMarketIndicator,
		SectionVPSnapshot, SectionCMSnapshot, SectionOther:
		return true
	default:
		return false
	}
}

// ParseSection converts a string to a Section, falling back to SectionOther
func ParseSection(raw string) Section {
	s := Section(raw)
	if s.Valid() {
		return s
	}
	return SectionOther
}

// Status is the support classification of a claim
type Status string

const (
	StatusSupported         Status = "supported"          // Evidence similarity above threshold
	StatusAnalysis          Status = "analysis"           // Explicitly exempt from grounding
	StatusNeedsVerification Status = "needs_verification" // Neither supported nor exempt
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusSupported, StatusAnalysis, StatusNeedsVerification:
		return true
	default:
		return false
	}
}

// ClaimStats tallies claims per status
type ClaimStats struct {
	Total             int `json:"total"`
	Supported         int `json:"supported"`
	Analysis          int `json:"analysis"`
	NeedsVerification int `json:"needs_verification"`
}

// Add counts one claim with the given status
func (s *ClaimStats) Add(status Status) {
	s.Total++
	switch status {
	case StatusSupported:
		s.Supported++
	case StatusAnalysis:
		s.Analysis++
	case StatusNeedsVerification:
		s.NeedsVerification++
	}
}
