package model

import (
	"strings"
	"time"
)

// Evidence is a verbatim excerpt from a corpus document supporting a claim
type Evidence struct {
	SourceID    string  `json:"sourceId"`              // Stable hash of the canonical URL
	URL         string  `json:"url"`                   // Document URL
	Title       string  `json:"title,omitempty"`       // Document title when known
	Excerpt     string  `json:"excerpt"`               // Best-matching sentence or sentence pair
	StartOffset *int    `json:"startOffset,omitempty"` // Rune offset of the excerpt in the content
	EndOffset   *int    `json:"endOffset,omitempty"`   // Rune offset just past the excerpt
	ContentHash string  `json:"contentHash"`           // sha256 of the excerpt
	Similarity  float64 `json:"similarity"`            // Cosine similarity to the claim (0..1)
}

// Source is a deduplicated entry of the source catalog
type Source struct {
	SourceID    string        `json:"sourceId"`
	Number      int           `json:"number"` // 1-based display number
	URL         string        `json:"url"`
	Title       string        `json:"title,omitempty"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
	RetrievedAt *time.Time    `json:"retrievedAt,omitempty"`
	Authority   AuthorityTier `json:"authority"`
}

// ContentStatusThin marks corpus content too short to ground against
const ContentStatusThin = "thin"

// CorpusEntry is one source document available for grounding
type CorpusEntry struct {
	Index         int        `json:"index" yaml:"index"` // 1-based, matches citation numbering
	URL           string     `json:"url" yaml:"url"`
	Title         string     `json:"title,omitempty" yaml:"title,omitempty"`
	Content       string     `json:"content,omitempty" yaml:"content,omitempty"`
	ContentStatus string     `json:"contentStatus,omitempty" yaml:"contentStatus,omitempty"`
	ContentType   string     `json:"contentType,omitempty" yaml:"contentType,omitempty"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
	RetrievedAt   *time.Time `json:"retrievedAt,omitempty" yaml:"retrievedAt,omitempty"`
}

// Usable reports whether the entry has content that evidence matching may use
func (e CorpusEntry) Usable() bool {
	return e.ContentStatus != ContentStatusThin && len(e.Content) > 0
}

// IndicatorRef maps an external market index identifier to a citable URL
type IndicatorRef struct {
	IndexID string `json:"indexId" yaml:"indexId"`
	URL     string `json:"url" yaml:"url"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Regulators, exchanges, statistical agencies, company filings
	TierSecondary AuthorityTier = 2 // Trade press, newswires, major publishers
	TierTertiary  AuthorityTier = 3 // Blogs, aggregators, everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON and YAML output
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name, accepting the numeric form as well
func (t *AuthorityTier) UnmarshalText(text []byte) error {
	*t = ParseAuthorityTier(string(text))
	return nil
}

// ParseAuthorityTier converts a tier name or number to an AuthorityTier
func ParseAuthorityTier(raw string) AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "primary", "1":
		return TierPrimary
	case "secondary", "2":
		return TierSecondary
	case "tertiary", "3":
		return TierTertiary
	default:
		return TierUnknown
	}
}
