package model

import (
	"bytes"
	"encoding/json"
)

// Brief is the claim-bearing document handed to evidence grounding. It can be
// derived from an enforced StructuredOutput or parsed from the legacy text format.
type Brief struct {
	Summary            []BriefItem     `json:"summary,omitempty"`
	Highlights         []BriefItem     `json:"highlights,omitempty"`
	ProcurementActions []BriefItem     `json:"procurementActions,omitempty"`
	Watchlist          []BriefItem     `json:"watchlist,omitempty"`
	Deltas             []BriefItem     `json:"deltas,omitempty"`
	TopStories         []TopStory      `json:"topStories,omitempty"`
	MarketIndicators   []IndicatorNote `json:"marketIndicators,omitempty"`
	VPSnapshot         *Snapshot       `json:"vpSnapshot,omitempty"`
	CMSnapshot         *Snapshot       `json:"cmSnapshot,omitempty"`
	Other              []BriefItem     `json:"other,omitempty"`
}

// BriefItem is one claim-bearing string. ArticleIndex, when set, is the article the
// item structurally belongs to and serves as the evidence fallback.
type BriefItem struct {
	Text         string `json:"text"`
	ArticleIndex int    `json:"articleIndex,omitempty"`
}

// UnmarshalJSON accepts either a bare string or an object
func (b *BriefItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &b.Text)
	}
	type plain BriefItem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = BriefItem(p)
	return nil
}

// Items wraps plain strings as brief items without a structural article
func Items(texts ...string) []BriefItem {
	items := make([]BriefItem, 0, len(texts))
	for _, t := range texts {
		items = append(items, BriefItem{Text: t})
	}
	return items
}

// TopStory is the per-article section of a brief
type TopStory struct {
	ArticleIndex       int      `json:"articleIndex"`
	Brief              string   `json:"brief,omitempty"`
	CategoryImportance string   `json:"categoryImportance,omitempty"`
	KeyMetrics         []string `json:"keyMetrics,omitempty"`
}

// IndicatorNote is commentary attached to a market indicator
type IndicatorNote struct {
	IndexID string `json:"indexId,omitempty"`
	Note    string `json:"note"`
}

// Snapshot is a role-specific digest (VP or category manager)
type Snapshot struct {
	Headline string      `json:"headline,omitempty"`
	Bullets  []BriefItem `json:"bullets,omitempty"`
	Actions  []BriefItem `json:"actions,omitempty"`
	Risks    []BriefItem `json:"risks,omitempty"`
}
