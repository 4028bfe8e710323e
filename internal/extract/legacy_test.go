package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyBrief = `# Packaging Category Brief

## Summary
- Resin prices climbed 6% after two cracker outages (source: 2)
- Demand for corrugate is softening across retail (analysis)

## Highlights
* Converters are quoting longer lead times for food-grade film

## Procurement Actions
1. Lock Q3 2025 resin volumes with the incumbent supplier (source: 2)
2) Open a second source for corrugate in the southeast

## Watchlist
- Gulf Coast hurricane season outlook (source: 4)

## What Changed
- Cracker outages added to the risk register

## Top Stories
### [2] Cracker outages tighten resin supply
Two Gulf Coast crackers went offline this week.
- Why it matters: Film prices follow resin with a two-week lag (analysis)
- Key metric: 6% resin increase (source: 2)

### Article 4: Storm season
Forecasters expect an active season.

## Market Indicators
- PE-HDPE: Spot resin index up 6% (source: 2)
- Freight rates remain flat

## VP Snapshot
Headline: Resin spike is the main cost risk this quarter
- Budget exposure is concentrated in film
- Action: Approve forward buy (source: 2)
- Risk: Supplier allocation if outages extend

## Appendix
- Methodology notes
`

func TestParseLegacyBrief(t *testing.T) {
	brief := ParseLegacyBrief(legacyBrief)

	require.Len(t, brief.Summary, 2)
	assert.Equal(t, "Resin prices climbed 6% after two cracker outages (source: 2)", brief.Summary[0].Text)
	assert.Equal(t, 0, brief.Summary[0].ArticleIndex)

	require.Len(t, brief.Highlights, 1)
	require.Len(t, brief.ProcurementActions, 2)
	assert.Equal(t, "Open a second source for corrugate in the southeast", brief.ProcurementActions[1].Text)
	require.Len(t, brief.Watchlist, 1)
	require.Len(t, brief.Deltas, 1)

	require.Len(t, brief.TopStories, 2)
	story := brief.TopStories[0]
	assert.Equal(t, 2, story.ArticleIndex)
	assert.Equal(t, "Two Gulf Coast crackers went offline this week.", story.Brief)
	assert.Equal(t, "Film prices follow resin with a two-week lag (analysis)", story.CategoryImportance)
	assert.Equal(t, []string{"6% resin increase (source: 2)"}, story.KeyMetrics)
	assert.Equal(t, 4, brief.TopStories[1].ArticleIndex)

	require.Len(t, brief.MarketIndicators, 2)
	assert.Equal(t, "PE-HDPE", brief.MarketIndicators[0].IndexID)
	assert.Equal(t, "Spot resin index up 6% (source: 2)", brief.MarketIndicators[0].Note)
	assert.Equal(t, "", brief.MarketIndicators[1].IndexID)

	require.NotNil(t, brief.VPSnapshot)
	assert.Equal(t, "Resin spike is the main cost risk this quarter", brief.VPSnapshot.Headline)
	assert.Len(t, brief.VPSnapshot.Bullets, 1)
	assert.Len(t, brief.VPSnapshot.Actions, 1)
	assert.Len(t, brief.VPSnapshot.Risks, 1)
	assert.Nil(t, brief.CMSnapshot)

	require.Len(t, brief.Other, 1)
	assert.Equal(t, "Methodology notes", brief.Other[0].Text)
}

func TestParseLegacyBrief_CandidateMarkers(t *testing.T) {
	brief := ParseLegacyBrief("## Highlights\n- Port congestion eased (source: candidateIndex 7)\n- Freight fell 3% (source: 2)\n- (source: candidateIndex 1)\n")

	require.Len(t, brief.Highlights, 2)
	assert.Equal(t, "Port congestion eased", brief.Highlights[0].Text)
	assert.Equal(t, Tag{Kind: TagNone}, ParseTag(brief.Highlights[0].Text))
	assert.Equal(t, "Freight fell 3% (source: 2)", brief.Highlights[1].Text)
}

func TestParseLegacyBrief_Empty(t *testing.T) {
	brief := ParseLegacyBrief("")
	assert.Empty(t, brief.Summary)
	assert.Empty(t, brief.TopStories)
}
