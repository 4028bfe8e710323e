package grounding

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/validate"
)

const resinSentence = "Polyethylene resin contract prices rose 6% in March after two cracker outages in Texas."

func testCorpus() []model.CorpusEntry {
	return []model.CorpusEntry{
		{
			Index:   1,
			URL:     "https://www.reuters.com/markets/lithium",
			Title:   "Lithium climbs",
			Content: "Lithium carbonate prices climbed sharply in Asian spot markets this week. Battery makers reported tight inventories.",
		},
		{
			Index:   2,
			URL:     "https://freightwaves.com/news/ocean-rates",
			Title:   "Ocean rates ease",
			Content: "Ocean freight rates from Shanghai to Rotterdam eased as vessel capacity returned. Carriers blanked fewer sailings.",
		},
		{
			Index:   3,
			URL:     "https://example.com/resin",
			Title:   "Resin outages",
			Content: resinSentence + " Converters face allocation through April.",
		},
		{
			Index:         4,
			URL:           "https://example.org/paywalled",
			ContentStatus: model.ContentStatusThin,
		},
	}
}

func newTestGrounder() *Grounder {
	cfg := model.DefaultConfig()
	return NewGrounder(&cfg.Grounding, validate.NewAuthorityClassifier(&cfg.Authority))
}

func findClaim(t *testing.T, result model.GroundingResult, section model.Section, text string) model.Claim {
	t.Helper()
	for _, c := range result.Claims {
		if c.Section == section && c.Text == text {
			return c
		}
	}
	require.Failf(t, "claim not found", "%s %q", section, text)
	return model.Claim{}
}

func TestGround_AutoMatch(t *testing.T) {
	brief := &model.Brief{
		Watchlist: model.Items("Polyethylene resin prices rose after cracker outages"),
	}

	result := newTestGrounder().Ground(brief, testCorpus(), nil, nil)
	require.Len(t, result.Claims, 1)

	claim := result.Claims[0]
	assert.Equal(t, model.StatusSupported, claim.Status)
	require.Len(t, claim.Evidence, 1)

	ev := claim.Evidence[0]
	assert.Equal(t, "https://example.com/resin", ev.URL)
	assert.Equal(t, SourceID("https://example.com/resin"), ev.SourceID)
	assert.Equal(t, resinSentence, ev.Excerpt)
	require.NotNil(t, ev.StartOffset)
	require.NotNil(t, ev.EndOffset)
	assert.Equal(t, 0, *ev.StartOffset)
	assert.Equal(t, utf8.RuneCountInString(resinSentence), *ev.EndOffset)
	assert.Len(t, ev.ContentHash, 64)
	assert.Greater(t, ev.Similarity, 0.2)

	assert.Empty(t, result.Issues)
	assert.Equal(t, model.ClaimStats{Total: 1, Supported: 1}, result.Stats)
	assert.True(t, strings.HasPrefix(claim.ID, "clm_"))
}

func TestGround_ExplicitTagThreshold(t *testing.T) {
	brief := &model.Brief{
		Watchlist: model.Items(
			"Converters expect allocation relief soon (source: 3)",
			"Supplier margins widen amid strong downstream demand growth (source: 3)",
		),
	}

	result := newTestGrounder().Ground(brief, testCorpus(), []int{1, 2, 3}, nil)
	require.Len(t, result.Claims, 2)

	supported := result.Claims[0]
	assert.Equal(t, "Converters expect allocation relief soon", supported.Text)
	assert.Equal(t, model.StatusSupported, supported.Status)
	require.Len(t, supported.Evidence, 1)
	assert.Equal(t, "Converters face allocation through April.", supported.Evidence[0].Excerpt)
	assert.InDelta(t, 0.4, supported.Evidence[0].Similarity, 0.0001)

	unsupported := result.Claims[1]
	assert.Equal(t, model.StatusNeedsVerification, unsupported.Status)
	assert.Empty(t, unsupported.Evidence)
	require.Len(t, result.Issues, 1)
	assert.Contains(t, result.Issues[0], "watchlist[1]: claim needs verification")

	// The same claim falls below a stricter support threshold
	cfg := model.DefaultConfig().Grounding
	cfg.SupportThreshold = 0.5
	strict := NewGrounder(&cfg, nil).Ground(brief, testCorpus(), []int{1, 2, 3}, nil)
	assert.Equal(t, model.StatusNeedsVerification, strict.Claims[0].Status)
}

func TestGround_InvalidTag(t *testing.T) {
	brief := &model.Brief{
		Watchlist: model.Items(
			"Polyethylene resin prices rose after cracker outages (source: 9)",
			"Lithium carbonate prices climbed (source: 1)",
		),
	}

	result := newTestGrounder().Ground(brief, testCorpus(), []int{2, 3}, nil)
	require.Len(t, result.Claims, 2)

	assert.Contains(t, result.Issues, "watchlist[0]: cited source 9 is not an allowed corpus entry")
	assert.Contains(t, result.Issues, "watchlist[1]: cited source 1 is not an allowed corpus entry")

	// Falls through to auto-match within the selection
	assert.Equal(t, model.StatusSupported, result.Claims[0].Status)
	assert.Equal(t, "https://example.com/resin", result.Claims[0].Evidence[0].URL)

	// Entry 1 is outside the selection, so auto-match cannot reach it either
	assert.Equal(t, model.StatusNeedsVerification, result.Claims[1].Status)
}

func TestGround_AnalysisAndDemotion(t *testing.T) {
	brief := &model.Brief{
		Summary: model.Items(
			"Prices could climb 15% next quarter (analysis)",
			"Buyers remain cautious heading into spring",
		),
		ProcurementActions: model.Items("Negotiate quarterly volume commitments with alternate suppliers"),
	}

	result := newTestGrounder().Ground(brief, testCorpus(), nil, nil)
	require.Len(t, result.Claims, 3)

	assert.Equal(t, model.StatusAnalysis, findClaim(t, result, model.SectionSummary, "Prices could climb 15% next quarter").Status)
	assert.Equal(t, model.StatusAnalysis, findClaim(t, result, model.SectionSummary, "Buyers remain cautious heading into spring").Status)
	assert.Equal(t, model.StatusNeedsVerification,
		findClaim(t, result, model.SectionProcurementAction, "Negotiate quarterly volume commitments with alternate suppliers").Status)

	assert.Equal(t, []string{
		`procurement_action[0]: claim needs verification: "Negotiate quarterly volume commitments with alternate suppliers"`,
	}, result.Issues)
	assert.Equal(t, model.ClaimStats{Total: 3, Analysis: 2, NeedsVerification: 1}, result.Stats)
}

func TestGround_TopStoryNumericIsStrict(t *testing.T) {
	brief := &model.Brief{
		TopStories: []model.TopStory{{
			ArticleIndex:       2,
			Brief:              "Spot rates fell 12% week on week",
			CategoryImportance: "Carriers are adjusting schedules",
		}},
	}

	result := newTestGrounder().Ground(brief, testCorpus(), nil, nil)
	require.Len(t, result.Claims, 2)

	story := findClaim(t, result, model.SectionTopStory, "Spot rates fell 12% week on week")
	assert.Equal(t, model.StatusNeedsVerification, story.Status)
	assert.Equal(t, []string{`top_story[0]: claim needs verification: "Spot rates fell 12% week on week"`}, result.Issues)
}

func TestGround_ThinEntryNeverSupports(t *testing.T) {
	brief := &model.Brief{Watchlist: model.Items("Paywalled report on resin (source: 4)")}

	result := newTestGrounder().Ground(brief, testCorpus(), nil, nil)
	require.Len(t, result.Claims, 1)
	assert.Equal(t, model.StatusNeedsVerification, result.Claims[0].Status)
}

func TestGround_SkipsEmptyClaims(t *testing.T) {
	brief := &model.Brief{Summary: model.Items("(analysis)", "   ")}

	result := newTestGrounder().Ground(brief, testCorpus(), nil, nil)
	assert.Empty(t, result.Claims)
	assert.Zero(t, result.Stats.Total)
}

func TestGround_Catalog(t *testing.T) {
	published := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	corpus := testCorpus()
	corpus[2].PublishedAt = &published

	brief := &model.Brief{
		Watchlist:        model.Items("Lithium carbonate prices climbed sharply in Asian spot markets"),
		MarketIndicators: []model.IndicatorNote{{IndexID: "pe-hdpe", Note: "Holding near highs (analysis)"}},
	}
	indicators := []model.IndicatorRef{
		{IndexID: "BRENT", URL: "https://www.eia.gov/brent"},
		{IndexID: "PE-HDPE", URL: "https://www.cmegroup.com/pe", Title: "HDPE index"},
	}

	result := newTestGrounder().Ground(brief, corpus, []int{3, 2}, indicators)

	// Entry 1 is outside the selection, so the lithium claim stays unverified and
	// contributes no evidence source
	require.Len(t, result.Sources, 3)
	assert.Equal(t, "https://example.com/resin", result.Sources[0].URL)
	assert.Equal(t, &published, result.Sources[0].PublishedAt)
	assert.Equal(t, model.TierTertiary, result.Sources[0].Authority)
	assert.Equal(t, "https://freightwaves.com/news/ocean-rates", result.Sources[1].URL)
	assert.Equal(t, model.TierSecondary, result.Sources[1].Authority)
	assert.Equal(t, "HDPE index", result.Sources[2].Title)
	assert.Equal(t, model.TierPrimary, result.Sources[2].Authority)

	for i, s := range result.Sources {
		assert.Equal(t, i+1, s.Number)
	}
}

func TestGround_EvidenceSourcesFollowCore(t *testing.T) {
	brief := &model.Brief{
		Watchlist: model.Items("Lithium carbonate prices climbed sharply in Asian spot markets"),
	}

	result := newTestGrounder().Ground(brief, testCorpus(), nil, nil)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "https://www.reuters.com/markets/lithium", result.Sources[0].URL)
	assert.Equal(t, "Lithium climbs", result.Sources[0].Title)
}

func TestGround_HTMLContent(t *testing.T) {
	corpus := []model.CorpusEntry{{
		Index:       1,
		URL:         "https://example.com/html",
		ContentType: "text/html",
		Content: `<html><head><title>Copper tightens</title></head><body>` +
			`<p>Copper cathode premiums in Rotterdam jumped after smelter maintenance.</p>` +
			`<script>var x = "copper cathode";</script></body></html>`,
	}}
	brief := &model.Brief{Watchlist: model.Items("Copper cathode premiums jumped after smelter maintenance (source: 1)")}

	result := newTestGrounder().Ground(brief, corpus, nil, nil)
	require.Len(t, result.Claims, 1)
	require.Equal(t, model.StatusSupported, result.Claims[0].Status)

	ev := result.Claims[0].Evidence[0]
	assert.Equal(t, "Copper cathode premiums in Rotterdam jumped after smelter maintenance.", ev.Excerpt)
	assert.Equal(t, "Copper tightens", ev.Title)
	// The excerpt occurs verbatim inside the paragraph, so offsets refer to the raw HTML
	require.NotNil(t, ev.StartOffset)
	assert.Equal(t, strings.Index(corpus[0].Content, ev.Excerpt), *ev.StartOffset)
}

func TestGround_StableIDs(t *testing.T) {
	brief := &model.Brief{
		Summary: model.Items("Buyers remain cautious", "Buyers remain cautious"),
	}

	g := newTestGrounder()
	first := g.Ground(brief, testCorpus(), nil, nil)
	second := g.Ground(brief, testCorpus(), nil, nil)

	require.Len(t, first.Claims, 2)
	assert.NotEqual(t, first.Claims[0].ID, first.Claims[1].ID)
	assert.Equal(t, first.Claims[0].ID, second.Claims[0].ID)
	assert.Equal(t, first.Claims[1].ID, second.Claims[1].ID)
}

func TestBuildCatalog_Dedupe(t *testing.T) {
	published := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	cfg := model.DefaultConfig()

	sources := BuildCatalog([]SourceRef{
		{URL: "https://www.Example.com/resin/?utm_source=news#top"},
		{URL: "https://example.com/resin", Title: "Resin", PublishedAt: &published},
		{URL: ""},
		{URL: "https://reuters.com/x", Title: "Wire"},
	}, validate.NewAuthorityClassifier(&cfg.Authority))

	require.Len(t, sources, 2)
	assert.Equal(t, "https://www.Example.com/resin/?utm_source=news#top", sources[0].URL)
	assert.Equal(t, "Resin", sources[0].Title)
	assert.Equal(t, &published, sources[0].PublishedAt)
	assert.Equal(t, 1, sources[0].Number)
	assert.Equal(t, model.TierTertiary, sources[0].Authority)

	assert.Equal(t, 2, sources[1].Number)
	assert.Equal(t, model.TierSecondary, sources[1].Authority)
	assert.Equal(t, SourceID("https://reuters.com/x/"), sources[1].SourceID)
}

func TestBuildCatalog_NoClassifier(t *testing.T) {
	sources := BuildCatalog([]SourceRef{{URL: "https://sec.gov/filing"}}, nil)
	require.Len(t, sources, 1)
	assert.Equal(t, model.TierUnknown, sources[0].Authority)
	assert.True(t, strings.HasPrefix(sources[0].SourceID, "src_"))
	assert.Len(t, sources[0].SourceID, 20)
}
