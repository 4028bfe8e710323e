package grounding

import (
	"strings"

	"github.com/ppiankov/briefguard/internal/model"
)

// claimInput is one claim-bearing string with its section, position within the
// section and structural fallback article (0 when none)
type claimInput struct {
	Section  model.Section
	Position int
	Raw      string
	Fallback int
}

// collectClaims flattens a brief into claim inputs in display order
func collectClaims(b *model.Brief) []claimInput {
	var inputs []claimInput
	counters := make(map[model.Section]int)

	add := func(section model.Section, raw string, fallback int) {
		if strings.TrimSpace(raw) == "" {
			return
		}
		inputs = append(inputs, claimInput{Section: section, Position: counters[section], Raw: raw, Fallback: fallback})
		counters[section]++
	}
	addItems := func(section model.Section, items []model.BriefItem) {
		for _, item := range items {
			add(section, item.Text, item.ArticleIndex)
		}
	}

	addItems(model.SectionSummary, b.Summary)
	addItems(model.SectionHighlight, b.Highlights)
	addItems(model.SectionProcurementAction, b.ProcurementActions)
	addItems(model.SectionWatchlist, b.Watchlist)
	addItems(model.SectionDelta, b.Deltas)

	for _, story := range b.TopStories {
		add(model.SectionTopStory, story.Brief, story.ArticleIndex)
		add(model.SectionCategoryImportance, story.CategoryImportance, story.ArticleIndex)
		for _, metric := range story.KeyMetrics {
			add(model.SectionTopStory, metric, story.ArticleIndex)
		}
	}

	for _, note := range b.MarketIndicators {
		add(model.SectionMarketIndicator, note.Note, 0)
	}

	for _, snap := range []struct {
		section model.Section
		s       *model.Snapshot
	}{{model.SectionVPSnapshot, b.VPSnapshot}, {model.SectionCMSnapshot, b.CMSnapshot}} {
		if snap.s == nil {
			continue
		}
		add(snap.section, snap.s.Headline, 0)
		addItems(snap.section, snap.s.Bullets)
		addItems(snap.section, snap.s.Actions)
		addItems(snap.section, snap.s.Risks)
	}

	addItems(model.SectionOther, b.Other)

	return inputs
}

// FromStructuredOutput derives the claim-bearing brief of an enforced output. The
// first citation of a bullet or action is its structural fallback article.
func FromStructuredOutput(out *model.StructuredOutput) *model.Brief {
	b := &model.Brief{}

	for _, bullet := range out.SummaryBullets {
		b.Summary = append(b.Summary, model.BriefItem{Text: bullet.Text, ArticleIndex: firstCitation(bullet.Citations)})
	}
	for _, group := range out.Impact.Groups() {
		for _, bullet := range *group {
			b.Highlights = append(b.Highlights, model.BriefItem{Text: bullet.Text, ArticleIndex: firstCitation(bullet.Citations)})
		}
	}
	for _, group := range out.PossibleActions.Groups() {
		for _, a := range *group {
			b.ProcurementActions = append(b.ProcurementActions, model.BriefItem{
				Text:         actionText(a),
				ArticleIndex: firstCitation(a.Citations),
			})
		}
	}

	for _, ref := range out.SelectedArticles {
		story := model.TopStory{ArticleIndex: ref.ArticleIndex, CategoryImportance: ref.Reason}
		if ref.ArticleIndex == out.HeroSelection.ArticleIndex {
			story.Brief = out.HeroSelection.Rationale
		}
		if story.Brief != "" || story.CategoryImportance != "" {
			b.TopStories = append(b.TopStories, story)
		}
	}

	for _, ind := range out.MarketIndicators {
		b.MarketIndicators = append(b.MarketIndicators, model.IndicatorNote{IndexID: ind.IndexID, Note: ind.Note})
	}

	return b
}

// actionText joins action, rationale and expected outcome into one claim. A trailing
// evidence tag on the outcome stays at the end so it still parses.
func actionText(a model.Action) string {
	var parts []string
	for _, p := range []string{a.Action, a.Rationale, a.ExpectedOutcome} {
		p = strings.TrimRight(strings.TrimSpace(p), ".")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ". ")
}

func firstCitation(citations []int) int {
	if len(citations) == 0 {
		return 0
	}
	return citations[0]
}
