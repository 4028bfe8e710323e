package validate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/briefguard/internal/model"
)

// ForbiddenTitlePhrase must never appear in a final title (case-insensitive)
const ForbiddenTitlePhrase = "daily brief"

// CrossReference checks the internal consistency of a normalized output: selection
// bounds and uniqueness, hero membership, citation validity, group and total counts,
// and title bounds. It returns the remaining violations in document order.
func CrossReference(out *model.StructuredOutput, limits model.Limits) []string {
	var issues []string
	add := func(format string, args ...interface{}) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	// Selection
	selected := make(map[int]bool, len(out.SelectedArticles))
	if len(out.SelectedArticles) == 0 {
		add("selectedArticles: must contain at least 1 item")
	}
	if limits.RequiredCount > 0 && len(out.SelectedArticles) > limits.RequiredCount {
		add("selectedArticles: must contain at most %d items (got %d)", limits.RequiredCount, len(out.SelectedArticles))
	}
	for i, ref := range out.SelectedArticles {
		if ref.ArticleIndex < 1 || (limits.MaxArticleIndex > 0 && ref.ArticleIndex > limits.MaxArticleIndex) {
			add("selectedArticles[%d].articleIndex: %d is outside [1, %d]", i, ref.ArticleIndex, limits.MaxArticleIndex)
		}
		if selected[ref.ArticleIndex] {
			add("selectedArticles[%d].articleIndex: duplicate index %d", i, ref.ArticleIndex)
		}
		selected[ref.ArticleIndex] = true
	}

	// Hero
	if !selected[out.HeroSelection.ArticleIndex] {
		add("heroSelection.articleIndex: %d is not a selected article", out.HeroSelection.ArticleIndex)
	}

	// Citations
	checkCitations := func(path string, citations []int) {
		if len(citations) == 0 || len(citations) > model.MaxCitations {
			add("%s: must contain between 1 and %d citations (got %d)", path, model.MaxCitations, len(citations))
		}
		seen := make(map[int]bool, len(citations))
		for j, c := range citations {
			if !selected[c] {
				add("%s[%d]: %d is not a selected article", path, j, c)
			}
			if seen[c] {
				add("%s[%d]: duplicate citation %d", path, j, c)
			}
			seen[c] = true
		}
	}
	for i, b := range out.SummaryBullets {
		checkCitations(fmt.Sprintf("summaryBullets[%d].citations", i), b.Citations)
	}
	impactTotal := 0
	for g, group := range out.Impact.Groups() {
		name := model.ImpactGroupNames[g]
		bounds := model.ImpactGroupBounds[g]
		impactTotal += len(*group)
		if n := len(*group); n < bounds.Min || n > bounds.Max {
			add("impact.%s: must contain between %d and %d items (got %d)", name, bounds.Min, bounds.Max, n)
		}
		for i, b := range *group {
			checkCitations(fmt.Sprintf("impact.%s[%d].citations", name, i), b.Citations)
		}
	}
	actionTotal := 0
	for g, group := range out.PossibleActions.Groups() {
		name := model.ActionGroupNames[g]
		bounds := model.ActionGroupBounds[g]
		actionTotal += len(*group)
		if n := len(*group); n < bounds.Min || n > bounds.Max {
			add("possibleActions.%s: must contain between %d and %d items (got %d)", name, bounds.Min, bounds.Max, n)
		}
		for i, a := range *group {
			checkCitations(fmt.Sprintf("possibleActions.%s[%d].citations", name, i), a.Citations)
		}
	}

	// Totals
	if impactTotal < model.ImpactTotalMin || impactTotal > model.ImpactTotalMax {
		add("impact: total bullets must be between %d and %d (got %d)", model.ImpactTotalMin, model.ImpactTotalMax, impactTotal)
	}
	if actionTotal < model.ActionTotalMin || actionTotal > model.ActionTotalMax {
		add("possibleActions: total actions must be between %d and %d (got %d)", model.ActionTotalMin, model.ActionTotalMax, actionTotal)
	}

	// Title
	if n := WordCount(out.Title); n < model.TitleMinWords || n > model.TitleMaxWords {
		add("title: must contain between %d and %d words (got %d)", model.TitleMinWords, model.TitleMaxWords, n)
	}
	if ContainsForbiddenPhrase(out.Title) {
		add("title: must not contain %q", ForbiddenTitlePhrase)
	}

	return issues
}

// WordCount counts whitespace-separated words
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// ContainsForbiddenPhrase reports whether s contains the forbidden title phrase,
// ignoring case and runs of whitespace
func ContainsForbiddenPhrase(s string) bool {
	collapsed := strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.Contains(collapsed, ForbiddenTitlePhrase)
}
