package normalize

import (
	"fmt"

	"github.com/ppiankov/briefguard/internal/model"
)

// repairSelection clamps the selection to RequiredCount entries and replaces
// out-of-range or duplicate indices with the next unused valid index, scanning up
// from 1. Entries with no replacement left are dropped; an empty selection gets a
// placeholder at index 1.
func repairSelection(out *model.StructuredOutput, limits model.Limits, r *Repairs) {
	sel := out.SelectedArticles
	if limits.RequiredCount > 0 && len(sel) > limits.RequiredCount {
		r.add(RepairSelection, "clamped %d selected articles to %d", len(sel), limits.RequiredCount)
		sel = sel[:limits.RequiredCount]
	}

	valid := func(idx int) bool { return idx >= 1 && idx <= limits.MaxArticleIndex }

	// Reserve every valid first occurrence so replacements never collide with a later entry
	used := make(map[int]bool, len(sel))
	keep := make([]bool, len(sel))
	for i, ref := range sel {
		if valid(ref.ArticleIndex) && !used[ref.ArticleIndex] {
			used[ref.ArticleIndex] = true
			keep[i] = true
		}
	}

	next := 1
	repaired := make([]model.ArticleRef, 0, len(sel))
	for i, ref := range sel {
		if keep[i] {
			repaired = append(repaired, ref)
			continue
		}
		for next <= limits.MaxArticleIndex && used[next] {
			next++
		}
		reason := describeInvalid(ref.ArticleIndex, valid(ref.ArticleIndex))
		if next > limits.MaxArticleIndex {
			r.add(RepairSelection, "dropped selectedArticles[%d] (%s): no unused index left", i, reason)
			continue
		}
		used[next] = true
		// The reason described a different article
		repaired = append(repaired, model.ArticleRef{ArticleIndex: next})
		r.add(RepairSelection, "replaced selectedArticles[%d] (%s) with %d", i, reason, next)
	}

	if len(repaired) == 0 {
		repaired = append(repaired, model.ArticleRef{ArticleIndex: 1})
		r.add(RepairSelection, "synthesized placeholder selection at index 1")
	}

	out.SelectedArticles = repaired
}

func describeInvalid(idx int, inRange bool) string {
	if inRange {
		return fmt.Sprintf("duplicate index %d", idx)
	}
	return fmt.Sprintf("index %d out of range", idx)
}

// repairHero moves the hero to the first selected article when it is not selected
func repairHero(out *model.StructuredOutput, r *Repairs) {
	for _, ref := range out.SelectedArticles {
		if ref.ArticleIndex == out.HeroSelection.ArticleIndex {
			return
		}
	}
	first := out.SelectedArticles[0].ArticleIndex
	r.add(RepairHero, "hero %d is not selected, using %d", out.HeroSelection.ArticleIndex, first)
	out.HeroSelection = model.HeroRef{ArticleIndex: first}
}

// selectionSet returns the selected indices and the first one
func selectionSet(out *model.StructuredOutput) (map[int]bool, int) {
	set := make(map[int]bool, len(out.SelectedArticles))
	for _, ref := range out.SelectedArticles {
		set[ref.ArticleIndex] = true
	}
	return set, out.SelectedArticles[0].ArticleIndex
}
