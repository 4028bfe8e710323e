package normalize

import (
	"fmt"

	"github.com/ppiankov/briefguard/internal/model"
)

// repairCitations keeps only citations of selected articles, removes duplicates,
// caps each list at MaxCitations and substitutes the first selected index for an
// emptied list
func repairCitations(out *model.StructuredOutput, r *Repairs) {
	set, first := selectionSet(out)

	for i := range out.SummaryBullets {
		b := &out.SummaryBullets[i]
		b.Citations = fixCitations(fmt.Sprintf("summaryBullets[%d]", i), b.Citations, set, first, r)
	}
	for g, group := range out.Impact.Groups() {
		for i := range *group {
			b := &(*group)[i]
			b.Citations = fixCitations(fmt.Sprintf("impact.%s[%d]", model.ImpactGroupNames[g], i), b.Citations, set, first, r)
		}
	}
	for g, group := range out.PossibleActions.Groups() {
		for i := range *group {
			a := &(*group)[i]
			a.Citations = fixCitations(fmt.Sprintf("possibleActions.%s[%d]", model.ActionGroupNames[g], i), a.Citations, set, first, r)
		}
	}
}

func fixCitations(path string, citations []int, selected map[int]bool, fallback int, r *Repairs) []int {
	fixed := make([]int, 0, len(citations))
	seen := make(map[int]bool, len(citations))
	var dropped []int
	for _, c := range citations {
		switch {
		case !selected[c]:
			dropped = append(dropped, c)
		case seen[c]:
			r.add(RepairCitation, "%s: removed duplicate citation %d", path, c)
		default:
			seen[c] = true
			fixed = append(fixed, c)
		}
	}
	if len(dropped) > 0 {
		r.add(RepairCitation, "%s: dropped unselected citations %v", path, dropped)
	}
	if len(fixed) > model.MaxCitations {
		r.add(RepairCitation, "%s: capped %d citations at %d", path, len(fixed), model.MaxCitations)
		fixed = fixed[:model.MaxCitations]
	}
	if len(fixed) == 0 {
		r.add(RepairCitation, "%s: no valid citation left, using %d", path, fallback)
		fixed = append(fixed, fallback)
	}
	return fixed
}
