package normalize

import (
	"github.com/ppiankov/briefguard/internal/model"
)

// groupSpec describes one family of named groups (impact bullets or actions)
type groupSpec struct {
	label    string
	names    []string
	bounds   []model.GroupBounds
	totalMin int
	totalMax int
}

var (
	impactSpec = groupSpec{
		label:    "impact",
		names:    model.ImpactGroupNames,
		bounds:   model.ImpactGroupBounds,
		totalMin: model.ImpactTotalMin,
		totalMax: model.ImpactTotalMax,
	}
	actionSpec = groupSpec{
		label:    "possibleActions",
		names:    model.ActionGroupNames,
		bounds:   model.ActionGroupBounds,
		totalMin: model.ActionTotalMin,
		totalMax: model.ActionTotalMax,
	}
)

// repairCounts brings impact bullets and actions within their group and total bounds
func repairCounts(out *model.StructuredOutput, r *Repairs) {
	repairGroups(out.Impact.Groups(), impactSpec, cloneBullet, r)
	repairGroups(out.PossibleActions.Groups(), actionSpec, cloneAction, r)
}

func cloneBullet(b model.CitedBullet) model.CitedBullet {
	b.Citations = append([]int(nil), b.Citations...)
	return b
}

func cloneAction(a model.Action) model.Action {
	a.Citations = append([]int(nil), a.Citations...)
	return a
}

// repairGroups trims first, then pads. Groups above their own max are cut back to it;
// while the total exceeds the ceiling the last item of the largest group still above
// its min is removed. While any group is below its min or the total is below the
// floor, the last item of the smallest group still below its max is duplicated; an
// empty group is seeded from the last item of the largest group. Ties resolve in
// declaration order.
func repairGroups[T any](groups []*[]T, spec groupSpec, clone func(T) T, r *Repairs) {
	for g, group := range groups {
		if limit := spec.bounds[g].Max; len(*group) > limit {
			r.add(RepairTrimmed, "%s.%s: removed %d items above the maximum of %d", spec.label, spec.names[g], len(*group)-limit, limit)
			*group = (*group)[:limit]
		}
	}

	for attempt := 0; attempt < maxRepairIterations; attempt++ {
		if total(groups) <= spec.totalMax {
			break
		}
		g := largest(groups, func(i int) bool { return len(*groups[i]) > spec.bounds[i].Min })
		if g < 0 {
			break
		}
		*groups[g] = (*groups[g])[:len(*groups[g])-1]
		r.add(RepairTrimmed, "%s.%s: removed last item to respect total maximum of %d", spec.label, spec.names[g], spec.totalMax)
	}

	for attempt := 0; attempt < maxRepairIterations; attempt++ {
		if !belowMin(groups, spec) && total(groups) >= spec.totalMin {
			break
		}
		g := smallest(groups, func(i int) bool { return len(*groups[i]) < spec.bounds[i].Max })
		if g < 0 {
			break
		}

		group := groups[g]
		if len(*group) > 0 {
			*group = append(*group, clone((*group)[len(*group)-1]))
			r.add(RepairPadded, "%s.%s: duplicated last item", spec.label, spec.names[g])
			continue
		}

		donor := largest(groups, func(i int) bool { return len(*groups[i]) > 0 })
		if donor < 0 {
			break
		}
		src := *groups[donor]
		*group = append(*group, clone(src[len(src)-1]))
		r.add(RepairPadded, "%s.%s: seeded empty group from %s", spec.label, spec.names[g], spec.names[donor])
	}
}

func total[T any](groups []*[]T) int {
	n := 0
	for _, g := range groups {
		n += len(*g)
	}
	return n
}

func belowMin[T any](groups []*[]T, spec groupSpec) bool {
	for i, g := range groups {
		if len(*g) < spec.bounds[i].Min {
			return true
		}
	}
	return false
}

// largest returns the first eligible group of maximal size, or -1
func largest[T any](groups []*[]T, eligible func(int) bool) int {
	best := -1
	for i, g := range groups {
		if !eligible(i) {
			continue
		}
		if best < 0 || len(*g) > len(*groups[best]) {
			best = i
		}
	}
	return best
}

// smallest returns the first eligible group of minimal size, or -1
func smallest[T any](groups []*[]T, eligible func(int) bool) int {
	best := -1
	for i, g := range groups {
		if !eligible(i) {
			continue
		}
		if best < 0 || len(*g) < len(*groups[best]) {
			best = i
		}
	}
	return best
}
