// Package normalize deterministically repairs a schema-valid StructuredOutput so it
// satisfies the selection, citation, count and title constraints without asking the
// model to regenerate it.
package normalize

import (
	"github.com/ppiankov/briefguard/internal/model"
)

// maxRepairIterations bounds every repair loop
const maxRepairIterations = 64

// Normalize repairs a deep copy of in and returns it together with the repair log.
// The input is never modified. Normalizing an already normalized document returns an
// identical document and an empty log.
func Normalize(in *model.StructuredOutput, limits model.Limits) (*model.StructuredOutput, *Repairs) {
	out := in.Clone()
	repairs := &Repairs{}

	repairSelection(out, limits, repairs)
	repairHero(out, repairs)
	repairCitations(out, repairs)
	repairCounts(out, repairs)
	repairTitle(out, repairs)

	return out, repairs
}
