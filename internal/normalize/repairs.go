package normalize

import "fmt"

// RepairKind classifies a soft repair applied by the normalizer
type RepairKind string

const (
	RepairSelection RepairKind = "selection" // Selected article replaced, dropped or synthesized
	RepairHero      RepairKind = "hero"      // Hero moved to the first selected article
	RepairCitation  RepairKind = "citation"  // Citation dropped, deduplicated, capped or substituted
	RepairPadded    RepairKind = "padded"    // Item duplicated to reach a minimum
	RepairTrimmed   RepairKind = "trimmed"   // Item removed to respect a maximum
	RepairTitle     RepairKind = "title"     // Title rewritten
)

// RepairKinds lists every kind in reporting order
var RepairKinds = []RepairKind{RepairSelection, RepairHero, RepairCitation, RepairPadded, RepairTrimmed, RepairTitle}

// Repair is one logged change
type Repair struct {
	Kind   RepairKind `json:"kind"`
	Detail string     `json:"detail"`
}

// Repairs is the ordered log of soft repairs
type Repairs struct {
	Items []Repair `json:"items"`
}

func (r *Repairs) add(kind RepairKind, format string, args ...interface{}) {
	r.Items = append(r.Items, Repair{Kind: kind, Detail: fmt.Sprintf(format, args...)})
}

// Len returns the number of repairs
func (r *Repairs) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Items)
}

// Count returns the number of repairs of one kind
func (r *Repairs) Count(kind RepairKind) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, item := range r.Items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

// Lines renders the log as "kind: detail" strings
func (r *Repairs) Lines() []string {
	if r == nil {
		return nil
	}
	lines := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, string(item.Kind)+": "+item.Detail)
	}
	return lines
}
