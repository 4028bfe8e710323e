// Package grounding links the claims of a brief to verbatim excerpts of the source
// corpus, classifies each claim and builds the numbered source catalog.
package grounding

import (
	"strings"

	"github.com/ppiankov/briefguard/internal/extract"
	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/validate"
)

// Grounder classifies claims against a corpus. It holds no per-call state and is
// safe for concurrent use.
type Grounder struct {
	cfg        model.GroundingConfig
	authority  *validate.AuthorityClassifier
	strict     map[model.Section]bool
	discursive map[model.Section]bool
}

// NewGrounder creates a grounder. A nil config uses the defaults; a nil classifier
// leaves catalog authority unknown.
func NewGrounder(cfg *model.GroundingConfig, authority *validate.AuthorityClassifier) *Grounder {
	if cfg == nil {
		cfg = &model.DefaultConfig().Grounding
	}

	g := &Grounder{
		cfg:        *cfg,
		authority:  authority,
		strict:     make(map[model.Section]bool, len(cfg.StrictSections)),
		discursive: make(map[model.Section]bool, len(cfg.DiscursiveSections)),
	}
	for _, s := range cfg.StrictSections {
		g.strict[s] = true
	}
	for _, s := range cfg.DiscursiveSections {
		g.discursive[s] = true
	}
	return g
}

// strictClaim reports whether an unverified claim must be surfaced as an issue.
// Top-story claims carrying a figure are held to the same bar as strict sections.
func (g *Grounder) strictClaim(section model.Section, text string) bool {
	if g.strict[section] {
		return true
	}
	return section == model.SectionTopStory && extract.HasNumeric(text)
}

// Ground classifies every claim of brief against corpus. selection is the allowed
// index set; when empty every corpus entry is allowed. indicators resolve the
// market indicator notes of the brief to catalog URLs.
func (g *Grounder) Ground(brief *model.Brief, corpus []model.CorpusEntry, selection []int, indicators []model.IndicatorRef) model.GroundingResult {
	idx := prepareCorpus(corpus)

	allowed := selection
	if len(allowed) == 0 {
		allowed = idx.order
	}
	allowedSet := make(map[int]bool, len(allowed))
	for _, i := range allowed {
		allowedSet[i] = true
	}

	b := &claimBuilder{
		g:          g,
		corpus:     idx,
		allowed:    allowed,
		allowedSet: allowedSet,
		ids:        make(map[string]int),
	}

	result := model.GroundingResult{Claims: []model.Claim{}}
	if brief != nil {
		for _, in := range collectClaims(brief) {
			claim, ok := b.build(in)
			if !ok {
				continue
			}
			result.Claims = append(result.Claims, claim)
			result.Stats.Add(claim.Status)
		}
	}
	result.Issues = b.issues
	result.Sources = BuildCatalog(g.catalogRefs(brief, idx, selection, indicators, b.evidenceDocs), g.authority)

	return result
}

// catalogRefs orders catalog candidates: selected articles, then the indicators the
// brief mentions, then evidence sources in claim order
func (g *Grounder) catalogRefs(brief *model.Brief, idx *corpusIndex, selection []int, indicators []model.IndicatorRef, evidenceDocs []int) []SourceRef {
	var refs []SourceRef

	for _, i := range selection {
		if doc := idx.docs[i]; doc != nil {
			refs = append(refs, refFromEntry(doc.entry, doc.title))
		}
	}

	if brief != nil {
		for _, note := range brief.MarketIndicators {
			for _, ind := range indicators {
				if strings.EqualFold(strings.TrimSpace(note.IndexID), strings.TrimSpace(ind.IndexID)) {
					refs = append(refs, SourceRef{URL: ind.URL, Title: ind.Title})
					break
				}
			}
		}
	}

	for _, i := range evidenceDocs {
		doc := idx.docs[i]
		refs = append(refs, refFromEntry(doc.entry, doc.title))
	}

	return refs
}
