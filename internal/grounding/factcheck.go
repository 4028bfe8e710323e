package grounding

import (
	"fmt"
	"strings"

	"github.com/ppiankov/briefguard/internal/extract"
	"github.com/ppiankov/briefguard/internal/model"
)

// factCheckedSections are the sections whose figures must be traceable
var factCheckedSections = map[model.Section]bool{
	model.SectionSummary:           true,
	model.SectionHighlight:         true,
	model.SectionProcurementAction: true,
	model.SectionWatchlist:         true,
	model.SectionTopStory:          true,
	model.SectionMarketIndicator:   true,
}

// FactCheckOption configures FactCheck
type FactCheckOption func(*factCheckOptions)

type factCheckOptions struct {
	structuralFallback bool
}

// WithStructuralFallback controls whether an untagged item is checked against its
// structural article as if it carried "(source: N)". Enabled by default; when
// disabled every untagged figure is reported as missing its evidence tag.
func WithStructuralFallback(enabled bool) FactCheckOption {
	return func(o *factCheckOptions) {
		o.structuralFallback = enabled
	}
}

// FactCheck verifies that every figure in the brief is tagged with a source and
// literally present in it. It only reports; the brief is never changed.
func FactCheck(brief *model.Brief, corpus []model.CorpusEntry, opts ...FactCheckOption) []string {
	if brief == nil {
		return nil
	}
	o := factCheckOptions{structuralFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	idx := prepareCorpus(corpus)
	normalized := make(map[int]string)
	var issues []string

	for _, in := range collectClaims(brief) {
		if !factCheckedSections[in.Section] {
			continue
		}
		tokens := extract.NumericTokens(extract.StripTag(in.Raw))
		if len(tokens) == 0 {
			continue
		}
		label := fmt.Sprintf("%s[%d]", in.Section, in.Position)

		tag := extract.ParseTag(in.Raw)
		if tag.Kind == extract.TagNone && o.structuralFallback && in.Fallback > 0 {
			tag = extract.Tag{Kind: extract.TagSource, Index: in.Fallback}
		}

		switch tag.Kind {
		case extract.TagNone:
			issues = append(issues, fmt.Sprintf("%s: missing evidence tag: %q", label, extract.StripTag(in.Raw)))
		case extract.TagAnalysis:
			issues = append(issues, fmt.Sprintf("%s: analysis claim must not contain numbers (%s)", label, strings.Join(tokens, ", ")))
		case extract.TagSource:
			doc := idx.docs[tag.Index]
			if doc == nil || strings.TrimSpace(doc.text) == "" {
				issues = append(issues, fmt.Sprintf("%s: source %d has no content to check", label, tag.Index))
				continue
			}
			content, ok := normalized[tag.Index]
			if !ok {
				content = extract.NormalizeNumeric(doc.text)
				normalized[tag.Index] = content
			}
			for _, tok := range tokens {
				if !strings.Contains(content, tok) {
					issues = append(issues, fmt.Sprintf("%s: %q not found in source %d", label, tok, tag.Index))
				}
			}
		}
	}

	return issues
}
