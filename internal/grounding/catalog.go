package grounding

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/briefguard/internal/extract"
	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/validate"
)

// SourceRef is one URL headed for the source catalog
type SourceRef struct {
	URL         string
	Title       string
	PublishedAt *time.Time
	RetrievedAt *time.Time
}

func refFromEntry(e model.CorpusEntry, title string) SourceRef {
	return SourceRef{URL: e.URL, Title: title, PublishedAt: e.PublishedAt, RetrievedAt: e.RetrievedAt}
}

// SourceID derives the stable identifier of a URL from its canonical form
func SourceID(rawURL string) string {
	sum := sha256.Sum256([]byte(extract.CanonicalURL(rawURL)))
	return "src_" + hex.EncodeToString(sum[:])[:16]
}

// BuildCatalog deduplicates refs by source id, keeping the first occurrence and
// filling its missing title and dates from later duplicates. Sources are numbered
// 1..n in first-seen order. A nil classifier leaves authority unknown.
func BuildCatalog(refs []SourceRef, authority *validate.AuthorityClassifier) []model.Source {
	sources := make([]model.Source, 0, len(refs))
	byID := make(map[string]int, len(refs))

	for _, ref := range refs {
		if strings.TrimSpace(ref.URL) == "" {
			continue
		}
		id := SourceID(ref.URL)

		if i, ok := byID[id]; ok {
			s := &sources[i]
			if s.Title == "" {
				s.Title = ref.Title
			}
			if s.PublishedAt == nil {
				s.PublishedAt = ref.PublishedAt
			}
			if s.RetrievedAt == nil {
				s.RetrievedAt = ref.RetrievedAt
			}
			continue
		}

		tier := model.TierUnknown
		if authority != nil {
			tier = authority.Classify(ref.URL)
		}
		byID[id] = len(sources)
		sources = append(sources, model.Source{
			SourceID:    id,
			Number:      len(sources) + 1,
			URL:         ref.URL,
			Title:       ref.Title,
			PublishedAt: ref.PublishedAt,
			RetrievedAt: ref.RetrievedAt,
			Authority:   tier,
		})
	}

	return sources
}
