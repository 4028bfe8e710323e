package grounding

import (
	"sort"

	"github.com/ppiankov/briefguard/internal/extract"
	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/score"
)

// document is a corpus entry prepared for matching
type document struct {
	entry   model.CorpusEntry
	title   string
	text    string // plain text the windows were cut from
	windows []window
}

// window is a candidate excerpt: one sentence or two adjacent sentences
type window struct {
	extract.Sentence
	tf map[string]int
}

// corpusIndex holds the prepared corpus keyed by 1-based index
type corpusIndex struct {
	docs  map[int]*document
	order []int
}

// prepareCorpus reduces HTML entries to visible text and splits every usable entry
// into scored windows once, so each claim only pays for the comparisons
func prepareCorpus(entries []model.CorpusEntry) *corpusIndex {
	idx := &corpusIndex{docs: make(map[int]*document, len(entries))}

	for _, e := range entries {
		if e.Index < 1 {
			continue
		}
		if _, dup := idx.docs[e.Index]; dup {
			continue
		}

		doc := &document{entry: e, title: e.Title, text: e.Content}
		if extract.IsHTML(e.ContentType, e.Content) {
			if text, err := extract.VisibleText(e.Content); err == nil {
				doc.text = text
			}
			if doc.title == "" {
				doc.title = extract.HTMLTitle(e.Content)
			}
		}

		if e.Usable() {
			sentences := extract.SplitSentences(doc.text)
			for _, s := range extract.Windows(doc.text, sentences) {
				doc.windows = append(doc.windows, window{Sentence: s, tf: score.TermFrequencies(s.Text)})
			}
		}

		idx.docs[e.Index] = doc
		idx.order = append(idx.order, e.Index)
	}
	sort.Ints(idx.order)

	return idx
}

// usable reports whether index names an entry evidence matching may use
func (c *corpusIndex) usable(index int) bool {
	doc, ok := c.docs[index]
	return ok && doc.entry.Usable()
}

// bestWindow returns the highest scoring window of doc; the first wins ties
func bestWindow(claim map[string]int, doc *document) (window, float64) {
	var best window
	bestScore := -1.0
	for _, w := range doc.windows {
		if s := score.Cosine(claim, w.tf); s > bestScore {
			best, bestScore = w, s
		}
	}
	if bestScore < 0 {
		return window{}, 0
	}
	return best, bestScore
}

// autoMatch searches every allowed usable entry and returns the index of the entry
// holding the single best window, with its score
func (c *corpusIndex) autoMatch(claim map[string]int, allowed []int) (int, float64) {
	bestIndex, bestScore := 0, 0.0
	for _, index := range allowed {
		if !c.usable(index) {
			continue
		}
		if _, s := bestWindow(claim, c.docs[index]); s > bestScore {
			bestIndex, bestScore = index, s
		}
	}
	return bestIndex, bestScore
}
