package grounding

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/briefguard/internal/extract"
	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/score"
)

// claimBuilder turns claim inputs into classified claims for one Ground call
type claimBuilder struct {
	g          *Grounder
	corpus     *corpusIndex
	allowed    []int
	allowedSet map[int]bool
	ids        map[string]int

	issues       []string
	evidenceDocs []int // corpus index of every evidence item, in claim order
}

func (b *claimBuilder) build(in claimInput) (model.Claim, bool) {
	tag := extract.ParseTag(in.Raw)
	text := extract.StripTag(in.Raw)
	if text == "" {
		return model.Claim{}, false
	}
	label := fmt.Sprintf("%s[%d]", in.Section, in.Position)
	claimTF := score.TermFrequencies(text)

	resolved := 0
	if tag.Kind == extract.TagSource {
		if b.allowedSet[tag.Index] && b.corpus.docs[tag.Index] != nil {
			resolved = tag.Index
		} else {
			b.issues = append(b.issues, fmt.Sprintf("%s: cited source %d is not an allowed corpus entry", label, tag.Index))
		}
	}
	if resolved == 0 && in.Fallback > 0 && b.corpus.docs[in.Fallback] != nil {
		resolved = in.Fallback
	}
	if resolved == 0 && tag.Kind != extract.TagAnalysis {
		if index, s := b.corpus.autoMatch(claimTF, b.allowed); index > 0 && s >= b.g.cfg.AutoMatchThreshold {
			resolved = index
		}
	}

	claim := model.Claim{
		ID:      b.claimID(in, text),
		Section: in.Section,
		Text:    text,
		Status:  model.StatusNeedsVerification,
	}

	switch {
	case tag.Kind == extract.TagAnalysis:
		claim.Status = model.StatusAnalysis
	case resolved > 0 && b.corpus.usable(resolved):
		doc := b.corpus.docs[resolved]
		w, s := bestWindow(claimTF, doc)
		if w.Text != "" && s > 0 && s >= b.g.cfg.SupportThreshold {
			claim.Status = model.StatusSupported
			claim.Evidence = []model.Evidence{b.g.evidence(doc, w, s)}
			b.evidenceDocs = append(b.evidenceDocs, resolved)
		}
	}

	if claim.Status == model.StatusNeedsVerification {
		if tag.Kind == extract.TagNone && b.g.discursive[in.Section] {
			claim.Status = model.StatusAnalysis
		} else if b.g.strictClaim(in.Section, text) {
			b.issues = append(b.issues, fmt.Sprintf("%s: claim needs verification: %q", label, text))
		}
	}

	return claim, true
}

// claimID hashes section, position and text; a collision gets a numeric suffix
func (b *claimBuilder) claimID(in claimInput, text string) string {
	sum := sha256.Sum256([]byte(string(in.Section) + "|" + strconv.Itoa(in.Position) + "|" + text))
	id := "clm_" + hex.EncodeToString(sum[:])[:16]

	b.ids[id]++
	if n := b.ids[id]; n > 1 {
		return id + "_" + strconv.Itoa(n)
	}
	return id
}

// evidence builds the evidence record for window w of doc
func (g *Grounder) evidence(doc *document, w window, similarity float64) model.Evidence {
	excerpt := truncateRunes(w.Text, g.cfg.MaxExcerptChars)
	sum := sha256.Sum256([]byte(excerpt))

	ev := model.Evidence{
		SourceID:    SourceID(doc.entry.URL),
		URL:         doc.entry.URL,
		Title:       doc.title,
		Excerpt:     excerpt,
		ContentHash: hex.EncodeToString(sum[:]),
		Similarity:  math.Round(similarity*1e4) / 1e4,
	}

	// Offsets are only reported when the excerpt occurs verbatim in the raw content
	content := doc.entry.Content
	byteStart := w.Start
	if doc.text != content {
		byteStart = strings.Index(content, excerpt)
	}
	if byteStart >= 0 && byteStart <= len(content) {
		start := utf8.RuneCountInString(content[:byteStart])
		end := start + utf8.RuneCountInString(excerpt)
		ev.StartOffset = &start
		ev.EndOffset = &end
	}

	return ev
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
