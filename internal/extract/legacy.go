package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/briefguard/internal/model"
)

// legacySection identifies a "## Heading" block of the legacy text brief
type legacySection int

const (
	legacyOther legacySection = iota
	legacySummary
	legacyHighlights
	legacyActions
	legacyWatchlist
	legacyDeltas
	legacyTopStories
	legacyIndicators
	legacyVPSnapshot
	legacyCMSnapshot
)

var legacyHeadings = map[string]legacySection{
	"summary":                   legacySummary,
	"executive summary":         legacySummary,
	"highlights":                legacyHighlights,
	"key highlights":            legacyHighlights,
	"highlight":                 legacyHighlights,
	"procurement actions":       legacyActions,
	"recommended actions":       legacyActions,
	"actions":                   legacyActions,
	"watchlist":                 legacyWatchlist,
	"watch list":                legacyWatchlist,
	"what to watch":             legacyWatchlist,
	"deltas":                    legacyDeltas,
	"what changed":              legacyDeltas,
	"changes since last brief":  legacyDeltas,
	"top stories":               legacyTopStories,
	"stories":                   legacyTopStories,
	"market indicators":         legacyIndicators,
	"indicators":                legacyIndicators,
	"vp snapshot":               legacyVPSnapshot,
	"cm snapshot":               legacyCMSnapshot,
	"category manager snapshot": legacyCMSnapshot,
}

var (
	bulletRe     = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+(.*)$`)
	storyIndexRe = regexp.MustCompile(`(?i)^(?:\[(\d+)\]|article\s*#?\s*(\d+)|(\d+)[.):])`)
	importanceRe = regexp.MustCompile(`(?i)^(?:why it matters|category importance|importance)\s*:\s*`)
	metricRe     = regexp.MustCompile(`(?i)^(?:key metrics?|metrics?)\s*:\s*`)
	storyBriefRe = regexp.MustCompile(`(?i)^brief\s*:\s*`)
	headlineRe   = regexp.MustCompile(`(?i)^headline\s*:\s*`)
	actionRe     = regexp.MustCompile(`(?i)^actions?\s*:\s*`)
	riskRe       = regexp.MustCompile(`(?i)^risks?\s*:\s*`)
	indicatorRe  = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9_./\- ]{0,63}?)\s*:\s+(.+)$`)
)

// ParseLegacyBrief parses the legacy text brief: "## Section" headings followed by
// "-", "*" or numbered bullets that carry inline evidence tags. Top stories open with
// "### [N] Headline" sub-headings; snapshot and story lines may use "Label:" prefixes.
func ParseLegacyBrief(text string) *model.Brief {
	brief := &model.Brief{}
	section := legacyOther
	var story *model.TopStory

	flushStory := func() {
		if story != nil {
			story.Brief = strings.TrimSpace(story.Brief)
			brief.TopStories = append(brief.TopStories, *story)
			story = nil
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "### ") {
			flushStory()
			if section == legacyTopStories {
				story = &model.TopStory{ArticleIndex: storyIndex(strings.TrimSpace(line[4:]))}
			}
			continue
		}
		if strings.HasPrefix(line, "## ") {
			flushStory()
			section = parseHeading(line[3:])
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue // document title
		}

		item, bulleted := bulletText(line)
		// Candidate markers number the pre-selection list, not the corpus
		if ParseCandidateTag(item).Kind != TagNone {
			item = StripCandidateTag(item)
		}
		if item == "" {
			continue
		}

		switch section {
		case legacySummary:
			brief.Summary = append(brief.Summary, model.BriefItem{Text: item})
		case legacyHighlights:
			brief.Highlights = append(brief.Highlights, model.BriefItem{Text: item})
		case legacyActions:
			brief.ProcurementActions = append(brief.ProcurementActions, model.BriefItem{Text: item})
		case legacyWatchlist:
			brief.Watchlist = append(brief.Watchlist, model.BriefItem{Text: item})
		case legacyDeltas:
			brief.Deltas = append(brief.Deltas, model.BriefItem{Text: item})
		case legacyTopStories:
			if story == nil {
				story = &model.TopStory{}
			}
			addStoryLine(story, item)
		case legacyIndicators:
			brief.MarketIndicators = append(brief.MarketIndicators, parseIndicator(item))
		case legacyVPSnapshot:
			if brief.VPSnapshot == nil {
				brief.VPSnapshot = &model.Snapshot{}
			}
			addSnapshotLine(brief.VPSnapshot, item, bulleted)
		case legacyCMSnapshot:
			if brief.CMSnapshot == nil {
				brief.CMSnapshot = &model.Snapshot{}
			}
			addSnapshotLine(brief.CMSnapshot, item, bulleted)
		default:
			brief.Other = append(brief.Other, model.BriefItem{Text: item})
		}
	}
	flushStory()

	return brief
}

func parseHeading(heading string) legacySection {
	key := strings.ToLower(strings.Join(strings.Fields(strings.Trim(heading, " #:")), " "))
	if s, ok := legacyHeadings[key]; ok {
		return s
	}
	return legacyOther
}

// bulletText strips a list marker, reporting whether one was present
func bulletText(line string) (string, bool) {
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return line, false
}

// storyIndex reads the article index from a top story sub-heading, 0 when absent
func storyIndex(heading string) int {
	m := storyIndexRe.FindStringSubmatch(heading)
	if m == nil {
		return 0
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		if n, err := strconv.Atoi(g); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func addStoryLine(story *model.TopStory, line string) {
	switch {
	case importanceRe.MatchString(line):
		story.CategoryImportance = joinText(story.CategoryImportance, importanceRe.ReplaceAllString(line, ""))
	case metricRe.MatchString(line):
		story.KeyMetrics = append(story.KeyMetrics, metricRe.ReplaceAllString(line, ""))
	case storyBriefRe.MatchString(line):
		story.Brief = joinText(story.Brief, storyBriefRe.ReplaceAllString(line, ""))
	default:
		story.Brief = joinText(story.Brief, line)
	}
}

func addSnapshotLine(snap *model.Snapshot, line string, bulleted bool) {
	switch {
	case headlineRe.MatchString(line):
		snap.Headline = headlineRe.ReplaceAllString(line, "")
	case actionRe.MatchString(line):
		snap.Actions = append(snap.Actions, model.BriefItem{Text: actionRe.ReplaceAllString(line, "")})
	case riskRe.MatchString(line):
		snap.Risks = append(snap.Risks, model.BriefItem{Text: riskRe.ReplaceAllString(line, "")})
	case !bulleted && snap.Headline == "":
		snap.Headline = line
	default:
		snap.Bullets = append(snap.Bullets, model.BriefItem{Text: line})
	}
}

func parseIndicator(line string) model.IndicatorNote {
	if m := indicatorRe.FindStringSubmatch(line); m != nil {
		return model.IndicatorNote{IndexID: strings.TrimSpace(m[1]), Note: strings.TrimSpace(m[2])}
	}
	return model.IndicatorNote{Note: line}
}

func joinText(existing, more string) string {
	more = strings.TrimSpace(more)
	if existing == "" {
		return more
	}
	if more == "" {
		return existing
	}
	return existing + " " + more
}
