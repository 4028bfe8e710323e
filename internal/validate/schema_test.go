package validate

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bullet(text string, citations ...int) map[string]interface{} {
	cites := make([]interface{}, len(citations))
	for i, c := range citations {
		cites[i] = c
	}
	return map[string]interface{}{"text": text, "citations": cites}
}

func action(n int) map[string]interface{} {
	return map[string]interface{}{
		"action":          fmt.Sprintf("Renegotiate resin index clause %d", n),
		"rationale":       "Resin prices moved faster than the contract index",
		"expectedOutcome": "Lower exposure to spot price spikes",
		"owner":           "Contracts",
		"citations":       []interface{}{1},
	}
}

// validDoc returns a payload that passes the schema
func validDoc() map[string]interface{} {
	summary := make([]interface{}, 5)
	for i := range summary {
		summary[i] = bullet(fmt.Sprintf("Summary point number %d about resin", i+1), 1)
	}
	group := func() []interface{} {
		return []interface{}{bullet("Resin prices rose after outages", 1), bullet("Converters extended lead times", 2)}
	}
	return map[string]interface{}{
		"title":          "Resin Outages Push Packaging Costs Higher Across North America",
		"summaryBullets": summary,
		"impact": map[string]interface{}{
			"marketCostDrivers":                    group(),
			"supplyBaseCapacity":                   group(),
			"contractingCommercialLevers":          group(),
			"riskRegulatoryOperationalConstraints": group(),
		},
		"possibleActions": map[string]interface{}{
			"next30Days":   []interface{}{action(1), action(2)},
			"next90Days":   []interface{}{action(3), action(4)},
			"next12Months": []interface{}{action(5), action(6)},
		},
		"selectedArticles": []interface{}{map[string]interface{}{"articleIndex": 1}, map[string]interface{}{"articleIndex": 2, "reason": "Primary outage report"}},
		"heroSelection":    map[string]interface{}{"articleIndex": 1},
		"marketIndicators": []interface{}{
			map[string]interface{}{"indexId": "PE-HDPE", "note": "Spot index up six percent"},
			map[string]interface{}{"indexId": "BRENT", "note": "Crude steady through the week"},
		},
	}
}

func check(t *testing.T, doc map[string]interface{}) []string {
	t.Helper()
	payload, err := json.Marshal(doc)
	require.NoError(t, err)
	_, issues := NewSchema().Check(payload)
	return issues
}

func TestSchema_Valid(t *testing.T) {
	payload, err := json.Marshal(validDoc())
	require.NoError(t, err)

	out, issues := NewSchema().Check(payload)
	require.Empty(t, issues)
	require.NotNil(t, out)
	assert.Len(t, out.SummaryBullets, 5)
	assert.Equal(t, "Primary outage report", out.SelectedArticles[1].Reason)
	assert.Equal(t, 1, out.HeroSelection.ArticleIndex)
}

func TestSchema_CollectsAllViolations(t *testing.T) {
	doc := validDoc()
	summary := doc["summaryBullets"].([]interface{})
	summary[2] = bullet("too short", 1)
	summary[3] = bullet("Citation list is far too long here", 1, 2, 3, 4, 5)
	doc["possibleActions"].(map[string]interface{})["next30Days"].([]interface{})[0].(map[string]interface{})["owner"] = "Finance"

	issues := check(t, doc)
	assert.Contains(t, issues, "summaryBullets[2].text: must be at least 12 characters")
	assert.Contains(t, issues, "summaryBullets[3].citations: must contain at most 4 items")
	assert.Contains(t, issues, "possibleActions.next30Days[0].owner: must be one of [Category, Contracts, Legal, Ops]")
	assert.Len(t, issues, 3)
}

func TestSchema_TypePass(t *testing.T) {
	doc := validDoc()
	delete(doc, "title")
	doc["heroSelection"] = map[string]interface{}{"articleIndex": 1.5}
	doc["marketIndicators"] = "BRENT"
	doc["summaryBullets"].([]interface{})[0].(map[string]interface{})["citations"] = []interface{}{"1"}

	issues := check(t, doc)
	assert.Contains(t, issues, "title: is required")
	assert.Contains(t, issues, "heroSelection.articleIndex: must be an integer")
	assert.Contains(t, issues, "marketIndicators: must be an array")
	assert.Contains(t, issues, "summaryBullets[0].citations[0]: must be an integer")

	// Constraint errors on paths with type errors are suppressed
	assert.NotContains(t, issues, "title: must be at least 1 characters")
	assert.NotContains(t, issues, "marketIndicators: must contain at least 2 items")
	assert.Len(t, issues, 4)
}

func TestSchema_IntegerOutOfRange(t *testing.T) {
	doc := validDoc()
	doc["heroSelection"] = map[string]interface{}{"articleIndex": 1e20}
	doc["summaryBullets"].([]interface{})[0].(map[string]interface{})["citations"] = []interface{}{3e9}

	assert.Equal(t, []string{
		"summaryBullets[0].citations[0]: must be an integer in range",
		"heroSelection.articleIndex: must be an integer in range",
	}, check(t, doc))
}

func TestSchema_SignalEnum(t *testing.T) {
	doc := validDoc()
	doc["summaryBullets"].([]interface{})[0].(map[string]interface{})["signal"] = "early-signal"
	assert.Empty(t, check(t, doc))

	doc["summaryBullets"].([]interface{})[0].(map[string]interface{})["signal"] = "rumor"
	assert.Equal(t, []string{"summaryBullets[0].signal: must be one of [confirmed, early-signal, unconfirmed]"}, check(t, doc))
}

func TestSchema_CitationMustBePositive(t *testing.T) {
	doc := validDoc()
	doc["summaryBullets"].([]interface{})[1] = bullet("Citation index is not positive", 0)
	assert.Equal(t, []string{"summaryBullets[1].citations[0]: must be >= 1"}, check(t, doc))
}

func TestSchema_EmptyGroups(t *testing.T) {
	doc := validDoc()
	impact := doc["impact"].(map[string]interface{})
	for k := range impact {
		impact[k] = []interface{}{}
	}
	doc["possibleActions"] = map[string]interface{}{
		"next30Days":   []interface{}{},
		"next90Days":   []interface{}{},
		"next12Months": []interface{}{},
	}

	issues := check(t, doc)
	assert.Equal(t, []string{
		"impact: must contain at least one bullet",
		"possibleActions: must contain at least one action",
	}, issues)
}

func TestSchema_GroupsLooselyBounded(t *testing.T) {
	doc := validDoc()
	many := make([]interface{}, 30)
	for i := range many {
		many[i] = bullet(fmt.Sprintf("Market cost driver number %d", i), 1)
	}
	doc["impact"].(map[string]interface{})["marketCostDrivers"] = many

	assert.Empty(t, check(t, doc))
}

func TestSchema_NotAnObject(t *testing.T) {
	_, issues := NewSchema().Check([]byte(`[1,2,3]`))
	assert.Equal(t, []string{"$: must be a JSON object"}, issues)

	_, issues = NewSchema().Check([]byte(`{"title": `))
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "$: invalid JSON")
}
