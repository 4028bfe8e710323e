package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/briefguard/internal/model"
)

func TestLoadRequest_YAML(t *testing.T) {
	req := loadFixture(t)

	assert.Equal(t, "packaging-daily", req.ID)
	assert.Equal(t, 3, req.RequiredCount)
	assert.Contains(t, req.Raw, `"heroSelection"`)
	require.Len(t, req.Corpus, 6)
	assert.Equal(t, model.ContentStatusThin, req.Corpus[3].ContentStatus)
	assert.False(t, req.Corpus[3].Usable())
	assert.Equal(t, []model.IndicatorRef{{
		IndexID: "PE-HDPE",
		URL:     "https://www.spglobal.com/commodityinsights/pe-hdpe",
		Title:   "HDPE spot assessment",
	}}, req.Indicators)
}

func TestLoadRequest_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monday.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"raw": "{\"title\": \"x\"}",
		"requiredCount": 2,
		"corpus": [{"index": 1, "url": "https://example.com/a", "content": "Alpha"}]
	}`), 0644))

	req, err := LoadRequest(path)
	require.NoError(t, err)

	assert.Equal(t, "monday", req.ID, "id defaults to the file name")
	assert.Equal(t, `{"title": "x"}`, req.Raw)
	assert.Equal(t, model.Limits{RequiredCount: 2, MaxArticleIndex: 1}, req.Limits())
}

func TestLoadRequest_Errors(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0644))
	_, err := LoadRequest(broken)
	assert.ErrorContains(t, err, "parse request")

	missingRaw := filepath.Join(dir, "raw.yaml")
	require.NoError(t, os.WriteFile(missingRaw, []byte("rawFile: nowhere.txt\nrequiredCount: 1\n"), 0644))
	_, err = LoadRequest(missingRaw)
	assert.ErrorContains(t, err, "read raw output")
}

func TestLoadCorpus(t *testing.T) {
	corpus, indicators, err := LoadCorpus("testdata/request.yaml")
	require.NoError(t, err)
	assert.Len(t, corpus, 6)
	assert.Len(t, indicators, 1)
}

func TestRenderer_RenderJSON(t *testing.T) {
	report := &model.Report{
		RunID:     "run-1",
		RequestID: "req-1",
		Grounding: model.GroundingResult{
			Claims: []model.Claim{{ID: "clm_1", Section: model.SectionSummary, Text: "Prices <rose>", Status: model.StatusSupported}},
			Stats:  model.ClaimStats{Total: 1, Supported: 1},
		},
	}

	path := filepath.Join(t.TempDir(), "nested", "report.json")
	require.NoError(t, NewRenderer(true).RenderJSON(report, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"runId\": \"run-1\"")
	assert.Contains(t, string(data), "Prices <rose>", "HTML is not escaped")
	assert.NotContains(t, string(data), `"output"`)

	var decoded model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.Grounding.Claims, decoded.Grounding.Claims)
}

func TestRenderer_RenderSummary(t *testing.T) {
	report := &model.Report{
		RequestID: "req-1",
		Output:    &model.StructuredOutput{Title: "Resin Outages Push Film Costs Higher"},
		Grounding: model.GroundingResult{
			Claims: []model.Claim{
				{Section: model.SectionSummary, Text: "Resin prices rose", Status: model.StatusSupported},
				{Section: model.SectionWatchlist, Text: "Storms may hit supply", Status: model.StatusNeedsVerification},
			},
			Issues: []string{`watchlist[0]: claim needs verification: "Storms may hit supply"`},
			Stats:  model.ClaimStats{Total: 2, Supported: 1, NeedsVerification: 1},
		},
		FactCheck: []string{`summary[0]: "9%" not found in source 3`},
		Score:     model.Score{Index: 42, Confidence: "low-medium"},
	}

	var buf bytes.Buffer
	NewRenderer(false).RenderSummary(&buf, report)
	out := buf.String()

	assert.Contains(t, out, "Resin Outages Push Film Costs Higher")
	assert.Contains(t, out, "42/100 (low-medium confidence)")
	assert.Contains(t, out, "✓ supported")
	assert.Contains(t, out, "? unverified")
	assert.Contains(t, out, `✗ summary[0]: "9%" not found in source 3`)
}

func TestConfidenceLabel(t *testing.T) {
	assert.Equal(t, "~ analysis    ", ConfidenceLabel(model.Claim{Status: model.StatusAnalysis}))
}
