package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/briefguard/internal/model"
)

// Renderer writes reports as JSON and human-readable summaries
type Renderer struct {
	pretty bool
}

// NewRenderer creates a renderer. Pretty output indents JSON by two spaces.
func NewRenderer(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// WriteJSON encodes v to w
func (r *Renderer) WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// RenderJSON writes the report to path, creating parent directories
func (r *Renderer) RenderJSON(report *model.Report, path string) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return r.WriteJSON(f, report)
}

// RenderSummary prints a short human-readable overview of the report
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	stats := report.Grounding.Stats

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	if report.Output != nil {
		fmt.Fprintf(w, "  %s\n", report.Output.Title)
	} else {
		fmt.Fprintf(w, "  Grounding Report\n")
	}
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	if report.RequestID != "" {
		fmt.Fprintf(w, "  Request:        %s\n", report.RequestID)
	}
	fmt.Fprintf(w, "  Quality index:  %d/100 (%s confidence)\n", report.Score.Index, report.Score.Confidence)
	fmt.Fprintf(w, "  Claims:         %d (%d supported, %d analysis, %d needs verification)\n",
		stats.Total, stats.Supported, stats.Analysis, stats.NeedsVerification)
	fmt.Fprintf(w, "  Sources:        %d\n", len(report.Grounding.Sources))
	if len(report.Repairs) > 0 {
		fmt.Fprintf(w, "  Repairs:        %d\n", len(report.Repairs))
	}
	fmt.Fprintf(w, "\n")

	for _, c := range report.Grounding.Claims {
		fmt.Fprintf(w, "  %s %-18s %s\n", ConfidenceLabel(c), "["+string(c.Section)+"]", truncate(c.Text, 80))
	}

	issues := append(append([]string{}, report.Grounding.Issues...), report.FactCheck...)
	if len(issues) > 0 {
		fmt.Fprintf(w, "\n  Issues:\n")
		for _, issue := range issues {
			fmt.Fprintf(w, "  ✗ %s\n", issue)
		}
	}
	fmt.Fprintf(w, "\n")
}

// ConfidenceLabel is the display label of a claim status
func ConfidenceLabel(c model.Claim) string {
	switch c.Status {
	case model.StatusSupported:
		return "✓ supported   "
	case model.StatusAnalysis:
		return "~ analysis    "
	default:
		return "? unverified  "
	}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
