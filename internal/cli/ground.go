package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/briefguard/internal/extract"
	"github.com/ppiankov/briefguard/internal/model"
	"github.com/ppiankov/briefguard/internal/pipeline"
)

var (
	corpusFile string
	selected   []int
	groundOut  string
)

// groundCmd represents the ground command
var groundCmd = &cobra.Command{
	Use:   "ground <brief-file>",
	Short: "Ground the claims of a brief against a source corpus",
	Long: `Ground matches every claim of a brief to the best supporting excerpt in the
corpus and classifies it as supported, analysis or needs verification:
- JSON briefs use the structured brief layout
- Any other file is parsed as a legacy text brief ("## Section" headings)
- Claims tagged "(source: N)" are checked against article N only
- Claims tagged "(analysis)" are exempt from grounding

The corpus is read from a request file (JSON or YAML). Use "-" to read the
brief from stdin.

Example:
  briefguard ground brief.md --corpus request.yaml
  briefguard ground brief.json --corpus request.json --selection 1,3,4 --out grounding.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGround,
}

func init() {
	rootCmd.AddCommand(groundCmd)

	groundCmd.Flags().StringVar(&corpusFile, "corpus", "", "request file carrying the corpus and indicator references")
	groundCmd.Flags().IntSliceVar(&selected, "selection", nil, "selected article indices, in order (default: the whole corpus)")
	groundCmd.Flags().StringVar(&groundOut, "out", "", "write the report to this path instead of stdout")
	_ = groundCmd.MarkFlagRequired("corpus")
}

func runGround(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	brief, err := parseBrief(args[0], data)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	corpus, indicators, err := pipeline.LoadCorpus(corpusFile)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	env, err := newRuntime()
	if err != nil {
		return err
	}
	defer env.close()

	report := env.pipeline.Ground(brief, corpus, selected, indicators)

	if env.cfg.Output.Verbose {
		stats := report.Grounding.Stats
		fmt.Fprintf(os.Stderr, "✓ Grounded %d claims (%d supported, %d analysis, %d needs verification)\n",
			stats.Total, stats.Supported, stats.Analysis, stats.NeedsVerification)
		fmt.Fprintf(os.Stderr, "✓ Catalog: %d sources\n", len(report.Grounding.Sources))
	}

	return writeResult(cmd, env, report, groundOut)
}

// parseBrief decodes a JSON brief, or parses legacy text for any other input
func parseBrief(path string, data []byte) (*model.Brief, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.EqualFold(filepath.Ext(path), ".json") || (path == "-" && strings.HasPrefix(trimmed, "{")) {
		brief := &model.Brief{}
		if err := json.Unmarshal(data, brief); err != nil {
			return nil, fmt.Errorf("parse brief: %w", err)
		}
		return brief, nil
	}
	return extract.ParseLegacyBrief(string(data)), nil
}
