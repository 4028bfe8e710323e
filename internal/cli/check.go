package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	checkOut     string
	checkTimeout time.Duration
	showSummary  bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <request-file>",
	Short: "Enforce, ground, fact check and score one request",
	Long: `Check runs the full pipeline over a request file (JSON or YAML):
- Enforce the output contract on the raw model output
- Ground every claim of the enforced brief against the corpus
- Check numeric tokens against their cited sources
- Calculate a transparent quality index (informational only)

The report is printed as JSON. Contract failures print the issue array and
exit with status 2.

Example:
  briefguard check request.yaml
  briefguard check request.json --out report.json --summary`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkOut, "out", "", "write the report to this path instead of stdout")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", time.Minute, "overall check timeout")
	checkCmd.Flags().BoolVar(&showSummary, "summary", false, "print a human-readable summary to stderr")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	env, err := newRuntime()
	if err != nil {
		return err
	}
	defer env.close()

	if env.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Checking: %s\n", path)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", env.cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	report, err := env.pipeline.CheckFile(ctx, path)
	if err != nil {
		return contractFailure(cmd, env, err)
	}

	if env.cfg.Output.Verbose {
		stats := report.Grounding.Stats
		fmt.Fprintf(os.Stderr, "✓ Output satisfies the contract (%d repairs)\n", len(report.Repairs))
		fmt.Fprintf(os.Stderr, "✓ Grounded %d claims, %d supported\n", stats.Total, stats.Supported)
		fmt.Fprintf(os.Stderr, "✓ Calculated quality index: %d/100\n", report.Score.Index)
		fmt.Fprintln(os.Stderr)
	}

	if showSummary {
		env.renderer.RenderSummary(os.Stderr, report)
	}

	return writeResult(cmd, env, report, checkOut)
}
