package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/briefguard/internal/contract"
	"github.com/ppiankov/briefguard/internal/model"
)

var (
	requiredCount int
	maxIndex      int
	enforceOut    string
)

// enforceCmd represents the enforce command
var enforceCmd = &cobra.Command{
	Use:   "enforce <raw-output-file>",
	Short: "Enforce the output contract on raw model output",
	Long: `Enforce extracts the JSON payload from raw model output, validates it
against the brief schema and normalizes it into a contract-valid document:
- Selected articles trimmed, replaced or synthesized to the required count
- Hero aligned with the first selected article
- Citations deduplicated, capped and kept within the article range
- Bullet and action groups padded or trimmed to their bounds

The enforced document is printed as JSON. When the output cannot be repaired,
the list of issues is printed as a JSON array and the exit status is 2.
Use "-" to read from stdin.

Example:
  briefguard enforce output.txt --required-count 5 --max-index 12
  cat output.txt | briefguard enforce - --required-count 5 --max-index 12 --out brief.json`,
	Args: cobra.ExactArgs(1),
	RunE: runEnforce,
}

func init() {
	rootCmd.AddCommand(enforceCmd)

	enforceCmd.Flags().IntVar(&requiredCount, "required-count", 0, "number of articles the brief must select")
	enforceCmd.Flags().IntVar(&maxIndex, "max-index", 0, "highest valid article index (corpus size)")
	enforceCmd.Flags().StringVar(&enforceOut, "out", "", "write the enforced document to this path instead of stdout")
	_ = enforceCmd.MarkFlagRequired("required-count")
	_ = enforceCmd.MarkFlagRequired("max-index")
}

func runEnforce(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args[0])
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	env, err := newRuntime()
	if err != nil {
		return err
	}
	defer env.close()

	limits := model.Limits{RequiredCount: requiredCount, MaxArticleIndex: maxIndex}
	out, repairs, err := env.pipeline.Enforce(string(raw), limits)
	if err != nil {
		return contractFailure(cmd, env, err)
	}

	if env.cfg.Output.Verbose {
		for _, line := range repairs.Lines() {
			fmt.Fprintf(os.Stderr, "  repaired %s\n", line)
		}
		fmt.Fprintf(os.Stderr, "✓ Output satisfies the contract (%d repairs)\n", repairs.Len())
	}

	return writeResult(cmd, env, out, enforceOut)
}

// contractFailure prints the issue array of a contract failure to stdout and
// maps it to exit status 2. Other errors exit with status 1.
func contractFailure(cmd *cobra.Command, env *runtimeEnv, err error) error {
	var issueErr *contract.IssueError
	if !errors.As(err, &issueErr) {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if writeErr := env.renderer.WriteJSON(cmd.OutOrStdout(), issueErr.Issues); writeErr != nil {
		return &ExitError{Code: ExitFailure, Err: writeErr}
	}
	fmt.Fprintf(os.Stderr, "✗ Output violates the contract: %d issues\n", len(issueErr.Issues))
	return &ExitError{Code: ExitContract, Err: err}
}

// writeResult writes v as JSON to path, or to stdout when path is empty
func writeResult(cmd *cobra.Command, env *runtimeEnv, v interface{}, path string) error {
	if path == "" {
		if err := env.renderer.WriteJSON(cmd.OutOrStdout(), v); err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("create output: %w", err)}
	}
	if err := env.renderer.WriteJSON(f, v); err != nil {
		_ = f.Close()
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if err := f.Close(); err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("close output: %w", err)}
	}
	if env.cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", path)
	}
	return nil
}

// readInput reads a file, or stdin for "-"
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
