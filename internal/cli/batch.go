package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ppiankov/briefguard/internal/contract"
	"github.com/ppiankov/briefguard/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	listFile     string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [pattern...]",
	Short: "Check many request files in parallel",
	Long: `Batch runs the check pipeline over many request files concurrently:
- Patterns support ** globs (e.g. "requests/**/*.yaml")
- A list file names one request per line (relative to the list file)
- Each request gets its own report in the output directory
- Contract failures are written as <name>.issues.json

The exit status is 2 when any request violates the contract and 1 when any
request could not be read.

Example:
  briefguard batch "requests/**/*.yaml"
  briefguard batch --list requests.txt --concurrency 8 --output-dir ./reports`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./briefguard-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&listFile, "list", "", "file listing request paths, one per line")
}

func runBatch(cmd *cobra.Command, args []string) error {
	paths, err := collectPaths(args, listFile)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	if len(paths) == 0 {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("no request files given (pass patterns or --list)")}
	}

	env, err := newRuntime()
	if err != nil {
		return err
	}
	defer env.close()

	workers := concurrency
	if workers <= 0 {
		workers = env.cfg.Concurrency.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  briefguard Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Requests:     %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("create output directory: %w", err)}
	}

	processor := worker.NewBatchProcessor(env.pipeline, workers)

	fmt.Fprintf(os.Stderr, "⚙️  Checking requests with %d workers...\n", workers)
	fmt.Fprintf(os.Stderr, "\n")
	results := processor.ProcessFiles(ctx, paths)

	// Process results
	successCount := 0
	contractCount := 0
	failureCount := 0
	names := make(map[string]int)

	for _, result := range results {
		name := uniqueName(names, sanitizeFilename(strings.TrimSuffix(filepath.Base(result.Path), filepath.Ext(result.Path))))

		if result.Error != nil {
			var issueErr *contract.IssueError
			if errors.As(result.Error, &issueErr) {
				contractCount++
				issuesPath := filepath.Join(outputDir, name+".issues.json")
				if err := writeJSONFile(env, issuesPath, issueErr.Issues); err != nil {
					fmt.Fprintf(os.Stderr, "✗ %s: failed to write issues: %v\n", result.Path, err)
				}
				fmt.Fprintf(os.Stderr, "✗ %s: %d contract issues\n", result.Path, len(issueErr.Issues))
				continue
			}
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		successCount++
		jsonPath := filepath.Join(outputDir, name+".json")
		if err := env.renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (index: %d/100, %d/%d claims supported)\n",
			result.Path, result.Report.Score.Index, result.Report.Grounding.Stats.Supported, result.Report.Grounding.Stats.Total)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:       %d requests\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:     %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Contract:    %d\n", contractCount)
	fmt.Fprintf(os.Stderr, "  Failures:    %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:      %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	switch {
	case failureCount > 0:
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%d requests failed", failureCount)}
	case contractCount > 0:
		return &ExitError{Code: ExitContract, Err: fmt.Errorf("%d requests violate the contract", contractCount)}
	}
	return nil
}

// collectPaths expands glob patterns and the list file into a deduplicated path list
func collectPaths(patterns []string, list string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid pattern: %s", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			// A literal path that does not exist is reported by the checker
			add(pattern)
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}

	if list != "" {
		listed, err := worker.ReadPathsFromFile(list)
		if err != nil {
			return nil, err
		}
		for _, p := range listed {
			add(p)
		}
	}

	return paths, nil
}

func writeJSONFile(env *runtimeEnv, path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := env.renderer.WriteJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// uniqueName suffixes repeated names with a counter
func uniqueName(used map[string]int, name string) string {
	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s-%d", name, n)
	}
	return name
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." || s == ".." {
		s = "request"
	}

	return s
}
