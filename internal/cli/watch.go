package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/briefguard/internal/contract"
	"github.com/ppiankov/briefguard/internal/inbox"
)

var (
	watchOutDir   string
	watchDebounce time.Duration
	watchExisting bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <inbox-dir>",
	Short: "Check request files as they are dropped into a directory",
	Long: `Watch monitors an inbox directory and runs the check pipeline on every
request file (.json, .yaml, .yml) once writes to it have settled. Reports and
contract issue lists are written to the output directory, as in batch.

Stop with Ctrl-C.

Example:
  briefguard watch ./inbox --output-dir ./reports
  briefguard watch ./inbox --existing --debounce 2s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchOutDir, "output-dir", "./briefguard-reports", "output directory for reports")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is checked")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "check files already in the inbox on startup")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	env, err := newRuntime()
	if err != nil {
		return err
	}
	defer env.close()

	// Reports written into the inbox would be picked up as requests
	if sameDir(dir, watchOutDir) {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("output directory must differ from the inbox")}
	}

	if err := os.MkdirAll(watchOutDir, 0755); err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("create output directory: %w", err)}
	}

	w, err := inbox.New(dir, inbox.DefaultExtensions, watchDebounce, env.log)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handle := func(ctx context.Context, path string) {
		checkInboxFile(ctx, env, path)
		// Keep the textfile current for node_exporter while watching
		if err := env.metrics.WriteTextfile(env.cfg.Metrics.File); err != nil {
			env.log.Warn("metrics export failed", "error", err)
		}
	}

	if watchExisting {
		existing, err := w.Existing()
		if err != nil {
			_ = w.Close()
			return &ExitError{Code: ExitFailure, Err: err}
		}
		for _, path := range existing {
			handle(ctx, path)
		}
	}

	fmt.Fprintf(os.Stderr, "Watching %s (output: %s)\n", dir, watchOutDir)
	if err := w.Run(ctx, handle); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	fmt.Fprintf(os.Stderr, "Stopped watching %s\n", dir)
	return nil
}

// checkInboxFile checks one request and writes its report or issue list
func checkInboxFile(ctx context.Context, env *runtimeEnv, path string) {
	name := sanitizeFilename(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	report, err := env.pipeline.CheckFile(ctx, path)
	if err != nil {
		var issueErr *contract.IssueError
		if errors.As(err, &issueErr) {
			issuesPath := filepath.Join(watchOutDir, name+".issues.json")
			if err := writeJSONFile(env, issuesPath, issueErr.Issues); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write issues: %v\n", path, err)
				return
			}
			fmt.Fprintf(os.Stderr, "✗ %s: %d contract issues -> %s\n", path, len(issueErr.Issues), issuesPath)
			return
		}
		fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
		return
	}

	jsonPath := filepath.Join(watchOutDir, name+".json")
	if err := env.renderer.RenderJSON(report, jsonPath); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", path, err)
		return
	}
	// A fresh report replaces any issue list from an earlier attempt
	_ = os.Remove(filepath.Join(watchOutDir, name+".issues.json"))

	fmt.Fprintf(os.Stderr, "✓ %s (index: %d/100) -> %s\n", path, report.Score.Index, jsonPath)
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
