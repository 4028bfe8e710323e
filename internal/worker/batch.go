package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/briefguard/internal/model"
)

// Checker runs the check pipeline on one request file
type Checker interface {
	CheckFile(ctx context.Context, path string) (*model.Report, error)
}

// CheckJob represents one request file to check
type CheckJob struct {
	Index   int // Position in the input list
	Path    string
	Checker Checker
}

// Execute executes the check job
func (j *CheckJob) Execute(ctx context.Context) Result {
	report, err := j.Checker.CheckFile(ctx, j.Path)
	if err != nil {
		return &CheckResult{Index: j.Index, Path: j.Path, Error: err}
	}
	return &CheckResult{Index: j.Index, Path: j.Path, Report: report}
}

// CheckResult represents the result of a check job
type CheckResult struct {
	Index  int
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the check result
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many request files concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessFiles checks every path and returns one result per path, in input order.
// Paths never started because ctx was cancelled carry the context error.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*CheckResult {
	if len(paths) == 0 {
		return []*CheckResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &CheckJob{Index: i, Path: path, Checker: b.checker}
	}

	pool := NewPoolContext(ctx, b.concurrency)
	results := pool.Run(jobs)

	checkResults := make([]*CheckResult, len(paths))
	for _, result := range results {
		r := result.(*CheckResult)
		checkResults[r.Index] = r
	}
	for i, r := range checkResults {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			checkResults[i] = &CheckResult{Index: i, Path: paths[i], Error: fmt.Errorf("not checked: %w", err)}
		}
	}

	return checkResults
}

// ReadPathsFromFile reads request paths from a file (one per line). Relative paths
// are resolved against the directory of the list file.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(filePath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		// Deduplicate paths
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
