package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
)

// Verifier checks one plan against a project.
type Verifier interface {
	Verify(ctx context.Context, plan, projectDir string) (*model.Report, error)
}

// VerifyJob verifies one plan file.
type VerifyJob struct {
	PlanPath   string
	ProjectDir string
	Verifier   Verifier

	// Limiter and ProviderURL pace provider calls when the verifier
	// includes a hosted review. Nil limiter skips pacing.
	Limiter     *Limiter
	ProviderURL string
}

// Execute reads the plan and verifies it.
func (j *VerifyJob) Execute(ctx context.Context) Result {
	data, err := os.ReadFile(j.PlanPath)
	if err != nil {
		return &VerifyResult{PlanPath: j.PlanPath, Error: fmt.Errorf("read plan: %w", err)}
	}
	if j.Limiter != nil && j.ProviderURL != "" {
		if err := j.Limiter.Wait(ctx, j.ProviderURL); err != nil {
			return &VerifyResult{PlanPath: j.PlanPath, Error: err}
		}
	}
	rep, err := j.Verifier.Verify(ctx, string(data), j.ProjectDir)
	if err != nil {
		return &VerifyResult{PlanPath: j.PlanPath, Error: err}
	}
	return &VerifyResult{PlanPath: j.PlanPath, Report: rep}
}

// VerifyResult is the outcome for one plan.
type VerifyResult struct {
	PlanPath string
	Report   *model.Report
	Error    error
}

// GetError returns the job error, if any.
func (r *VerifyResult) GetError() error { return r.Error }

// BatchProcessor verifies many plans against one project concurrently.
type BatchProcessor struct {
	verifier    Verifier
	concurrency int

	// Limiter and ProviderURL are handed to every job; see VerifyJob.
	Limiter     *Limiter
	ProviderURL string
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{verifier: verifier, concurrency: concurrency}
}

// ProcessPlans verifies the given plan files concurrently.
func (b *BatchProcessor) ProcessPlans(ctx context.Context, planPaths []string, projectDir string) []*VerifyResult {
	if len(planPaths) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range planPaths {
		pool.Submit(&VerifyJob{
			PlanPath:    path,
			ProjectDir:  projectDir,
			Verifier:    b.verifier,
			Limiter:     b.Limiter,
			ProviderURL: b.ProviderURL,
		})
	}

	results := pool.Wait()
	verifyResults := make([]*VerifyResult, len(results))
	for i, res := range results {
		verifyResults[i] = res.(*VerifyResult)
	}
	return verifyResults
}

// ProcessManifest reads a plan list file and verifies every entry.
func (b *BatchProcessor) ProcessManifest(ctx context.Context, manifestPath, projectDir string) ([]*VerifyResult, error) {
	paths, err := ReadPlanList(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read plan list: %w", err)
	}
	return b.ProcessPlans(ctx, paths, projectDir), nil
}

// ReadPlanList reads plan paths from a manifest, one per line. Blank
// lines and # comments are skipped; duplicates collapse.
func ReadPlanList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
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
