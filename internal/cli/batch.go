package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/report"
	"github.com/ppiankov/groundcheck/internal/review"
	"github.com/ppiankov/groundcheck/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <plans.txt>",
	Short: "Verify multiple plans against one project in parallel",
	Long: `Batch verifies many plans concurrently:
- Read plan paths from a manifest file (one per line, # comments)
- Verify each plan against the project with a worker pool
- Write one JSON report per plan

Example:
  groundcheck batch plans.txt --project ../app
  groundcheck batch plans.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&projectDir, "project", "p", ".", "project root to verify against")
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./groundcheck-reports", "output directory for JSON reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&schemaPath, "schema", "", "schema DSL path (project-relative, overrides discovery)")
	batchCmd.Flags().StringSliceVar(&allowNew, "allow-new", nil, "globs for paths plans may introduce")
	batchCmd.Flags().StringSliceVar(&disabled, "disable", nil, "checker ids to skip")
	batchCmd.Flags().BoolVar(&experimental, "experimental", false, "enable experimental checkers")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the review-response cache")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "hosted review provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "hosted review model name")
}

// pipelineVerifier adapts the review pipeline to the batch worker.
type pipelineVerifier struct {
	pipeline *review.Pipeline
	opts     model.CheckOptions
	enabled  map[string]bool
}

func (v *pipelineVerifier) Verify(ctx context.Context, plan, projectDir string) (*model.Report, error) {
	rep, _, err := v.pipeline.Run(ctx, plan, projectDir, v.opts, v.enabled)
	return rep, err
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifest := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := loadConfig()
	applyCheckFlags(cfg)
	cfg.LLM.Stream = false

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	c := buildCache(cfg)
	registry := checker.NewRegistry(c)
	pipeline := review.New(registry, provider, c, cfg.Cache.DiskTTL)
	pipeline.ContextTokens = cfg.LLM.ContextTokens

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(&pipelineVerifier{
		pipeline: pipeline,
		opts:     checkOptions(cfg),
		enabled:  enabledCheckers(registry, cfg),
	}, concurrency)
	if provider != nil {
		processor.Limiter = worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.Burst)
		processor.ProviderURL = providerURL(cfg)
	}

	fmt.Fprintf(os.Stderr, "Verifying plans from %s against %s with %d workers\n\n", manifest, projectDir, concurrency)

	results, err := processor.ProcessManifest(ctx, manifest, projectDir)
	if err != nil {
		return fmt.Errorf("process manifest: %w", err)
	}

	clean, flagged, failed := 0, 0, 0
	for _, res := range results {
		if res.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.PlanPath, res.Error)
			continue
		}

		jsonPath := filepath.Join(outputDir, planSlug(res.PlanPath)+".json")
		data, err := report.RenderJSON(res.Report)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: render JSON: %v\n", res.PlanPath, err)
			continue
		}
		if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: write report: %v\n", res.PlanPath, err)
			continue
		}

		if res.Report.Summary.TotalFindings > 0 {
			flagged++
			fmt.Fprintf(os.Stderr, "✗ %s: %d hallucinated reference(s)\n", res.PlanPath, res.Report.Summary.TotalFindings)
		} else {
			clean++
			fmt.Fprintf(os.Stderr, "✓ %s\n", res.PlanPath)
		}
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d plans, clean: %d, flagged: %d, failed: %d\nReports: %s\n",
		len(results), clean, flagged, failed, outputDir)

	if failed > 0 {
		return fmt.Errorf("%d plan(s) failed to verify", failed)
	}
	if flagged > 0 {
		exitCode = 1
	}
	return nil
}

// planSlug derives a report filename from a plan path.
func planSlug(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// providerURL is the endpoint the rate limiter keys on.
func providerURL(cfg *model.Config) string {
	if cfg.LLM.BaseURL != "" {
		return cfg.LLM.BaseURL
	}
	switch cfg.LLM.Provider {
	case "anthropic", "claude":
		return "https://api.anthropic.com"
	case "ollama":
		return "http://localhost:11434"
	default:
		return "https://api.openai.com"
	}
}
