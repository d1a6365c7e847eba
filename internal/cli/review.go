package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/report"
	"github.com/ppiankov/groundcheck/internal/review"
)

var reviewTimeout time.Duration

var reviewCmd = &cobra.Command{
	Use:   "review <plan.md>",
	Short: "Verify a plan and get a hosted-model review of the findings",
	Long: `Review runs the full verification and then asks a hosted model to
explain and prioritize the findings, grounded in the project context.
The model comments on the verified findings; it never adds or removes
them.

Example:
  groundcheck review plan.md --llm-provider openai
  groundcheck review plan.md --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVarP(&projectDir, "project", "p", ".", "project root to verify against")
	reviewCmd.Flags().StringVar(&schemaPath, "schema", "", "schema DSL path (project-relative, overrides discovery)")
	reviewCmd.Flags().StringSliceVar(&allowNew, "allow-new", nil, "globs for paths the plan may introduce")
	reviewCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the review-response cache")
	reviewCmd.Flags().DurationVar(&reviewTimeout, "timeout", 3*time.Minute, "overall review timeout")
	reviewCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "hosted review provider (openai, anthropic, ollama)")
	reviewCmd.Flags().StringVar(&llmModel, "llm-model", "", "hosted review model name")
	reviewCmd.Flags().BoolVar(&noStream, "no-stream", false, "disable streaming review output")
}

func runReview(cmd *cobra.Command, args []string) error {
	planPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), reviewTimeout)
	defer cancel()

	plan, err := readPlan(planPath)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	applyCheckFlags(cfg)
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("review requires a provider: set --llm-provider or llm.provider in the config")
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	c := buildCache(cfg)
	registry := checker.NewRegistry(c)
	pipeline := review.New(registry, provider, c, cfg.Cache.DiskTTL)
	pipeline.ContextTokens = cfg.LLM.ContextTokens
	if cfg.LLM.Stream {
		pipeline.Stream = os.Stderr
	}

	rep, results, err := pipeline.Run(ctx, plan, projectDir, checkOptions(cfg), enabledCheckers(registry, cfg))
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}

	fmt.Print(report.RenderText(rep, results))

	exitCode = rep.ExitCode()
	return nil
}
