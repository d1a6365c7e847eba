package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/report"
	"github.com/ppiankov/groundcheck/internal/review"
)

var (
	projectDir   string
	outJSON      string
	schemaPath   string
	allowNew     []string
	disabled     []string
	experimental bool
	noCache      bool
	checkTimeout time.Duration
	llmProvider  string
	llmModel     string
	noStream     bool
)

var checkCmd = &cobra.Command{
	Use:   "check <plan.md>",
	Short: "Verify a plan's references against the project",
	Long: `Check extracts every file path, schema model, table, column, package
export, type, route and environment variable the plan references and
verifies each one against the project on disk.

Exit code 0 means every reference is grounded; 1 means hallucinations
were found; 2 means the check itself failed.

Example:
  groundcheck check plan.md
  groundcheck check plan.md --project ../app --json report.json
  groundcheck check plan.md --allow-new 'src/features/**'
  groundcheck check plan.md --llm-provider openai --llm-model gpt-4o-mini`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&projectDir, "project", "p", ".", "project root to verify against")
	checkCmd.Flags().StringVar(&outJSON, "json", "", "write the JSON report to this path ('-' for stdout)")
	checkCmd.Flags().StringVar(&schemaPath, "schema", "", "schema DSL path (project-relative, overrides discovery)")
	checkCmd.Flags().StringSliceVar(&allowNew, "allow-new", nil, "globs for paths the plan may introduce")
	checkCmd.Flags().StringSliceVar(&disabled, "disable", nil, "checker ids to skip")
	checkCmd.Flags().BoolVar(&experimental, "experimental", false, "enable experimental checkers")
	checkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the review-response cache")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall check timeout")
	checkCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "hosted review provider (openai, anthropic, ollama)")
	checkCmd.Flags().StringVar(&llmModel, "llm-model", "", "hosted review model name")
	checkCmd.Flags().BoolVar(&noStream, "no-stream", false, "disable streaming review output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	planPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	plan, err := readPlan(planPath)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	applyCheckFlags(cfg)

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	c := buildCache(cfg)
	registry := checker.NewRegistry(c)
	pipeline := review.New(registry, provider, c, cfg.Cache.DiskTTL)
	pipeline.ContextTokens = cfg.LLM.ContextTokens
	if provider != nil && cfg.LLM.Stream {
		pipeline.Stream = os.Stderr
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Checking %s against %s\n\n", planPath, projectDir)
	}

	rep, results, err := pipeline.Run(ctx, plan, projectDir, checkOptions(cfg), enabledCheckers(registry, cfg))
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	fmt.Print(report.RenderText(rep, results))

	if outJSON != "" {
		data, err := report.RenderJSON(rep)
		if err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if outJSON == "-" {
			_, _ = os.Stdout.Write(data)
		} else if err := os.WriteFile(outJSON, data, 0o644); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
	}

	exitCode = rep.ExitCode()
	return nil
}

// applyCheckFlags overlays command-line flags on the merged config.
func applyCheckFlags(cfg *model.Config) {
	if schemaPath != "" {
		cfg.Checkers.SchemaPath = schemaPath
	}
	if len(allowNew) > 0 {
		cfg.Checkers.AllowedNewPaths = append(cfg.Checkers.AllowedNewPaths, allowNew...)
	}
	if len(disabled) > 0 {
		cfg.Checkers.Disabled = append(cfg.Checkers.Disabled, disabled...)
	}
	if experimental {
		cfg.Checkers.Experimental = true
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if noStream {
		cfg.LLM.Stream = false
	}
}
