package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/groundcheck/internal/bench"
	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/worker"
)

var (
	benchTimeout time.Duration
	benchRPS     float64
	benchBurst   int
)

var benchCmd = &cobra.Command{
	Use:   "bench <plans-dir|plans.txt>",
	Short: "Score an unaided model review against verified findings",
	Long: `Bench replays the engine's findings as ground truth: for every plan,
the model reviews the plan without seeing the findings, and its claimed
hallucinations are scored for precision and recall.

Plans come from a directory of .md files or a manifest listing plan
paths one per line.

Example:
  groundcheck bench ./plans --project ../app --llm-provider openai
  groundcheck bench plans.txt --llm-provider ollama --rps 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVarP(&projectDir, "project", "p", ".", "project root to verify against")
	benchCmd.Flags().StringVar(&schemaPath, "schema", "", "schema DSL path (project-relative, overrides discovery)")
	benchCmd.Flags().DurationVar(&benchTimeout, "timeout", 15*time.Minute, "total benchmark timeout")
	benchCmd.Flags().Float64Var(&benchRPS, "rps", 1, "provider requests per second (0 disables limiting)")
	benchCmd.Flags().IntVar(&benchBurst, "burst", 2, "provider request burst")
	benchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "provider to benchmark (openai, anthropic, ollama)")
	benchCmd.Flags().StringVar(&llmModel, "llm-model", "", "model name")
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), benchTimeout)
	defer cancel()

	cfg := loadConfig()
	applyCheckFlags(cfg)
	if cfg.LLM.Provider == "" {
		return fmt.Errorf("bench requires a provider: set --llm-provider or llm.provider in the config")
	}
	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	cases, err := collectCases(args[0])
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		return fmt.Errorf("no plans found in %s", args[0])
	}

	harness := bench.New(checker.NewRegistry(buildCache(cfg)), provider, benchRPS, benchBurst)
	results, err := harness.Run(ctx, projectDir, cases, checkOptions(cfg))
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	fmt.Print(bench.Render(results))
	return nil
}

// collectCases loads plans from a directory of .md files or a manifest.
func collectCases(path string) ([]bench.Case, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var paths []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read dir: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
				paths = append(paths, filepath.Join(path, e.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths, err = worker.ReadPlanList(path)
		if err != nil {
			return nil, err
		}
	}

	var cases []bench.Case
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read plan %s: %w", p, err)
		}
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		cases = append(cases, bench.Case{Name: name, Plan: string(data)})
	}
	return cases, nil
}
