// Package bench measures how well an unaided model review catches the
// hallucinations this engine detects statically. The engine's findings
// are replayed as ground truth: for each plan, the model reviews the
// plan without the engine's output, and its claimed hallucinations are
// scored against the real ones.
package bench

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/llm"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/report"
)

// Case is one plan to score.
type Case struct {
	Name string
	Plan string
}

// Result is the per-plan score.
type Result struct {
	Name          string  `json:"name"`
	GroundTruth   int     `json:"groundTruth"`
	TruePositive  int     `json:"truePositive"`
	FalsePositive int     `json:"falsePositive"`
	Precision     float64 `json:"precision"`
	Recall        float64 `json:"recall"`
}

// Harness runs the benchmark.
type Harness struct {
	registry *checker.Registry
	provider llm.Provider
	limiter  *rate.Limiter
}

// New creates a harness. The limiter spaces provider calls; rps <= 0
// disables limiting.
func New(registry *checker.Registry, provider llm.Provider, rps float64, burst int) *Harness {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &Harness{registry: registry, provider: provider, limiter: limiter}
}

const unaidedPrompt = "Review this implementation plan against the project context. " +
	"List every file, table, model field, package export, type, route or environment " +
	"variable the plan references that does not actually exist in the project. " +
	"One item per line, exact names only.\n\n"

// Run scores every case. The provider reviews each plan unaided (no
// engine findings in the prompt); detection is measured by exact target
// mentions in its output.
func (h *Harness) Run(ctx context.Context, projectDir string, cases []Case, opts model.CheckOptions) ([]Result, error) {
	var results []Result
	for _, c := range cases {
		res, err := h.runCase(ctx, projectDir, c, opts)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Name, err)
		}
		results = append(results, *res)
	}
	return results, nil
}

func (h *Harness) runCase(ctx context.Context, projectDir string, c Case, opts model.CheckOptions) (*Result, error) {
	checkerResults, err := h.registry.RunAll(c.Plan, projectDir, opts, nil)
	if err != nil {
		return nil, err
	}
	rep := report.Assemble(projectDir, checkerResults)

	truth := make(map[string]bool)
	for _, f := range rep.Findings {
		truth[f.Target] = true
	}

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	resp, err := h.provider.Review(ctx, llm.ReviewRequest{
		Plan:   c.Plan,
		Prompt: unaidedPrompt + c.Plan,
	})
	if err != nil {
		return nil, err
	}

	claims := claimedTargets(resp.Markdown, c.Plan)
	res := &Result{Name: c.Name, GroundTruth: len(truth)}
	for claim := range claims {
		if truth[claim] {
			res.TruePositive++
		} else {
			res.FalsePositive++
		}
	}
	if claimed := res.TruePositive + res.FalsePositive; claimed > 0 {
		res.Precision = float64(res.TruePositive) / float64(claimed)
	}
	if len(truth) > 0 {
		res.Recall = float64(res.TruePositive) / float64(len(truth))
	}
	return res, nil
}

// targetTokenRe matches target-shaped tokens: paths, dotted pairs,
// route paths, bare identifiers.
var targetTokenRe = regexp.MustCompile(`[\w$][\w$.\[\]/-]*[\w$\]]|/[\w/\[\]-]+`)

// claimedTargets extracts the model's claimed hallucinations: tokens
// from its output that also occur in the plan. Tokens absent from the
// plan cannot be plan references and are ignored rather than counted
// against precision.
func claimedTargets(review, plan string) map[string]bool {
	claims := make(map[string]bool)
	for _, line := range strings.Split(review, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789. "))
		if line == "" {
			continue
		}
		for _, tok := range targetTokenRe.FindAllString(line, -1) {
			// Target-shaped tokens carry a separator (path, dotted pair,
			// snake_case variable); prose words never count as claims.
			if !strings.ContainsAny(tok, "/._") {
				continue
			}
			if strings.Contains(plan, tok) || strings.Contains(plan, strings.TrimPrefix(tok, "/")) {
				claims[tok] = true
			}
		}
	}
	return claims
}

// Render formats the results table with aggregate totals.
func Render(results []Result) string {
	var b strings.Builder
	b.WriteString("Benchmark: unaided review vs verified findings\n")
	var tp, fp, truth int
	for _, r := range results {
		fmt.Fprintf(&b, "  %-24s truth=%d tp=%d fp=%d precision=%.2f recall=%.2f\n",
			r.Name, r.GroundTruth, r.TruePositive, r.FalsePositive, r.Precision, r.Recall)
		tp += r.TruePositive
		fp += r.FalsePositive
		truth += r.GroundTruth
	}
	if truth > 0 {
		fmt.Fprintf(&b, "Overall recall: %.2f\n", float64(tp)/float64(truth))
	}
	if tp+fp > 0 {
		fmt.Fprintf(&b, "Overall precision: %.2f\n", float64(tp)/float64(tp+fp))
	}
	return b.String()
}
