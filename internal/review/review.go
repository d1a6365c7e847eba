// Package review layers the optional hosted-model review on top of the
// verification engine. The pipeline runs the checkers, builds project
// context, asks the provider for a review, and attaches the result to
// the report. Findings are never modified: the review is commentary.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/groundcheck/internal/cache"
	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/contextbuilder"
	"github.com/ppiankov/groundcheck/internal/index"
	"github.com/ppiankov/groundcheck/internal/llm"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/report"
)

// Pipeline runs verification plus review.
type Pipeline struct {
	registry *checker.Registry
	provider llm.Provider
	cache    cache.Cache
	cacheTTL time.Duration

	// ContextTokens budgets the project context. Zero uses the builder
	// default.
	ContextTokens int

	// Stream receives review tokens as they arrive when the provider
	// supports streaming. Nil disables streaming.
	Stream io.Writer
}

// New creates a pipeline. Provider may be nil (verification only);
// cache may be nil (no response caching).
func New(registry *checker.Registry, provider llm.Provider, c cache.Cache, ttl time.Duration) *Pipeline {
	return &Pipeline{registry: registry, provider: provider, cache: c, cacheTTL: ttl}
}

// Run verifies the plan and, when a provider is configured, attaches a
// review to the report.
func (p *Pipeline) Run(ctx context.Context, plan, projectDir string, opts model.CheckOptions, enabled map[string]bool) (*model.Report, []*model.CheckerResult, error) {
	results, err := p.registry.RunAll(plan, projectDir, opts, enabled)
	if err != nil {
		return nil, nil, err
	}
	rep := report.Assemble(projectDir, results)
	if p.provider == nil {
		return rep, results, nil
	}

	findings := report.Excerpt(results)
	summary, err := p.review(ctx, plan, projectDir, findings)
	if err != nil {
		// The review is advisory; a provider failure degrades the report
		// instead of discarding the verification.
		rep.Review = &model.ReviewSummary{
			Enabled:  true,
			Provider: p.provider.Name(),
			Warnings: []string{fmt.Sprintf("review failed: %v", err)},
		}
		return rep, results, nil
	}
	rep.Review = summary
	return rep, results, nil
}

func (p *Pipeline) review(ctx context.Context, plan, projectDir, findings string) (*model.ReviewSummary, error) {
	key := cache.Key("review", p.provider.Name(), plan, findings)
	if p.cache != nil {
		if data, ok := p.cache.Get(key); ok {
			var cached model.ReviewSummary
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.Cached = true
				return &cached, nil
			}
		}
	}

	tree, err := index.BuildFileTree(projectDir)
	if err != nil {
		return nil, fmt.Errorf("building file tree: %w", err)
	}
	req := llm.ReviewRequest{
		Plan:     plan,
		Findings: findings,
		Context:  contextbuilder.New(tree, p.ContextTokens).Build(plan),
	}

	var resp *llm.ReviewResponse
	if streamer, ok := p.provider.(llm.Streamer); ok && p.Stream != nil {
		resp, err = streamer.ReviewStream(ctx, req, p.Stream)
	} else {
		resp, err = p.provider.Review(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	summary := &model.ReviewSummary{
		Enabled:  true,
		Provider: p.provider.Name(),
		Model:    resp.Model,
		Markdown: resp.Markdown,
		Warnings: resp.Warnings,
	}
	if p.cache != nil {
		if data, err := json.Marshal(summary); err == nil {
			_ = p.cache.Set(key, data, p.cacheTTL)
		}
	}
	return summary, nil
}
