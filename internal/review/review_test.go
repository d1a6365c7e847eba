package review

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/groundcheck/internal/cache"
	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/llm"
	"github.com/ppiankov/groundcheck/internal/model"
)

type stubProvider struct {
	calls    int
	response string
	err      error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Review(ctx context.Context, req llm.ReviewRequest) (*llm.ReviewResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ReviewResponse{Markdown: s.response, Model: "stub-1"}, nil
}

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return true }

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "index.ts"), []byte("export {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPipeline_VerificationOnly(t *testing.T) {
	p := New(checker.NewRegistry(nil), nil, nil, 0)
	rep, results, err := p.Run(context.Background(), "Edit src/index.ts", project(t), model.CheckOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Review != nil {
		t.Error("review attached without a provider")
	}
	if len(results) == 0 {
		t.Error("no checker results")
	}
}

func TestPipeline_AttachesReview(t *testing.T) {
	stub := &stubProvider{response: "All good."}
	p := New(checker.NewRegistry(nil), stub, nil, 0)

	rep, _, err := p.Run(context.Background(), "Edit src/index.ts", project(t), model.CheckOptions{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Review == nil || rep.Review.Markdown != "All good." {
		t.Fatalf("review missing: %+v", rep.Review)
	}
	if rep.Review.Provider != "stub" || !rep.Review.Enabled {
		t.Errorf("review metadata wrong: %+v", rep.Review)
	}
}

func TestPipeline_CachesByPlanAndFindings(t *testing.T) {
	stub := &stubProvider{response: "Cached review."}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	p := New(checker.NewRegistry(nil), stub, c, time.Minute)
	dir := project(t)

	first, _, _ := p.Run(context.Background(), "Edit src/index.ts", dir, model.CheckOptions{}, nil)
	second, _, _ := p.Run(context.Background(), "Edit src/index.ts", dir, model.CheckOptions{}, nil)

	if stub.calls != 1 {
		t.Errorf("provider called %d times, want 1", stub.calls)
	}
	if first.Review.Cached || !second.Review.Cached {
		t.Errorf("cached flag wrong: first=%v second=%v", first.Review.Cached, second.Review.Cached)
	}

	// A different plan misses the cache.
	p.Run(context.Background(), "Edit src/other.ts completely", dir, model.CheckOptions{}, nil)
	if stub.calls != 2 {
		t.Errorf("different plan should miss cache, calls=%d", stub.calls)
	}
}

func TestPipeline_ProviderFailureDegrades(t *testing.T) {
	stub := &stubProvider{err: context.DeadlineExceeded}
	p := New(checker.NewRegistry(nil), stub, nil, 0)

	rep, _, err := p.Run(context.Background(), "Edit src/index.ts", project(t), model.CheckOptions{}, nil)
	if err != nil {
		t.Fatalf("provider failure must not fail the run: %v", err)
	}
	if rep.Review == nil || len(rep.Review.Warnings) == 0 {
		t.Error("failure warning missing from review summary")
	}
}
