package bench

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/llm"
	"github.com/ppiankov/groundcheck/internal/model"
)

type scriptedProvider struct {
	output string
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Review(ctx context.Context, req llm.ReviewRequest) (*llm.ReviewResponse, error) {
	return &llm.ReviewResponse{Markdown: s.output, Model: "scripted"}, nil
}

func (s *scriptedProvider) IsAvailable(ctx context.Context) bool { return true }

func benchProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "real.ts"), []byte("export {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

const benchPlan = "The config loader is in src/phantom.ts and helpers in src/real.ts."

func TestHarness_PerfectDetection(t *testing.T) {
	provider := &scriptedProvider{output: "- src/phantom.ts\n"}
	h := New(checker.NewRegistry(nil), provider, 0, 0)

	results, err := h.Run(context.Background(), benchProject(t),
		[]Case{{Name: "one-missing", Plan: benchPlan}}, model.CheckOptions{})
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if r.GroundTruth != 1 {
		t.Fatalf("ground truth = %d, want 1", r.GroundTruth)
	}
	if r.TruePositive != 1 || r.Recall != 1 || r.Precision != 1 {
		t.Errorf("perfect detection scored wrong: %+v", r)
	}
}

func TestHarness_MissedDetection(t *testing.T) {
	provider := &scriptedProvider{output: "Everything in the plan exists."}
	h := New(checker.NewRegistry(nil), provider, 0, 0)

	results, err := h.Run(context.Background(), benchProject(t),
		[]Case{{Name: "missed", Plan: benchPlan}}, model.CheckOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Recall != 0 {
		t.Errorf("missed detection should have zero recall: %+v", results[0])
	}
}

func TestHarness_FalsePositive(t *testing.T) {
	// The model flags an existing file alongside the real hallucination.
	provider := &scriptedProvider{output: "- src/phantom.ts\n- src/real.ts\n"}
	h := New(checker.NewRegistry(nil), provider, 0, 0)

	results, err := h.Run(context.Background(), benchProject(t),
		[]Case{{Name: "fp", Plan: benchPlan}}, model.CheckOptions{})
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if r.FalsePositive == 0 {
		t.Errorf("existing file claim should count as false positive: %+v", r)
	}
	if r.Precision >= 1 {
		t.Errorf("precision should drop below 1: %+v", r)
	}
}

func TestRender(t *testing.T) {
	out := Render([]Result{{Name: "a", GroundTruth: 2, TruePositive: 1, Precision: 0.5, Recall: 0.5}})
	if !strings.Contains(out, "Overall recall: 0.50") {
		t.Errorf("aggregate line missing:\n%s", out)
	}
}
