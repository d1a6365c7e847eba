// Package tools exposes the checkers as callables for an external
// coding assistant. Every tool returns formatted text that includes the
// ground-truth context (defined models, tables, routes), so the caller
// can self-correct without a second lookup round trip.
package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/groundcheck/internal/checker"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/report"
)

// Args are the arguments accepted by every tool.
type Args struct {
	// ProjectDir is the project root to verify against.
	ProjectDir string `json:"project_dir"`

	// Plan is the plan text. When empty, PlanPath is read instead.
	Plan string `json:"plan,omitempty"`

	// PlanPath is a file to load the plan from.
	PlanPath string `json:"plan_path,omitempty"`

	// SchemaPath overrides the schema DSL location.
	SchemaPath string `json:"schema_path,omitempty"`

	// AllowedNewPaths are globs for paths the plan may introduce.
	AllowedNewPaths []string `json:"allowed_new_paths,omitempty"`
}

// Tool is one callable.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Set wires the checker registry into the tool surface.
type Set struct {
	registry *checker.Registry
}

// New creates the tool set.
func New(registry *checker.Registry) *Set {
	return &Set{registry: registry}
}

// Tools lists every callable: one per checker plus verify_all.
func (s *Set) Tools() []Tool {
	var tools []Tool
	for _, c := range s.registry.Checkers() {
		tools = append(tools, Tool{
			Name:        "check_" + c.ID(),
			Description: fmt.Sprintf("Verify %s referenced by a plan against the project", strings.ToLower(c.Name())),
		})
	}
	tools = append(tools, Tool{
		Name:        "verify_all",
		Description: "Run every checker against a plan and return the consolidated findings",
	})
	return tools
}

// Invoke runs a tool by name.
func (s *Set) Invoke(name string, args Args) (string, error) {
	plan, opts, err := s.resolveArgs(args)
	if err != nil {
		return "", err
	}

	if name == "verify_all" {
		results, err := s.registry.RunAll(plan, args.ProjectDir, opts, nil)
		if err != nil {
			return "", err
		}
		rep := report.Assemble(args.ProjectDir, results)
		var b strings.Builder
		b.WriteString(report.RenderText(rep, results))
		for _, res := range results {
			if res.Applicable && res.RawAnalysis != "" {
				b.WriteString("\n" + res.RawAnalysis)
			}
		}
		return b.String(), nil
	}

	id := strings.TrimPrefix(name, "check_")
	c := s.registry.Get(id)
	if c == nil || id == name {
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	res, err := c.Run(plan, args.ProjectDir, opts)
	if err != nil {
		return "", err
	}
	if !res.Applicable {
		return fmt.Sprintf("%s: not applicable, the project has no such artifacts\n", c.Name()), nil
	}
	out := checker.Section(res)
	if res.RawAnalysis != "" {
		out += "\n" + res.RawAnalysis
	}
	return out, nil
}

func (s *Set) resolveArgs(args Args) (string, model.CheckOptions, error) {
	opts := model.CheckOptions{
		SchemaPath:      args.SchemaPath,
		AllowedNewPaths: args.AllowedNewPaths,
	}
	if args.ProjectDir == "" {
		return "", opts, fmt.Errorf("project_dir is required")
	}
	plan := args.Plan
	if plan == "" {
		if args.PlanPath == "" {
			return "", opts, fmt.Errorf("plan or plan_path is required")
		}
		data, err := os.ReadFile(args.PlanPath)
		if err != nil {
			return "", opts, fmt.Errorf("reading plan: %w", err)
		}
		plan = string(data)
	}
	return plan, opts, nil
}
