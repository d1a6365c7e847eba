// Package checker wires one indexer, one extractor, and the validator
// rules for a single reference domain into a uniform capability, and
// composes all domains through a registry.
package checker

import (
	"fmt"
	"strings"

	"github.com/ppiankov/groundcheck/internal/cache"
	"github.com/ppiankov/groundcheck/internal/model"
)

// Checker validates one domain of plan references against project
// ground truth.
type Checker interface {
	ID() string
	Name() string
	Experimental() bool

	// Run builds the domain index from disk, validates the plan's
	// references against it, and returns the aggregate.
	Run(plan, projectDir string, opts model.CheckOptions) (*model.CheckerResult, error)
}

type base struct {
	id           string
	name         string
	experimental bool
}

func (b base) ID() string         { return b.id }
func (b base) Name() string       { return b.name }
func (b base) Experimental() bool { return b.experimental }

// Registry composes checkers and runs them sequentially. Checkers share
// no writable state except the export-resolution cache.
type Registry struct {
	checkers []Checker
	byID     map[string]Checker
}

// NewRegistry returns a registry with every built-in checker
// registered. The cache backs package-export memoization for the run's
// lifetime.
func NewRegistry(c cache.Cache) *Registry {
	r := &Registry{byID: make(map[string]Checker)}
	r.Register(NewFilesChecker())
	r.Register(NewSchemaChecker())
	r.Register(NewSQLChecker())
	r.Register(NewDBTypesChecker())
	r.Register(NewPackagesChecker(c))
	r.Register(NewTypesChecker())
	r.Register(NewRoutesChecker())
	r.Register(NewEnvChecker())
	return r
}

// Register appends a checker; later registrations with a duplicate id
// are ignored.
func (r *Registry) Register(c Checker) {
	if _, dup := r.byID[c.ID()]; dup {
		return
	}
	r.byID[c.ID()] = c
	r.checkers = append(r.checkers, c)
}

// Checkers returns all registered checkers in registration order.
func (r *Registry) Checkers() []Checker { return r.checkers }

// Get returns the checker with the given id, or nil.
func (r *Registry) Get(id string) Checker { return r.byID[id] }

// RunAll executes every enabled checker against the plan. A nil enabled
// set means all. A single checker failure aborts the run; checkers
// themselves degrade internally on malformed artifacts, so failures
// here are I/O level (unreadable project root).
func (r *Registry) RunAll(plan, projectDir string, opts model.CheckOptions, enabled map[string]bool) ([]*model.CheckerResult, error) {
	var results []*model.CheckerResult
	for _, c := range r.checkers {
		if enabled != nil && !enabled[c.ID()] {
			continue
		}
		res, err := c.Run(plan, projectDir, opts)
		if err != nil {
			return nil, fmt.Errorf("checker %s: %w", c.ID(), err)
		}
		results = append(results, res)
	}
	return results, nil
}

// resultBuilder accumulates validated references for one run, enforcing
// the dedup invariant: (raw, category, validity, subcategory) unique.
type resultBuilder struct {
	res  *model.CheckerResult
	seen map[string]bool
}

func newResult(c Checker, applicable bool) *resultBuilder {
	return &resultBuilder{
		res: &model.CheckerResult{
			Checker:     c.ID(),
			DisplayName: c.Name(),
			Applicable:  applicable,
		},
		seen: make(map[string]bool),
	}
}

// add records one validated reference. Hallucinations (invalid and not
// intentionally new) land in the result's hallucination list.
func (b *resultBuilder) add(ref model.Reference) {
	key := ref.DedupeKey()
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.res.Checked++
	if !ref.Valid && !ref.IntentionalNew {
		b.res.Hallucinated++
		b.res.Hallucinations = append(b.res.Hallucinations, ref)
	}
}

func (b *resultBuilder) done() *model.CheckerResult { return b.res }

// valid marks a reference checked and valid.
func valid(raw model.RawReference) model.Reference {
	return model.Reference{RawReference: raw, Valid: true}
}

// invalid marks a reference hallucinated with a subcategory and an
// optional suggestion.
func invalid(raw model.RawReference, subcategory, suggestion string) model.Reference {
	return model.Reference{RawReference: raw, Subcategory: subcategory, Suggestion: suggestion}
}

// intentionalNew marks a missing entity the plan legitimately creates.
func intentionalNew(raw model.RawReference) model.Reference {
	return model.Reference{RawReference: raw, Valid: false, IntentionalNew: true}
}

// Section renders one checker's block of the consolidated text report.
func Section(res *model.CheckerResult) string {
	var b strings.Builder
	marker := "✓"
	if res.Hallucinated > 0 {
		marker = "✗"
	}
	fmt.Fprintf(&b, "%s %s: %d checked, %d finding(s)\n",
		marker, res.DisplayName, res.Checked, res.Hallucinated)
	for _, h := range res.Hallucinations {
		fmt.Fprintf(&b, "    - %s: %s", h.Subcategory, h.Target())
		if h.Suggestion != "" {
			fmt.Fprintf(&b, " (%s)", h.Suggestion)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// FindingsExcerpt renders the LLM-context excerpt for one checker.
// Empty when the checker found nothing: clean domains contribute no
// prompt noise.
func FindingsExcerpt(res *model.CheckerResult) string {
	if res.Hallucinated == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Findings (%s):\n", res.DisplayName)
	for _, h := range res.Hallucinations {
		fmt.Fprintf(&b, "- [%s] %s", h.Subcategory, h.Target())
		if h.Suggestion != "" {
			fmt.Fprintf(&b, " (%s)", h.Suggestion)
		}
		b.WriteByte('\n')
	}
	if res.RawAnalysis != "" {
		b.WriteString(res.RawAnalysis)
		b.WriteByte('\n')
	}
	return b.String()
}
