package checker

import (
	"fmt"
	"strings"

	"github.com/ppiankov/groundcheck/internal/extract"
	"github.com/ppiankov/groundcheck/internal/index"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/suggest"
)

// EnvChecker verifies environment variable accesses against the
// project's env files. Experimental: env files routinely omit variables
// injected by the deploy platform.
type EnvChecker struct{ base }

func NewEnvChecker() *EnvChecker {
	return &EnvChecker{base{id: "env", name: "Environment variables", experimental: true}}
}

func (c *EnvChecker) Run(plan, projectDir string, opts model.CheckOptions) (*model.CheckerResult, error) {
	tree, err := index.BuildFileTree(projectDir)
	if err != nil {
		return nil, fmt.Errorf("building file tree: %w", err)
	}
	idx := index.BuildEnvIndex(tree)
	if !idx.Found {
		return newResult(c, false).done(), nil
	}

	b := newResult(c, true)
	for _, raw := range extract.EnvReferences(plan) {
		if idx.Has(raw.Name) {
			b.add(valid(raw))
		} else {
			b.add(invalid(raw, "unknown_env_var", suggest.Format(raw.Name, idx.Names())))
		}
	}
	res := b.done()
	res.RawAnalysis = "Declared variables: " + strings.Join(idx.Names(), ", ")
	return res, nil
}
