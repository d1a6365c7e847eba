package checker

import (
	"fmt"

	"github.com/ppiankov/groundcheck/internal/extract"
	"github.com/ppiankov/groundcheck/internal/index"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/suggest"
)

// FilesChecker verifies that file paths mentioned in the plan exist in
// the project tree, or are legitimately new.
type FilesChecker struct{ base }

func NewFilesChecker() *FilesChecker {
	return &FilesChecker{base{id: "files", name: "File paths"}}
}

func (c *FilesChecker) Run(plan, projectDir string, opts model.CheckOptions) (*model.CheckerResult, error) {
	tree, err := index.BuildFileTree(projectDir)
	if err != nil {
		return nil, fmt.Errorf("building file tree: %w", err)
	}

	b := newResult(c, true)
	for _, raw := range extract.FileReferences(plan) {
		switch {
		case tree.Contains(raw.Name) || tree.MatchSuffix(raw.Name) != "":
			b.add(valid(raw))
		case matchAnyGlob(opts.AllowedNewPaths, raw.Name) || raw.CreationHint:
			b.add(intentionalNew(raw))
		default:
			b.add(invalid(raw, "missing_file", suggest.Format(raw.Name, tree.Paths())))
		}
	}
	res := b.done()
	res.RawAnalysis = fmt.Sprintf("Project tree: %d files indexed under %s", tree.Len(), projectDir)
	return res, nil
}
