package checker

import (
	"fmt"
	"strings"

	"github.com/ppiankov/groundcheck/internal/extract"
	"github.com/ppiankov/groundcheck/internal/index"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/suggest"
)

// TypesChecker verifies member access against project-declared types.
// A type name absent from the index is counted but never flagged: it
// may belong to a package, and package exports have their own checker.
type TypesChecker struct{ base }

func NewTypesChecker() *TypesChecker {
	return &TypesChecker{base{id: "types", name: "Project types"}}
}

func (c *TypesChecker) Run(plan, projectDir string, opts model.CheckOptions) (*model.CheckerResult, error) {
	tree, err := index.BuildFileTree(projectDir)
	if err != nil {
		return nil, fmt.Errorf("building file tree: %w", err)
	}
	idx := index.BuildTypeIndex(tree)
	if idx.Empty() {
		return newResult(c, false).done(), nil
	}

	b := newResult(c, true)
	for _, raw := range extract.TypeReferences(plan) {
		switch raw.Category {
		case model.CategoryType:
			b.add(valid(raw))
		case model.CategoryTypeMember:
			decl, ok := idx.Lookup(raw.Name)
			if !ok {
				b.add(valid(raw))
				continue
			}
			if _, ok := decl.Members[raw.Member]; ok {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_type_member", suggest.Format(raw.Member, decl.MemberOrder)))
			}
		}
	}
	res := b.done()
	res.RawAnalysis = typesContext(idx)
	return res, nil
}

func typesContext(idx *index.TypeIndex) string {
	var b strings.Builder
	b.WriteString("Declared types:\n")
	for _, name := range idx.Names() {
		decl, _ := idx.Lookup(name)
		fmt.Fprintf(&b, "- %s %s: %s\n", decl.Kind, name, strings.Join(decl.MemberOrder, ", "))
	}
	return b.String()
}
