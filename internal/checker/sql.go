package checker

import (
	"fmt"
	"strings"

	"github.com/ppiankov/groundcheck/internal/extract"
	"github.com/ppiankov/groundcheck/internal/index"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/suggest"
)

// SQLChecker verifies table and column references from query-builder
// chains and raw SQL against the merged table schema. Column references
// resolve through the builder variable→table mapping.
type SQLChecker struct{ base }

func NewSQLChecker() *SQLChecker {
	return &SQLChecker{base{id: "sql", name: "SQL tables"}}
}

func (c *SQLChecker) Run(plan, projectDir string, opts model.CheckOptions) (*model.CheckerResult, error) {
	tree, err := index.BuildFileTree(projectDir)
	if err != nil {
		return nil, fmt.Errorf("building file tree: %w", err)
	}
	schema := index.BuildSQLSchema(tree)
	if schema.Empty() {
		return newResult(c, false).done(), nil
	}

	candidates := append(schema.VarNames(), schema.TableNames()...)

	b := newResult(c, true)
	for _, raw := range extract.SQLReferences(plan) {
		switch raw.Category {
		case model.CategoryTable:
			if _, ok := schema.Resolve(raw.Name); ok {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_table", suggest.Format(raw.Name, candidates)))
			}
		case model.CategoryColumn:
			table, ok := schema.Resolve(raw.Name)
			if !ok {
				b.add(invalid(raw, "unknown_table", suggest.Format(raw.Name, candidates)))
				continue
			}
			if _, ok := table.Columns[raw.Member]; ok {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_column", suggest.Format(raw.Member, table.ColumnOrder)))
			}
		}
	}
	res := b.done()
	res.RawAnalysis = sqlContext(schema)
	return res, nil
}

func sqlContext(schema *index.SQLSchema) string {
	var b strings.Builder
	b.WriteString("Defined tables:\n")
	for _, name := range schema.TableNames() {
		t, _ := schema.Resolve(name)
		label := name
		if t.VarName != "" {
			label = fmt.Sprintf("%s (variable %s)", name, t.VarName)
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, strings.Join(t.ColumnOrder, ", "))
	}
	return b.String()
}
