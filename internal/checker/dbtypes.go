package checker

import (
	"fmt"
	"strings"

	"github.com/ppiankov/groundcheck/internal/extract"
	"github.com/ppiankov/groundcheck/internal/index"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/suggest"
)

// DBTypesChecker verifies database-client calls against the generated
// database types: tables and their row columns, rpc functions, enums.
type DBTypesChecker struct{ base }

func NewDBTypesChecker() *DBTypesChecker {
	return &DBTypesChecker{base{id: "dbtypes", name: "Database types"}}
}

func (c *DBTypesChecker) Run(plan, projectDir string, opts model.CheckOptions) (*model.CheckerResult, error) {
	tree, err := index.BuildFileTree(projectDir)
	if err != nil {
		return nil, fmt.Errorf("building file tree: %w", err)
	}
	db := index.LoadDBTypes(tree)
	if db == nil {
		return newResult(c, false).done(), nil
	}

	b := newResult(c, true)
	for _, raw := range extract.DBClientReferences(plan) {
		switch raw.Category {
		case model.CategoryTable:
			if _, ok := db.Tables[raw.Name]; ok {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_table", suggest.Format(raw.Name, db.TableNames)))
			}
		case model.CategoryColumn:
			cols := db.Columns(raw.Name)
			if _, ok := db.Tables[raw.Name]; !ok {
				b.add(invalid(raw, "unknown_table", suggest.Format(raw.Name, db.TableNames)))
				continue
			}
			if db.HasColumn(raw.Name, raw.Member) {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_column", suggest.Format(raw.Member, cols)))
			}
		case model.CategoryDBFunction:
			if _, ok := db.Functions[raw.Name]; ok {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_function", suggest.Format(raw.Name, db.FnNames)))
			}
		case model.CategoryDBEnum:
			if _, ok := db.Enums[raw.Name]; ok {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_enum", suggest.Format(raw.Name, db.EnumNames)))
			}
		}
	}
	res := b.done()
	res.RawAnalysis = dbContext(db)
	return res, nil
}

func dbContext(db *index.DBTypes) string {
	var b strings.Builder
	b.WriteString("Generated database types:\n")
	for _, name := range db.TableNames {
		fmt.Fprintf(&b, "- table %s: %s\n", name, strings.Join(db.Columns(name), ", "))
	}
	if fns := db.FnNames; len(fns) > 0 {
		fmt.Fprintf(&b, "Functions: %s\n", strings.Join(fns, ", "))
	}
	if enums := db.EnumNames; len(enums) > 0 {
		fmt.Fprintf(&b, "Enums: %s\n", strings.Join(enums, ", "))
	}
	return b.String()
}
