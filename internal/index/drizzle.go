package index

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/scan"
)

// Table is one table known to the SQL schema, from either the builder-call
// form or a raw CREATE TABLE statement.
type Table struct {
	SQLName     string
	VarName     string // exported builder variable; empty for raw SQL tables
	Columns     map[string]string
	ColumnOrder []string
	FromBuilder bool
}

// SQLSchema merges the builder-call and raw-SQL sub-parsers into one
// table→column index with a variable-name↔table-name mapping.
type SQLSchema struct {
	Tables     map[string]*Table
	TableOrder []string

	varToTable map[string]string
}

var (
	builderTableRe = regexp.MustCompile(`export\s+const\s+(\w+)\s*=\s*(?:pgTable|mysqlTable|sqliteTable|table)\s*\(\s*["'](\w+)["']\s*,`)
	createTableRe  = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?["'` + "`" + `]?(\w+)["'` + "`" + `]?\s*\(`)
	columnFnRe     = regexp.MustCompile(`^(\w+)\s*\(`)
	arrowColumnRe  = regexp.MustCompile(`^\(\s*\w*\s*\)\s*=>\s*(?:\w+\.)?(\w+)\s*\(`)
)

// constraintKeywords begin CREATE TABLE lines that are not columns.
var constraintKeywords = map[string]bool{
	"primary": true, "foreign": true, "unique": true, "constraint": true,
	"check": true, "key": true, "index": true, "exclude": true,
}

// BuildSQLSchema scans the project for both table forms. Builder-form
// tables win on name collision: they carry richer typing and the variable
// mapping.
func BuildSQLSchema(tree *FileTree) *SQLSchema {
	schema := &SQLSchema{
		Tables:     make(map[string]*Table),
		varToTable: make(map[string]string),
	}

	// Raw SQL first so builder tables override on collision.
	for _, rel := range tree.WithSuffix(".sql") {
		src, err := tree.ReadFile(rel)
		if err != nil {
			continue
		}
		schema.addCreateTables(src)
	}
	for _, rel := range tree.WithSuffix(".ts", ".js", ".mts", ".mjs") {
		src, err := tree.ReadFile(rel)
		if err != nil {
			continue
		}
		if !strings.Contains(src, "Table(") && !strings.Contains(src, "table(") {
			continue
		}
		schema.addBuilderTables(src)
	}
	return schema
}

// addBuilderTables parses every `export const NAME = tableFn("sql", {...})`
// in src, walking the column object literal at depth zero.
func (s *SQLSchema) addBuilderTables(src string) {
	src = scan.StripComments(src)
	for _, loc := range builderTableRe.FindAllStringSubmatchIndex(src, -1) {
		varName := src[loc[2]:loc[3]]
		sqlName := src[loc[4]:loc[5]]

		brace := strings.IndexByte(src[loc[1]:], '{')
		if brace < 0 {
			continue
		}
		body, ok := scan.Body(src, loc[1]+brace)
		if !ok {
			continue
		}

		table := &Table{
			SQLName:     sqlName,
			VarName:     varName,
			Columns:     make(map[string]string),
			FromBuilder: true,
		}
		for _, pair := range scan.Pairs(body) {
			table.addColumn(pair.Key, builderColumnType(pair.Value))
		}
		s.put(table)
		s.varToTable[varName] = sqlName
	}
}

// builderColumnType infers a column's type tag from the declared wrapper
// function name, including the callback-wrapped form `(t) => t.text()`.
func builderColumnType(value string) string {
	if m := arrowColumnRe.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	if m := columnFnRe.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return ""
}

// addCreateTables parses CREATE TABLE statements, splitting the body on
// top-level commas and skipping constraint lines.
func (s *SQLSchema) addCreateTables(src string) {
	for _, loc := range createTableRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[loc[2]:loc[3]]
		openParen := loc[1] - 1
		body, ok := scan.Body(src, openParen)
		if !ok {
			continue
		}

		table := &Table{SQLName: name, Columns: make(map[string]string)}
		for _, entry := range scan.SplitTop(body, ',') {
			fields := strings.Fields(strings.TrimSpace(entry))
			if len(fields) == 0 {
				continue
			}
			first := strings.ToLower(fields[0])
			if constraintKeywords[first] {
				continue
			}
			column := strings.Trim(fields[0], "\"'`")
			colType := ""
			if len(fields) > 1 {
				colType = strings.ToLower(fields[1])
				if paren := strings.IndexByte(colType, '('); paren > 0 {
					colType = colType[:paren]
				}
			}
			if identLike(column) {
				table.addColumn(column, colType)
			}
		}
		s.put(table)
	}
}

func (t *Table) addColumn(name, colType string) {
	if _, dup := t.Columns[name]; !dup {
		t.ColumnOrder = append(t.ColumnOrder, name)
	}
	t.Columns[name] = colType
}

// put merges a table into the schema; builder tables take precedence.
func (s *SQLSchema) put(table *Table) {
	existing, ok := s.Tables[table.SQLName]
	if ok && existing.FromBuilder && !table.FromBuilder {
		return
	}
	if !ok {
		s.TableOrder = append(s.TableOrder, table.SQLName)
	}
	s.Tables[table.SQLName] = table
}

// TableForVar resolves a builder variable name to its SQL table name.
func (s *SQLSchema) TableForVar(varName string) (string, bool) {
	t, ok := s.varToTable[varName]
	return t, ok
}

// Resolve accepts either a builder variable or an SQL table name.
func (s *SQLSchema) Resolve(name string) (*Table, bool) {
	if sqlName, ok := s.varToTable[name]; ok {
		name = sqlName
	}
	t, ok := s.Tables[name]
	return t, ok
}

// TableNames returns SQL names in index order.
func (s *SQLSchema) TableNames() []string { return s.TableOrder }

// VarNames returns builder variable names in index order.
func (s *SQLSchema) VarNames() []string {
	var names []string
	for _, sqlName := range s.TableOrder {
		if t := s.Tables[sqlName]; t.VarName != "" {
			names = append(names, t.VarName)
		}
	}
	return names
}

// Empty reports whether no tables were found in the project.
func (s *SQLSchema) Empty() bool { return len(s.Tables) == 0 }
