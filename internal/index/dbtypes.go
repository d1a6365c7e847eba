package index

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/scan"
)

// DBFunction is one database function from the generated types file.
type DBFunction struct {
	Name    string
	Args    map[string]string
	ArgOrder []string
	Returns string
}

// DBTypes is the parsed generated database-types file: the three
// co-located sections keyed by name.
type DBTypes struct {
	File string

	Tables     map[string]map[string]string // table → column → type
	TableOrder map[string][]string
	TableNames []string

	Functions map[string]*DBFunction
	FnNames   []string

	Enums     map[string][]string
	EnumNames []string
}

// LoadDBTypes locates the generated database-types file by structural
// signature (a Database declaration with Tables and Row sections) and
// parses it. Missing file returns nil: the domain is absent.
func LoadDBTypes(tree *FileTree) *DBTypes {
	for _, rel := range tree.WithSuffix(".ts", ".d.ts") {
		src, err := tree.ReadFile(rel)
		if err != nil {
			continue
		}
		if !strings.Contains(src, "Database") ||
			!strings.Contains(src, "Tables:") ||
			!strings.Contains(src, "Row:") {
			continue
		}
		parsed := ParseDBTypes(src)
		if parsed != nil {
			parsed.File = rel
			return parsed
		}
	}
	return nil
}

// ParseDBTypes extracts the Tables, Functions and Enums sections via the
// shared brace matcher and parses each section body.
func ParseDBTypes(src string) *DBTypes {
	src = scan.StripComments(src)

	tablesBody, ok := typeSection(src, "Tables")
	if !ok {
		return nil
	}

	db := &DBTypes{
		Tables:     make(map[string]map[string]string),
		TableOrder: make(map[string][]string),
		Functions:  make(map[string]*DBFunction),
		Enums:      make(map[string][]string),
	}

	for _, m := range typeMembers(tablesBody) {
		brace := strings.IndexByte(m.value, '{')
		if brace < 0 {
			continue
		}
		tableBody, ok := scan.Body(m.value, brace)
		if !ok {
			continue
		}
		rowBody, ok := typeSection(tableBody, "Row")
		if !ok {
			continue
		}
		columns := make(map[string]string)
		var order []string
		for _, col := range typeMembers(rowBody) {
			if _, dup := columns[col.key]; !dup {
				order = append(order, col.key)
			}
			columns[col.key] = strings.TrimSpace(col.value)
		}
		if _, dup := db.Tables[m.key]; !dup {
			db.TableNames = append(db.TableNames, m.key)
		}
		db.Tables[m.key] = columns
		db.TableOrder[m.key] = order
	}

	if fnBody, ok := typeSection(src, "Functions"); ok {
		for _, m := range typeMembers(fnBody) {
			brace := strings.IndexByte(m.value, '{')
			if brace < 0 {
				continue
			}
			body, ok := scan.Body(m.value, brace)
			if !ok {
				continue
			}
			fn := &DBFunction{Name: m.key, Args: make(map[string]string)}
			if argsBody, ok := typeSection(body, "Args"); ok {
				for _, arg := range typeMembers(argsBody) {
					if _, dup := fn.Args[arg.key]; !dup {
						fn.ArgOrder = append(fn.ArgOrder, arg.key)
					}
					fn.Args[arg.key] = strings.TrimSpace(arg.value)
				}
			}
			if ret := returnsRe.FindStringSubmatch(body); ret != nil {
				fn.Returns = strings.TrimSpace(ret[1])
			}
			if _, dup := db.Functions[m.key]; !dup {
				db.FnNames = append(db.FnNames, m.key)
			}
			db.Functions[m.key] = fn
		}
	}

	if enumBody, ok := typeSection(src, "Enums"); ok {
		for _, m := range typeMembers(enumBody) {
			values := parseEnumUnion(m.value)
			if len(values) == 0 {
				continue
			}
			if _, dup := db.Enums[m.key]; !dup {
				db.EnumNames = append(db.EnumNames, m.key)
			}
			db.Enums[m.key] = values
		}
	}

	return db
}

var returnsRe = regexp.MustCompile(`\bReturns\s*:\s*([^\n;]+)`)

// typeSection returns the brace-matched body following `name: {`.
func typeSection(src, name string) (string, bool) {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*:\s*\{`)
	loc := re.FindStringIndex(src)
	if loc == nil {
		return "", false
	}
	return scan.Body(src, loc[1]-1)
}

type typeMember struct {
	key   string
	value string
}

// typeMembers splits a type-literal body into its depth-zero members.
// Generated type bodies separate members by newlines or semicolons, not
// commas.
func typeMembers(body string) []typeMember {
	var members []typeMember
	for _, line := range scan.SplitTop(body, '\n') {
		for _, entry := range scan.SplitTop(line, ';') {
			trimmed := strings.TrimSpace(entry)
			if trimmed == "" {
				continue
			}
			colon := strings.IndexByte(trimmed, ':')
			if colon <= 0 {
				continue
			}
			key := strings.Trim(strings.TrimSpace(trimmed[:colon]), `"'`)
			key = strings.TrimSuffix(key, "?")
			if !identLike(key) {
				continue
			}
			members = append(members, typeMember{key: key, value: trimmed[colon+1:]})
		}
	}
	return members
}

// parseEnumUnion parses a string-literal union into its values.
func parseEnumUnion(value string) []string {
	var values []string
	for _, part := range strings.Split(value, "|") {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && (part[0] == '"' || part[0] == '\'') {
			values = append(values, strings.Trim(part, `"'`))
		}
	}
	return values
}

// Columns returns a table's column names in declaration order.
func (d *DBTypes) Columns(table string) []string { return d.TableOrder[table] }

// HasColumn reports whether the table declares the column.
func (d *DBTypes) HasColumn(table, column string) bool {
	cols, ok := d.Tables[table]
	if !ok {
		return false
	}
	_, ok = cols[column]
	return ok
}
