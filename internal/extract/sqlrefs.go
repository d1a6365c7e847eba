package extract

import (
	"regexp"

	"github.com/ppiankov/groundcheck/internal/model"
)

// builderVerbRe matches query-builder chain verbs taking a table
// variable: .from(users), .insert(users), .update(users), .delete(users).
var builderVerbRe = regexp.MustCompile(`\.(from|insert|update|delete|into)\s*\(\s*([A-Za-z_$][\w$]*)\s*[,)]`)

// comparatorRe matches builder comparator calls carrying a column
// reference: eq(users.age, ...), desc(users.createdAt).
var comparatorRe = regexp.MustCompile(`\b(?:eq|ne|gt|gte|lt|lte|like|ilike|notIlike|inArray|notInArray|isNull|isNotNull|between|asc|desc)\s*\(\s*([A-Za-z_$][\w$]*)\.([A-Za-z_$][\w$]*)`)

// rawTableRe matches table positions in raw SQL statements.
var rawTableRe = regexp.MustCompile(`(?i)\b(?:FROM|JOIN|INTO|UPDATE)\s+["']?([A-Za-z_][\w]*)["']?`)

// rawColumnRe matches column positions in WHERE and SET clauses. The
// table is attributed by nearest-anchor search against rawTableRe.
var rawColumnRe = regexp.MustCompile(`(?i)\b(?:WHERE|AND|OR|SET)\s+["']?([A-Za-z_][\w]*)["']?\s*(?:=|<|>|!=|<>|IS\b|IN\b|LIKE\b)`)

var sqlKeywords = map[string]bool{
	"select": true, "values": true, "where": true, "set": true,
	"not": true, "null": true, "exists": true,
}

// SQLReferences extracts table and column references from query-builder
// chains and raw SQL statements in the plan.
func SQLReferences(plan string) []model.RawReference {
	var refs []model.RawReference

	for _, loc := range builderVerbRe.FindAllStringSubmatchIndex(plan, -1) {
		table := plan[loc[4]:loc[5]]
		refs = append(refs, ref(plan, loc[0], model.CategoryTable,
			plan[loc[0]:loc[1]], table, "", ""))
	}

	for _, loc := range comparatorRe.FindAllStringSubmatchIndex(plan, -1) {
		table := plan[loc[2]:loc[3]]
		column := plan[loc[4]:loc[5]]
		refs = append(refs, ref(plan, loc[0], model.CategoryColumn,
			plan[loc[0]:loc[1]], table, column, ""))
	}

	for _, loc := range rawTableRe.FindAllStringSubmatchIndex(plan, -1) {
		table := plan[loc[2]:loc[3]]
		if sqlKeywords[lower(table)] {
			continue
		}
		refs = append(refs, ref(plan, loc[0], model.CategoryTable,
			plan[loc[0]:loc[1]], table, "", ""))
	}

	// Raw SQL columns only make sense relative to the statement's table.
	for _, loc := range rawColumnRe.FindAllStringSubmatchIndex(plan, -1) {
		anchor := anchorSearch(plan, loc[0], rawTableRe)
		if anchor == nil {
			continue
		}
		column := plan[loc[2]:loc[3]]
		if sqlKeywords[lower(column)] {
			continue
		}
		refs = append(refs, ref(plan, loc[0], model.CategoryColumn,
			plan[loc[0]:loc[1]], anchor[1], column, ""))
	}

	return Dedupe(refs)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
