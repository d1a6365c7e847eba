package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
)

// dbClientMethods identifies database-client binders addressed directly,
// supabase style: client.from('t'), client.rpc('fn').
var dbClientMethods = map[string]bool{"from": true, "rpc": true}

var dbClientDefaults = []string{"supabase", "client", "db"}

// columnChainRe matches chained single-column filters and ordering.
var columnChainRe = regexp.MustCompile(`\.(eq|neq|gt|gte|lt|lte|like|ilike|is|in|contains|order)\s*\(\s*['"]([\w]+)['"]`)

var selectChainRe = regexp.MustCompile(`\.select\s*\(\s*['"]([^'"]*)['"]`)

// enumAccessRe matches generated-types enum lookups:
// Database["public"]["Enums"]["status"].
var enumAccessRe = regexp.MustCompile(`\bEnums\W{1,6}['"]([\w]+)['"]`)

// DBClientReferences extracts table, column, function, and enum
// references from database-client call chains.
func DBClientReferences(plan string) []model.RawReference {
	binders := DetectDirectBinders(plan, dbClientMethods, dbClientDefaults...)
	fromRe := regexp.MustCompile(`\b` + binderAlternation(binders) + `\.from\s*\(\s*['"]([\w]+)['"]`)
	rpcRe := regexp.MustCompile(`\b` + binderAlternation(binders) + `\.rpc\s*\(\s*['"]([\w]+)['"]`)

	var refs []model.RawReference
	for _, loc := range fromRe.FindAllStringSubmatchIndex(plan, -1) {
		refs = append(refs, ref(plan, loc[0], model.CategoryTable,
			plan[loc[0]:loc[1]], plan[loc[2]:loc[3]], "", ""))
	}
	for _, loc := range rpcRe.FindAllStringSubmatchIndex(plan, -1) {
		refs = append(refs, ref(plan, loc[0], model.CategoryDBFunction,
			plan[loc[0]:loc[1]], plan[loc[2]:loc[3]], "", ""))
	}

	// Column chains attribute to the nearest preceding .from('t').
	for _, loc := range columnChainRe.FindAllStringSubmatchIndex(plan, -1) {
		anchor := anchorSearch(plan, loc[0], fromRe)
		if anchor == nil {
			continue
		}
		refs = append(refs, ref(plan, loc[0], model.CategoryColumn,
			plan[loc[0]:loc[1]], anchor[1], plan[loc[4]:loc[5]], ""))
	}
	for _, loc := range selectChainRe.FindAllStringSubmatchIndex(plan, -1) {
		anchor := anchorSearch(plan, loc[0], fromRe)
		if anchor == nil {
			continue
		}
		for _, col := range strings.Split(plan[loc[2]:loc[3]], ",") {
			col = strings.TrimSpace(col)
			if col == "" || col == "*" || strings.ContainsAny(col, "(: ") {
				continue
			}
			refs = append(refs, ref(plan, loc[0], model.CategoryColumn,
				plan[loc[0]:loc[1]], anchor[1], col, ""))
		}
	}

	for _, loc := range enumAccessRe.FindAllStringSubmatchIndex(plan, -1) {
		refs = append(refs, ref(plan, loc[0], model.CategoryDBEnum,
			plan[loc[0]:loc[1]], plan[loc[2]:loc[3]], "", ""))
	}

	return Dedupe(refs)
}
