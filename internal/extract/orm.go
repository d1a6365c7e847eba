package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/scan"
)

// ormMethodOrder is the client method allow-list used both for binder
// detection and method validation, in suggestion order.
var ormMethodOrder = []string{
	"findMany", "findUnique", "findFirst",
	"findUniqueOrThrow", "findFirstOrThrow",
	"create", "createMany", "createManyAndReturn",
	"update", "updateMany", "upsert",
	"delete", "deleteMany",
	"count", "aggregate", "groupBy",
}

var ormMethods = func() map[string]bool {
	m := make(map[string]bool, len(ormMethodOrder))
	for _, name := range ormMethodOrder {
		m[name] = true
	}
	return m
}()

// ormDefaultBinders are always scanned for even when no triple is
// observed in the plan.
var ormDefaultBinders = []string{"prisma", "db", "client", "tx"}

// ORMMethods exposes the allow-list to the validator.
func ORMMethods() map[string]bool { return ormMethods }

// ORMMethodNames returns the allow-list in stable order.
func ORMMethodNames() []string { return ormMethodOrder }

// optionBlocks are the query-options keys whose immediate children are
// model fields.
var optionBlockRe = regexp.MustCompile(`\b(where|data|select|include|orderBy|create|update)\s*:\s*\{`)

// logical operators valid inside a where block that are not fields.
var whereOperators = map[string]bool{"AND": true, "OR": true, "NOT": true}

// ORMReferences extracts model accessor, client method, and field
// references from ORM-style client calls.
func ORMReferences(plan string) []model.RawReference {
	binders := DetectBinders(plan, ormMethods, ormDefaultBinders...)
	callRe := regexp.MustCompile(`\b` + binderAlternation(binders) + `\.(\w+)\.(\w+)\s*\(`)

	var refs []model.RawReference
	for _, loc := range callRe.FindAllStringSubmatchIndex(plan, -1) {
		accessor := plan[loc[2]:loc[3]]
		method := plan[loc[4]:loc[5]]
		raw := plan[loc[0]:loc[5]]
		refs = append(refs,
			ref(plan, loc[0], model.CategorySchemaModel, raw, accessor, "", ""),
			ref(plan, loc[0], model.CategorySchemaMethod, raw, accessor, "", method),
		)
	}

	// Field references live inside query-options blocks. Each block is
	// attributed to the nearest preceding client call; a block with no
	// anchor inside the bound is dropped rather than guessed at.
	anchorRe := regexp.MustCompile(`\b` + binderAlternation(binders) + `\.(\w+)\.(\w+)\s*\([^)]*$`)
	for _, loc := range optionBlockRe.FindAllStringSubmatchIndex(plan, -1) {
		anchor := anchorSearch(plan, loc[0], anchorRe)
		if anchor == nil || !ormMethods[anchor[2]] {
			continue
		}
		accessor := anchor[1]

		body, ok := scan.Body(plan, loc[1]-1)
		if !ok {
			continue
		}
		blockKind := plan[loc[2]:loc[3]]
		for _, pair := range scan.Pairs(body) {
			if blockKind == "where" && whereOperators[pair.Key] {
				continue
			}
			// Method carries the enclosing block kind; include-block
			// fields must resolve to relation fields.
			refs = append(refs, ref(plan, loc[1]+pair.Offset,
				model.CategorySchemaField,
				strings.TrimSpace(pair.Key), accessor, pair.Key, blockKind))
		}
	}

	return Dedupe(refs)
}
