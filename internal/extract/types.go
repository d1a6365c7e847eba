package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/scan"
)

// builtinTypes are TypeScript and runtime names that never refer to a
// project declaration.
var builtinTypes = map[string]bool{
	"string": true, "number": true, "boolean": true, "any": true,
	"unknown": true, "never": true, "void": true, "object": true,
	"symbol": true, "bigint": true, "null": true, "undefined": true,
	"Array": true, "Record": true, "Promise": true, "Partial": true,
	"Pick": true, "Omit": true, "Readonly": true, "Required": true,
	"Exclude": true, "Extract": true, "NonNullable": true,
	"ReturnType": true, "Awaited": true, "Map": true, "Set": true,
	"Date": true, "Error": true, "RegExp": true, "Function": true,
	"String": true, "Number": true, "Boolean": true, "Object": true,
	"JSON": true, "Request": true, "Response": true, "Headers": true,
	"FormData": true, "URL": true, "Buffer": true, "Uint8Array": true,
}

var (
	// const user: UserProfile = { ... }
	annotatedLiteralRe = regexp.MustCompile(`:\s*([A-Z][\w$]*)(?:<[^>\n]*>)?(?:\[\])?\s*=\s*\{`)
	// plain annotations, satisfies/extends/implements/as clauses
	typeUseRe = regexp.MustCompile(`(?::\s*|\bsatisfies\s+|\bextends\s+|\bimplements\s+|\bas\s+)([A-Z][\w$]*)\b`)
)

// TypeReferences extracts project type names used in annotations and
// the member keys of object literals annotated with a type.
func TypeReferences(plan string) []model.RawReference {
	var refs []model.RawReference

	for _, loc := range typeUseRe.FindAllStringSubmatchIndex(plan, -1) {
		name := plan[loc[2]:loc[3]]
		if builtinTypes[name] {
			continue
		}
		refs = append(refs, ref(plan, loc[0], model.CategoryType,
			strings.TrimSpace(plan[loc[0]:loc[1]]), name, "", ""))
	}

	// Keys of a type-annotated object literal are member references.
	for _, loc := range annotatedLiteralRe.FindAllStringSubmatchIndex(plan, -1) {
		name := plan[loc[2]:loc[3]]
		if builtinTypes[name] {
			continue
		}
		body, ok := scan.Body(plan, loc[1]-1)
		if !ok {
			continue
		}
		for _, pair := range scan.Pairs(body) {
			refs = append(refs, ref(plan, loc[1]+pair.Offset,
				model.CategoryTypeMember, pair.Key, name, pair.Key, ""))
		}
	}

	return Dedupe(refs)
}
