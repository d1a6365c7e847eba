package extract

import (
	"regexp"

	"github.com/ppiankov/groundcheck/internal/model"
)

var envAccessRes = []*regexp.Regexp{
	regexp.MustCompile(`\bprocess\.env\.([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`\bprocess\.env\[['"]([A-Za-z_][A-Za-z0-9_]*)['"]\]`),
	regexp.MustCompile(`\bimport\.meta\.env\.([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`\bDeno\.env\.get\(\s*['"]([A-Za-z_][A-Za-z0-9_]*)['"]`),
}

// EnvReferences extracts environment variable accesses.
func EnvReferences(plan string) []model.RawReference {
	var refs []model.RawReference
	for _, re := range envAccessRes {
		for _, loc := range re.FindAllStringSubmatchIndex(plan, -1) {
			refs = append(refs, ref(plan, loc[0], model.CategoryEnvVar,
				plan[loc[0]:loc[1]], plan[loc[2]:loc[3]], "", ""))
		}
	}
	return Dedupe(refs)
}
