package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
)

var (
	importFromRe    = regexp.MustCompile(`\bimport\s+(?:type\s+)?([^;\n]+?)\s+from\s+['"]([^'"]+)['"]`)
	sideEffectRe    = regexp.MustCompile(`\bimport\s+['"]([^'"]+)['"]`)
	requireCallRe   = regexp.MustCompile(`\b(?:const|let|var)\s+(\{[^}]*\}|[A-Za-z_$][\w$]*)\s*=\s*require\(\s*['"]([^'"]+)['"]`)
	dynamicImportRe = regexp.MustCompile(`\bimport\(\s*['"]([^'"]+)['"]`)
)

// PackageReferences extracts bare package specifiers, their named
// imports, and member usage through default or namespace bindings.
func PackageReferences(plan string) []model.RawReference {
	var refs []model.RawReference

	// binding name -> package specifier, for member-usage scanning.
	bindings := make(map[string]string)
	var bindingOrder []string
	bind := func(name, spec string) {
		name = strings.TrimSpace(name)
		if name == "" || bindings[name] != "" {
			return
		}
		bindings[name] = spec
		bindingOrder = append(bindingOrder, name)
	}

	for _, loc := range importFromRe.FindAllStringSubmatchIndex(plan, -1) {
		clause := plan[loc[2]:loc[3]]
		spec := plan[loc[4]:loc[5]]
		if !barePackage(spec) {
			continue
		}
		refs = append(refs, ref(plan, loc[0], model.CategoryPackage,
			plan[loc[0]:loc[1]], spec, "", ""))
		for _, r := range importClauseRefs(plan, loc[0], clause, spec, bind) {
			refs = append(refs, r)
		}
	}

	for _, re := range []*regexp.Regexp{sideEffectRe, dynamicImportRe} {
		for _, loc := range re.FindAllStringSubmatchIndex(plan, -1) {
			spec := plan[loc[2]:loc[3]]
			if !barePackage(spec) {
				continue
			}
			refs = append(refs, ref(plan, loc[0], model.CategoryPackage,
				plan[loc[0]:loc[1]], spec, "", ""))
		}
	}

	for _, loc := range requireCallRe.FindAllStringSubmatchIndex(plan, -1) {
		clause := plan[loc[2]:loc[3]]
		spec := plan[loc[4]:loc[5]]
		if !barePackage(spec) {
			continue
		}
		refs = append(refs, ref(plan, loc[0], model.CategoryPackage,
			plan[loc[0]:loc[1]], spec, "", ""))
		for _, r := range importClauseRefs(plan, loc[0], clause, spec, bind) {
			refs = append(refs, r)
		}
	}

	// Member calls through a default or namespace binding: z.isEmail().
	for _, name := range bindingOrder {
		spec := bindings[name]
		memberRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\.([A-Za-z_$][\w$]*)\s*\(`)
		for _, loc := range memberRe.FindAllStringSubmatchIndex(plan, -1) {
			refs = append(refs, ref(plan, loc[0], model.CategoryPackageMember,
				plan[loc[0]:loc[1]], spec, plan[loc[2]:loc[3]], ""))
		}
	}

	return Dedupe(refs)
}

// importClauseRefs turns one import clause into member references and
// records default/namespace bindings. Named imports reference the
// package's export by its original name; aliases only affect bindings.
func importClauseRefs(plan string, offset int, clause, spec string, bind func(name, spec string)) []model.RawReference {
	var refs []model.RawReference
	clause = strings.TrimSpace(clause)

	if open := strings.IndexByte(clause, '{'); open >= 0 {
		// Default binding before the brace, if any.
		if head := strings.TrimSuffix(strings.TrimSpace(clause[:open]), ","); head != "" {
			bind(head, spec)
		}
		inner := clause[open+1:]
		if close := strings.IndexByte(inner, '}'); close >= 0 {
			inner = inner[:close]
		}
		for _, entry := range strings.Split(inner, ",") {
			entry = strings.TrimSpace(entry)
			entry = strings.TrimPrefix(entry, "type ")
			original := entry
			local := entry
			if i := strings.Index(entry, " as "); i >= 0 {
				original = strings.TrimSpace(entry[:i])
				local = strings.TrimSpace(entry[i+4:])
			}
			if original == "" {
				continue
			}
			bind(local, spec)
			refs = append(refs, ref(plan, offset, model.CategoryPackageMember,
				clause, spec, original, ""))
		}
		return refs
	}

	if strings.HasPrefix(clause, "* as ") {
		bind(strings.TrimPrefix(clause, "* as "), spec)
		return refs
	}
	bind(clause, spec)
	return refs
}

// barePackage reports whether the specifier names an installed package
// rather than a relative or absolute file.
func barePackage(spec string) bool {
	return spec != "" && !strings.HasPrefix(spec, ".") && !strings.HasPrefix(spec, "/")
}
