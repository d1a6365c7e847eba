package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/cache"
	"github.com/ppiankov/groundcheck/internal/scan"
)

// MemberKind distinguishes methods from properties on an exported type.
type MemberKind string

const (
	MemberMethod   MemberKind = "method"
	MemberProperty MemberKind = "property"
)

// PackageExports is the export surface of one resolved declaration file.
type PackageExports struct {
	Package   string                           `json:"package"`
	EntryPath string                           `json:"entryPath"`
	Exports   map[string]bool                  `json:"exports"`
	Order     []string                         `json:"order"`
	Members   map[string]map[string]MemberKind `json:"members"` // exported type → member → kind
}

// maxReexportDepth bounds recursive wildcard re-export resolution.
const maxReexportDepth = 5

// Resolver resolves module specifiers to their type-declaration
// entrypoints and parses exported names. Parsed results are memoized in
// the injectable cache, keyed by resolved absolute path; declaration files
// are treated as immutable for the lifetime of a run.
type Resolver struct {
	projectDir string
	cache      cache.Cache
}

// NewResolver creates a resolver rooted at projectDir. cache may be nil to
// disable memoization (tests).
func NewResolver(projectDir string, c cache.Cache) *Resolver {
	return &Resolver{projectDir: projectDir, cache: c}
}

// Resolve resolves a bare module specifier ("zod", "@scope/pkg",
// "pkg/subpath") to its declaration entrypoint and parses its exports.
// An unresolvable package returns (nil, nil): the checker treats it as
// out of coverage rather than an error.
func (r *Resolver) Resolve(specifier string) (*PackageExports, error) {
	pkgName, subpath := splitSpecifier(specifier)
	if pkgName == "" {
		return nil, nil
	}

	entry := r.resolveEntrypoint(pkgName, subpath)
	if entry == "" {
		return nil, nil
	}
	exports := r.parseDeclarationFile(entry, 0)
	if exports == nil {
		return nil, nil
	}
	exports.Package = specifier
	return exports, nil
}

// resolveEntrypoint replicates the resolution precedence: conditional
// exports map → types/typings → main with a declaration extension →
// sibling index declaration → @types fallback package.
func (r *Resolver) resolveEntrypoint(pkgName, subpath string) string {
	pkgDir := filepath.Join(r.projectDir, "node_modules", filepath.FromSlash(pkgName))
	if entry := r.entryFromManifest(pkgDir, subpath); entry != "" {
		return entry
	}

	// Scoped fallback-declarations package: @types/pkg, with scoped
	// packages mangled as @types/scope__name.
	typesName := strings.TrimPrefix(pkgName, "@")
	typesName = strings.ReplaceAll(typesName, "/", "__")
	typesDir := filepath.Join(r.projectDir, "node_modules", "@types", typesName)
	return r.entryFromManifest(typesDir, subpath)
}

func (r *Resolver) entryFromManifest(pkgDir, subpath string) string {
	data, err := os.ReadFile(filepath.Join(pkgDir, "package.json"))
	if err != nil {
		return ""
	}
	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		// Manifest parse failures are treated as unresolvable.
		return ""
	}

	// 1. Conditional exports map.
	if exportsField, ok := manifest["exports"]; ok {
		key := "."
		if subpath != "" {
			key = "./" + subpath
		}
		if target := exportTarget(exportsField, key); target != "" {
			if p := r.declarationPath(pkgDir, target); p != "" {
				return p
			}
		}
	}

	if subpath != "" {
		// Subpath without an exports entry: probe conventional layouts.
		for _, candidate := range []string{subpath + ".d.ts", subpath + "/index.d.ts", subpath + ".ts"} {
			p := filepath.Join(pkgDir, filepath.FromSlash(candidate))
			if fileExists(p) {
				return p
			}
		}
		return ""
	}

	// 2. types / typings fields.
	for _, field := range []string{"types", "typings"} {
		if v, ok := manifest[field].(string); ok && v != "" {
			if p := r.declarationPath(pkgDir, v); p != "" {
				return p
			}
		}
	}

	// 3. main with the extension substituted for a declaration extension.
	if mainField, ok := manifest["main"].(string); ok && mainField != "" {
		base := strings.TrimSuffix(mainField, filepath.Ext(mainField))
		for _, ext := range []string{".d.ts", ".d.mts", ".d.cts"} {
			p := filepath.Join(pkgDir, filepath.FromSlash(base+ext))
			if fileExists(p) {
				return p
			}
		}
	}

	// 4. Sibling index declaration file.
	p := filepath.Join(pkgDir, "index.d.ts")
	if fileExists(p) {
		return p
	}
	return ""
}

// exportTarget descends the conditional exports map for the given subpath
// key, preferring an explicit types condition. Both string and object
// forms are supported at every level.
func exportTarget(exportsField any, key string) string {
	switch v := exportsField.(type) {
	case string:
		if key == "." {
			return v
		}
		return ""
	case map[string]any:
		// Subpath map: { ".": {...}, "./sub": {...} }
		if sub, ok := v[key]; ok {
			return conditionTarget(sub)
		}
		// Condition map at the top level applies to "." only.
		if key == "." && looksLikeConditionMap(v) {
			return conditionTarget(v)
		}
	}
	return ""
}

// conditionTarget resolves a conditional value: a string is terminal; an
// object is descended through its condition keys with "types" preferred.
func conditionTarget(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		for _, condition := range []string{"types", "import", "require", "default", "node"} {
			if sub, ok := v[condition]; ok {
				if target := conditionTarget(sub); target != "" {
					return target
				}
			}
		}
		// Fall back to any nested condition.
		for _, sub := range v {
			if target := conditionTarget(sub); target != "" {
				return target
			}
		}
	}
	return ""
}

func looksLikeConditionMap(m map[string]any) bool {
	for k := range m {
		if !strings.HasPrefix(k, ".") {
			return true
		}
	}
	return false
}

// declarationPath maps a manifest target to an existing declaration file,
// substituting a declaration extension for runtime extensions.
func (r *Resolver) declarationPath(pkgDir, target string) string {
	target = strings.TrimPrefix(target, "./")
	p := filepath.Join(pkgDir, filepath.FromSlash(target))
	if strings.HasSuffix(target, ".d.ts") || strings.HasSuffix(target, ".d.mts") || strings.HasSuffix(target, ".d.cts") {
		if fileExists(p) {
			return p
		}
		return ""
	}
	if strings.HasSuffix(target, ".ts") {
		if fileExists(p) {
			return p
		}
		return ""
	}
	base := strings.TrimSuffix(target, filepath.Ext(target))
	for _, ext := range []string{".d.ts", ".d.mts", ".d.cts"} {
		candidate := filepath.Join(pkgDir, filepath.FromSlash(base+ext))
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

var (
	exportDeclRe = regexp.MustCompile(`(?m)^\s*export\s+(?:declare\s+)?(?:async\s+)?(function|const|let|var|class|abstract class|interface|type|enum|const enum|namespace)\s+([A-Za-z_$][\w$]*)`)
	ambientDeclRe = regexp.MustCompile(`(?m)^\s*declare\s+(?:async\s+)?(function|const|let|var|class|abstract class|interface|type|enum|const enum|namespace)\s+([A-Za-z_$][\w$]*)`)
	namedReexportRe = regexp.MustCompile(`(?m)^\s*export\s*\{([^}]*)\}(?:\s*from\s*['"]([^'"]+)['"])?`)
	wildcardReexportRe = regexp.MustCompile(`(?m)^\s*export\s*\*\s*(?:as\s+([A-Za-z_$][\w$]*)\s*)?from\s*['"]([^'"]+)['"]`)
	exportDefaultRe = regexp.MustCompile(`(?m)^\s*export\s+default\b`)
	typeBodyRe      = regexp.MustCompile(`(?:interface|class)\s+([A-Za-z_$][\w$]*)[^{;]*\{`)
)

// parseDeclarationFile parses exported names and member maps from a
// declaration file, following wildcard re-exports recursively up to the
// depth bound. Results are cached by absolute path.
func (r *Resolver) parseDeclarationFile(path string, depth int) *PackageExports {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	cacheKey := cache.Key("decl", abs)
	if r.cache != nil {
		if data, ok := r.cache.Get(cacheKey); ok {
			var cached PackageExports
			if json.Unmarshal(data, &cached) == nil {
				return &cached
			}
		}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil
	}
	src := scan.StripComments(string(data))

	exports := &PackageExports{
		EntryPath: abs,
		Exports:   make(map[string]bool),
		Members:   make(map[string]map[string]MemberKind),
	}

	add := func(name string) {
		if name == "" {
			return
		}
		if !exports.Exports[name] {
			exports.Order = append(exports.Order, name)
		}
		exports.Exports[name] = true
	}

	for _, m := range exportDeclRe.FindAllStringSubmatch(src, -1) {
		add(m[2])
	}
	for _, m := range ambientDeclRe.FindAllStringSubmatch(src, -1) {
		add(m[2])
	}
	if exportDefaultRe.MatchString(src) {
		add("default")
	}

	// Named re-export lists; type-only entries are skipped.
	for _, m := range namedReexportRe.FindAllStringSubmatch(src, -1) {
		for _, entry := range strings.Split(m[1], ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" || strings.HasPrefix(entry, "type ") {
				continue
			}
			if as := strings.Split(entry, " as "); len(as) == 2 {
				entry = strings.TrimSpace(as[1])
			}
			if identLike(entry) {
				add(entry)
			}
		}
	}

	// Wildcard re-exports, followed recursively with a depth bound to
	// prevent cycles. A bare specifier costs one cross-package hop.
	if depth < maxReexportDepth {
		for _, m := range wildcardReexportRe.FindAllStringSubmatch(src, -1) {
			alias, spec := m[1], m[2]
			if alias != "" {
				add(alias)
				continue
			}
			var nested *PackageExports
			if strings.HasPrefix(spec, ".") {
				if target := probeRelativeDeclaration(filepath.Dir(abs), spec); target != "" {
					nested = r.parseDeclarationFile(target, depth+1)
				}
			} else if depth == 0 {
				nested, _ = r.Resolve(spec)
			}
			if nested != nil {
				for _, name := range nested.Order {
					add(name)
				}
				for typeName, members := range nested.Members {
					if _, ok := exports.Members[typeName]; !ok {
						exports.Members[typeName] = members
					}
				}
			}
		}
	}

	// Member maps for exported interface/class bodies.
	for _, loc := range typeBodyRe.FindAllStringSubmatchIndex(src, -1) {
		typeName := src[loc[2]:loc[3]]
		if !exports.Exports[typeName] {
			continue
		}
		body, ok := scan.Body(src, loc[1]-1)
		if !ok {
			continue
		}
		members := parseMemberMap(body)
		if len(members) > 0 {
			exports.Members[typeName] = members
		}
	}

	if r.cache != nil {
		if data, err := json.Marshal(exports); err == nil {
			_ = r.cache.Set(cacheKey, data, 0)
		}
	}
	return exports
}

// memberModifiers are skipped before the member name.
var memberModifiers = map[string]bool{
	"readonly": true, "static": true, "public": true, "private": true,
	"protected": true, "abstract": true, "async": true, "declare": true,
}

// parseMemberMap parses an interface/class body into member→kind. A member
// followed by an opening parenthesis is a method; one followed by a colon
// is a property.
func parseMemberMap(body string) map[string]MemberKind {
	members := make(map[string]MemberKind)
	for _, m := range typeMembersAndMethods(body) {
		members[m.name] = m.kind
	}
	return members
}

type parsedMember struct {
	name string
	kind MemberKind
}

func typeMembersAndMethods(body string) []parsedMember {
	var out []parsedMember
	for _, line := range scan.SplitTop(body, '\n') {
		for _, entry := range scan.SplitTop(line, ';') {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			tokens := strings.Fields(entry)
			idx := 0
			for idx < len(tokens) && memberModifiers[tokens[idx]] {
				idx++
			}
			if idx >= len(tokens) {
				continue
			}
			head := tokens[idx]

			// Trailing parenthesis marks a method; a colon marks a
			// property.
			if paren := strings.IndexAny(head, "(<"); paren > 0 {
				name := strings.TrimSuffix(head[:paren], "?")
				if identLike(name) {
					out = append(out, parsedMember{name: name, kind: MemberMethod})
				}
				continue
			}
			if colon := strings.IndexByte(head, ':'); colon > 0 {
				name := strings.TrimSuffix(head[:colon], "?")
				if identLike(name) {
					out = append(out, parsedMember{name: name, kind: MemberProperty})
				}
				continue
			}
			if idx+1 < len(tokens) {
				next := tokens[idx+1]
				name := strings.TrimSuffix(head, "?")
				if !identLike(name) {
					continue
				}
				if strings.HasPrefix(next, "(") || strings.HasPrefix(next, "<") {
					out = append(out, parsedMember{name: name, kind: MemberMethod})
				} else if strings.HasPrefix(next, ":") {
					out = append(out, parsedMember{name: name, kind: MemberProperty})
				}
			}
		}
	}
	return out
}

// probeRelativeDeclaration resolves a relative re-export specifier to an
// on-disk declaration file.
func probeRelativeDeclaration(dir, spec string) string {
	base := filepath.Join(dir, filepath.FromSlash(spec))
	candidates := []string{
		base + ".d.ts",
		base + ".d.mts",
		filepath.Join(base, "index.d.ts"),
		base + ".ts",
		base, // already carries an extension
	}
	for _, c := range candidates {
		if fileExists(c) && (strings.HasSuffix(c, ".ts") || strings.HasSuffix(c, ".mts") || strings.HasSuffix(c, ".cts")) {
			return c
		}
	}
	return ""
}

// splitSpecifier splits "pkg/sub/path" into package name and subpath,
// honoring scoped packages.
func splitSpecifier(specifier string) (pkg, subpath string) {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" || strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return "", ""
	}
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") {
		if len(parts) < 2 {
			return "", ""
		}
		return parts[0] + "/" + parts[1], strings.Join(parts[2:], "/")
	}
	return parts[0], strings.Join(parts[1:], "/")
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
