package index

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/scan"
)

// TypeDecl is one project-declared type with its member set.
type TypeDecl struct {
	Name        string
	Kind        string // interface, type, enum, class
	File        string
	Members     map[string]MemberKind
	MemberOrder []string
}

// TypeIndex is the flat name→declaration map over project-owned
// declaration-bearing files. Last-scanned wins on collision.
type TypeIndex struct {
	Types map[string]*TypeDecl
	Order []string
}

var projectTypeRe = regexp.MustCompile(`(?m)^\s*(?:export\s+)?(interface|enum|class)\s+([A-Za-z_$][\w$]*)[^{;\n]*\{`)
var projectTypeObjRe = regexp.MustCompile(`(?m)^\s*(?:export\s+)?type\s+([A-Za-z_$][\w$]*)\s*=\s*\{`)

// BuildTypeIndex scans project .ts/.tsx files (ambient declaration files
// excluded) for interface, type-object, enum and class declarations.
func BuildTypeIndex(tree *FileTree) *TypeIndex {
	idx := &TypeIndex{Types: make(map[string]*TypeDecl)}
	for _, rel := range tree.WithSuffix(".ts", ".tsx") {
		if strings.HasSuffix(rel, ".d.ts") {
			continue
		}
		src, err := tree.ReadFile(rel)
		if err != nil {
			continue
		}
		idx.addFile(rel, scan.StripComments(src))
	}
	return idx
}

func (idx *TypeIndex) addFile(rel, src string) {
	for _, loc := range projectTypeRe.FindAllStringSubmatchIndex(src, -1) {
		kind := src[loc[2]:loc[3]]
		name := src[loc[4]:loc[5]]
		body, ok := scan.Body(src, loc[1]-1)
		if !ok {
			continue
		}
		idx.put(rel, kind, name, body)
	}
	for _, loc := range projectTypeObjRe.FindAllStringSubmatchIndex(src, -1) {
		name := src[loc[2]:loc[3]]
		body, ok := scan.Body(src, loc[1]-1)
		if !ok {
			continue
		}
		idx.put(rel, "type", name, body)
	}
}

func (idx *TypeIndex) put(rel, kind, name, body string) {
	decl := &TypeDecl{
		Name:    name,
		Kind:    kind,
		File:    rel,
		Members: make(map[string]MemberKind),
	}
	switch kind {
	case "enum":
		for _, entry := range scan.SplitTop(body, ',') {
			entry = strings.TrimSpace(entry)
			if eq := strings.IndexByte(entry, '='); eq > 0 {
				entry = strings.TrimSpace(entry[:eq])
			}
			if identLike(entry) {
				decl.addMember(entry, MemberProperty)
			}
		}
	default:
		for _, m := range typeMembersAndMethods(body) {
			decl.addMember(m.name, m.kind)
		}
	}

	if _, dup := idx.Types[name]; !dup {
		idx.Order = append(idx.Order, name)
	}
	idx.Types[name] = decl // last-scanned wins
}

func (d *TypeDecl) addMember(name string, kind MemberKind) {
	if _, dup := d.Members[name]; !dup {
		d.MemberOrder = append(d.MemberOrder, name)
	}
	d.Members[name] = kind
}

// Lookup returns a declared type by name.
func (idx *TypeIndex) Lookup(name string) (*TypeDecl, bool) {
	d, ok := idx.Types[name]
	return d, ok
}

// Names returns declared type names in index order.
func (idx *TypeIndex) Names() []string { return idx.Order }

// Empty reports whether the project declares no types.
func (idx *TypeIndex) Empty() bool { return len(idx.Types) == 0 }
