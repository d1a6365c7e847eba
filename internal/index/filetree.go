// Package index builds read-only snapshots of on-disk project artifacts:
// the file tree, schema DSL models, table-builder/SQL tables, generated
// database types, package exports, project type declarations, routes, and
// environment files. Indexes are rebuilt from disk on every invocation;
// only the package-export resolver memoizes, keyed by resolved path.
package index

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// skipDirs are VCS/dependency/build directories excluded from every scan.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".turbo":       true,
	"coverage":     true,
	"vendor":       true,
	"out":          true,
}

// FileTree is the set of project-relative, slash-separated file paths.
type FileTree struct {
	root  string
	paths map[string]bool
	list  []string
}

// BuildFileTree scans the project recursively. Unreadable subtrees are
// skipped rather than failing the scan.
func BuildFileTree(root string) (*FileTree, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "scan", Path: root, Err: fs.ErrInvalid}
	}

	tree := &FileTree{root: root, paths: make(map[string]bool)}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		tree.paths[rel] = true
		tree.list = append(tree.list, rel)
		return nil
	})
	return tree, nil
}

// Root returns the absolute project root.
func (t *FileTree) Root() string { return t.root }

// Contains reports whether the exact project-relative path exists.
func (t *FileTree) Contains(path string) bool {
	return t.paths[strings.TrimPrefix(filepath.ToSlash(path), "./")]
}

// MatchSuffix returns the first indexed path ending in "/"+candidate, for
// plans that reference files by a shorter trailing path.
func (t *FileTree) MatchSuffix(candidate string) string {
	candidate = strings.TrimPrefix(filepath.ToSlash(candidate), "./")
	for _, p := range t.list {
		if strings.HasSuffix(p, "/"+candidate) {
			return p
		}
	}
	return ""
}

// Paths returns all indexed paths in scan order.
func (t *FileTree) Paths() []string { return t.list }

// Len returns the number of indexed files.
func (t *FileTree) Len() int { return len(t.list) }

// WithSuffix returns indexed paths with any of the given extensions, in
// scan order.
func (t *FileTree) WithSuffix(exts ...string) []string {
	var matched []string
	for _, p := range t.list {
		for _, ext := range exts {
			if strings.HasSuffix(p, ext) {
				matched = append(matched, p)
				break
			}
		}
	}
	return matched
}

// ReadFile reads a project-relative file. Callers treat failures as
// "artifact absent" and degrade.
func (t *FileTree) ReadFile(rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(t.root, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
