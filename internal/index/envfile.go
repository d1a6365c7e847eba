package index

import "strings"

// EnvIndex is the set of environment variable names declared in the
// project's env files (.env, .env.local, .env.example and friends).
type EnvIndex struct {
	Vars  map[string]bool
	Order []string
	Found bool // at least one env file existed
}

// BuildEnvIndex parses every .env* file at any depth.
func BuildEnvIndex(tree *FileTree) *EnvIndex {
	idx := &EnvIndex{Vars: make(map[string]bool)}
	for _, rel := range tree.Paths() {
		base := rel
		if i := strings.LastIndexByte(rel, '/'); i >= 0 {
			base = rel[i+1:]
		}
		if base != ".env" && !strings.HasPrefix(base, ".env.") {
			continue
		}
		src, err := tree.ReadFile(rel)
		if err != nil {
			continue
		}
		idx.Found = true
		idx.addFile(src)
	}
	return idx
}

func (idx *EnvIndex) addFile(src string) {
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		name := strings.TrimSpace(line[:eq])
		if !identLike(name) {
			continue
		}
		if !idx.Vars[name] {
			idx.Order = append(idx.Order, name)
		}
		idx.Vars[name] = true
	}
}

// Has reports whether the variable is declared in any env file.
func (idx *EnvIndex) Has(name string) bool { return idx.Vars[name] }

// Names returns declared variables in file order.
func (idx *EnvIndex) Names() []string { return idx.Order }
