package checker

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/groundcheck/internal/cache"
	"github.com/ppiankov/groundcheck/internal/extract"
	"github.com/ppiankov/groundcheck/internal/index"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/suggest"
)

// PackagesChecker verifies that imported packages are installed and
// that members used from them exist in the package's declaration file.
type PackagesChecker struct {
	base
	cache cache.Cache
}

// NewPackagesChecker builds the checker with the given cache backing
// export-resolution memoization. A nil cache disables memoization.
func NewPackagesChecker(c cache.Cache) *PackagesChecker {
	return &PackagesChecker{base: base{id: "packages", name: "Package exports"}, cache: c}
}

func (c *PackagesChecker) Run(plan, projectDir string, opts model.CheckOptions) (*model.CheckerResult, error) {
	manifest := filepath.Join(projectDir, "package.json")
	declared := declaredDependencies(manifest)
	if declared == nil {
		return newResult(c, false).done(), nil
	}

	resolver := index.NewResolver(projectDir, c.cache)

	b := newResult(c, true)
	resolved := make(map[string]*index.PackageExports)
	for _, raw := range extract.PackageReferences(plan) {
		switch raw.Category {
		case model.CategoryPackage:
			if packageInstalled(projectDir, raw.Name) || declared[packageOf(raw.Name)] {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "package_not_installed", suggest.Format(raw.Name, declaredOrder(declared))))
			}
		case model.CategoryPackageMember:
			exports, probed := resolved[raw.Name]
			if !probed {
				exports, _ = resolver.Resolve(raw.Name)
				resolved[raw.Name] = exports
			}
			if exports == nil {
				// No declarations to check against: the package is either
				// missing (flagged above) or ships untyped. Count, don't judge.
				b.add(valid(raw))
				continue
			}
			if exports.Exports[raw.Member] {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_export", suggest.Format(raw.Member, exports.Order)))
			}
		}
	}
	res := b.done()
	res.RawAnalysis = packagesContext(resolved)
	return res, nil
}

// declaredDependencies reads the dependency names out of package.json.
// Nil means no manifest: the domain is absent.
func declaredDependencies(manifest string) map[string]bool {
	data, err := os.ReadFile(manifest)
	if err != nil {
		return nil
	}
	var parsed struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil
	}
	deps := make(map[string]bool)
	for name := range parsed.Dependencies {
		deps[name] = true
	}
	for name := range parsed.DevDependencies {
		deps[name] = true
	}
	return deps
}

func declaredOrder(deps map[string]bool) []string {
	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	// Map order is random; sort for suggestion determinism.
	sort.Strings(names)
	return names
}

// packageInstalled checks for the package directory under node_modules.
func packageInstalled(projectDir, specifier string) bool {
	pkg := packageOf(specifier)
	info, err := os.Stat(filepath.Join(projectDir, "node_modules", filepath.FromSlash(pkg)))
	return err == nil && info.IsDir()
}

// packageOf strips any subpath from a specifier, keeping the scope.
func packageOf(specifier string) string {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func packagesContext(resolved map[string]*index.PackageExports) string {
	var names []string
	for name, exports := range resolved {
		if exports != nil {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("Resolved package exports:\n")
	for _, name := range names {
		b.WriteString("- " + name + ": " + strings.Join(resolved[name].Order, ", ") + "\n")
	}
	return b.String()
}
