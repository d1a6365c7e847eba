package checker

import (
	"fmt"
	"strings"

	"github.com/ppiankov/groundcheck/internal/extract"
	"github.com/ppiankov/groundcheck/internal/index"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/suggest"
)

// RoutesChecker verifies requested URL paths and methods against the
// project's route handlers, both filesystem-convention and call-based.
type RoutesChecker struct{ base }

func NewRoutesChecker() *RoutesChecker {
	return &RoutesChecker{base{id: "routes", name: "API routes"}}
}

func (c *RoutesChecker) Run(plan, projectDir string, opts model.CheckOptions) (*model.CheckerResult, error) {
	tree, err := index.BuildFileTree(projectDir)
	if err != nil {
		return nil, fmt.Errorf("building file tree: %w", err)
	}
	idx := index.BuildRouteIndex(tree)
	if idx.Empty() {
		return newResult(c, false).done(), nil
	}

	b := newResult(c, true)
	for _, raw := range extract.RouteReferences(plan) {
		route := idx.Match(raw.Name)
		switch raw.Category {
		case model.CategoryRoute:
			if route != nil {
				b.add(valid(raw))
			} else {
				b.add(invalid(raw, "unknown_route", suggest.Format(raw.Name, idx.Paths())))
			}
		case model.CategoryRouteMethod:
			if route == nil {
				// The path itself is flagged by the route reference.
				continue
			}
			if route.Allows(raw.Method) {
				b.add(valid(raw))
			} else {
				allowed := strings.Join(route.AllowedMethods(), ", ")
				b.add(invalid(raw, "method_not_allowed", "allowed methods: "+allowed))
			}
		}
	}
	res := b.done()
	res.RawAnalysis = routesContext(idx)
	return res, nil
}

func routesContext(idx *index.RouteIndex) string {
	var b strings.Builder
	b.WriteString("Registered routes:\n")
	for _, route := range idx.Routes {
		methods := "any method"
		if !route.AnyMethod {
			methods = strings.Join(route.AllowedMethods(), ", ")
		}
		fmt.Fprintf(&b, "- %s [%s] (%s)\n", route.Path, methods, route.File)
	}
	return b.String()
}
