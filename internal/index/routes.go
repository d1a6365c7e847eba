package index

import (
	"path"
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/scan"
)

// Route maps a URL path to its source file and allowed HTTP methods.
type Route struct {
	Path        string
	File        string
	Methods     map[string]bool
	MethodOrder []string

	// AnyMethod is set for handlers that dispatch internally (pages-style
	// API files, .all registrations); every method is allowed.
	AnyMethod bool
}

// RouteIndex is the merged URL-path index from both router conventions.
type RouteIndex struct {
	Routes []*Route
	byPath map[string]*Route
}

var httpMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

var (
	fsHandlerFnRe    = regexp.MustCompile(`export\s+(?:async\s+)?function\s+(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\b`)
	fsHandlerConstRe = regexp.MustCompile(`export\s+const\s+(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\s*=`)
	callRouteRe      = regexp.MustCompile(`(\w+)\.(get|post|put|patch|delete|head|options|all)\s*\(\s*['"]([^'"]+)['"]`)
	callRouteObjRe   = regexp.MustCompile(`(\w+)\.route\s*\(\s*\{`)
	mountRe          = regexp.MustCompile(`(\w+)\.use\s*\(\s*['"]([^'"]+)['"]\s*,\s*(\w+)\s*[),]`)
	importRe         = regexp.MustCompile(`import\s+(?:\{[^}]*\}|\*\s+as\s+\w+|\w+)\s+from\s+['"]([^'"]+)['"]`)
	requireRe        = regexp.MustCompile(`(?:const|let|var)\s+(?:\{[^}]*\}|\w+)\s*=\s*require\(\s*['"]([^'"]+)['"]\s*\)`)
	methodKeyRe      = regexp.MustCompile(`\bmethod\s*:\s*['"](\w+)['"]`)
	urlKeyRe         = regexp.MustCompile(`\b(?:url|path)\s*:\s*['"]([^'"]+)['"]`)
)

// BuildRouteIndex merges the filesystem-convention router and the
// call-based router into one index.
func BuildRouteIndex(tree *FileTree) *RouteIndex {
	idx := &RouteIndex{byPath: make(map[string]*Route)}
	idx.addFilesystemRoutes(tree)
	idx.addCallRoutes(tree)
	return idx
}

// addFilesystemRoutes maps route-handler files to URL paths by stripping
// the routing root, grouping segments, and the handler-file suffix.
func (idx *RouteIndex) addFilesystemRoutes(tree *FileTree) {
	for _, rel := range tree.Paths() {
		urlPath, kind := fsRoutePath(rel)
		if urlPath == "" {
			continue
		}
		route := &Route{Path: urlPath, File: rel, Methods: make(map[string]bool)}
		src, err := tree.ReadFile(rel)
		if err != nil {
			continue
		}
		switch kind {
		case "app":
			for _, m := range fsHandlerFnRe.FindAllStringSubmatch(src, -1) {
				route.addMethod(m[1])
			}
			for _, m := range fsHandlerConstRe.FindAllStringSubmatch(src, -1) {
				route.addMethod(m[1])
			}
			if len(route.MethodOrder) == 0 {
				continue // no exported handlers, not a route
			}
		case "pages":
			// A pages-style API file dispatches on req.method itself.
			route.AnyMethod = true
		}
		idx.put(route)
	}
}

// fsRoutePath derives the URL path for a handler file, or "" when the file
// is not a route handler.
func fsRoutePath(rel string) (urlPath, kind string) {
	p := strings.TrimPrefix(rel, "src/")

	if strings.HasPrefix(p, "app/") {
		base := path.Base(p)
		if base != "route.ts" && base != "route.js" && base != "route.tsx" && base != "route.jsx" {
			return "", ""
		}
		segments := strings.Split(path.Dir(strings.TrimPrefix(p, "app/")), "/")
		var kept []string
		for _, seg := range segments {
			if seg == "." || seg == "" {
				continue
			}
			// Grouping segments do not contribute to the URL.
			if strings.HasPrefix(seg, "(") && strings.HasSuffix(seg, ")") {
				continue
			}
			kept = append(kept, seg)
		}
		return "/" + strings.Join(kept, "/"), "app"
	}

	if strings.HasPrefix(p, "pages/api/") {
		ext := path.Ext(p)
		if ext != ".ts" && ext != ".js" && ext != ".tsx" && ext != ".jsx" {
			return "", ""
		}
		trimmed := strings.TrimSuffix(strings.TrimPrefix(p, "pages/"), ext)
		trimmed = strings.TrimSuffix(trimmed, "/index")
		return "/" + trimmed, "pages"
	}

	return "", ""
}

// addCallRoutes detects router registrations and mount calls, composing
// mount prefixes onto the mounted file's routes.
func (idx *RouteIndex) addCallRoutes(tree *FileTree) {
	type mount struct {
		file    string
		prefix  string
		varName string
	}
	perFile := make(map[string][]*Route)
	var mounts []mount
	sources := make(map[string]string)

	for _, rel := range tree.WithSuffix(".ts", ".js", ".mts", ".mjs") {
		src, err := tree.ReadFile(rel)
		if err != nil {
			continue
		}
		src = scan.StripComments(src)
		sources[rel] = src

		for _, m := range callRouteRe.FindAllStringSubmatch(src, -1) {
			route := &Route{Path: m[3], File: rel, Methods: make(map[string]bool)}
			if m[2] == "all" {
				route.AnyMethod = true
			} else {
				route.addMethod(strings.ToUpper(m[2]))
			}
			perFile[rel] = append(perFile[rel], route)
		}
		for _, loc := range callRouteObjRe.FindAllStringSubmatchIndex(src, -1) {
			body, ok := scan.Body(src, loc[1]-1)
			if !ok {
				continue
			}
			urlMatch := urlKeyRe.FindStringSubmatch(body)
			if urlMatch == nil {
				continue
			}
			route := &Route{Path: urlMatch[1], File: rel, Methods: make(map[string]bool)}
			if methodMatch := methodKeyRe.FindStringSubmatch(body); methodMatch != nil {
				route.addMethod(strings.ToUpper(methodMatch[1]))
			} else {
				route.AnyMethod = true
			}
			perFile[rel] = append(perFile[rel], route)
		}
		for _, m := range mountRe.FindAllStringSubmatch(src, -1) {
			mounts = append(mounts, mount{file: rel, prefix: m[2], varName: m[3]})
		}
	}

	mounted := make(map[string]bool)
	for _, mt := range mounts {
		target := resolveRouterVar(tree, sources[mt.file], mt.file, mt.varName)
		if target == "" {
			continue
		}
		for _, r := range perFile[target] {
			composed := &Route{
				Path:        path.Join(mt.prefix, r.Path),
				File:        r.File,
				Methods:     r.Methods,
				MethodOrder: r.MethodOrder,
				AnyMethod:   r.AnyMethod,
			}
			idx.put(composed)
			mounted[target+"\x00"+r.Path] = true
		}
	}

	for rel, routes := range perFile {
		for _, r := range routes {
			if mounted[rel+"\x00"+r.Path] {
				continue
			}
			idx.put(r)
		}
	}
}

// resolveRouterVar finds the file defining a mounted sub-router variable
// by matching import/require specifiers and probing relative paths.
func resolveRouterVar(tree *FileTree, src, fromFile, varName string) string {
	var specs []string
	for _, m := range importRe.FindAllStringSubmatch(src, -1) {
		full := m[0]
		if strings.Contains(full, varName) {
			specs = append(specs, m[1])
		}
	}
	for _, m := range requireRe.FindAllStringSubmatch(src, -1) {
		if strings.Contains(m[0], varName) {
			specs = append(specs, m[1])
		}
	}
	for _, spec := range specs {
		if !strings.HasPrefix(spec, ".") {
			continue
		}
		base := path.Join(path.Dir(fromFile), spec)
		for _, candidate := range []string{base, base + ".ts", base + ".js", base + ".mts", base + "/index.ts", base + "/index.js"} {
			if tree.Contains(candidate) {
				return strings.TrimPrefix(candidate, "./")
			}
		}
	}
	return ""
}

func (r *Route) addMethod(method string) {
	if !r.Methods[method] {
		r.MethodOrder = append(r.MethodOrder, method)
	}
	r.Methods[method] = true
}

// Allows reports whether the route accepts the HTTP method.
func (r *Route) Allows(method string) bool {
	return r.AnyMethod || r.Methods[strings.ToUpper(method)]
}

// AllowedMethods lists the route's methods for suggestions.
func (r *Route) AllowedMethods() []string {
	if r.AnyMethod {
		return httpMethods
	}
	return r.MethodOrder
}

func (idx *RouteIndex) put(route *Route) {
	if existing, ok := idx.byPath[route.Path]; ok {
		for _, m := range route.MethodOrder {
			existing.addMethod(m)
		}
		existing.AnyMethod = existing.AnyMethod || route.AnyMethod
		return
	}
	idx.byPath[route.Path] = route
	idx.Routes = append(idx.Routes, route)
}

// Match resolves a concrete URL path against the index, including
// dynamic-segment and catch-all matching.
func (idx *RouteIndex) Match(urlPath string) *Route {
	if r, ok := idx.byPath[urlPath]; ok {
		return r
	}
	for _, r := range idx.Routes {
		if pathMatches(r.Path, urlPath) {
			return r
		}
	}
	return nil
}

// pathMatches compares a route pattern with a concrete path. "[param]" and
// ":param" match one segment; "[...rest]" and "*" match the remainder.
func pathMatches(pattern, concrete string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	cs := strings.Split(strings.Trim(concrete, "/"), "/")

	for i, seg := range ps {
		isCatchAll := strings.HasPrefix(seg, "[...") || seg == "*"
		if isCatchAll {
			return len(cs) >= i+1
		}
		if i >= len(cs) {
			return false
		}
		isParam := (strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]")) || strings.HasPrefix(seg, ":")
		if isParam {
			continue
		}
		if seg != cs[i] {
			return false
		}
	}
	return len(ps) == len(cs)
}

// Paths returns route paths in index order.
func (idx *RouteIndex) Paths() []string {
	out := make([]string, 0, len(idx.Routes))
	for _, r := range idx.Routes {
		out = append(out, r.Path)
	}
	return out
}

// Empty reports whether no routes were found.
func (idx *RouteIndex) Empty() bool { return len(idx.Routes) == 0 }
