package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/scan"
)

var (
	fetchRe = regexp.MustCompile(`\bfetch\s*\(\s*` + "[`'\"]" + `(/[^'"` + "`" + `\s?#]*)`)
	// axios.get('/x'), api.post('/x'), http.delete('/x')
	verbCallRe = regexp.MustCompile(`\b([A-Za-z_$][\w$]*)\.(get|post|put|patch|delete|head|options)\s*\(\s*` + "[`'\"]" + `(/[^'"` + "`" + `\s?#]*)`)
	methodOptRe = regexp.MustCompile(`\bmethod\s*:\s*['"](\w+)['"]`)
	// prose form: "GET /api/users"
	proseRouteRe = regexp.MustCompile(`\b(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\s+(/[\w\-/\[\].:{}]*)`)
)

// verbCallBinders that register handlers rather than issue requests.
var registrationBinders = map[string]bool{"app": true, "router": true, "server": true, "fastify": true}

// RouteReferences extracts URL paths and method+path pairs from fetch
// calls, HTTP-client verb calls, and prose mentions.
func RouteReferences(plan string) []model.RawReference {
	var refs []model.RawReference

	for _, loc := range fetchRe.FindAllStringSubmatchIndex(plan, -1) {
		path := plan[loc[2]:loc[3]]
		raw := plan[loc[0]:loc[1]]
		refs = append(refs, ref(plan, loc[0], model.CategoryRoute, raw, path, "", ""))
		if method := fetchMethod(plan, loc[0]); method != "" {
			refs = append(refs, ref(plan, loc[0], model.CategoryRouteMethod, raw, path, "", method))
		}
	}

	for _, loc := range verbCallRe.FindAllStringSubmatchIndex(plan, -1) {
		binder := plan[loc[2]:loc[3]]
		// app.get('/x', handler) is a registration, not a request.
		if registrationBinders[binder] {
			continue
		}
		method := strings.ToUpper(plan[loc[4]:loc[5]])
		path := plan[loc[6]:loc[7]]
		raw := plan[loc[0]:loc[1]]
		refs = append(refs,
			ref(plan, loc[0], model.CategoryRoute, raw, path, "", ""),
			ref(plan, loc[0], model.CategoryRouteMethod, raw, path, "", method))
	}

	for _, loc := range proseRouteRe.FindAllStringSubmatchIndex(plan, -1) {
		method := plan[loc[2]:loc[3]]
		path := plan[loc[4]:loc[5]]
		raw := plan[loc[0]:loc[1]]
		refs = append(refs,
			ref(plan, loc[0], model.CategoryRoute, raw, path, "", ""),
			ref(plan, loc[0], model.CategoryRouteMethod, raw, path, "", method))
	}

	return Dedupe(refs)
}

// fetchMethod looks inside the fetch call's options object for an
// explicit method. The call is sliced with the balanced-paren walker so
// a method key from a later call is never picked up.
func fetchMethod(plan string, callStart int) string {
	open := strings.IndexByte(plan[callStart:], '(')
	if open < 0 {
		return ""
	}
	body, ok := scan.Body(plan, callStart+open)
	if !ok {
		// Unterminated call in a truncated snippet; scan to line end.
		body = scan.LineAt(plan, callStart)
	}
	if m := methodOptRe.FindStringSubmatch(body); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}
