package extract

import (
	"regexp"
	"strings"
)

// binderTripleRe matches <name>.<accessor>.<method>( chains.
var binderTripleRe = regexp.MustCompile(`\b(\w+)\.(\w+)\.(\w+)\s*\(`)

// binderCallRe matches <name>.<method>( chains for clients whose methods
// hang directly off the binder.
var binderCallRe = regexp.MustCompile(`\b(\w+)\.(\w+)\s*\(`)

// DetectBinders collects client variable names from <name>.<x>.<method>()
// triples whose trailing method is on the allow-list. The conventional
// defaults are always included, so a plan is never mis-scanned just
// because it renamed its client. Arbitrary object chains never widen
// the pattern set.
func DetectBinders(plan string, methods map[string]bool, defaults ...string) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, d := range defaults {
		add(d)
	}
	for _, m := range binderTripleRe.FindAllStringSubmatch(plan, -1) {
		if methods[m[3]] {
			add(m[1])
		}
	}
	return names
}

// DetectDirectBinders is the two-level variant for clients addressed as
// <name>.<method>() rather than through an accessor.
func DetectDirectBinders(plan string, methods map[string]bool, defaults ...string) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, d := range defaults {
		add(d)
	}
	for _, m := range binderCallRe.FindAllStringSubmatch(plan, -1) {
		if methods[m[2]] {
			add(m[1])
		}
	}
	return names
}

// binderAlternation compiles the observed binder set into a pattern
// fragment. Names are quoted; the set is never empty because defaults are
// always present.
func binderAlternation(binders []string) string {
	quoted := make([]string, 0, len(binders))
	for _, b := range binders {
		quoted = append(quoted, regexp.QuoteMeta(b))
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}
