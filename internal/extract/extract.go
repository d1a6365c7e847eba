// Package extract recovers candidate references from plan text: prose
// plus fenced and inline code. Extraction is pattern-based and never
// consults a source index; validity is decided later against the indices
// built by the index package.
package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/scan"
)

// Dedupe removes duplicate raw references, keeping first occurrences.
func Dedupe(refs []model.RawReference) []model.RawReference {
	seen := make(map[string]bool)
	var unique []model.RawReference
	for _, r := range refs {
		key := strings.Join([]string{string(r.Category), r.Name, r.Member, r.Method}, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}
	return unique
}

// anchorSearch finds the last match of re strictly before offset, bounded
// below by the nearest blank line. This is the nearest-anchor rule: an
// anchor from an earlier, unrelated block is never attributed, and a
// reference with no anchor inside the bound is dropped by the caller.
func anchorSearch(plan string, offset int, re *regexp.Regexp) []string {
	bound := scan.BlankBoundBefore(plan, offset)
	region := plan[bound:offset]
	matches := re.FindAllStringSubmatch(region, -1)
	if len(matches) == 0 {
		return nil
	}
	return matches[len(matches)-1]
}

// ref builds a RawReference with position fields filled in.
func ref(plan string, offset int, category model.Category, raw, name, member, method string) model.RawReference {
	return model.RawReference{
		Raw:      raw,
		Category: category,
		Name:     name,
		Member:   member,
		Method:   method,
		Offset:   offset,
		Line:     scan.LineOf(plan, offset),
	}
}
