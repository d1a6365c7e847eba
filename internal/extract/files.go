package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/scan"
)

// filePathRe matches path-like tokens: at least one slash and a file
// extension. Segments may carry Next.js routing syntax.
var filePathRe = regexp.MustCompile(`(?:\./)?[A-Za-z0-9_@.-]+(?:/[A-Za-z0-9_\[\]()@.-]+)+\.[A-Za-z][A-Za-z0-9]*`)

// imperativeLineRe flags a line that instructs creating something,
// allowing list markers and step numbers before the verb.
var imperativeLineRe = regexp.MustCompile(`(?i)^\s*(?:[-*+]\s+|\d+[.)]\s+)?(?:create|add|generate|scaffold|write|introduce)\b`)

// newAnnotationRe flags an explicit new/create marker on the line.
var newAnnotationRe = regexp.MustCompile(`(?i)\(\s*(?:new|create[d]?|to\s+create)\s*\)|\bNEW\b\s*:`)

// newFilesHeadingRe matches markdown headings that open a
// files-to-create section.
var newFilesHeadingRe = regexp.MustCompile(`(?i)^#{1,6}\s+.*\b(?:new\s+files?|files?\s+to\s+(?:create|add)|created?\s+files?)\b`)

var headingRe = regexp.MustCompile(`(?m)^#{1,6}\s`)

// FileReferences extracts project file paths mentioned anywhere in the
// plan, recording a creation hint when the surrounding text signals the
// path is meant to be created rather than already exist.
func FileReferences(plan string) []model.RawReference {
	scopes := newFileScopes(plan)

	var refs []model.RawReference
	for _, loc := range filePathRe.FindAllStringIndex(plan, -1) {
		raw := plan[loc[0]:loc[1]]
		if isURLPath(plan, loc[0]) {
			continue
		}
		path := strings.TrimPrefix(raw, "./")
		r := ref(plan, loc[0], model.CategoryFile, raw, path, "", "")
		r.CreationHint = creationSignal(plan, loc[0]) || inSpan(scopes, loc[0])
		refs = append(refs, r)
	}
	return Dedupe(refs)
}

// creationSignal reports whether the line holding offset carries an
// imperative creation verb or an explicit new/create annotation.
func creationSignal(plan string, offset int) bool {
	line := scan.LineAt(plan, offset)
	return imperativeLineRe.MatchString(line) || newAnnotationRe.MatchString(line)
}

// newFileScopes returns the byte spans of sections opened by a
// "new files" style heading, each running to the next heading.
func newFileScopes(plan string) [][2]int {
	var spans [][2]int
	headings := headingRe.FindAllStringIndex(plan, -1)
	for i, h := range headings {
		lineEnd := strings.IndexByte(plan[h[0]:], '\n')
		if lineEnd < 0 {
			lineEnd = len(plan) - h[0]
		}
		if !newFilesHeadingRe.MatchString(plan[h[0] : h[0]+lineEnd]) {
			continue
		}
		end := len(plan)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		spans = append(spans, [2]int{h[0], end})
	}
	return spans
}

func inSpan(spans [][2]int, offset int) bool {
	for _, s := range spans {
		if offset >= s[0] && offset < s[1] {
			return true
		}
	}
	return false
}

// isURLPath filters out the path tail of an absolute URL.
func isURLPath(plan string, offset int) bool {
	return offset >= 3 && plan[offset-3:offset] == "://"
}
