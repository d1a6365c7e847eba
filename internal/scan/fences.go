package scan

import "strings"

// Fence is one fenced code block inside markdown text.
type Fence struct {
	Info    string // language tag after the opening fence
	Content string
	Offset  int // byte offset of Content within the original text
}

// Fences extracts fenced code blocks (``` or ~~~) from markdown. An
// unterminated fence runs to the end of the text.
func Fences(md string) []Fence {
	var fences []Fence
	pos := 0
	for {
		idx, marker := nextFence(md, pos)
		if idx < 0 {
			return fences
		}
		lineEnd := strings.IndexByte(md[idx:], '\n')
		if lineEnd < 0 {
			return fences
		}
		info := strings.TrimSpace(strings.TrimLeft(md[idx:idx+lineEnd], marker[:1]))
		contentStart := idx + lineEnd + 1

		closeIdx := strings.Index(md[contentStart:], "\n"+marker)
		var content string
		if closeIdx < 0 {
			content = md[contentStart:]
			pos = len(md)
		} else {
			content = md[contentStart : contentStart+closeIdx+1]
			pos = contentStart + closeIdx + 1 + len(marker)
		}
		fences = append(fences, Fence{Info: info, Content: content, Offset: contentStart})
		if closeIdx < 0 {
			return fences
		}
	}
}

// nextFence finds the earliest fence opener at a line start.
func nextFence(md string, from int) (int, string) {
	best := -1
	bestMarker := ""
	for _, marker := range []string{"```", "~~~"} {
		idx := from
		for {
			i := strings.Index(md[idx:], marker)
			if i < 0 {
				break
			}
			abs := idx + i
			if abs == 0 || md[abs-1] == '\n' {
				if best < 0 || abs < best {
					best, bestMarker = abs, marker
				}
				break
			}
			idx = abs + len(marker)
		}
	}
	return best, bestMarker
}

// InFence reports whether offset falls inside any fenced block.
func InFence(fences []Fence, offset int) bool {
	for _, f := range fences {
		if offset >= f.Offset && offset < f.Offset+len(f.Content) {
			return true
		}
	}
	return false
}
