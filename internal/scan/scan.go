// Package scan provides the shared text-walking primitives used by every
// parser in the engine: balanced-delimiter slicing, top-level splitting,
// and a shallow object-literal tokenizer. Parsers here are heuristic by
// contract; none of them builds an AST.
package scan

import "strings"

var closers = map[byte]byte{'(': ')', '{': '}', '[': ']'}

// Balanced returns the index of the delimiter matching s[open]. It skips
// string literals (single, double, backtick) and // and /* */ comments.
// ok is false when s[open] is not an opener or the match is missing.
func Balanced(s string, open int) (int, bool) {
	if open < 0 || open >= len(s) {
		return 0, false
	}
	closer, isOpener := closers[s[open]]
	if !isOpener {
		return 0, false
	}
	opener := s[open]

	depth := 0
	i := open
	for i < len(s) {
		c := s[i]
		switch c {
		case '"', '\'', '`':
			i = skipString(s, i)
			continue
		case '/':
			if i+1 < len(s) && (s[i+1] == '/' || s[i+1] == '*') {
				i = skipComment(s, i)
				continue
			}
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// Body returns the content between s[open] and its matching delimiter.
func Body(s string, open int) (string, bool) {
	end, ok := Balanced(s, open)
	if !ok {
		return "", false
	}
	return s[open+1 : end], true
}

// SplitTop splits s on sep at zero nesting depth across all three bracket
// kinds, skipping strings and comments.
func SplitTop(s string, sep byte) []string {
	var parts []string
	var paren, brace, brack int
	start := 0
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '"', '\'', '`':
			i = skipString(s, i)
			continue
		case '/':
			if i+1 < len(s) && (s[i+1] == '/' || s[i+1] == '*') {
				i = skipComment(s, i)
				continue
			}
		case '(':
			paren++
		case ')':
			paren--
		case '{':
			brace++
		case '}':
			brace--
		case '[':
			brack++
		case ']':
			brack--
		case sep:
			if paren == 0 && brace == 0 && brack == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
		i++
	}
	parts = append(parts, s[start:])
	return parts
}

// Pair is one key/value entry of an object-literal body at nesting depth
// zero. Offset is the byte offset of the key within the body.
type Pair struct {
	Key    string
	Value  string
	Offset int
}

// Pairs tokenizes an object-literal body (the text between the braces)
// into its depth-zero key/value pairs. Spread entries and shorthand
// method/getter syntax are skipped.
func Pairs(body string) []Pair {
	var pairs []Pair
	offset := 0
	for _, entry := range SplitTop(body, ',') {
		entryStart := offset
		offset += len(entry) + 1 // account for the separator
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" || strings.HasPrefix(trimmed, "...") {
			continue
		}
		colon := topLevelColon(trimmed)
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(trimmed[:colon])
		key = strings.Trim(key, `"'`)
		key = strings.TrimSuffix(key, "?")
		if key == "" || !isIdentifier(key) {
			continue
		}
		pairs = append(pairs, Pair{
			Key:    key,
			Value:  strings.TrimSpace(trimmed[colon+1:]),
			Offset: entryStart + (len(entry) - len(strings.TrimLeft(entry, " \t\r\n"))),
		})
	}
	return pairs
}

// topLevelColon finds the first ':' at zero depth, ignoring "?:" ternaries
// only as far as the shallow tokenizer needs (keys never contain '?').
func topLevelColon(s string) int {
	var paren, brace, brack int
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '"', '\'', '`':
			i = skipString(s, i)
			continue
		case '(':
			paren++
		case ')':
			paren--
		case '{':
			brace++
		case '}':
			brace--
		case '[':
			brack++
		case ']':
			brack--
		case ':':
			if paren == 0 && brace == 0 && brack == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// StripComments replaces // and /* */ comments with spaces so that byte
// offsets into the original text stay valid.
func StripComments(s string) string {
	out := []byte(s)
	i := 0
	for i < len(s) {
		c := s[i]
		switch c {
		case '"', '\'', '`':
			i = skipString(s, i)
		case '/':
			if i+1 < len(s) && s[i+1] == '/' {
				j := i
				for j < len(s) && s[j] != '\n' {
					out[j] = ' '
					j++
				}
				i = j
			} else if i+1 < len(s) && s[i+1] == '*' {
				j := i
				for j < len(s) {
					if s[j] == '*' && j+1 < len(s) && s[j+1] == '/' {
						out[j] = ' '
						out[j+1] = ' '
						j += 2
						break
					}
					if s[j] != '\n' {
						out[j] = ' '
					}
					j++
				}
				i = j
			} else {
				i++
			}
		default:
			i++
		}
	}
	return string(out)
}

// LineOf returns the 1-based line number containing offset.
func LineOf(s string, offset int) int {
	if offset > len(s) {
		offset = len(s)
	}
	return 1 + strings.Count(s[:offset], "\n")
}

// LineAt returns the full line of text containing offset.
func LineAt(s string, offset int) string {
	if offset > len(s) {
		offset = len(s)
	}
	start := strings.LastIndexByte(s[:offset], '\n') + 1
	end := strings.IndexByte(s[offset:], '\n')
	if end < 0 {
		return s[start:]
	}
	return s[start : offset+end]
}

// BlankBoundBefore returns the offset just after the nearest blank line
// preceding offset, or 0. It bounds backward anchor searches so an anchor
// from an earlier, unrelated block is never attributed.
func BlankBoundBefore(s string, offset int) int {
	if offset > len(s) {
		offset = len(s)
	}
	region := s[:offset]
	for _, sep := range []string{"\n\n", "\n\r\n"} {
		if i := strings.LastIndex(region, sep); i >= 0 {
			return i + len(sep)
		}
	}
	return 0
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// skipString advances past the string literal starting at i. Escapes are
// honored; template literal interpolation is treated as literal text.
func skipString(s string, i int) int {
	quote := s[i]
	i++
	for i < len(s) {
		if s[i] == '\\' {
			i += 2
			continue
		}
		if s[i] == quote {
			return i + 1
		}
		if quote != '`' && s[i] == '\n' {
			return i // unterminated; do not swallow the rest of the file
		}
		i++
	}
	return i
}

// skipComment advances past the comment starting at i ("//" or "/*").
func skipComment(s string, i int) int {
	if s[i+1] == '/' {
		for i < len(s) && s[i] != '\n' {
			i++
		}
		return i
	}
	i += 2
	for i < len(s) {
		if s[i] == '*' && i+1 < len(s) && s[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return i
}
