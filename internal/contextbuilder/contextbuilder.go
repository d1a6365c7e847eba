// Package contextbuilder assembles the token-budgeted project context
// sent alongside a plan review: the file tree, project documentation,
// and source excerpts for files the plan references. Sections are
// appended in a fixed order and the budget truncates deterministically,
// so identical inputs produce identical context.
package contextbuilder

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/groundcheck/internal/extract"
	"github.com/ppiankov/groundcheck/internal/index"
)

// charsPerToken is the rough budget conversion. Exact tokenization is
// provider-specific; four characters per token is close enough for a
// ceiling.
const charsPerToken = 4

// maxExcerptLines bounds a single source excerpt.
const maxExcerptLines = 120

// Builder assembles review context for one project.
type Builder struct {
	tree   *index.FileTree
	budget int // characters
}

// New creates a builder with the given token budget.
func New(tree *index.FileTree, tokenBudget int) *Builder {
	if tokenBudget <= 0 {
		tokenBudget = 12000
	}
	return &Builder{tree: tree, budget: tokenBudget * charsPerToken}
}

// Build assembles the context for a plan. Sections in order: file tree,
// documentation, excerpts of plan-referenced source files. Whatever
// exceeds the budget is cut from the end, never the middle.
func (b *Builder) Build(plan string) string {
	var out strings.Builder

	b.writeSection(&out, "Project files", b.fileTreeSection())
	b.writeSection(&out, "Documentation", b.docsSection())
	b.writeSection(&out, "Referenced sources", b.sourcesSection(plan))

	return out.String()
}

// writeSection appends a titled section, truncating to the remaining
// budget. An empty body writes nothing.
func (b *Builder) writeSection(out *strings.Builder, title, body string) {
	if body == "" {
		return
	}
	remaining := b.budget - out.Len()
	if remaining <= 0 {
		return
	}
	section := "## " + title + "\n" + body + "\n"
	if len(section) > remaining {
		section = section[:remaining]
	}
	out.WriteString(section)
}

func (b *Builder) fileTreeSection() string {
	var s strings.Builder
	for _, p := range b.tree.Paths() {
		s.WriteString(p)
		s.WriteByte('\n')
	}
	return s.String()
}

// docsSection collects markdown files verbatim and HTML files stripped
// to visible text.
func (b *Builder) docsSection() string {
	var s strings.Builder
	for _, rel := range b.tree.WithSuffix(".md", ".html") {
		src, err := b.tree.ReadFile(rel)
		if err != nil {
			continue
		}
		if strings.HasSuffix(rel, ".html") {
			src = stripHTML(src)
		}
		fmt.Fprintf(&s, "### %s\n%s\n", rel, strings.TrimSpace(src))
	}
	return s.String()
}

// sourcesSection excerpts every existing project file the plan refers
// to, in extraction order.
func (b *Builder) sourcesSection(plan string) string {
	var s strings.Builder
	for _, ref := range extract.FileReferences(plan) {
		rel := ref.Name
		if !b.tree.Contains(rel) {
			rel = b.tree.MatchSuffix(rel)
		}
		if rel == "" {
			continue
		}
		src, err := b.tree.ReadFile(rel)
		if err != nil {
			continue
		}
		fmt.Fprintf(&s, "### %s\n%s\n", rel, excerpt(src))
	}
	return s.String()
}

func excerpt(src string) string {
	lines := strings.Split(src, "\n")
	if len(lines) > maxExcerptLines {
		lines = append(lines[:maxExcerptLines], "… (truncated)")
	}
	return strings.Join(lines, "\n")
}

// stripHTML reduces an HTML document to its visible text. Script,
// style, noscript and iframe subtrees are skipped.
func stripHTML(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return src
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return buf.String()
}
