// ABOUTME: Markdown to ANSI terminal renderer built on the goldmark AST
// ABOUTME: Styles headings, emphasis, code, links, lists and quotes with fatih/color

package render

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Renderer converts markdown source into styled terminal text.
// The zero value is not usable; construct with New.
type Renderer struct {
	md goldmark.Markdown

	heading *color.Color
	strong  *color.Color
	emph    *color.Color
	code    *color.Color
	link    *color.Color
	quote   *color.Color
}

// New returns a renderer with the default terminal palette. Colors are
// automatically suppressed when stdout is not a TTY.
func New() *Renderer {
	return &Renderer{
		md:      goldmark.New(),
		heading: color.New(color.FgCyan, color.Bold),
		strong:  color.New(color.Bold),
		emph:    color.New(color.Italic),
		code:    color.New(color.FgYellow),
		link:    color.New(color.FgBlue, color.Underline),
		quote:   color.New(color.FgHiBlack),
	}
}

// Render parses source as markdown and returns it re-emitted as
// ANSI-styled plain text. Trailing newlines are trimmed.
func (r *Renderer) Render(source string) string {
	src := []byte(source)
	doc := r.md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	r.renderBlocks(&b, src, doc, "")
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) renderBlocks(b *strings.Builder, src []byte, parent ast.Node, indent string) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		r.renderBlock(b, src, n, indent)
	}
}

func (r *Renderer) renderBlock(b *strings.Builder, src []byte, n ast.Node, indent string) {
	switch n := n.(type) {
	case *ast.Heading:
		b.WriteString(indent)
		b.WriteString(r.heading.Sprint(r.inline(src, n)))
		b.WriteString("\n\n")

	case *ast.Paragraph:
		r.writeLines(b, r.inline(src, n), indent)
		b.WriteByte('\n')

	case *ast.TextBlock:
		r.writeLines(b, r.inline(src, n), indent)

	case *ast.FencedCodeBlock:
		r.renderCodeLines(b, src, n.Lines(), indent)

	case *ast.CodeBlock:
		r.renderCodeLines(b, src, n.Lines(), indent)

	case *ast.List:
		r.renderList(b, src, n, indent)
		b.WriteByte('\n')

	case *ast.Blockquote:
		var inner strings.Builder
		r.renderBlocks(&inner, src, n, "")
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			b.WriteString(indent)
			b.WriteString(r.quote.Sprint("│ " + line))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')

	case *ast.ThematicBreak:
		b.WriteString(indent)
		b.WriteString(r.quote.Sprint(strings.Repeat("─", 32)))
		b.WriteString("\n\n")

	default:
		r.renderBlocks(b, src, n, indent)
	}
}

// writeLines emits text line by line so every line carries the indent.
func (r *Renderer) writeLines(b *strings.Builder, s string, indent string) {
	for _, line := range strings.Split(s, "\n") {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
}

func (r *Renderer) renderCodeLines(b *strings.Builder, src []byte, lines *text.Segments, indent string) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(src)), "\n")
		b.WriteString(indent)
		b.WriteString("    ")
		b.WriteString(r.code.Sprint(line))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
}

func (r *Renderer) renderList(b *strings.Builder, src []byte, l *ast.List, indent string) {
	idx := l.Start
	if idx == 0 {
		idx = 1
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", idx)
			idx++
		}
		cont := indent + strings.Repeat(" ", len(marker))

		wroteMarker := false
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			switch c := c.(type) {
			case *ast.List:
				if !wroteMarker {
					b.WriteString(indent + marker + "\n")
					wroteMarker = true
				}
				r.renderList(b, src, c, cont)
			default:
				prefix := indent + marker
				if wroteMarker {
					prefix = cont
				}
				b.WriteString(prefix)
				b.WriteString(strings.ReplaceAll(r.inline(src, c), "\n", "\n"+cont))
				b.WriteByte('\n')
				wroteMarker = true
			}
		}
		if !wroteMarker {
			b.WriteString(indent + marker + "\n")
		}
	}
}

// inline renders the inline children of parent into a plain string.
func (r *Renderer) inline(src []byte, parent ast.Node) string {
	var b strings.Builder
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(&b, src, c)
	}
	return b.String()
}

func (r *Renderer) renderInline(b *strings.Builder, src []byte, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			b.WriteByte('\n')
		}

	case *ast.String:
		b.Write(n.Value)

	case *ast.CodeSpan:
		var lit strings.Builder
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				lit.Write(t.Segment.Value(src))
			}
		}
		b.WriteString(r.code.Sprint(lit.String()))

	case *ast.Emphasis:
		inner := r.inline(src, n)
		if n.Level >= 2 {
			b.WriteString(r.strong.Sprint(inner))
		} else {
			b.WriteString(r.emph.Sprint(inner))
		}

	case *ast.Link:
		label := r.inline(src, n)
		b.WriteString(r.link.Sprint(label))
		if dest := string(n.Destination); dest != "" && dest != label {
			b.WriteString(" (" + dest + ")")
		}

	case *ast.AutoLink:
		b.WriteString(r.link.Sprint(string(n.URL(src))))

	case *ast.Image:
		label := r.inline(src, n)
		if label == "" {
			label = "image"
		}
		b.WriteString(r.link.Sprint(label))
		if dest := string(n.Destination); dest != "" {
			b.WriteString(" (" + dest + ")")
		}

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			r.renderInline(b, src, c)
		}
	}
}
