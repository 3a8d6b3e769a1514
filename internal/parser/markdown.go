package parser

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// MarkdownParser handles Markdown files using goldmark. Block structure maps
// onto paragraphs, list items keep their marker ("- ", "3. ") and nesting
// depth drives the synthetic indentation. A thematic break starts a new page.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*model.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	b := newBuilder(filename)
	mdBlocks(b, doc, src, 0)
	return b.document(), nil
}

func mdBlocks(b *builder, parent ast.Node, src []byte, depth int) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.ThematicBreak:
			b.pageBreak()
		case *ast.List:
			mdList(b, node, src, depth)
		case *ast.Blockquote:
			mdBlocks(b, node, src, depth+1)
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			b.breakParagraph()
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.addIndented(string(seg.Value(src)), depth+1)
			}
			b.breakParagraph()
		case *ast.HTMLBlock:
			continue
		default:
			b.breakParagraph()
			for _, line := range strings.Split(extractText(n, src), "\n") {
				b.addIndented(line, depth)
			}
			b.breakParagraph()
		}
	}
}

func mdList(b *builder, list *ast.List, src []byte, depth int) {
	number := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := string(list.Marker) + " "
		if list.IsOrdered() {
			marker = strconv.Itoa(number) + string(list.Marker) + " "
			number++
		}

		b.breakParagraph()
		first := true
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if sub, ok := child.(*ast.List); ok {
				mdList(b, sub, src, depth+1)
				continue
			}
			for _, line := range strings.Split(extractText(child, src), "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				if first {
					b.addIndented(marker+line, depth)
					first = false
					continue
				}
				// Continuation lines stay in the item's paragraph, indented past the marker.
				llx := baseLLX + float64(depth)*indentStep + float64(len(marker))*charWidth
				t := normalizeText(line)
				b.addLine(t, llx, llx+float64(len([]rune(t)))*charWidth)
			}
		}
		if first {
			b.addIndented(strings.TrimSpace(marker), depth)
		}
		b.breakParagraph()
	}
}

// extractText gets the text content of a goldmark AST node. Soft and hard
// line breaks are kept as newlines.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
