package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// HTMLParser handles HTML files. Block elements become paragraphs, <br>
// splits lines, list items get a synthesized marker ("• " or "3. "), table
// rows become lines tagged table and <hr> or a CSS page break starts a new page.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*model.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := newBuilder(filename)
	w := &htmlWalker{b: b}
	if body := findBody(doc); body != nil {
		w.walk(body, 0)
	} else {
		w.walk(doc, 0)
	}
	return b.document(), nil
}

type htmlWalker struct {
	b *builder
}

func (w *htmlWalker) walk(n *html.Node, depth int) {
	if n.Type == html.ElementNode {
		if pageBreakBefore(n) {
			w.b.pageBreak()
		}
		switch n.Data {
		case "script", "style", "noscript", "template", "head":
			return
		case "hr":
			w.b.pageBreak()
			return
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "dt", "dd", "caption", "address", "figcaption":
			w.block(n, "", depth)
			return
		case "ul", "ol":
			w.list(n, depth)
			return
		case "blockquote":
			depth++
		case "tr":
			w.b.breakParagraph()
			w.b.addTableRow(rowCells(n), depth)
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, depth)
	}
}

// block adds the element's text as one paragraph. The prefix goes in front of
// the first line.
func (w *htmlWalker) block(n *html.Node, prefix string, depth int) {
	w.b.breakParagraph()
	first := true
	for _, line := range strings.Split(textContent(n), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if n.Data != "pre" {
			line = strings.Join(strings.Fields(line), " ")
		}
		if first {
			line = prefix + line
			first = false
		}
		w.b.addIndented(line, depth)
	}
	if first && prefix != "" {
		w.b.addIndented(strings.TrimSpace(prefix), depth)
	}
	w.b.breakParagraph()
}

func (w *htmlWalker) list(n *html.Node, depth int) {
	ordered := n.Data == "ol"
	number := 1
	if v, ok := attr(n, "start"); ok {
		if s, err := strconv.Atoi(v); err == nil {
			number = s
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		marker := "• "
		if ordered {
			if v, ok := attr(c, "value"); ok {
				if s, err := strconv.Atoi(v); err == nil {
					number = s
				}
			}
			marker = strconv.Itoa(number) + ". "
			number++
		}

		// Nested lists are emitted after the item's own text.
		var nested []*html.Node
		item := &html.Node{Type: html.ElementNode, Data: "li"}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			if gc.Type == html.ElementNode && (gc.Data == "ul" || gc.Data == "ol") {
				nested = append(nested, gc)
				continue
			}
			item.AppendChild(cloneNode(gc))
		}
		w.block(item, marker, depth)
		for _, sub := range nested {
			w.list(sub, depth+1)
		}
	}
}

func rowCells(tr *html.Node) []string {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			cells = append(cells, textContent(c))
		}
	}
	return cells
}

func pageBreakBefore(n *html.Node) bool {
	style, ok := attr(n, "style")
	if !ok {
		return false
	}
	style = strings.ReplaceAll(strings.ToLower(style), " ", "")
	return strings.Contains(style, "page-break-before:always") || strings.Contains(style, "break-before:page")
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// cloneNode deep-copies n so it can be re-parented without detaching the original.
func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{Type: n.Type, DataAtom: n.DataAtom, Data: n.Data, Namespace: n.Namespace, Attr: n.Attr}
	for gc := n.FirstChild; gc != nil; gc = gc.NextSibling {
		c.AppendChild(cloneNode(gc))
	}
	return c
}

// textContent returns the text below n with <br> and nested block elements as newlines.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "br":
				buf.WriteByte('\n')
				return
			case "script", "style":
				return
			case "p", "div", "li", "tr":
				buf.WriteByte('\n')
				defer buf.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
