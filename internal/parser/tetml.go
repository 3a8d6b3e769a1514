package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// TETMLParser reads the XML produced by PDFlib TET. Both line granularity
// (Para > Line) and word granularity (Para > Word) are accepted; words are
// joined into lines by baseline. Table rows become lines tagged table.
type TETMLParser struct{}

type tetDocument struct {
	XMLName  xml.Name `xml:"TET"`
	Document struct {
		Filename string    `xml:"filename,attr"`
		Pages    []tetPage `xml:"Pages>Page"`
	} `xml:"Document"`
}

type tetPage struct {
	Number  int       `xml:"number,attr"`
	Content []tetNode `xml:"Content"`
}

// tetNode is any content element. Text and Box are only present on Line and
// Word elements; everything else nests through Children in document order.
type tetNode struct {
	XMLName  xml.Name
	LLX      float64   `xml:"llx,attr"`
	LLY      float64   `xml:"lly,attr"`
	URX      float64   `xml:"urx,attr"`
	URY      float64   `xml:"ury,attr"`
	Text     string    `xml:"Text"`
	Boxes    []tetBox  `xml:"Box"`
	Children []tetNode `xml:",any"`
}

type tetBox struct {
	LLX float64 `xml:"llx,attr"`
	LLY float64 `xml:"lly,attr"`
	URX float64 `xml:"urx,attr"`
	URY float64 `xml:"ury,attr"`
}

// bounds returns the node geometry from its attributes or, failing that, its boxes.
func (n tetNode) bounds() tetBox {
	if n.URX > 0 || n.URY > 0 {
		return tetBox{LLX: n.LLX, LLY: n.LLY, URX: n.URX, URY: n.URY}
	}
	if len(n.Boxes) == 0 {
		return tetBox{}
	}
	b := n.Boxes[0]
	for _, x := range n.Boxes[1:] {
		b.LLX = math.Min(b.LLX, x.LLX)
		b.LLY = math.Min(b.LLY, x.LLY)
		b.URX = math.Max(b.URX, x.URX)
		b.URY = math.Max(b.URY, x.URY)
	}
	return b
}

func (p *TETMLParser) Parse(r io.Reader, filename string) (*model.Document, error) {
	var tet tetDocument
	if err := xml.NewDecoder(r).Decode(&tet); err != nil {
		return nil, fmt.Errorf("parse tetml: %w", err)
	}

	b := newBuilder(filename)
	for _, page := range tet.Document.Pages {
		b.newPage()
		for _, content := range page.Content {
			tetBlocks(b, content.Children)
		}
	}
	return b.document(), nil
}

func tetBlocks(b *builder, nodes []tetNode) {
	for _, n := range nodes {
		switch n.XMLName.Local {
		case "Para":
			b.breakParagraph()
			for _, l := range tetLines(n.Children) {
				b.addLine(l.text, l.box.LLX, l.box.URX)
			}
			b.breakParagraph()
		case "Line", "Word":
			for _, l := range tetLines([]tetNode{n}) {
				b.addLine(l.text, l.box.LLX, l.box.URX)
			}
		case "Table":
			b.breakParagraph()
			for _, row := range n.Children {
				if row.XMLName.Local == "Row" {
					tetTableRow(b, row)
				}
			}
			b.breakParagraph()
		}
	}
}

func tetTableRow(b *builder, row tetNode) {
	var (
		cells []string
		box   tetBox
		first = true
	)
	var collect func(nodes []tetNode) []string
	collect = func(nodes []tetNode) []string {
		var parts []string
		for _, n := range nodes {
			switch n.XMLName.Local {
			case "Line", "Word":
				for _, l := range tetLines([]tetNode{n}) {
					parts = append(parts, l.text)
					if first {
						box, first = l.box, false
					}
					box.LLX = math.Min(box.LLX, l.box.LLX)
					box.URX = math.Max(box.URX, l.box.URX)
				}
			default:
				parts = append(parts, collect(n.Children)...)
			}
		}
		return parts
	}
	for _, cell := range row.Children {
		if cell.XMLName.Local == "Cell" {
			cells = append(cells, strings.Join(collect(cell.Children), " "))
		}
	}
	if line := b.addLine(strings.Join(cells, cellDivider), box.LLX, box.URX); line != nil {
		line.LineType = model.LineTypeTable
	}
}

type tetLine struct {
	text string
	box  tetBox
}

// tetLines converts Line elements directly and groups consecutive Word
// elements into lines. A word starts a new line when it moves back to the
// left or its baseline differs by more than half the current line height.
func tetLines(nodes []tetNode) []tetLine {
	var (
		out   []tetLine
		cur   *tetLine
		words []string
	)
	flush := func() {
		if cur != nil {
			cur.text = strings.Join(words, " ")
			out = append(out, *cur)
		}
		cur, words = nil, nil
	}

	for _, n := range nodes {
		switch n.XMLName.Local {
		case "Line":
			flush()
			out = append(out, tetLine{text: n.Text, box: n.bounds()})
		case "Word":
			box := n.bounds()
			if cur != nil {
				height := math.Max(cur.box.URY-cur.box.LLY, 1)
				if box.LLX < cur.box.URX-1 || math.Abs(box.LLY-cur.box.LLY) > height/2 {
					flush()
				}
			}
			if cur == nil {
				cur = &tetLine{box: box}
			}
			cur.box.URX = math.Max(cur.box.URX, box.URX)
			cur.box.URY = math.Max(cur.box.URY, box.URY)
			words = append(words, strings.TrimSpace(n.Text))
		}
	}
	flush()
	return out
}
