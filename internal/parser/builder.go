package parser

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// Formats without geometry get synthetic coordinates in points: a one inch
// left margin, a fixed character width and a fixed step per nesting level.
const (
	baseLLX     = 72.0
	charWidth   = 6.0
	indentStep  = 18.0
	tabWidth    = 4
	cellDivider = " | "
)

// builder assembles a model.Document page by page. Paragraph numbers restart
// on every page.
type builder struct {
	doc    *model.Document
	page   *model.Page
	para   int
	inPara bool
}

func newBuilder(filename string) *builder {
	base := filepath.Base(filename)
	return &builder{doc: &model.Document{
		ID:       strings.TrimSuffix(base, filepath.Ext(base)),
		FileName: filename,
	}}
}

func (b *builder) newPage() {
	b.page = &model.Page{PageNo: len(b.doc.Pages) + 1}
	b.doc.Pages = append(b.doc.Pages, b.page)
	b.para = 0
	b.inPara = false
}

// pageBreak starts a new page unless the current one is still empty.
func (b *builder) pageBreak() {
	if b.page != nil && len(b.page.Lines) == 0 {
		return
	}
	b.newPage()
}

func (b *builder) breakParagraph() {
	b.inPara = false
}

// addLine appends a body line. Blank text is dropped.
func (b *builder) addLine(text string, llx, urx float64) *model.Line {
	text = normalizeText(text)
	if text == "" {
		return nil
	}
	if b.page == nil {
		b.newPage()
	}
	if !b.inPara {
		b.para++
		b.inPara = true
	}
	line := &model.Line{
		Text:        text,
		LineType:    model.LineTypeBody,
		LineNoPage:  len(b.page.Lines) + 1,
		ParagraphNo: b.para,
		CoordLLX:    llx,
		CoordURX:    urx,
	}
	b.page.Lines = append(b.page.Lines, line)
	return line
}

// addIndented appends a line whose coordinates are synthesized from the
// nesting depth and the leading whitespace of raw.
func (b *builder) addIndented(raw string, depth int) *model.Line {
	llx := baseLLX + float64(depth)*indentStep + float64(leadingColumns(raw))*charWidth
	text := normalizeText(raw)
	return b.addLine(text, llx, llx+float64(utf8.RuneCountInString(text))*charWidth)
}

// addTableRow appends one table row as a single line tagged table.
func (b *builder) addTableRow(cells []string, depth int) {
	for i, c := range cells {
		cells[i] = strings.Join(strings.Fields(c), " ")
	}
	if line := b.addIndented(strings.Join(cells, cellDivider), depth); line != nil {
		line.LineType = model.LineTypeTable
	}
}

func (b *builder) document() *model.Document {
	return b.doc
}

// normalizeText applies NFKC so compatibility forms (ligatures, full-width
// digits, roman numeral code points, no-break spaces) match the rule patterns.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

func leadingColumns(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ':
			n++
		case '\t':
			n += tabWidth
		default:
			return n
		}
	}
	return 0
}
