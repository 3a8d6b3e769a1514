package classify

import (
	"testing"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

type testLine struct {
	text string
	para int
	llx  float64
}

func ln(text string, para int, llx float64) testLine {
	return testLine{text: text, para: para, llx: llx}
}

// buildDoc creates a document from pages of lines with 1-based numbering.
func buildDoc(pages ...[]testLine) *model.Document {
	doc := &model.Document{ID: "doc-1", FileName: "sample.pdf"}
	for pi, lines := range pages {
		page := &model.Page{PageNo: pi + 1}
		for li, l := range lines {
			page.Lines = append(page.Lines, &model.Line{
				Text:        l.text,
				LineType:    model.LineTypeBody,
				LineNoPage:  li + 1,
				ParagraphNo: l.para,
				CoordLLX:    l.llx,
				CoordURX:    l.llx + 300,
			})
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc
}

func lineTypes(doc *model.Document) [][]model.LineType {
	out := make([][]model.LineType, len(doc.Pages))
	for i, p := range doc.Pages {
		for _, l := range p.Lines {
			out[i] = append(out[i], l.LineType)
		}
	}
	return out
}

func expectTypes(t *testing.T, doc *model.Document, page int, want ...model.LineType) {
	t.Helper()
	lines := doc.Pages[page].Lines
	if len(lines) != len(want) {
		t.Fatalf("page %d: expected %d lines, got %d", page, len(want), len(lines))
	}
	for i, w := range want {
		if lines[i].LineType != w {
			t.Errorf("page %d line %d (%q): expected %q, got %q", page, i, lines[i].Text, w, lines[i].LineType)
		}
	}
}

const (
	body   = model.LineTypeBody
	header = model.LineTypeHeader
	footer = model.LineTypeFooter
	bullet = model.LineTypeListBullet
	number = model.LineTypeListNumber

	tableType = model.LineTypeTable
)

var (
	h1 = model.HeadingType(1)
	h2 = model.HeadingType(2)
	h3 = model.HeadingType(3)
)
