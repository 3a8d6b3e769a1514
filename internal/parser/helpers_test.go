package parser

import (
	"testing"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

type wantLine struct {
	text string
	para int
}

func expectLines(t *testing.T, doc *model.Document, page int, want ...wantLine) {
	t.Helper()
	if page >= len(doc.Pages) {
		t.Fatalf("expected page %d, document has %d pages", page+1, len(doc.Pages))
	}
	lines := doc.Pages[page].Lines
	if len(lines) != len(want) {
		var got []string
		for _, l := range lines {
			got = append(got, l.Text)
		}
		t.Fatalf("page %d: expected %d lines, got %d: %q", page+1, len(want), len(lines), got)
	}
	for i, w := range want {
		l := lines[i]
		if l.Text != w.text || l.ParagraphNo != w.para {
			t.Errorf("page %d line %d: expected %q (para %d), got %q (para %d)",
				page+1, i+1, w.text, w.para, l.Text, l.ParagraphNo)
		}
		if l.LineNoPage != i+1 {
			t.Errorf("page %d line %d: expected lineNoPage %d, got %d", page+1, i+1, i+1, l.LineNoPage)
		}
	}
}
