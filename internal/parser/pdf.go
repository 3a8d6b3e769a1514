package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"unicode/utf8"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// Heuristics for text runs without width information: an average glyph
// width used to detect word gaps, and the multiple of the page's typical
// line spacing that separates paragraphs.
const (
	pdfGlyphWidth     = 4.5
	pdfParagraphRatio = 1.5
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*model.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "dcr-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := extractPDFRows(tmpPath, filename)
	if (err != nil || doc.NumLines() == 0) && p.FallbackPdftotext {
		if text, ferr := extractPdftotext(tmpPath); ferr == nil {
			return (&TextParser{}).Parse(strings.NewReader(text), filename)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return doc, nil
}

func extractPDFRows(path, filename string) (*model.Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b := newBuilder(filename)
	for i := 1; i <= reader.NumPage(); i++ {
		b.newPage()
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		addPDFRows(b, rows)
	}
	return b.document(), nil
}

// addPDFRows appends the rows of one page, top to bottom. A vertical gap
// clearly above the page's median line spacing starts a new paragraph.
func addPDFRows(b *builder, rows pdflib.Rows) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	var gaps []int64
	for i := 1; i < len(rows); i++ {
		gaps = append(gaps, rows[i-1].Position-rows[i].Position)
	}
	spacing := medianGap(gaps)

	for i, row := range rows {
		text, llx, urx := joinRow(row.Content)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if i > 0 && spacing > 0 && float64(rows[i-1].Position-row.Position) > pdfParagraphRatio*float64(spacing) {
			b.breakParagraph()
		}
		b.addLine(text, llx, urx)
	}
}

// joinRow concatenates the text runs of a row in x order, inserting a space
// where the gap to the previous run exceeds its estimated width.
func joinRow(content pdflib.TextHorizontal) (string, float64, float64) {
	runs := make([]pdflib.Text, 0, len(content))
	for _, t := range content {
		if t.S != "" {
			runs = append(runs, t)
		}
	}
	if len(runs) == 0 {
		return "", 0, 0
	}
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].X < runs[j].X })

	var buf bytes.Buffer
	llx := runs[0].X
	end := llx
	for i, t := range runs {
		width := t.W
		if width <= 0 {
			width = float64(utf8.RuneCountInString(t.S)) * pdfGlyphWidth
		}
		if i > 0 && t.X-end > pdfGlyphWidth && !strings.HasSuffix(buf.String(), " ") && !strings.HasPrefix(t.S, " ") {
			buf.WriteByte(' ')
		}
		buf.WriteString(t.S)
		if t.X+width > end {
			end = t.X + width
		}
	}
	return buf.String(), llx, end
}

func medianGap(gaps []int64) int64 {
	var positive []int64
	for _, g := range gaps {
		if g > 0 {
			positive = append(positive, g)
		}
	}
	if len(positive) == 0 {
		return 0
	}
	sort.Slice(positive, func(i, j int) bool { return positive[i] < positive[j] })
	return positive[len(positive)/2]
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
