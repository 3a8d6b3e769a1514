package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// twipsPerPoint converts w:ind values to points.
const twipsPerPoint = 20.0

// DOCXParser handles .docx files. Each paragraph is one paragraph of lines
// (explicit line breaks split it), page-type breaks start a new page, and
// table rows become lines tagged table.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*model.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "dcr-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	b := newBuilder(filename)
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			addDocxParagraph(b, it)
		case *docx.Table:
			addDocxTable(b, it)
		}
	}
	return b.document(), nil
}

func addDocxParagraph(b *builder, para *docx.Paragraph) {
	llx := baseLLX + docxIndent(para)
	b.breakParagraph()

	var line strings.Builder
	flush := func() {
		text := normalizeText(line.String())
		b.addLine(text, llx, llx+float64(len([]rune(text)))*charWidth)
		line.Reset()
	}
	var runs func(children []interface{})
	runs = func(children []interface{}) {
		for _, child := range children {
			switch c := child.(type) {
			case *docx.Run:
				for _, rc := range c.Children {
					switch t := rc.(type) {
					case *docx.Text:
						line.WriteString(t.Text)
					case *docx.Tab:
						line.WriteByte(' ')
					case *docx.BarterRabbet:
						flush()
						if t.Type == "page" {
							b.pageBreak()
						}
					}
				}
			case *docx.Hyperlink:
				runs([]interface{}{&c.Run})
			}
		}
	}
	runs(para.Children)
	flush()
	b.breakParagraph()
}

// docxIndent returns the left indentation in points from w:ind and the list level.
func docxIndent(para *docx.Paragraph) float64 {
	props := para.Properties
	if props == nil {
		return 0
	}
	var indent float64
	if props.Ind != nil {
		indent = float64(props.Ind.Left-props.Ind.Hanging) / twipsPerPoint
	}
	if props.NumProperties != nil && props.NumProperties.Ilvl != nil {
		if lvl, err := strconv.Atoi(props.NumProperties.Ilvl.Val); err == nil && indent == 0 {
			indent = float64(lvl+1) * indentStep
		}
	}
	if indent < 0 {
		indent = 0
	}
	return indent
}

func addDocxTable(b *builder, tbl *docx.Table) {
	b.breakParagraph()
	for _, row := range tbl.TableRows {
		var cells []string
		for _, cell := range row.TableCells {
			var parts []string
			for _, para := range cell.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		b.addTableRow(cells, 0)
	}
	b.breakParagraph()
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
