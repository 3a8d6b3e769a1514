package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// TextParser handles plain text files. Blank lines separate paragraphs and a
// form feed starts a new page, which is how pdftotext separates pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*model.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := newBuilder(filename)
	for scanner.Scan() {
		segments := strings.Split(scanner.Text(), "\f")
		for i, seg := range segments {
			if i > 0 {
				b.pageBreak()
			}
			if strings.TrimSpace(seg) == "" {
				// A trailing form feed produces an empty segment, not a blank line.
				if len(segments) == 1 {
					b.breakParagraph()
				}
				continue
			}
			b.addIndented(seg, 0)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return b.document(), nil
}
