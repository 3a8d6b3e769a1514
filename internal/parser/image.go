package parser

import (
	"fmt"
	"io"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/ocr"
)

// ImageParser recognizes a scanned page image as a one-page document.
// Coordinates are in pixels.
type ImageParser struct {
	OCR LineRecognizer
}

func (p *ImageParser) Parse(r io.Reader, filename string) (*model.Document, error) {
	if p.OCR == nil {
		return nil, fmt.Errorf("parse image %s: %w", filename, ocr.ErrOCRNotEnabled)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	lines, err := p.OCR.RecognizeLines(data)
	if err != nil {
		return nil, fmt.Errorf("recognize %s: %w", filename, err)
	}

	b := newBuilder(filename)
	b.newPage()
	para := 0
	for _, l := range lines {
		if l.ParagraphNo != para {
			b.breakParagraph()
			para = l.ParagraphNo
		}
		b.addLine(l.Text, l.LLX, l.URX)
	}
	return b.document(), nil
}
