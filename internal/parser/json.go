package parser

import (
	"io"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// JSONParser reads documents already in the page/line model.
type JSONParser struct{}

func (p *JSONParser) Parse(r io.Reader, filename string) (*model.Document, error) {
	doc, err := model.Decode(r)
	if err != nil {
		return nil, err
	}
	if doc.FileName == "" {
		doc.FileName = filename
	}
	if doc.ID == "" {
		doc.ID = newBuilder(filename).doc.ID
	}
	return doc, nil
}
