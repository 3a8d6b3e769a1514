package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// CSVParser handles CSV files. Every record becomes one line tagged table, so
// the classifiers leave it alone.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*model.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := newBuilder(filename)
	for _, rec := range records {
		b.addTableRow(rec, 0)
	}
	return b.document(), nil
}
