package model

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// LineType is the structural role assigned to a line.
type LineType string

const (
	LineTypeBody       LineType = "body"
	LineTypeHeader     LineType = "header"
	LineTypeFooter     LineType = "footer"
	LineTypeListBullet LineType = "list_bullet"
	LineTypeListNumber LineType = "list_number"
	LineTypeTable      LineType = "table"

	headingPrefix = "heading_"
)

// HeadingType returns the line type for a heading at the given 1-based level.
func HeadingType(level int) LineType {
	return LineType(headingPrefix + strconv.Itoa(level))
}

// IsBody reports whether the line is still unclaimed by any classifier.
func (t LineType) IsBody() bool {
	return t == LineTypeBody || t == ""
}

// HeadingLevel returns the level of a heading_<n> type, or 0 for anything else.
func (t LineType) HeadingLevel() int {
	s, ok := strings.CutPrefix(string(t), headingPrefix)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// Document is a parsed document: an ordered sequence of pages.
type Document struct {
	ID       string  `json:"documentId"`
	FileName string  `json:"fileName"`
	Pages    []*Page `json:"pages"`
}

// Page is an ordered sequence of lines with a 1-based page number.
type Page struct {
	PageNo int     `json:"pageNo"`
	Lines  []*Line `json:"lines"`
}

// Line is the unit every classifier operates on. LineType is mutated in place.
type Line struct {
	Text        string   `json:"text"`
	LineType    LineType `json:"lineType"`
	LineNoPage  int      `json:"lineNoPage"`
	ParagraphNo int      `json:"paragraphNo"`
	CoordLLX    float64  `json:"coordLLX"`
	CoordURX    float64  `json:"coordURX"`
}

// Decode reads a page/line JSON document and normalizes missing fields.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

// Normalize fills defaults: body line types, 1-based page and line numbers.
func (d *Document) Normalize() {
	for pi, page := range d.Pages {
		if page == nil {
			d.Pages[pi] = &Page{PageNo: pi + 1}
			continue
		}
		if page.PageNo <= 0 {
			page.PageNo = pi + 1
		}
		for li, line := range page.Lines {
			if line == nil {
				page.Lines[li] = &Line{LineType: LineTypeBody, LineNoPage: li + 1}
				continue
			}
			if line.LineType == "" {
				line.LineType = LineTypeBody
			}
			if line.LineNoPage <= 0 {
				line.LineNoPage = li + 1
			}
		}
	}
}

// Encode writes the document as JSON with the given indent width.
func (d *Document) Encode(w io.Writer, indent int) error {
	enc := json.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	return enc.Encode(d)
}

// Counts returns the number of lines per line type.
func (d *Document) Counts() map[LineType]int {
	counts := make(map[LineType]int)
	for _, page := range d.Pages {
		for _, line := range page.Lines {
			counts[line.LineType]++
		}
	}
	return counts
}

// NumLines returns the total number of lines in the document.
func (d *Document) NumLines() int {
	n := 0
	for _, page := range d.Pages {
		n += len(page.Lines)
	}
	return n
}

// Stem is the file name without directory and extension, used to name side-car files.
func (d *Document) Stem() string {
	name := filepath.Base(d.FileName)
	if name == "." || name == "/" || name == "" {
		if d.ID != "" {
			return d.ID
		}
		return "document"
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// FirstToken returns the first whitespace-delimited token of the text.
func FirstToken(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
