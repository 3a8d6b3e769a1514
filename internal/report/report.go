// Package report writes the optional side-car JSON files produced next to a
// classified document: the table of contents and the bulleted and numbered
// list summaries.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/classify"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

const (
	suffixDocument   = "_classified.json"
	suffixTOC        = "_toc.json"
	suffixBulletList = "_list_bullet.json"
	suffixNumberList = "_list_number.json"
)

// Toggles selects which side-car files Write produces.
type Toggles struct {
	TOC         bool
	BulletLists bool
	NumberLists bool
}

// Any reports whether at least one side-car file is enabled.
func (t Toggles) Any() bool {
	return t.TOC || t.BulletLists || t.NumberLists
}

// TOCReport is the content of <stem>_toc.json.
type TOCReport struct {
	DocumentID string              `json:"documentId"`
	FileName   string              `json:"fileName"`
	NoEntries  int                 `json:"noHeadings"`
	TOC        []classify.TOCEntry `json:"toc"`
}

// ListReport is the content of <stem>_list_bullet.json and <stem>_list_number.json.
type ListReport struct {
	DocumentID string                `json:"documentId"`
	FileName   string                `json:"fileName"`
	NoLists    int                   `json:"noLists"`
	Lists      []classify.ListResult `json:"lists"`
}

// Writer serializes reports into Dir. Indent is the number of spaces per
// nesting level (0 writes compact JSON). With SortKeys every object is written
// with its keys in alphabetical order.
type Writer struct {
	Dir      string
	Indent   int
	SortKeys bool
}

// Write produces every enabled side-car file and returns the paths written.
func (w Writer) Write(doc *model.Document, res *classify.Result, t Toggles) ([]string, error) {
	var written []string
	if t.TOC {
		path, err := w.WriteTOC(doc, res.TOC)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if t.BulletLists {
		path, err := w.WriteBulletLists(doc, res.BulletLists)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if t.NumberLists {
		path, err := w.WriteNumberLists(doc, res.NumberLists)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// WriteDocument writes the classified document itself to <stem>_classified.json.
func (w Writer) WriteDocument(doc *model.Document) (string, error) {
	return w.writeFile(doc.Stem()+suffixDocument, doc)
}

// WriteTOC writes <stem>_toc.json.
func (w Writer) WriteTOC(doc *model.Document, toc []classify.TOCEntry) (string, error) {
	if toc == nil {
		toc = []classify.TOCEntry{}
	}
	return w.writeFile(doc.Stem()+suffixTOC, TOCReport{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		NoEntries:  len(toc),
		TOC:        toc,
	})
}

// WriteBulletLists writes <stem>_list_bullet.json.
func (w Writer) WriteBulletLists(doc *model.Document, lists []classify.ListResult) (string, error) {
	return w.writeFile(doc.Stem()+suffixBulletList, newListReport(doc, lists))
}

// WriteNumberLists writes <stem>_list_number.json.
func (w Writer) WriteNumberLists(doc *model.Document, lists []classify.ListResult) (string, error) {
	return w.writeFile(doc.Stem()+suffixNumberList, newListReport(doc, lists))
}

func newListReport(doc *model.Document, lists []classify.ListResult) ListReport {
	if lists == nil {
		lists = []classify.ListResult{}
	}
	return ListReport{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		NoLists:    len(lists),
		Lists:      lists,
	}
}

// Marshal encodes v honoring the writer's indentation and key-order settings.
func (w Writer) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if w.SortKeys {
		// Maps marshal with sorted keys, so a generic round trip reorders struct fields.
		var generic any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&generic); err != nil {
			return nil, err
		}
		if data, err = json.Marshal(generic); err != nil {
			return nil, err
		}
	}
	if w.Indent <= 0 {
		return data, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", strings.Repeat(" ", w.Indent)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w Writer) writeFile(name string, v any) (string, error) {
	data, err := w.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0o755); err != nil {
			return "", fmt.Errorf("create report dir: %w", err)
		}
	}
	path := filepath.Join(w.Dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}
