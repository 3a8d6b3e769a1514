package classify

import (
	"strings"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/rules"
)

// BulletList groups consecutive lines opened by the same bullet glyph at the
// same indentation into lists.
type BulletList struct {
	cfg   ListConfig
	table *rules.BulletTable
	tracer
}

// NewBulletList creates a bulleted-list classifier over the given glyph table.
func NewBulletList(cfg ListConfig, table *rules.BulletTable, deps Deps) (*BulletList, error) {
	if table == nil {
		return nil, ErrMissingTable
	}
	return &BulletList{cfg: cfg, table: table, tracer: tracer{log: deps.logger(), verbose: cfg.Verbose}}, nil
}

// Classify tags bulleted list lines in place and returns the committed lists.
func (c *BulletList) Classify(doc *model.Document) []ListResult {
	var (
		acc   listAccumulator
		prev  lineCursor
		lists []ListResult
	)
	finish := func() {
		entries := len(acc.entries)
		marker := acc.marker
		if res, ok := finishList(doc, &acc, c.cfg.MinEntries, model.LineTypeListBullet); ok {
			lists = append(lists, res)
			c.trace("bulleted list committed", "file", doc.FileName, "bullet", marker, "entries", entries)
		} else if entries > 0 {
			c.trace("bulleted list discarded", "file", doc.FileName, "bullet", marker, "entries", entries)
		}
	}

	for pi, page := range doc.Pages {
		for li, line := range page.Lines {
			if !line.LineType.IsBody() {
				continue
			}
			text := strings.TrimSpace(line.Text)

			glyph, ok := "", false
			if name, anti := c.table.IsAntiPattern(text); anti {
				c.trace("bullet anti-pattern", "pattern", name, "text", text)
			} else {
				glyph, ok = c.table.Glyph(text)
			}

			if !ok {
				if acc.open() && prev.continues(pi, line) {
					acc.extend(li)
				} else {
					finish()
				}
			} else {
				if acc.open() && (glyph != acc.marker || !acc.inBounds(line.CoordLLX)) {
					finish()
				}
				if !acc.open() {
					acc.marker = glyph
					acc.setBounds(line.CoordLLX, c.cfg.TolerancePercent)
				}
				acc.add(pi, line.ParagraphNo, li, "")
			}
			prev = lineCursor{valid: true, page: pi, para: line.ParagraphNo}
		}
	}
	finish()
	return lists
}
