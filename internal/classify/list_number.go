package classify

import (
	"cmp"
	"slices"
	"strings"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/rules"
)

// NumberList groups consecutive lines whose first token continues a numbering
// rule ("1." -> "2.", "(a)" -> "(b)", ...) at the same indentation into lists.
// Several schemes are tracked at once: a scheme opened further right nests
// inside the open one, and the outer list resumes when its next value appears.
type NumberList struct {
	cfg   ListConfig
	table *rules.Table
	tracer
}

// NewNumberList creates a numbered-list classifier over the given rule table.
func NewNumberList(cfg ListConfig, table *rules.Table, deps Deps) (*NumberList, error) {
	if table == nil {
		return nil, ErrMissingTable
	}
	return &NumberList{cfg: cfg, table: table, tracer: tracer{log: deps.logger(), verbose: cfg.Verbose}}, nil
}

// numberScan is the state of one Classify run. open is ordered outermost first.
type numberScan struct {
	c     *NumberList
	doc   *model.Document
	open  []*listAccumulator
	prev  lineCursor
	lists []ListResult
}

// Classify tags numbered list lines in place and returns the committed lists in
// document order.
func (c *NumberList) Classify(doc *model.Document) []ListResult {
	s := &numberScan{c: c, doc: doc}
	for pi, page := range doc.Pages {
		for li, line := range page.Lines {
			if !line.LineType.IsBody() {
				continue
			}
			s.step(pi, li, line)
			s.prev = lineCursor{valid: true, page: pi, para: line.ParagraphNo}
		}
	}
	s.closeTo(0)

	slices.SortStableFunc(s.lists, func(a, b ListResult) int {
		if n := cmp.Compare(a.Entries[0].PageNo, b.Entries[0].PageNo); n != 0 {
			return n
		}
		return cmp.Compare(a.Entries[0].LineNoFrom, b.Entries[0].LineNoFrom)
	})
	return s.lists
}

// closeTo commits or discards every open list nested deeper than depth.
func (s *numberScan) closeTo(depth int) {
	for len(s.open) > depth {
		acc := s.open[len(s.open)-1]
		s.open = s.open[:len(s.open)-1]

		entries, marker := len(acc.entries), acc.marker
		if res, ok := finishList(s.doc, acc, s.c.cfg.MinEntries, model.LineTypeListNumber); ok {
			s.lists = append(s.lists, res)
			s.c.trace("numbered list committed", "file", s.doc.FileName, "rule", marker, "entries", entries)
		} else if entries > 0 {
			s.c.trace("numbered list discarded", "file", s.doc.FileName, "rule", marker, "entries", entries)
		}
	}
}

func (s *numberScan) top() *listAccumulator {
	if len(s.open) == 0 {
		return nil
	}
	return s.open[len(s.open)-1]
}

func (s *numberScan) step(pi, li int, line *model.Line) {
	text := strings.TrimSpace(line.Text)
	noMatch := func() {
		if top := s.top(); top != nil && s.prev.continues(pi, line) {
			top.extend(li)
		} else {
			s.closeTo(0)
		}
	}

	if name, ok := s.c.table.IsAntiPattern(text); ok {
		s.c.trace("number anti-pattern", "pattern", name, "text", text)
		noMatch()
		return
	}

	// Continue the innermost open list that accepts the line, closing the
	// lists nested inside it.
	for i := len(s.open) - 1; i >= 0; i-- {
		acc := s.open[i]
		value, ok := acc.rule.Find(text)
		if !ok || !acc.inBounds(line.CoordLLX) || !acc.rule.IsAscending(acc.lastValue, value) {
			continue
		}
		s.closeTo(i + 1)
		acc.add(pi, line.ParagraphNo, li, acc.rule.DisplayValue(value))
		acc.lastValue = value
		return
	}

	rule, value, ok := s.c.table.FirstStart(text)
	if !ok {
		noMatch()
		return
	}
	// A new sequence nests only when it starts right of every open list.
	for top := s.top(); top != nil && line.CoordLLX <= top.upper; top = s.top() {
		s.closeTo(len(s.open) - 1)
	}
	acc := &listAccumulator{rule: rule, marker: rule.Name}
	acc.setBounds(line.CoordLLX, s.c.cfg.TolerancePercent)
	acc.add(pi, line.ParagraphNo, li, rule.DisplayValue(value))
	acc.lastValue = value
	s.open = append(s.open, acc)
}
