package classify

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/agnivade/levenshtein"
)

// HeaderFooterConfig controls repeated header/footer detection.
type HeaderFooterConfig struct {
	HeaderMaxLines    int
	FooterMaxLines    int
	HeaderMaxDistance int
	FooterMaxDistance int
	Verbose           bool
}

// HeaderFooterCounts reports how many lines were tagged.
type HeaderFooterCounts struct {
	Headers int `json:"noLinesHeader"`
	Footers int `json:"noLinesFooter"`
}

// HeaderFooter detects page headers and footers by comparing the same line
// slot on consecutive pages.
type HeaderFooter struct {
	cfg HeaderFooterConfig
	tracer
}

// NewHeaderFooter creates a header/footer classifier.
func NewHeaderFooter(cfg HeaderFooterConfig, deps Deps) *HeaderFooter {
	return &HeaderFooter{cfg: cfg, tracer: tracer{log: deps.logger(), verbose: cfg.Verbose}}
}

type slotKind int

const (
	slotHeader slotKind = iota
	slotFooter
)

func (k slotKind) lineType() model.LineType {
	if k == slotHeader {
		return model.LineTypeHeader
	}
	return model.LineTypeFooter
}

// slotRow is the rolling line data of one slot: the current page's line and the
// previous page's line at the same relative position.
type slotRow struct {
	prevIdx  int
	prevText string
	currIdx  int
	currText string
}

// slotGrid holds, per page and slot, the line index (-1 if the page has no such
// line) and the edit distance to the previous page (-1 if not comparable).
type slotGrid struct {
	kind    slotKind
	maxDist int
	idx     [][]int
	dist    [][]int
}

// Classify tags header and footer lines in place.
func (c *HeaderFooter) Classify(doc *model.Document) HeaderFooterCounts {
	var counts HeaderFooterCounts
	if c.cfg.HeaderMaxLines <= 0 && c.cfg.FooterMaxLines <= 0 {
		return counts
	}
	if len(doc.Pages) < 2 {
		c.trace("header/footer skipped", "file", doc.FileName, "pages", len(doc.Pages))
		return counts
	}

	if c.cfg.HeaderMaxLines > 0 {
		g := c.scan(doc, slotHeader, c.cfg.HeaderMaxLines, c.cfg.HeaderMaxDistance)
		counts.Headers = c.apply(doc, g)
	}
	if c.cfg.FooterMaxLines > 0 {
		g := c.scan(doc, slotFooter, c.cfg.FooterMaxLines, c.cfg.FooterMaxDistance)
		counts.Footers = c.apply(doc, g)
	}

	c.trace("header/footer classified", "file", doc.FileName, "headers", counts.Headers, "footers", counts.Footers)
	return counts
}

func slotLine(numLines, slot int, kind slotKind) int {
	if slot >= numLines {
		return -1
	}
	if kind == slotHeader {
		return slot
	}
	return numLines - 1 - slot
}

func (c *HeaderFooter) scan(doc *model.Document, kind slotKind, slots, maxDist int) *slotGrid {
	g := &slotGrid{
		kind:    kind,
		maxDist: maxDist,
		idx:     make([][]int, len(doc.Pages)),
		dist:    make([][]int, len(doc.Pages)),
	}
	rows := make([]slotRow, slots)
	for s := range rows {
		rows[s] = slotRow{prevIdx: -1, currIdx: -1}
	}

	for p, page := range doc.Pages {
		g.idx[p] = make([]int, slots)
		g.dist[p] = make([]int, slots)
		for s := range slots {
			row := &rows[s]
			row.prevIdx, row.prevText = row.currIdx, row.currText
			row.currIdx, row.currText = slotLine(len(page.Lines), s, kind), ""
			if row.currIdx >= 0 {
				row.currText = strings.TrimSpace(page.Lines[row.currIdx].Text)
			}

			g.idx[p][s] = row.currIdx
			g.dist[p][s] = -1
			if p > 0 && row.prevIdx >= 0 && row.currIdx >= 0 {
				g.dist[p][s] = levenshtein.ComputeDistance(row.prevText, row.currText)
			}
		}
		c.trace("header/footer page compared", "kind", kind.lineType(), "page", page.PageNo, "distances", g.dist[p])
	}
	return g
}

func (g *slotGrid) similar(p, s int) bool {
	d := g.dist[p][s]
	return d >= 0 && d <= g.maxDist
}

// candidate reports whether slot s repeats across the document. Missing lines
// are tolerated on the first, second and last page; dissimilar lines only in
// the comparisons touching the first or last page.
func (g *slotGrid) candidate(s int) bool {
	last := len(g.idx) - 1
	boundary := func(p int) bool { return p == 0 || p == 1 || p == last }

	similar := 0
	for p := 1; p <= last; p++ {
		switch d := g.dist[p][s]; {
		case g.similar(p, s):
			similar++
		case d < 0:
			if g.idx[p-1][s] < 0 && !boundary(p-1) {
				return false
			}
			if g.idx[p][s] < 0 && !boundary(p) {
				return false
			}
		default:
			if p-1 != 0 && p != last {
				return false
			}
		}
	}
	return similar > 0
}

func (c *HeaderFooter) apply(doc *model.Document, g *slotGrid) int {
	lt := g.kind.lineType()
	last := len(doc.Pages) - 1
	tagged := 0

	for s := range g.idx[0] {
		if !g.candidate(s) {
			continue
		}
		for p, page := range doc.Pages {
			li := g.idx[p][s]
			if li < 0 {
				continue
			}
			if !(p > 0 && g.similar(p, s)) && !(p < last && g.similar(p+1, s)) {
				continue
			}
			if line := page.Lines[li]; line.LineType.IsBody() {
				line.LineType = lt
				tagged++
			}
		}
		c.trace("header/footer slot tagged", "kind", lt, "slot", s)
	}

	tagged += c.applyIrregular(doc, g)
	return tagged
}

// applyIrregular tags slot 0 when it carries a page number that ascends by
// exactly one from the first page to the last.
func (c *HeaderFooter) applyIrregular(doc *model.Document, g *slotGrid) int {
	prev := -1
	for p, page := range doc.Pages {
		li := g.idx[p][0]
		if li < 0 {
			return 0
		}
		n, ok := pageNumber(page.Lines[li].Text)
		if !ok || (p > 0 && n != prev+1) {
			return 0
		}
		prev = n
	}

	lt := g.kind.lineType()
	tagged := 0
	for p, page := range doc.Pages {
		if line := page.Lines[g.idx[p][0]]; line.LineType.IsBody() {
			line.LineType = lt
			tagged++
		}
	}
	if tagged > 0 {
		c.trace("irregular header/footer tagged", "kind", lt, "lines", tagged)
	}
	return tagged
}

// pageNumber extracts the page number of a header/footer line: the last token,
// or N in a trailing "N of M" or "N/M".
func pageNumber(text string) (int, bool) {
	var fields []string
	for _, f := range strings.Fields(text) {
		if strings.IndexFunc(f, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return 0, false
	}
	tok := fields[len(fields)-1]
	if len(fields) >= 3 {
		switch strings.ToLower(fields[len(fields)-2]) {
		case "of", "von", "de", "sur":
			tok = fields[len(fields)-3]
		}
	}
	if before, _, ok := strings.Cut(tok, "/"); ok {
		tok = before
	}
	tok = strings.TrimFunc(tok, func(r rune) bool { return !unicode.IsDigit(r) })
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}
