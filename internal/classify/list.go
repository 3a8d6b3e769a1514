package classify

import (
	"strings"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/rules"
)

// ListConfig controls bulleted and numbered list detection.
type ListConfig struct {
	MinEntries       int
	TolerancePercent float64
	RuleFile         string
	Verbose          bool
}

// ListEntry is one committed list entry spanning one or more lines of a page.
type ListEntry struct {
	PageNo      int    `json:"pageNo"`
	ParagraphNo int    `json:"paragraphNo"`
	LineNoFrom  int    `json:"lineNoPageFrom"`
	LineNoTo    int    `json:"lineNoPageTo"`
	Value       string `json:"value,omitempty"`
	Text        string `json:"entryText"`
}

// ListResult is one committed list.
type ListResult struct {
	Marker    string      `json:"marker"`
	NoEntries int         `json:"noEntries"`
	Entries   []ListEntry `json:"entries"`
}

type entryRange struct {
	page     int
	para     int
	from, to int
	value    string
}

// listAccumulator is the currently open list candidate.
type listAccumulator struct {
	marker    string
	rule      *rules.Rule
	lastValue string
	lower     float64
	upper     float64
	entries   []entryRange
}

func (a *listAccumulator) open() bool { return len(a.entries) > 0 }

func (a *listAccumulator) setBounds(llx, percent float64) {
	delta := llx * percent / 100
	a.lower, a.upper = llx-delta, llx+delta
	if a.lower > a.upper {
		a.lower, a.upper = a.upper, a.lower
	}
}

func (a *listAccumulator) inBounds(llx float64) bool {
	return llx >= a.lower-1e-9 && llx <= a.upper+1e-9
}

func (a *listAccumulator) add(page, para, idx int, value string) {
	a.entries = append(a.entries, entryRange{page: page, para: para, from: idx, to: idx, value: value})
}

func (a *listAccumulator) extend(idx int) {
	a.entries[len(a.entries)-1].to = idx
}

func (a *listAccumulator) reset() {
	*a = listAccumulator{}
}

// lineCursor remembers the previously visited body line to detect paragraph
// continuations.
type lineCursor struct {
	valid bool
	page  int
	para  int
}

func (c lineCursor) continues(page int, line *model.Line) bool {
	return c.valid && c.page == page && c.para == line.ParagraphNo
}

// finishList commits the open list when it has at least minEntries entries and
// resets the accumulator either way.
func finishList(doc *model.Document, a *listAccumulator, minEntries int, lt model.LineType) (ListResult, bool) {
	defer a.reset()
	if !a.open() || len(a.entries) < minEntries {
		return ListResult{}, false
	}

	res := ListResult{Marker: a.marker, NoEntries: len(a.entries)}
	for _, e := range a.entries {
		page := doc.Pages[e.page]
		var parts []string
		for i := e.from; i <= e.to; i++ {
			line := page.Lines[i]
			if !line.LineType.IsBody() {
				continue
			}
			line.LineType = lt
			if t := strings.TrimSpace(line.Text); t != "" {
				parts = append(parts, t)
			}
		}
		res.Entries = append(res.Entries, ListEntry{
			PageNo:      page.PageNo,
			ParagraphNo: e.para,
			LineNoFrom:  page.Lines[e.from].LineNoPage,
			LineNoTo:    page.Lines[e.to].LineNoPage,
			Value:       e.value,
			Text:        strings.Join(parts, " "),
		})
	}
	return res, true
}
