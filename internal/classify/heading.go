package classify

import (
	"strings"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/rules"
)

// HeadingConfig controls heading detection.
type HeadingConfig struct {
	MaxLevel         int
	MinPages         int
	TolerancePercent float64
	CreateTOC        bool
	RuleFile         string
	Verbose          bool
}

// TOCEntry is one detected heading.
type TOCEntry struct {
	Level  int    `json:"headingLevel"`
	Text   string `json:"headingText"`
	PageNo int    `json:"pageNo"`
}

// Heading detects numbered and lettered headings and their nesting level.
type Heading struct {
	cfg   HeadingConfig
	table *rules.Table
	tracer
}

// NewHeading creates a heading classifier over the given rule table.
func NewHeading(cfg HeadingConfig, table *rules.Table, deps Deps) (*Heading, error) {
	if table == nil {
		return nil, ErrMissingTable
	}
	return &Heading{cfg: cfg, table: table, tracer: tracer{log: deps.logger(), verbose: cfg.Verbose}}, nil
}

type levelEntry struct {
	rule  *rules.Rule
	level int
	llx   float64
	value string
}

// hierarchy is the stack of active heading levels; entry i has level i+1.
type hierarchy struct {
	entries []levelEntry
}

func (h *hierarchy) depth() int { return len(h.entries) }

func (h *hierarchy) push(rule *rules.Rule, llx float64, value string) int {
	level := len(h.entries) + 1
	h.entries = append(h.entries, levelEntry{rule: rule, level: level, llx: llx, value: value})
	return level
}

// truncate discards every level deeper than level.
func (h *hierarchy) truncate(level int) {
	if level < len(h.entries) {
		h.entries = h.entries[:level]
	}
}

// Classify tags heading lines in place and returns the table of contents when
// TOC creation is enabled.
func (c *Heading) Classify(doc *model.Document) []TOCEntry {
	if c.cfg.MaxLevel <= 0 || len(doc.Pages) < c.cfg.MinPages {
		c.trace("heading skipped", "file", doc.FileName, "pages", len(doc.Pages))
		return nil
	}

	var (
		stack hierarchy
		toc   []TOCEntry
	)
	for _, page := range doc.Pages {
		for li, line := range page.Lines {
			if !line.LineType.IsBody() {
				continue
			}
			level, rule, value, ok := c.match(&stack, line)
			if !ok {
				continue
			}
			line.LineType = model.HeadingType(level)
			c.trace("heading found", "page", page.PageNo, "line", line.LineNoPage, "level", level, "value", value)

			if c.cfg.CreateTOC {
				toc = append(toc, TOCEntry{
					Level:  level,
					Text:   tocText(page, li, value, rule.DisplayValue(value)),
					PageNo: page.PageNo,
				})
			}
		}
	}
	return toc
}

func (c *Heading) match(stack *hierarchy, line *model.Line) (int, *rules.Rule, string, bool) {
	text := strings.TrimSpace(line.Text)
	if text == "" {
		return 0, nil, "", false
	}
	if name, ok := c.table.IsAntiPattern(text); ok {
		c.trace("heading anti-pattern", "pattern", name, "text", text)
		return 0, nil, "", false
	}

	for i := stack.depth() - 1; i >= 0; i-- {
		e := &stack.entries[i]
		value, ok := e.rule.Find(text)
		if !ok || !withinTolerance(line.CoordLLX, e.llx, c.cfg.TolerancePercent) {
			continue
		}
		if !e.rule.IsAscending(e.value, value) {
			return 0, nil, "", false
		}
		e.value = value
		stack.truncate(e.level)
		return e.level, e.rule, value, true
	}

	rule, value, ok := c.table.FirstStart(text)
	if !ok || stack.depth() >= c.cfg.MaxLevel {
		return 0, nil, "", false
	}
	return stack.push(rule, line.CoordLLX, value), rule, value, true
}

// tocText is the heading text, extended by the following line when the heading
// line holds nothing but its numbering. The leading numbering is shown in its
// display form.
func tocText(page *model.Page, li int, value, display string) string {
	text := strings.TrimSpace(page.Lines[li].Text)
	if text == value && li+1 < len(page.Lines) {
		if next := strings.TrimSpace(page.Lines[li+1].Text); next != "" {
			text += " " + next
		}
	}
	if rest, ok := strings.CutPrefix(text, value); ok {
		text = display + rest
	}
	return text
}
