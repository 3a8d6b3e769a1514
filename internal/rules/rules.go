// Package rules holds the pattern tables used by the heading, numbered-list and
// bulleted-list classifiers, and reads and writes them as JSON rule files.
package rules

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
)

// AntiPattern marks lines that must never be claimed by a classifier.
type AntiPattern struct {
	Name    string
	Pattern *regexp.Regexp
}

// Rule is one numbering or heading pattern.
type Rule struct {
	Name string
	// IsFirstToken selects matching against the first token instead of the full line.
	IsFirstToken bool
	Match        *regexp.Regexp
	// Display, if set, extracts the value shown in reports from the matched value.
	Display     *regexp.Regexp
	Ascending   Ascending
	StartValues map[string]bool
}

// Subject returns the part of the line text the rule is matched against.
func (r *Rule) Subject(text string) string {
	if r.IsFirstToken {
		return model.FirstToken(text)
	}
	return strings.TrimSpace(text)
}

// Find matches the rule against a line and returns the matched value. The
// match must start at the beginning of the subject whether or not the pattern
// is anchored.
func (r *Rule) Find(text string) (string, bool) {
	subject := r.Subject(text)
	if subject == "" {
		return "", false
	}
	loc := matchPrefix(r.Match, subject)
	if loc == nil {
		return "", false
	}
	return subject[:loc[1]], true
}

// matchPrefix returns the leftmost match of re in s if it starts at offset 0.
func matchPrefix(re *regexp.Regexp, s string) []int {
	loc := re.FindStringIndex(s)
	if loc == nil || loc[0] != 0 {
		return nil
	}
	return loc
}

// Starts reports whether value may open a new sequence for this rule.
func (r *Rule) Starts(value string) bool {
	if len(r.StartValues) == 0 {
		return true
	}
	return r.StartValues[value]
}

// DisplayValue returns the report form of a matched value.
func (r *Rule) DisplayValue(value string) string {
	if r.Display == nil {
		return value
	}
	if m := r.Display.FindString(value); m != "" {
		return m
	}
	return value
}

// IsAscending applies the rule's ascending strategy.
func (r *Rule) IsAscending(pred, succ string) bool {
	return r.Ascending.IsAscending(pred, succ)
}

// Table is an ordered rule catalog plus its anti-patterns.
type Table struct {
	AntiPatterns []AntiPattern
	Rules        []*Rule
}

// IsAntiPattern reports the first anti-pattern matching the text, if any.
func (t *Table) IsAntiPattern(text string) (string, bool) {
	return matchAnti(t.AntiPatterns, text)
}

// FirstStart returns the first rule matching text whose start values admit the match.
func (t *Table) FirstStart(text string) (*Rule, string, bool) {
	for _, r := range t.Rules {
		value, ok := r.Find(text)
		if !ok || !r.Starts(value) {
			continue
		}
		return r, value, true
	}
	return nil, "", false
}

// BulletTable holds the known bullet glyphs, longest first.
type BulletTable struct {
	AntiPatterns []AntiPattern
	Glyphs       []string
}

// NewBulletTable sorts glyphs by descending length so longer prefixes win.
func NewBulletTable(anti []AntiPattern, glyphs []string) *BulletTable {
	sorted := make([]string, 0, len(glyphs))
	seen := make(map[string]bool, len(glyphs))
	for _, g := range glyphs {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		sorted = append(sorted, g)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})
	return &BulletTable{AntiPatterns: anti, Glyphs: sorted}
}

// IsAntiPattern reports the first anti-pattern matching the text, if any.
func (t *BulletTable) IsAntiPattern(text string) (string, bool) {
	return matchAnti(t.AntiPatterns, text)
}

// Glyph returns the bullet glyph opening the line, if any. A glyph ending in an
// ASCII character must be followed by whitespace or the end of the line.
func (t *BulletTable) Glyph(text string) (string, bool) {
	text = strings.TrimLeft(text, " \t")
	for _, g := range t.Glyphs {
		rest, ok := strings.CutPrefix(text, g)
		if !ok {
			continue
		}
		last, _ := utf8.DecodeLastRuneInString(g)
		if last < utf8.RuneSelf && rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		return g, true
	}
	return "", false
}

func matchAnti(anti []AntiPattern, text string) (string, bool) {
	text = strings.TrimSpace(text)
	for _, a := range anti {
		if matchPrefix(a.Pattern, text) != nil {
			return a.Name, true
		}
	}
	return "", false
}
