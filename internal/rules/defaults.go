package rules

import "regexp"

const (
	romanUpper = `(I|II|III|IV|V|VI|VII|VIII|IX|X|XI|XII|XIII|XIV|XV|XVI|XVII|XVIII|XIX|XX)`
	romanLower = `(i|ii|iii|iv|v|vi|vii|viii|ix|x|xi|xii|xiii|xiv|xv|xvi|xvii|xviii|xix|xx)`
)

func newRule(name string, firstToken bool, match string, asc Ascending, starts ...string) *Rule {
	r := &Rule{
		Name:         name,
		IsFirstToken: firstToken,
		Match:        regexp.MustCompile(match),
		Ascending:    asc,
	}
	if len(starts) > 0 {
		r.StartValues = make(map[string]bool, len(starts))
		for _, s := range starts {
			r.StartValues[s] = true
		}
	}
	return r
}

func newAnti(name, pattern string) AntiPattern {
	return AntiPattern{Name: name, Pattern: regexp.MustCompile(pattern)}
}

// DefaultHeadingTable is the built-in heading catalog. Roman rules precede the
// letter rules so "(i)" opens a roman sequence rather than a letter one.
func DefaultHeadingTable() *Table {
	return &Table{
		AntiPatterns: []AntiPattern{
			newAnti("A B", `^[A-Z]\.?\s+[A-Z]\.?(\s|$)`),
			newAnti("9 9", `^\d+\.?\s+\d+\.?(\s|$)`),
			newAnti("9.9 %", `^\d+([.,]\d+)?\s*%`),
		},
		Rules: []*Rule{
			newRule("(999)", true, `^\(\d+\)$`, AscIntegers, "(1)"),
			newRule("(ROM)", true, `^\(`+romanUpper+`\)$`, AscRomans, "(I)"),
			newRule("(rom)", true, `^\(`+romanLower+`\)$`, AscRomans, "(i)"),
			newRule("(A)", true, `^\([A-Z]\)$`, AscUppercaseLetters, "(A)"),
			newRule("(a)", true, `^\([a-z]\)$`, AscLowercaseLetters, "(a)"),
			newRule("999.", true, `^\d+\.$`, AscIntegers, "1."),
			newRule("999.999", true, `^\d+\.\d+\.?$`, AscFloats),
			newRule("999.999.999", true, `^\d+\.\d+\.\d+\.?$`, AscStrings),
			newRule("ROM.", true, `^`+romanUpper+`\.$`, AscRomans, "I."),
			newRule("rom.", true, `^`+romanLower+`\.$`, AscRomans, "i."),
			newRule("A.", true, `^[A-Z]\.$`, AscUppercaseLetters, "A."),
			newRule("a.", true, `^[a-z]\.$`, AscLowercaseLetters, "a."),
			newRule("999)", true, `^\d+\)$`, AscIntegers, "1)"),
			newRule("a)", true, `^[a-z]\)$`, AscLowercaseLetters, "a)"),
			newRule("Article 999", false, `^Article \d+:?`, AscIntegers),
			newRule("Chapter 999", false, `^Chapter \d+:?`, AscIntegers),
			newRule("Section 999.999", false, `^Section \d+\.\d+\.?`, AscFloats),
			newRule("PART ROM", false, `^PART `+romanUpper+`\b`, AscRomans),
			newRule("EXHIBIT A", false, `^EXHIBIT [A-Z]\b`, AscUppercaseLetters),
			newRule("Appendix A", false, `^Appendix [A-Z]\b`, AscUppercaseLetters),
			newRule("Schedule 999", false, `^Schedule \d+\b`, AscIgnore),
		},
	}
}

// DefaultNumberTable is the built-in numbered-list catalog.
func DefaultNumberTable() *Table {
	return &Table{
		AntiPatterns: []AntiPattern{
			newAnti("A B", `^[A-Z]\.?\s+[A-Z]\.?(\s|$)`),
			newAnti("9 9", `^\d+\.?\s+\d+\.?(\s|$)`),
		},
		Rules: []*Rule{
			newRule("(999)", true, `^\(\d+\)$`, AscIntegers, "(1)"),
			newRule("(ROM)", true, `^\(`+romanUpper+`\)$`, AscRomans, "(I)"),
			newRule("(rom)", true, `^\(`+romanLower+`\)$`, AscRomans, "(i)"),
			newRule("(A)", true, `^\([A-Z]\)$`, AscUppercaseLetters, "(A)"),
			newRule("(a)", true, `^\([a-z]\)$`, AscLowercaseLetters, "(a)"),
			newRule("999.", true, `^\d+\.$`, AscIntegers, "1."),
			newRule("999)", true, `^\d+\)$`, AscIntegers, "1)"),
			newRule("ROM.", true, `^`+romanUpper+`\.$`, AscRomans, "I."),
			newRule("rom.", true, `^`+romanLower+`\.$`, AscRomans, "i."),
			newRule("A.", true, `^[A-Z]\.$`, AscUppercaseLetters, "A."),
			newRule("a.", true, `^[a-z]\.$`, AscLowercaseLetters, "a."),
			newRule("A)", true, `^[A-Z]\)$`, AscUppercaseLetters, "A)"),
			newRule("a)", true, `^[a-z]\)$`, AscLowercaseLetters, "a)"),
		},
	}
}

// DefaultBulletTable is the built-in bullet glyph set.
func DefaultBulletTable() *BulletTable {
	return NewBulletTable(
		[]AntiPattern{
			newAnti("- 9 unit", `^-\s+\d+([.,]\d+)?\s*(%|€|\$|EUR|USD)?$`),
			newAnti("* footnote", `^\*\s*\)`),
		},
		[]string{
			"•", "◦", "▪", "▫", "■", "□", "●", "○", "◆", "◇",
			"➢", "➤", "►", "→", "✓", "✔", "·", "", "",
			"–", "—", "-", "*", "+", "o",
		},
	)
}
