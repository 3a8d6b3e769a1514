package rules

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAscending(t *testing.T) {
	tests := []struct {
		asc        Ascending
		pred, succ string
		want       bool
	}{
		{AscIgnore, "x", "a", true},
		{AscLowercaseLetters, "(a)", "(b)", true},
		{AscLowercaseLetters, "a.", "c.", false},
		{AscLowercaseLetters, "A.", "B.", false},
		{AscUppercaseLetters, "(A)", "(B)", true},
		{AscUppercaseLetters, "EXHIBIT A", "EXHIBIT B", true},
		{AscUppercaseLetters, "a", "b", false},
		{AscIntegers, "1.", "2.", true},
		{AscIntegers, "(9)", "(10)", true},
		{AscIntegers, "1.", "3.", false},
		{AscIntegers, "x", "2.", false},
		{AscIntegers, "Article 4:", "Article 5:", true},
		{AscFloats, "1.1", "1.2", true},
		{AscFloats, "Section 1.1.", "Section 2.1.", true},
		{AscFloats, "1.2", "1.2", false},
		{AscFloats, "1.1", "2.5", false},
		{AscRomans, "(i)", "(ii)", true},
		{AscRomans, "iii.", "iv.", true},
		{AscRomans, "IX)", "X)", true},
		{AscRomans, "iv", "v", true},
		{AscRomans, "PART IV", "PART V", true},
		{AscRomans, "(ii)", "(iv)", false},
		{AscRomans, "(q)", "(r)", false},
		{AscStrings, "1.1.1", "1.1.2", true},
		{AscStrings, "b", "a", false},
		{AscStrings, "a", "a", false},
	}
	for _, tt := range tests {
		if got := tt.asc.IsAscending(tt.pred, tt.succ); got != tt.want {
			t.Errorf("%s.IsAscending(%q, %q): expected %v, got %v", tt.asc, tt.pred, tt.succ, tt.want, got)
		}
	}
}

func TestParseAscending(t *testing.T) {
	a, err := ParseAscending(" Romans ")
	if err != nil || a != AscRomans {
		t.Errorf("expected romans, got %q (%v)", a, err)
	}
	if _, err := ParseAscending("asc_unknown"); err == nil {
		t.Error("expected error for unknown ascending function")
	}
}

func TestRomanToInt(t *testing.T) {
	cases := map[string]int{"i": 1, "IV": 4, "ix": 9, "XIV": 14, "MCMXC": 1990, "": 0, "abc": 0}
	for in, want := range cases {
		if got := RomanToInt(in); got != want {
			t.Errorf("RomanToInt(%q): expected %d, got %d", in, want, got)
		}
	}
}

func TestRule_FindAndStarts(t *testing.T) {
	table := DefaultHeadingTable()
	r, value, ok := table.FirstStart("1. Introduction")
	if !ok {
		t.Fatal("expected a rule to match")
	}
	if r.Name != "999." || value != "1." {
		t.Errorf("expected rule 999. with value 1., got %s with %q", r.Name, value)
	}
	if _, _, ok := table.FirstStart("7. Late start"); ok {
		t.Error("expected start values to reject 7.")
	}
	r, _, ok = table.FirstStart("(i) first roman")
	if !ok || r.Name != "(rom)" {
		t.Errorf("expected (i) to open a roman rule, got %v", r)
	}
	r, value, ok = table.FirstStart("Article 3: Duties")
	if !ok || r.Name != "Article 999" || value != "Article 3:" {
		t.Errorf("expected full-line Article rule, got %v %q", r, value)
	}
}

func TestBulletTable_GlyphLongestFirst(t *testing.T) {
	table := NewBulletTable(nil, []string{"-", "->", "•"})
	if table.Glyphs[0] != "->" {
		t.Errorf("expected longest glyph first, got %v", table.Glyphs)
	}
	if g, ok := table.Glyph("-> arrow item"); !ok || g != "->" {
		t.Errorf("expected glyph ->, got %q", g)
	}
	if g, ok := table.Glyph("  - dash item"); !ok || g != "-" {
		t.Errorf("expected glyph -, got %q", g)
	}
	if _, ok := table.Glyph("-5 degrees"); ok {
		t.Error("expected ASCII glyph without trailing space to be rejected")
	}
	if g, ok := table.Glyph("•tight bullet"); !ok || g != "•" {
		t.Errorf("expected non-ASCII glyph to match without space, got %q", g)
	}
}

func TestDefaultBulletTable_AntiPattern(t *testing.T) {
	table := DefaultBulletTable()
	if _, ok := table.IsAntiPattern("- 5 %"); !ok {
		t.Error("expected negative amount to be an anti-pattern")
	}
	if _, ok := table.IsAntiPattern("- a real item"); ok {
		t.Error("expected ordinary bullet not to be an anti-pattern")
	}
}

func TestLoadTable_MissingFile(t *testing.T) {
	_, err := LoadTable(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrRuleFileNotFound) {
		t.Fatalf("expected ErrRuleFileNotFound, got %v", err)
	}
	_, err = BulletGlyphs(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrRuleFileNotFound) {
		t.Fatalf("expected ErrRuleFileNotFound for bullets, got %v", err)
	}
}

func TestLoadTable_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rules) != 0 || len(table.AntiPatterns) != 0 {
		t.Errorf("expected empty table, got %+v", table)
	}
	bullets, err := LoadBulletTable(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bullets.Glyphs) != 0 {
		t.Errorf("expected no glyphs, got %v", bullets.Glyphs)
	}
}

func TestLoadTable_RegexpRoundTrip(t *testing.T) {
	src := `{
		"lineTypeAntiPatterns": [{"name": "A B", "regexp": "^[A-Z]\\.?\\s+[A-Z]\\.?(\\s|$)"}],
		"lineTypeRules": [
			{"name": "(a)", "regexp": "^\\([a-z]\\)$", "functionIsAsc": "lowercase_letters", "startValues": ["(a)"]},
			{"name": "Article", "isFirstToken": false, "regexp": "^Article \\d+", "functionIsAsc": "integers", "startValues": []}
		]
	}`
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw ruleFile
	if err := json.Unmarshal([]byte(src), &raw); err != nil {
		t.Fatal(err)
	}
	if table.AntiPatterns[0].Pattern.String() != raw.AntiPatterns[0].Regexp {
		t.Errorf("anti-pattern source changed: %q vs %q", table.AntiPatterns[0].Pattern.String(), raw.AntiPatterns[0].Regexp)
	}
	for i, r := range table.Rules {
		if r.Match.String() != raw.Rules[i].Regexp {
			t.Errorf("rule %d source changed: %q vs %q", i, r.Match.String(), raw.Rules[i].Regexp)
		}
	}
	if !table.Rules[0].IsFirstToken {
		t.Error("expected isFirstToken to default to true")
	}
	if table.Rules[1].IsFirstToken {
		t.Error("expected explicit isFirstToken false")
	}
	if !table.Rules[0].Starts("(a)") || table.Rules[0].Starts("(b)") {
		t.Error("unexpected start values")
	}
	if !table.Rules[1].Starts("Article 7") {
		t.Error("expected empty start values to admit anything")
	}
}

func TestLoadTable_BadAscending(t *testing.T) {
	if _, err := ParseTable([]byte(`{"lineTypeRules":[{"name":"x","regexp":"x","functionIsAsc":"nope"}]}`)); err == nil {
		t.Error("expected error for unknown functionIsAsc")
	}
	if _, err := ParseTable([]byte(`{"lineTypeRules":[{"name":"x","regexp":"(","functionIsAsc":"ignore"}]}`)); err == nil {
		t.Error("expected error for invalid regexp")
	}
}

func TestMarshalTable_RoundTrip(t *testing.T) {
	for name, table := range map[string]*Table{"heading": DefaultHeadingTable(), "number": DefaultNumberTable()} {
		data, err := MarshalTable(table)
		if err != nil {
			t.Fatalf("%s: marshal: %v", name, err)
		}
		back, err := ParseTable(data)
		if err != nil {
			t.Fatalf("%s: parse: %v", name, err)
		}
		if len(back.Rules) != len(table.Rules) {
			t.Fatalf("%s: expected %d rules, got %d", name, len(table.Rules), len(back.Rules))
		}
		for i := range table.Rules {
			a, b := table.Rules[i], back.Rules[i]
			if a.Match.String() != b.Match.String() || a.Ascending != b.Ascending || a.IsFirstToken != b.IsFirstToken {
				t.Errorf("%s: rule %d differs after round trip: %+v vs %+v", name, i, a, b)
			}
			if len(a.StartValues) != len(b.StartValues) {
				t.Errorf("%s: rule %d start values differ", name, i)
			}
		}
	}

	data, err := MarshalBulletTable(DefaultBulletTable())
	if err != nil {
		t.Fatal(err)
	}
	back, err := ParseBulletTable(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Glyphs) != len(DefaultBulletTable().Glyphs) {
		t.Errorf("expected %d glyphs, got %d", len(DefaultBulletTable().Glyphs), len(back.Glyphs))
	}
}

func TestRule_UnanchoredRuleFilePatterns(t *testing.T) {
	src := `{
		"lineTypeAntiPatterns": [{"name": "9 %", "regexp": "\\d+\\s*%"}],
		"lineTypeRules": [
			{"name": "999.", "regexp": "\\d+\\.", "functionIsAsc": "integers", "startValues": ["1."]},
			{"name": "Article", "isFirstToken": false, "regexp": "Article \\d+", "functionIsAsc": "integers"}
		]
	}`
	table, err := ParseTable([]byte(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, text := range []string{"x1. not numbered", "see Article 4 of the treaty"} {
		if r, value, ok := table.FirstStart(text); ok {
			t.Errorf("expected %q not to match, got rule %q with value %q", text, r.Name, value)
		}
	}
	if r, value, ok := table.FirstStart("1. numbered"); !ok || r.Name != "999." || value != "1." {
		t.Errorf("expected rule 999. with value 1., got %v %q", r, value)
	}
	if r, value, ok := table.FirstStart("Article 4 of the treaty"); !ok || r.Name != "Article" || value != "Article 4" {
		t.Errorf("expected rule Article with value %q, got %v %q", "Article 4", r, value)
	}

	if _, ok := table.IsAntiPattern("5 % discount"); !ok {
		t.Error("expected leading percentage to be an anti-pattern")
	}
	if _, ok := table.IsAntiPattern("a discount of 5 %"); ok {
		t.Error("expected anti-pattern not to match mid-line")
	}
	if table.Rules[0].Match.String() != `\d+\.` {
		t.Errorf("expected regexp source to stay unchanged, got %q", table.Rules[0].Match.String())
	}
}

func TestRule_DisplayValue(t *testing.T) {
	table, err := ParseTable([]byte(`{"lineTypeRules":[
		{"name": "(a)", "regexp": "^\\([a-z]\\)$", "displayRegexp": "[a-z]", "functionIsAsc": "lowercase_letters"},
		{"name": "999.", "regexp": "^\\d+\\.$", "functionIsAsc": "integers"}
	]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Rules[0].DisplayValue("(c)"); got != "c" {
		t.Errorf("expected display value %q, got %q", "c", got)
	}
	if got := table.Rules[1].DisplayValue("7."); got != "7." {
		t.Errorf("expected value unchanged without display regexp, got %q", got)
	}
}
