package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
)

// ErrRuleFileNotFound is returned when an explicitly configured rule file does not exist.
var ErrRuleFileNotFound = errors.New("rule file not found")

type fileAntiPattern struct {
	Name   string `json:"name"`
	Regexp string `json:"regexp"`
}

type fileRule struct {
	Name          string   `json:"name"`
	IsFirstToken  *bool    `json:"isFirstToken,omitempty"`
	Regexp        string   `json:"regexp"`
	DisplayRegexp string   `json:"displayRegexp,omitempty"`
	FunctionIsAsc string   `json:"functionIsAsc"`
	StartValues   []string `json:"startValues"`
}

type ruleFile struct {
	AntiPatterns []fileAntiPattern `json:"lineTypeAntiPatterns"`
	Rules        []fileRule        `json:"lineTypeRules"`
}

type bulletFile struct {
	AntiPatterns []fileAntiPattern `json:"lineTypeAntiPatterns"`
	Rules        []string          `json:"lineTypeRules"`
}

// HeadingTable returns the built-in heading table, or the one at path if set.
func HeadingTable(path string) (*Table, error) {
	if path == "" {
		return DefaultHeadingTable(), nil
	}
	return LoadTable(path)
}

// NumberTable returns the built-in numbered-list table, or the one at path if set.
func NumberTable(path string) (*Table, error) {
	if path == "" {
		return DefaultNumberTable(), nil
	}
	return LoadTable(path)
}

// BulletGlyphs returns the built-in bullet table, or the one at path if set.
func BulletGlyphs(path string) (*BulletTable, error) {
	if path == "" {
		return DefaultBulletTable(), nil
	}
	return LoadBulletTable(path)
}

// LoadTable reads a heading or numbered-list rule file. An empty file yields an
// empty table.
func LoadTable(path string) (*Table, error) {
	data, err := readRuleFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return &Table{}, nil
	}
	return ParseTable(data)
}

// ParseTable decodes rule-file JSON into a table.
func ParseTable(data []byte) (*Table, error) {
	var rf ruleFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("decode rule file: %w", err)
	}
	anti, err := compileAnti(rf.AntiPatterns)
	if err != nil {
		return nil, err
	}
	t := &Table{AntiPatterns: anti}
	for _, fr := range rf.Rules {
		match, err := regexp.Compile(fr.Regexp)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", fr.Name, err)
		}
		asc, err := ParseAscending(fr.FunctionIsAsc)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", fr.Name, err)
		}
		r := &Rule{
			Name:         fr.Name,
			IsFirstToken: fr.IsFirstToken == nil || *fr.IsFirstToken,
			Match:        match,
			Ascending:    asc,
		}
		if fr.DisplayRegexp != "" {
			if r.Display, err = regexp.Compile(fr.DisplayRegexp); err != nil {
				return nil, fmt.Errorf("rule %q display: %w", fr.Name, err)
			}
		}
		if len(fr.StartValues) > 0 {
			r.StartValues = make(map[string]bool, len(fr.StartValues))
			for _, v := range fr.StartValues {
				r.StartValues[v] = true
			}
		}
		t.Rules = append(t.Rules, r)
	}
	return t, nil
}

// LoadBulletTable reads a bulleted-list rule file. An empty file yields an empty table.
func LoadBulletTable(path string) (*BulletTable, error) {
	data, err := readRuleFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return NewBulletTable(nil, nil), nil
	}
	return ParseBulletTable(data)
}

// ParseBulletTable decodes bullet rule-file JSON.
func ParseBulletTable(data []byte) (*BulletTable, error) {
	var bf bulletFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("decode bullet rule file: %w", err)
	}
	anti, err := compileAnti(bf.AntiPatterns)
	if err != nil {
		return nil, err
	}
	return NewBulletTable(anti, bf.Rules), nil
}

// MarshalTable encodes a table in rule-file form.
func MarshalTable(t *Table) ([]byte, error) {
	rf := ruleFile{
		AntiPatterns: marshalAnti(t.AntiPatterns),
		Rules:        make([]fileRule, 0, len(t.Rules)),
	}
	for _, r := range t.Rules {
		first := r.IsFirstToken
		fr := fileRule{
			Name:          r.Name,
			IsFirstToken:  &first,
			Regexp:        r.Match.String(),
			FunctionIsAsc: string(r.Ascending),
			StartValues:   make([]string, 0, len(r.StartValues)),
		}
		if r.Display != nil {
			fr.DisplayRegexp = r.Display.String()
		}
		for v := range r.StartValues {
			fr.StartValues = append(fr.StartValues, v)
		}
		sort.Strings(fr.StartValues)
		rf.Rules = append(rf.Rules, fr)
	}
	return json.MarshalIndent(rf, "", "    ")
}

// MarshalBulletTable encodes a bullet table in rule-file form.
func MarshalBulletTable(t *BulletTable) ([]byte, error) {
	bf := bulletFile{
		AntiPatterns: marshalAnti(t.AntiPatterns),
		Rules:        append([]string{}, t.Glyphs...),
	}
	return json.MarshalIndent(bf, "", "    ")
}

func readRuleFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRuleFileNotFound, path)
		}
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return bytes.TrimSpace(data), nil
}

func compileAnti(in []fileAntiPattern) ([]AntiPattern, error) {
	out := make([]AntiPattern, 0, len(in))
	for _, a := range in {
		re, err := regexp.Compile(a.Regexp)
		if err != nil {
			return nil, fmt.Errorf("anti-pattern %q: %w", a.Name, err)
		}
		out = append(out, AntiPattern{Name: a.Name, Pattern: re})
	}
	return out, nil
}

func marshalAnti(in []AntiPattern) []fileAntiPattern {
	out := make([]fileAntiPattern, 0, len(in))
	for _, a := range in {
		out = append(out, fileAntiPattern{Name: a.Name, Regexp: a.Pattern.String()})
	}
	return out
}
