package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Ascending names the strategy deciding whether a value is the successor of another.
type Ascending string

const (
	AscIgnore           Ascending = "ignore"
	AscLowercaseLetters Ascending = "lowercase_letters"
	AscUppercaseLetters Ascending = "uppercase_letters"
	AscRomans           Ascending = "romans"
	AscStrings          Ascending = "strings"
	AscIntegers         Ascending = "integers"
	AscFloats           Ascending = "floats"
)

var ascendingByName = map[string]Ascending{
	string(AscIgnore):           AscIgnore,
	string(AscLowercaseLetters): AscLowercaseLetters,
	string(AscUppercaseLetters): AscUppercaseLetters,
	string(AscRomans):           AscRomans,
	string(AscStrings):          AscStrings,
	string(AscIntegers):         AscIntegers,
	string(AscFloats):           AscFloats,
}

// ParseAscending maps a rule file's functionIsAsc value onto a strategy.
func ParseAscending(name string) (Ascending, error) {
	a, ok := ascendingByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown ascending function %q", name)
	}
	return a, nil
}

// IsAscending reports whether succ directly follows pred under this strategy.
func (a Ascending) IsAscending(pred, succ string) bool {
	switch a {
	case AscIgnore:
		return true
	case AscLowercaseLetters:
		return letterAscending(pred, succ, unicode.IsLower)
	case AscUppercaseLetters:
		return letterAscending(pred, succ, unicode.IsUpper)
	case AscRomans:
		p, q := RomanToInt(stripRoman(pred)), RomanToInt(stripRoman(succ))
		return p > 0 && q == p+1
	case AscStrings:
		return succ > pred
	case AscIntegers:
		p, okP := firstInt(pred)
		q, okQ := firstInt(succ)
		return okP && okQ && q == p+1
	case AscFloats:
		p, okP := firstFloat(pred)
		q, okQ := firstFloat(succ)
		if !okP || !okQ {
			return false
		}
		diff := q - p
		return diff > floatEpsilon && diff <= 1+floatEpsilon
	}
	return false
}

func letterAscending(pred, succ string, class func(rune) bool) bool {
	p, okP := lastLetter(pred)
	q, okQ := lastLetter(succ)
	return okP && okQ && class(p) && class(q) && q == p+1
}

func lastLetter(s string) (rune, bool) {
	s = strings.TrimRightFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if s == "" {
		return 0, false
	}
	runes := []rune(s)
	return runes[len(runes)-1], true
}

// floatEpsilon absorbs binary rounding, e.g. 2.1-1.1 > 1.
const floatEpsilon = 1e-9

var (
	intPattern   = regexp.MustCompile(`\d+`)
	floatPattern = regexp.MustCompile(`\d+(\.\d+)?`)
)

func firstInt(s string) (int, bool) {
	m := intPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

func firstFloat(s string) (float64, bool) {
	m := floatPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	return f, err == nil
}

// stripRoman removes the enclosing punctuation of a numbering token: one leading
// "(" or "[" and any trailing ")", "]", "." or ":". A bare numeral is left as is.
func stripRoman(s string) string {
	s = strings.TrimSpace(s)
	if fields := strings.Fields(s); len(fields) > 1 {
		s = fields[len(fields)-1]
	}
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimPrefix(s, "[")
	return strings.TrimRight(s, ")].:")
}

var romanValues = map[rune]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50,
	'C': 100, 'D': 500, 'M': 1000,
}

// RomanToInt converts a roman numeral (either case) to an integer.
// Returns 0 for empty or invalid input.
func RomanToInt(s string) int {
	s = strings.ToUpper(s)
	if s == "" {
		return 0
	}
	runes := []rune(s)
	total := 0
	for i, r := range runes {
		v, ok := romanValues[r]
		if !ok {
			return 0
		}
		if i+1 < len(runes) {
			if next, ok := romanValues[runes[i+1]]; ok && v < next {
				total -= v
				continue
			}
		}
		total += v
	}
	return total
}
