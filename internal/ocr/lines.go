package ocr

import (
	"sort"
	"strings"
)

// Word is one recognized word with its pixel bounding box and Tesseract's
// block/paragraph/line numbering.
type Word struct {
	Text                      string
	MinX, MaxX, MinY          int
	BlockNum, ParNum, LineNum int
}

// Line is a recognized text line. LLX and URX are pixel coordinates.
type Line struct {
	Text        string
	ParagraphNo int
	LLX, URX    float64
}

type lineKey struct{ block, par, line int }

// GroupLines joins words into lines in reading order. ParagraphNo counts the
// distinct (block, paragraph) pairs starting at 1.
func GroupLines(words []Word) []Line {
	type acc struct {
		key   lineKey
		words []Word
		minY  int
	}
	var (
		order []*acc
		byKey = make(map[lineKey]*acc)
	)
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		k := lineKey{w.BlockNum, w.ParNum, w.LineNum}
		a, ok := byKey[k]
		if !ok {
			a = &acc{key: k, minY: w.MinY}
			byKey[k] = a
			order = append(order, a)
		}
		if w.MinY < a.minY {
			a.minY = w.MinY
		}
		a.words = append(a.words, w)
	}

	var (
		lines    []Line
		para     int
		lastPara = lineKey{-1, -1, 0}
	)
	for _, a := range order {
		if pk := (lineKey{a.key.block, a.key.par, 0}); pk != lastPara {
			para++
			lastPara = pk
		}
		sort.SliceStable(a.words, func(i, j int) bool { return a.words[i].MinX < a.words[j].MinX })
		parts := make([]string, len(a.words))
		llx, urx := a.words[0].MinX, a.words[0].MaxX
		for i, w := range a.words {
			parts[i] = strings.TrimSpace(w.Text)
			if w.MinX < llx {
				llx = w.MinX
			}
			if w.MaxX > urx {
				urx = w.MaxX
			}
		}
		lines = append(lines, Line{
			Text:        strings.Join(parts, " "),
			ParagraphNo: para,
			LLX:         float64(llx),
			URX:         float64(urx),
		})
	}
	return lines
}
