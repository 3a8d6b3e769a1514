package classify

import (
	"fmt"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/rules"
)

// Options configures every classifier of a Pipeline.
type Options struct {
	HeaderFooter HeaderFooterConfig
	Heading      HeadingConfig
	Bullet       ListConfig
	Number       ListConfig
}

// Result is what one document run produced besides the in-place tags.
type Result struct {
	HeaderFooter HeaderFooterCounts     `json:"headerFooter"`
	TOC          []TOCEntry             `json:"toc"`
	BulletLists  []ListResult           `json:"listsBullet"`
	NumberLists  []ListResult           `json:"listsNumber"`
	LineTypes    map[model.LineType]int `json:"lineTypes"`
}

// Pipeline runs the classifiers in order: header/footer, heading, bulleted
// list, numbered list. A Pipeline holds no per-document state and may be shared
// by concurrent workers as long as each document is processed by one of them.
type Pipeline struct {
	headerFooter *HeaderFooter
	heading      *Heading
	bullet       *BulletList
	number       *NumberList
}

// NewPipeline loads the configured rule tables once and builds the classifiers.
// A configured rule file that does not exist yields rules.ErrRuleFileNotFound.
func NewPipeline(opts Options, deps Deps) (*Pipeline, error) {
	headingTable, err := rules.HeadingTable(opts.Heading.RuleFile)
	if err != nil {
		return nil, fmt.Errorf("heading rules: %w", err)
	}
	bulletTable, err := rules.BulletGlyphs(opts.Bullet.RuleFile)
	if err != nil {
		return nil, fmt.Errorf("bulleted list rules: %w", err)
	}
	numberTable, err := rules.NumberTable(opts.Number.RuleFile)
	if err != nil {
		return nil, fmt.Errorf("numbered list rules: %w", err)
	}

	p := &Pipeline{headerFooter: NewHeaderFooter(opts.HeaderFooter, deps)}
	if p.heading, err = NewHeading(opts.Heading, headingTable, deps); err != nil {
		return nil, err
	}
	if p.bullet, err = NewBulletList(opts.Bullet, bulletTable, deps); err != nil {
		return nil, err
	}
	if p.number, err = NewNumberList(opts.Number, numberTable, deps); err != nil {
		return nil, err
	}
	return p, nil
}

// Run classifies one document in place.
func (p *Pipeline) Run(doc *model.Document) *Result {
	res := &Result{}
	res.HeaderFooter = p.headerFooter.Classify(doc)
	res.TOC = p.heading.Classify(doc)
	res.BulletLists = p.bullet.Classify(doc)
	res.NumberLists = p.number.Classify(doc)
	res.LineTypes = doc.Counts()
	return res
}
