// Package classify assigns structural line types (header, footer, heading,
// bulleted and numbered list entries) to the lines of a parsed document.
//
// Classifiers mutate model.Line.LineType in place and only ever claim lines
// that are still tagged body, so running them in sequence lets later stages
// see only what earlier stages left unclaimed.
package classify

import (
	"context"
	"errors"
	"log/slog"
	"math"
)

// ErrMissingTable is returned when a classifier is built without its rule table.
var ErrMissingTable = errors.New("classify: rule table is required")

// Deps are the collaborators shared by every classifier.
type Deps struct {
	Log *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Log
}

// tracer logs at Info when the classifier is verbose, Debug otherwise.
type tracer struct {
	log     *slog.Logger
	verbose bool
}

func (t tracer) trace(msg string, args ...any) {
	level := slog.LevelDebug
	if t.verbose {
		level = slog.LevelInfo
	}
	t.log.Log(context.Background(), level, msg, args...)
}

// withinTolerance reports whether x lies within ±percent of ref.
func withinTolerance(x, ref, percent float64) bool {
	return math.Abs(x-ref) <= math.Abs(ref)*percent/100+1e-9
}
