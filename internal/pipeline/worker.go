package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/classify"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/parser"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/report"
)

// Worker processes one document job at a time: parse, classify, report.
type Worker struct {
	pipeline   *classify.Pipeline
	parserOpts parser.Options
	writer     report.Writer
	toggles    report.Toggles
	stats      *Stats
	log        *slog.Logger
}

func NewWorker(p *classify.Pipeline, opts parser.Options, writer report.Writer, toggles report.Toggles, stats *Stats, log *slog.Logger) *Worker {
	return &Worker{
		pipeline:   p,
		parserOpts: opts,
		writer:     writer,
		toggles:    toggles,
		stats:      stats,
		log:        log,
	}
}

// Process runs the full pipeline for a job. The returned error is also
// recorded on the job, which ends in StatusCompleted or StatusFailed.
func (w *Worker) Process(ctx context.Context, job *Job) error {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	fail := func(phase string, err error) error {
		log.Error(phase+" failed", "error", err)
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		job.SetStatus(StatusFailed, phase)
		return err
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		return fail("parsing", err)
	}
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		return fail("parsing", err)
	}
	job.SetParsed(doc)
	log.Info("parsed document", "pages", len(doc.Pages), "lines", doc.NumLines())

	if err := ctx.Err(); err != nil {
		return fail("parsing", err)
	}

	// Phase 2: Classify
	job.SetStatus(StatusClassifying, "classifying")
	start := time.Now()
	res := w.pipeline.Run(doc)
	w.stats.Record(time.Since(start))
	job.SetResult(res)
	log.Info("classified document",
		"headings", len(res.TOC),
		"bullet_lists", len(res.BulletLists),
		"number_lists", len(res.NumberLists),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	// Phase 3: Side-car reports
	if w.writer.Dir != "" {
		if err := ctx.Err(); err != nil {
			return fail("reporting", err)
		}
		job.SetStatus(StatusReporting, "reporting")
		path, err := w.writer.WriteDocument(doc)
		if err != nil {
			return fail("reporting", err)
		}
		job.AddReportFiles(path)
		if w.toggles.Any() {
			paths, err := w.writer.Write(doc, res, w.toggles)
			job.AddReportFiles(paths...)
			if err != nil {
				return fail("reporting", err)
			}
		}
	}

	job.SetStatus(StatusCompleted, "done")
	return nil
}
