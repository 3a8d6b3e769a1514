package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KonnexionsGmbH/dcr-sub001/internal/classify"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/config"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/model"
	"github.com/KonnexionsGmbH/dcr-sub001/internal/parser"
)

var (
	// ErrQueueFull is returned by Submit when the bounded queue has no room.
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped is returned by Submit after Stop.
	ErrStopped = errors.New("orchestrator is stopped")
)

const cleanupInterval = 5 * time.Minute

// Orchestrator manages the inbox: a bounded queue drained by a fixed pool of
// workers. Each worker handles one document at a time.
type Orchestrator struct {
	jobs     *JobStore
	queue    chan *Job
	pipeline *classify.Pipeline
	parser   parser.Options
	stats    *Stats
	log      *slog.Logger
	cfg      config.Config

	completed atomic.Int64
	failed    atomic.Int64

	mu      sync.RWMutex
	stopped bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Workers run after Start.
func NewOrchestrator(cfg config.Config, p *classify.Pipeline, opts parser.Options, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		pipeline: p,
		parser:   opts,
		stats:    NewStats(time.Hour),
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	workers := max(o.cfg.WorkerCount, 1)
	for range workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.pipeline, o.parser, o.cfg.ReportWriter(""), o.cfg.ReportToggles(), o.stats, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					if err := w.Process(workerCtx, job); err != nil {
						o.failed.Add(1)
						continue
					}
					o.completed.Add(1)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
	o.log.Info("inbox started", "workers", workers, "queue_size", cap(o.queue))
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}

	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d)", ErrQueueFull, cap(o.queue))
	}
}

// Classify runs the classifiers synchronously on an already parsed document.
func (o *Orchestrator) Classify(doc *model.Document) *classify.Result {
	start := time.Now()
	res := o.pipeline.Run(doc)
	o.stats.Record(time.Since(start))
	return res
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Counters is the inbox activity since start.
type Counters struct {
	Workers    int   `json:"workers"`
	QueueDepth int   `json:"queue_depth"`
	QueueSize  int   `json:"queue_size"`
	Jobs       int   `json:"jobs"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

// Counters returns the current queue and job counters.
func (o *Orchestrator) Counters() Counters {
	return Counters{
		Workers:    max(o.cfg.WorkerCount, 1),
		QueueDepth: len(o.queue),
		QueueSize:  cap(o.queue),
		Jobs:       o.jobs.Len(),
		Completed:  o.completed.Load(),
		Failed:     o.failed.Load(),
	}
}

// Stats returns the classification latency window.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}
