package worker

import (
	"context"
	"time"

	"github.com/faziolifabrizio-jpg/risparmioevoluto/internal/pipeline"
	"github.com/faziolifabrizio-jpg/risparmioevoluto/logger"
)

// Pipeline is the single-run contract the worker drives
type Pipeline interface {
	Run(now time.Time) pipeline.Report
}

// Worker runs the publication pipeline at a fixed interval
type Worker struct {
	ctx      context.Context
	pipeline Pipeline
	interval time.Duration
	log      *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(ctx context.Context, p Pipeline, interval time.Duration) *Worker {
	return &Worker{
		ctx:      ctx,
		pipeline: p,
		interval: interval,
		log:      logger.ForWorker(),
	}
}

// Start runs the pipeline immediately and then once per interval until
// the context is cancelled. Runs never overlap: the next one starts only
// after the previous run and its interval have both completed.
func (w *Worker) Start() error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		report := w.pipeline.Run(start)

		w.log.Info().
			Str("state", string(report.State)).
			Int("collected", report.Collected).
			Int("selected", report.Selected).
			Int("delivered", report.Delivered).
			Dur("elapsed", time.Since(start)).
			Msg("Pipeline run finished")

		select {
		case <-w.ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
