// Package worker runs invoice generations on a bounded pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-filler/internal/generator"
	"github.com/garyjia/invoice-filler/internal/invoice"
)

// DefaultWorkers is the pool size used when none is configured
const DefaultWorkers = 2

// Generator fills one invoice
type Generator interface {
	Generate(ctx context.Context, form invoice.InvoiceForm) (*generator.Result, error)
}

// Job is one form to generate. Source names where it came from, for reporting.
type Job struct {
	Source string
	Form   invoice.InvoiceForm
}

// Outcome is the result of one Job
type Outcome struct {
	Source string
	Result *generator.Result
	Err    error
}

// BatchStatus summarizes a finished batch
type BatchStatus struct {
	ProcessedCount int
	FailedCount    int
	Duration       time.Duration
	LastError      error
}

// BatchProcessor generates many forms concurrently
type BatchProcessor struct {
	workers   int
	generator Generator
	logger    *zap.Logger
}

// NewBatchProcessor creates a new batch processor. workers <= 0 selects DefaultWorkers.
func NewBatchProcessor(gen Generator, workers int, logger *zap.Logger) *BatchProcessor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &BatchProcessor{
		workers:   workers,
		generator: gen,
		logger:    logger,
	}
}

// Run generates every job and returns the outcomes in job order.
// A job whose output file is already produced by an earlier job of the batch fails
// with generator.ErrOutputBusy without running. Jobs not started before ctx is
// canceled fail with the context error.
func (p *BatchProcessor) Run(ctx context.Context, jobs []Job) ([]Outcome, BatchStatus) {
	start := time.Now()
	outcomes := make([]Outcome, len(jobs))
	pending := p.claimOutputs(jobs, outcomes)

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(pending) {
		workers = len(pending)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = p.process(ctx, jobs[i])
			}
		}()
	}

feed:
	for n, i := range pending {
		select {
		case indexes <- i:
		case <-ctx.Done():
			for _, j := range pending[n:] {
				outcomes[j] = Outcome{Source: jobs[j].Source, Err: ctx.Err()}
			}
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	status := BatchStatus{Duration: time.Since(start)}
	for _, o := range outcomes {
		status.ProcessedCount++
		if o.Err != nil {
			status.FailedCount++
			status.LastError = o.Err
		}
	}

	p.logger.Info("Batch finished",
		zap.Int("processed", status.ProcessedCount),
		zap.Int("failed", status.FailedCount),
		zap.Int("workers", workers),
		zap.Duration("duration", status.Duration))

	return outcomes, status
}

// claimOutputs returns the indexes of the jobs to run and fails every later job that
// targets the output file of an earlier one
func (p *BatchProcessor) claimOutputs(jobs []Job, outcomes []Outcome) []int {
	pending := make([]int, 0, len(jobs))
	claimed := make(map[string]int, len(jobs))
	for i, job := range jobs {
		number := job.Form.InvoiceNumber()
		if strings.TrimSpace(number) == "" {
			// left to validation
			pending = append(pending, i)
			continue
		}
		name := generator.OutputFileName(number)
		if first, ok := claimed[name]; ok {
			outcomes[i] = Outcome{
				Source: job.Source,
				Err:    fmt.Errorf("%w: %s is also produced by %s", generator.ErrOutputBusy, name, jobs[first].Source),
			}
			p.logger.Warn("Skipping batch job with a duplicate output file",
				zap.String("source", job.Source),
				zap.String("file_name", name),
				zap.String("first_source", jobs[first].Source))
			continue
		}
		claimed[name] = i
		pending = append(pending, i)
	}
	return pending
}

func (p *BatchProcessor) process(ctx context.Context, job Job) Outcome {
	result, err := p.generator.Generate(ctx, job.Form)
	if err != nil {
		p.logger.Warn("Batch job failed", zap.String("source", job.Source), zap.Error(err))
	}
	return Outcome{Source: job.Source, Result: result, Err: err}
}
