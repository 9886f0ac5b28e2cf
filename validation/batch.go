package validation

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/georgepadayatti/adesvalidator/identifier"
	"github.com/georgepadayatti/adesvalidator/token"
)

// Job names one signature to validate.
type Job struct {
	Graph     *token.Graph
	Signature identifier.Identifier
	// At is the reference time; nil means the clock's current time.
	At *time.Time
}

// BatchResult is the outcome of one job.
type BatchResult struct {
	Result *Result
	Err    error
}

// ValidateBatch validates jobs in parallel and returns their outcomes in job
// order. Per-job errors are reported in the outcomes. Cancelling ctx stops
// jobs that have not started yet and makes ValidateBatch return ctx's error.
func (v *Validator) ValidateBatch(ctx context.Context, jobs []Job) ([]BatchResult, error) {
	out := make([]BatchResult, len(jobs))
	workers := v.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			at := v.clock.Now()
			if job.At != nil {
				at = *job.At
			}
			res, err := v.ValidateSignatureAt(job.Graph, job.Signature, at)
			out[i] = BatchResult{Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}
	v.log.Debug("batch validated", "jobs", len(jobs), "workers", workers)
	return out, nil
}
