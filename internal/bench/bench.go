// Package bench drives a fixed number of calls through a bounded set of
// workers and reports latency percentiles.
package bench

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Op is one measured call.
type Op func(ctx context.Context) error

// Options controls a run.
type Options struct {
	// Requests is the total number of calls to make.
	Requests int

	// Concurrency is the number of workers. Defaults to 1.
	Concurrency int

	// Rate caps calls per second across all workers. Zero means unlimited.
	Rate float64

	// Op is the call to measure.
	Op Op

	// Logger receives one debug entry per failed call.
	Logger *zap.Logger
}

// Report is the outcome of a run.
type Report struct {
	Total      int64
	Failed     int64
	Duration   time.Duration
	Throughput float64

	Min  time.Duration
	Mean time.Duration
	P50  time.Duration
	P90  time.Duration
	P99  time.Duration
	Max  time.Duration

	// FirstError is the first failure observed, if any.
	FirstError error
}

// SuccessRate returns the share of calls that did not fail, in [0, 1].
func (r *Report) SuccessRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Total-r.Failed) / float64(r.Total)
}

func (o Options) validate() error {
	if o.Requests <= 0 {
		return fmt.Errorf("requests must be positive, got %d", o.Requests)
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", o.Concurrency)
	}
	if o.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %g", o.Rate)
	}
	if o.Op == nil {
		return errors.New("no operation to run")
	}
	return nil
}

// Run executes opts.Requests calls and returns the report. Failed calls are
// counted, not fatal. Cancelling ctx stops the run early; the report then
// covers the calls that completed and the context error is returned with it.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	workers := opts.Concurrency
	if workers == 0 {
		workers = 1
	}
	if workers > opts.Requests {
		workers = opts.Requests
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if opts.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}

	recorder := NewRecorder()
	var issued atomic.Int64
	budget := int64(opts.Requests)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for issued.Add(1) <= budget {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				}
				if err := gctx.Err(); err != nil {
					return err
				}

				callStart := time.Now()
				err := opts.Op(gctx)
				recorder.Record(time.Since(callStart), err)
				if err != nil {
					logger.Debug("call failed", zap.Error(err))
				}
			}
			return nil
		})
	}
	err := g.Wait()

	report := recorder.Report(time.Since(start))
	logger.Debug("bench finished",
		zap.Int64("total", report.Total),
		zap.Int64("failed", report.Failed),
		zap.Duration("elapsed", report.Duration))

	return report, err
}
