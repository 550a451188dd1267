package bench

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Histogram bounds in microseconds: 1µs to 1 hour, 3 significant figures.
const (
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// Recorder aggregates call latencies into an HDR histogram.
//
// Recorder is safe for concurrent use. Counters use atomic operations and
// the histogram is guarded by a mutex, since hdrhistogram is not
// goroutine-safe.
type Recorder struct {
	hist   *hdrhistogram.Histogram
	histMu sync.Mutex

	total  atomic.Int64
	failed atomic.Int64

	errMu    sync.Mutex
	firstErr error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
	}
}

// Record adds one call. A non-nil err marks the call as failed; the first
// such error is kept for the report.
func (r *Recorder) Record(latency time.Duration, err error) {
	micros := latency.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	r.histMu.Lock()
	_ = r.hist.RecordValue(micros)
	r.histMu.Unlock()

	r.total.Add(1)
	if err != nil {
		r.failed.Add(1)
		r.errMu.Lock()
		if r.firstErr == nil {
			r.firstErr = err
		}
		r.errMu.Unlock()
	}
}

// Total returns the number of recorded calls.
func (r *Recorder) Total() int64 {
	return r.total.Load()
}

// Report summarizes what has been recorded over the given wall time.
func (r *Recorder) Report(elapsed time.Duration) *Report {
	r.histMu.Lock()
	defer r.histMu.Unlock()
	r.errMu.Lock()
	defer r.errMu.Unlock()

	report := &Report{
		Total:      r.total.Load(),
		Failed:     r.failed.Load(),
		Duration:   elapsed,
		FirstError: r.firstErr,
	}
	if report.Total == 0 {
		return report
	}

	if elapsed > 0 {
		report.Throughput = float64(report.Total) / elapsed.Seconds()
	}
	report.Min = micros(r.hist.Min())
	report.Mean = time.Duration(r.hist.Mean() * float64(time.Microsecond))
	report.P50 = micros(r.hist.ValueAtQuantile(50))
	report.P90 = micros(r.hist.ValueAtQuantile(90))
	report.P99 = micros(r.hist.ValueAtQuantile(99))
	report.Max = micros(r.hist.Max())
	return report
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
