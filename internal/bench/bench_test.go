package bench

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderPercentiles(t *testing.T) {
	r := NewRecorder()
	for i := 1; i <= 10; i++ {
		r.Record(time.Duration(i)*10*time.Millisecond, nil)
	}

	report := r.Report(time.Second)
	assert.EqualValues(t, 10, report.Total)
	assert.Zero(t, report.Failed)
	assert.InDelta(t, 10.0, report.Throughput, 0.001)
	assert.InDelta(t, float64(50*time.Millisecond), float64(report.P50), float64(10*time.Millisecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(report.P99), float64(10*time.Millisecond))
	assert.InDelta(t, float64(10*time.Millisecond), float64(report.Min), float64(time.Millisecond))
	assert.InDelta(t, float64(55*time.Millisecond), float64(report.Mean), float64(time.Millisecond))
	assert.GreaterOrEqual(t, report.Max, report.P90)
}

func TestRecorderKeepsFirstError(t *testing.T) {
	r := NewRecorder()
	first := errors.New("first")
	r.Record(time.Millisecond, nil)
	r.Record(time.Millisecond, first)
	r.Record(time.Millisecond, errors.New("second"))

	report := r.Report(time.Second)
	assert.EqualValues(t, 3, report.Total)
	assert.EqualValues(t, 2, report.Failed)
	assert.Same(t, first, report.FirstError)
	assert.InDelta(t, 1.0/3.0, report.SuccessRate(), 0.0001)
}

func TestRecorderEmpty(t *testing.T) {
	report := NewRecorder().Report(time.Second)
	assert.Zero(t, report.Total)
	assert.Zero(t, report.P50)
	assert.Zero(t, report.SuccessRate())
}

func TestRunAgainstServer(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := server.Client()
	report, err := Run(context.Background(), Options{
		Requests:    50,
		Concurrency: 8,
		Op: func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			resp.Body.Close()
			return nil
		},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 50, report.Total)
	assert.EqualValues(t, 50, hits.Load())
	assert.Zero(t, report.Failed)
	assert.Nil(t, report.FirstError)
	assert.Greater(t, report.Throughput, 0.0)
}

func TestRunCountsFailures(t *testing.T) {
	var calls atomic.Int64
	boom := errors.New("boom")

	report, err := Run(context.Background(), Options{
		Requests:    20,
		Concurrency: 4,
		Op: func(ctx context.Context) error {
			if calls.Add(1)%2 == 0 {
				return boom
			}
			return nil
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 20, report.Total)
	assert.EqualValues(t, 10, report.Failed)
	assert.ErrorIs(t, report.FirstError, boom)
}

func TestRunMoreWorkersThanRequests(t *testing.T) {
	var calls atomic.Int64
	report, err := Run(context.Background(), Options{
		Requests:    3,
		Concurrency: 16,
		Op: func(ctx context.Context) error {
			calls.Add(1)
			return nil
		},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, report.Total)
	assert.EqualValues(t, 3, calls.Load())
}

func TestRunRateLimited(t *testing.T) {
	start := time.Now()
	report, err := Run(context.Background(), Options{
		Requests:    5,
		Concurrency: 5,
		Rate:        50,
		Op:          func(ctx context.Context) error { return nil },
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, report.Total)
	// Burst of one, then four more at 20ms intervals.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int64

	report, err := Run(ctx, Options{
		Requests:    1000,
		Concurrency: 2,
		Op: func(ctx context.Context) error {
			if calls.Add(1) == 10 {
				cancel()
			}
			return nil
		},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Less(t, report.Total, int64(1000))
}

func TestRunRejectsBadOptions(t *testing.T) {
	noop := func(ctx context.Context) error { return nil }
	tests := []struct {
		name string
		opts Options
	}{
		{"no requests", Options{Op: noop}},
		{"negative concurrency", Options{Requests: 1, Concurrency: -1, Op: noop}},
		{"negative rate", Options{Requests: 1, Rate: -1, Op: noop}},
		{"no op", Options{Requests: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), tt.opts)
			assert.Error(t, err)
		})
	}
}
