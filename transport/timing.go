package transport

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"
)

// TimingPhases breaks a call down into consecutive phases.
type TimingPhases struct {
	// Wait is the time spent waiting for a connection to be assigned
	Wait time.Duration

	// DNS is the time spent looking up the host address
	DNS time.Duration

	// Connect is the time spent establishing the TCP connection
	Connect time.Duration

	// TLS is the time spent on the TLS handshake (https only)
	TLS time.Duration

	// Send is the time spent writing the request
	Send time.Duration

	// FirstByte is the time from a fully written request to the first response byte
	FirstByte time.Duration

	// Download is the time spent reading the response body
	Download time.Duration

	// Total is the time from dispatch to the last body byte
	Total time.Duration
}

// TimingInfo is the low-level timing record attached to a Response when the
// client runs with EnableTimings.
type TimingInfo struct {
	// StartTime is when the request was dispatched
	StartTime time.Time

	// ConnectStart is the offset from StartTime at which dialing began.
	// It is zero for a reused connection.
	ConnectStart time.Duration

	// Reused reports whether the connection came from the pool
	Reused bool

	Phases TimingPhases
}

// Elapsed returns the total duration of the call.
func (t *TimingInfo) Elapsed() time.Duration {
	return t.Phases.Total
}

// ElapsedMillis returns the total duration of the call in milliseconds.
func (t *TimingInfo) ElapsedMillis() int64 {
	return t.Phases.Total.Milliseconds()
}

// tracer records httptrace events for one call. Dial attempts may race, so
// every callback takes the lock.
type tracer struct {
	mu sync.Mutex

	start        time.Time
	dnsStart     time.Time
	dnsDone      time.Time
	connectStart time.Time
	connectDone  time.Time
	tlsStart     time.Time
	tlsDone      time.Time
	gotConn      time.Time
	wroteRequest time.Time
	firstByte    time.Time
	reused       bool
}

func newTracer() *tracer {
	return &tracer{start: time.Now()}
}

// attach returns ctx carrying the tracer's hooks.
func (t *tracer) attach(ctx context.Context) context.Context {
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			t.mark(&t.dnsStart, false)
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			t.mark(&t.dnsDone, true)
		},
		ConnectStart: func(string, string) {
			t.mark(&t.connectStart, false)
		},
		ConnectDone: func(_, _ string, err error) {
			if err == nil {
				t.mark(&t.connectDone, true)
			}
		},
		TLSHandshakeStart: func() {
			t.mark(&t.tlsStart, false)
		},
		TLSHandshakeDone: func(_ tls.ConnectionState, err error) {
			if err == nil {
				t.mark(&t.tlsDone, true)
			}
		},
		GotConn: func(info httptrace.GotConnInfo) {
			t.mu.Lock()
			t.gotConn = time.Now()
			t.reused = info.Reused
			t.mu.Unlock()
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			t.mark(&t.wroteRequest, true)
		},
		GotFirstResponseByte: func() {
			t.mark(&t.firstByte, false)
		},
	})
}

// mark stores the current time in *field. Unless overwrite is set, only
// the first occurrence is kept.
func (t *tracer) mark(field *time.Time, overwrite bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if overwrite || field.IsZero() {
		*field = time.Now()
	}
}

// finish builds the timing record for a call whose body was fully read at end.
func (t *tracer) finish(end time.Time) *TimingInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	info := &TimingInfo{
		StartTime: t.start,
		Reused:    t.reused,
	}

	waitEnd := t.gotConn
	if !t.reused {
		info.ConnectStart = span(t.start, t.connectStart)
		switch {
		case !t.dnsStart.IsZero():
			waitEnd = t.dnsStart
		case !t.connectStart.IsZero():
			waitEnd = t.connectStart
		}
	}

	info.Phases = TimingPhases{
		Wait:      span(t.start, waitEnd),
		DNS:       span(t.dnsStart, t.dnsDone),
		Connect:   span(t.connectStart, t.connectDone),
		TLS:       span(t.tlsStart, t.tlsDone),
		Send:      span(t.gotConn, t.wroteRequest),
		FirstByte: span(t.wroteRequest, t.firstByte),
		Download:  span(t.firstByte, end),
		Total:     span(t.start, end),
	}
	return info
}

// span returns to-from, or zero when either end is missing.
func span(from, to time.Time) time.Duration {
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return 0
	}
	return to.Sub(from)
}
