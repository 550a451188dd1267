package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yildizdb/yildiz-go/internal/bench"
	"github.com/yildizdb/yildiz-go/transport"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// FormatProvider is implemented by every output format.
type FormatProvider interface {
	FormatResponse(resp *transport.Response) string
	FormatValue(v interface{}) string
	FormatReport(report *bench.Report) string
}

// TimingData is the structured form of transport.TimingInfo.
type TimingData struct {
	Reused          bool  `json:"reused" yaml:"reused"`
	Wait            int64 `json:"waitMs" yaml:"waitMs"`
	DNSLookup       int64 `json:"dnsLookupMs" yaml:"dnsLookupMs"`
	TCPConnection   int64 `json:"tcpConnectionMs" yaml:"tcpConnectionMs"`
	TLSHandshake    int64 `json:"tlsHandshakeMs" yaml:"tlsHandshakeMs"`
	Send            int64 `json:"sendMs" yaml:"sendMs"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs" yaml:"timeToFirstByteMs"`
	ContentTransfer int64 `json:"contentTransferMs" yaml:"contentTransferMs"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData is the structured form of a response.
type ResponseData struct {
	StatusCode int               `json:"statusCode" yaml:"statusCode"`
	Status     string            `json:"status" yaml:"status"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       interface{}       `json:"body" yaml:"body"`
	Timing     *TimingData       `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// ReportData is the structured form of a bench report.
type ReportData struct {
	Total       int64   `json:"total" yaml:"total"`
	Failed      int64   `json:"failed" yaml:"failed"`
	SuccessRate float64 `json:"successRate" yaml:"successRate"`
	DurationMs  int64   `json:"durationMs" yaml:"durationMs"`
	Throughput  float64 `json:"throughput" yaml:"throughput"`
	MinUs       int64   `json:"minUs" yaml:"minUs"`
	MeanUs      int64   `json:"meanUs" yaml:"meanUs"`
	P50Us       int64   `json:"p50Us" yaml:"p50Us"`
	P90Us       int64   `json:"p90Us" yaml:"p90Us"`
	P99Us       int64   `json:"p99Us" yaml:"p99Us"`
	MaxUs       int64   `json:"maxUs" yaml:"maxUs"`
	FirstError  string  `json:"firstError,omitempty" yaml:"firstError,omitempty"`
}

func newResponseData(resp *transport.Response, withHeaders bool) ResponseData {
	data := ResponseData{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       resp.Body,
	}
	if withHeaders && len(resp.Headers) > 0 {
		data.Headers = make(map[string]string, len(resp.Headers))
		for key, values := range resp.Headers {
			data.Headers[key] = strings.Join(values, ", ")
		}
	}
	if t := resp.Timing; t != nil {
		data.Timing = &TimingData{
			Reused:          t.Reused,
			Wait:            t.Phases.Wait.Milliseconds(),
			DNSLookup:       t.Phases.DNS.Milliseconds(),
			TCPConnection:   t.Phases.Connect.Milliseconds(),
			TLSHandshake:    t.Phases.TLS.Milliseconds(),
			Send:            t.Phases.Send.Milliseconds(),
			TimeToFirstByte: t.Phases.FirstByte.Milliseconds(),
			ContentTransfer: t.Phases.Download.Milliseconds(),
			Total:           t.Phases.Total.Milliseconds(),
		}
	}
	return data
}

func newReportData(r *bench.Report) ReportData {
	data := ReportData{
		Total:       r.Total,
		Failed:      r.Failed,
		SuccessRate: r.SuccessRate(),
		DurationMs:  r.Duration.Milliseconds(),
		Throughput:  r.Throughput,
		MinUs:       r.Min.Microseconds(),
		MeanUs:      r.Mean.Microseconds(),
		P50Us:       r.P50.Microseconds(),
		P90Us:       r.P90.Microseconds(),
		P99Us:       r.P99.Microseconds(),
		MaxUs:       r.Max.Microseconds(),
	}
	if r.FirstError != nil {
		data.FirstError = r.FirstError.Error()
	}
	return data
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
}

// FormatResponse formats a response as a JSON object.
func (f *JSONFormatter) FormatResponse(resp *transport.Response) string {
	return f.marshal(newResponseData(resp, f.Verbose))
}

// FormatValue formats a decoded document as JSON.
func (f *JSONFormatter) FormatValue(v interface{}) string {
	return f.marshal(v)
}

// FormatReport formats a bench report as JSON.
func (f *JSONFormatter) FormatReport(r *bench.Report) string {
	return f.marshal(newReportData(r))
}

func (f *JSONFormatter) marshal(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}\n", err.Error())
	}
	return string(data) + "\n"
}

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	Verbose bool
}

// FormatResponse formats a response as a YAML document.
func (f *YAMLFormatter) FormatResponse(resp *transport.Response) string {
	return f.marshal(newResponseData(resp, f.Verbose))
}

// FormatValue formats a decoded document as YAML.
func (f *YAMLFormatter) FormatValue(v interface{}) string {
	return f.marshal(v)
}

// FormatReport formats a bench report as YAML.
func (f *YAMLFormatter) FormatReport(r *bench.Report) string {
	return f.marshal(newReportData(r))
}

func (f *YAMLFormatter) marshal(v interface{}) string {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %q\n", err.Error())
	}
	return string(data)
}

// FormatReport renders a bench summary.
func (f *Formatter) FormatReport(r *bench.Report) string {
	var buf strings.Builder
	line := strings.Repeat("─", 48)

	status := SuccessIcon(f.NoColor) + " completed"
	if r.Failed > 0 {
		status = WarningIcon(f.NoColor) + fmt.Sprintf(" completed with %s failures", formatNumber(r.Failed))
	}

	buf.WriteString(line + "\n")
	buf.WriteString(status + "\n")
	buf.WriteString(line + "\n")
	buf.WriteString(fmt.Sprintf("Duration:      %s\n", formatDuration(r.Duration)))
	buf.WriteString(fmt.Sprintf("Total Reqs:    %s\n", formatNumber(r.Total)))

	rateColor := f.colors.Success
	if r.SuccessRate() < 0.99 {
		rateColor = f.colors.StatusWarn
	}
	if r.SuccessRate() < 0.95 {
		rateColor = f.colors.Error
	}
	buf.WriteString(fmt.Sprintf("Success Rate:  %s\n", rateColor.Sprintf("%.1f%%", r.SuccessRate()*100)))
	buf.WriteString(fmt.Sprintf("Throughput:    %.1f req/s\n", r.Throughput))
	buf.WriteString("\n")

	buf.WriteString(f.colors.Label.Sprint("Latency Distribution:") + "\n")
	buf.WriteString(fmt.Sprintf("  Min:       %s\n", formatDurationShort(r.Min)))
	buf.WriteString(fmt.Sprintf("  Mean:      %s\n", formatDurationShort(r.Mean)))
	buf.WriteString(fmt.Sprintf("  P50:       %s\n", formatDurationShort(r.P50)))
	buf.WriteString(fmt.Sprintf("  P90:       %s\n", formatDurationShort(r.P90)))
	buf.WriteString(fmt.Sprintf("  P99:       %s\n", formatDurationShort(r.P99)))
	buf.WriteString(fmt.Sprintf("  Max:       %s\n", formatDurationShort(r.Max)))

	if r.FirstError != nil {
		buf.WriteString("\n")
		buf.WriteString(fmt.Sprintf("%s first error: %v\n", ErrorIcon(f.NoColor), r.FirstError))
	}
	return buf.String()
}

// GetFormatter returns the formatter for the given format name.
func GetFormatter(format OutputFormat, verbose bool, noColor bool) (FormatProvider, error) {
	switch format {
	case FormatText, "":
		return NewFormatter(verbose, noColor), nil
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose}, nil
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q (want text, json or yaml)", format)
	}
}

// formatDuration formats a duration in a human-readable format.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}

// formatDurationShort formats a duration in a short format.
func formatDurationShort(d time.Duration) string {
	if d < time.Microsecond {
		return "0ms"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	var result strings.Builder
	offset := len(str) % 3
	if offset > 0 {
		result.WriteString(str[:offset])
	}
	for i := offset; i < len(str); i += 3 {
		if result.Len() > 0 {
			result.WriteString(",")
		}
		result.WriteString(str[i : i+3])
	}
	return result.String()
}
