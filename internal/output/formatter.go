package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yildizdb/yildiz-go/transport"
)

// Formatter renders responses and documents as human-readable text.
type Formatter struct {
	Verbose bool
	NoColor bool
	colors  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		colors:  Scheme(noColor),
	}
}

// FormatRequest renders the request line shown before a raw call.
func (f *Formatter) FormatRequest(req *transport.Request, origin string) string {
	var buf strings.Builder

	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n",
		f.colors.Method.Sprint(req.Method),
		f.colors.URL.Sprint(origin+path)))

	if f.Verbose && len(req.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		for _, key := range sortedKeys(req.Headers) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n", f.colors.HeaderKey.Sprint(key), req.Headers[key]))
		}
	}

	if req.Body != nil {
		buf.WriteString("  Body: ")
		buf.WriteString(prettyValue(req.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse renders a response: status, timing and headers when
// verbose, then the body.
func (f *Formatter) FormatResponse(resp *transport.Response) string {
	var buf strings.Builder

	statusColor := f.colors.StatusError
	if resp.IsSuccess() {
		statusColor = f.colors.StatusOK
	} else if resp.IsRedirect() {
		statusColor = f.colors.StatusWarn
	}

	if resp.Timing != nil {
		buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n",
			statusColor.Sprint(resp.Status), resp.Timing.ElapsedMillis()))
	} else {
		buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s\n", statusColor.Sprint(resp.Status)))
	}

	if f.Verbose && resp.Timing != nil {
		p := resp.Timing.Phases
		buf.WriteString("  Timing:\n")
		if resp.Timing.Reused {
			buf.WriteString("    Connection:      reused\n")
		}
		buf.WriteString(fmt.Sprintf("    Wait:            %dms\n", p.Wait.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    DNS Lookup:      %dms\n", p.DNS.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TCP Connection:  %dms\n", p.Connect.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:   %dms\n", p.TLS.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Request Sent:    %dms\n", p.Send.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", p.FirstByte.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Content Transfer:  %dms\n", p.Download.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Total:           %dms\n", p.Total.Milliseconds()))
	}

	if f.Verbose {
		buf.WriteString("  Headers:\n")
		keys := make([]string, 0, len(resp.Headers))
		for key := range resp.Headers {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			for _, value := range resp.Headers[key] {
				buf.WriteString(fmt.Sprintf("    %s: %s\n", f.colors.HeaderKey.Sprint(key), value))
			}
		}
	}

	if raw := resp.Raw(); len(bytes.TrimSpace(raw)) > 0 {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(string(raw)))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatValue renders a decoded document.
func (f *Formatter) FormatValue(v interface{}) string {
	if v == nil {
		return "null\n"
	}
	return prettyValue(v) + "\n"
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}

func prettyValue(v interface{}) string {
	switch body := v.(type) {
	case string:
		return formatJSONString(body)
	case []byte:
		return formatJSONString(string(body))
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
