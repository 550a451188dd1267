package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yildizdb/yildiz-go/internal/output"
	"github.com/yildizdb/yildiz-go/pkg/jsonpath"
	"github.com/yildizdb/yildiz-go/pkg/jsonschema"
	"github.com/yildizdb/yildiz-go/transport"
)

func newRawCmd(a *app) *cobra.Command {
	var (
		body    string
		headers []string
		expect  int
		extract string
		schema  string
	)

	cmd := &cobra.Command{
		Use:   "raw METHOD PATH",
		Short: "Send a request to any endpoint of the server",
		Long: `Send a request with the tenant header and token of the selected profile.

The response body can be checked against a JSON Schema with --schema and a
single value can be pulled out with --extract, using a JSONPath such as
$.nodes[0].identifier.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}

			req := transport.NewRequest(args[0], args[1])
			for _, header := range headers {
				parts := strings.SplitN(header, ":", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid header %q, want Name: value", header)
				}
				req.WithHeader(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
			}
			if body != "" {
				req.WithBody(body)
			}
			if cmd.Flags().Changed("expect") {
				req.ExpectStatus(expect)
			}

			text, isText := a.formatter.(*output.Formatter)
			if isText && a.v.GetBool("verbose") {
				fmt.Fprint(a.out, text.FormatRequest(req, client.Transport().Config().Origin()))
			}

			resp, err := client.Raw(cmd.Context(), req)
			if err != nil {
				return err
			}

			if schema != "" {
				compiled, err := jsonschema.CompileFile(schema)
				if err != nil {
					return err
				}
				errs, err := compiled.ValidateJSON(resp.Raw())
				if err != nil {
					return fmt.Errorf("response body: %w", err)
				}
				if len(errs) > 0 {
					return fmt.Errorf("response does not match schema: %w", errs)
				}
			}

			if extract != "" {
				value, err := jsonpath.Extract(resp.Raw(), extract)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, value)
				return nil
			}

			fmt.Fprint(a.out, a.formatter.FormatResponse(resp))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&body, "body", "b", "", "Request body, sent as is")
	flags.StringArrayVarP(&headers, "header", "H", nil, "Extra header as 'Name: value' (repeatable)")
	flags.IntVarP(&expect, "expect", "e", 0, "Fail unless the response has this status code")
	flags.StringVarP(&extract, "extract", "x", "", "Print the value at this JSONPath instead of the response")
	flags.StringVar(&schema, "schema", "", "Validate the response body against this JSON Schema file")
	return cmd
}
