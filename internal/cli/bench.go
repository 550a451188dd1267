package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yildizdb/yildiz-go/internal/bench"
	"github.com/yildizdb/yildiz-go/transport"
)

func newBenchCmd(a *app) *cobra.Command {
	var (
		requests    int
		concurrency int
		rate        float64
		path        string
		expect      int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure latency of concurrent GETs over one pooled client",
		Long: `Send --requests GET requests to --path from --concurrency workers sharing
one connection pool, then print throughput and latency percentiles. A call
fails when it gets no response or a status other than --expect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.connect()
			if err != nil {
				return err
			}
			tc := client.Transport()

			a.logger.Info("bench starting",
				zap.String("origin", tc.Config().Origin()),
				zap.String("path", path),
				zap.Int("requests", requests),
				zap.Int("concurrency", concurrency),
				zap.Bool("pooled", tc.Pooled()))

			report, err := bench.Run(cmd.Context(), bench.Options{
				Requests:    requests,
				Concurrency: concurrency,
				Rate:        rate,
				Logger:      a.logger,
				Op: func(ctx context.Context) error {
					req := transport.NewRequest(http.MethodGet, path).ExpectStatus(expect)
					_, err := tc.Do(ctx, req)
					return err
				},
			})
			if report != nil {
				fmt.Fprint(a.out, a.formatter.FormatReport(report))
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&requests, "requests", "n", 100, "Total number of requests")
	flags.IntVarP(&concurrency, "concurrency", "C", 10, "Number of concurrent workers")
	flags.Float64Var(&rate, "rate", 0, "Maximum requests per second (0 for unlimited)")
	flags.StringVar(&path, "path", "/admin/healthcheck", "Path to request")
	flags.IntVar(&expect, "expect", http.StatusOK, "Status code counted as success")
	return cmd
}
