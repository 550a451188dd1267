// Command test-server runs an in-memory yildiz server for local runs of the
// CLI and the bench command.
package main

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yildizdb/yildiz-go/internal/logging"
	"github.com/yildizdb/yildiz-go/internal/testserver"
	"github.com/yildizdb/yildiz-go/transport"
)

func main() {
	var (
		port     int
		token    string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "test-server",
		Short: "Serve the yildiz API from memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logLevel, os.Stderr)
			if err != nil {
				return err
			}
			defer logger.Sync()

			handler := testserver.New(
				testserver.WithToken(token),
				testserver.WithLogger(logger),
			)

			// Configured for load testing: minimal per-request overhead.
			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           handler,
				ReadTimeout:       5 * time.Second,
				WriteTimeout:      5 * time.Second,
				IdleTimeout:       120 * time.Second,
				MaxHeaderBytes:    1 << 20,
				ReadHeaderTimeout: 2 * time.Second,
			}

			logger.Info("starting test server",
				zap.String("addr", server.Addr),
				zap.Int("cpus", runtime.NumCPU()),
				zap.Bool("auth", token != ""))
			return server.ListenAndServe()
		},
	}

	cmd.Flags().IntVar(&port, "port", transport.DefaultPort, "Port to listen on")
	cmd.Flags().StringVar(&token, "token", "", "Require this authorization header")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
