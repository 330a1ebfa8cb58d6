package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vigilsec/promptwall/pkg/serve"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scan engine as an HTTP service",
		Long: `Expose the scanner over HTTP: POST /scan accepts {"text": "..."} and
returns the structured JSON report. GET /healthz and GET /metrics (Prometheus)
support operations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := root.newEngine()
			if err != nil {
				return err
			}

			server := serve.New(serve.Config{
				Engine:        engine,
				Logger:        slog.Default(),
				MaxInputBytes: root.maxInputBytes,
			})

			httpServer := &http.Server{
				Addr:              listen,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("scan service listening", "addr", listen)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8843", "Address to listen on")
	return cmd
}
