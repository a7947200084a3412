package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the assessment API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr := rt.cfg.Server.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}

		srv := &http.Server{
			Addr: addr,
			Handler: api.NewRouter(rt.engine, api.Options{
				CORSOrigins: rt.cfg.Server.CORSOrigins,
				Logger:      rt.log,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			rt.log.Info("listening", "addr", addr, "driver", string(rt.cfg.Storage.Driver))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		rt.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides ASSESSOR_HTTP_ADDR)")
}
