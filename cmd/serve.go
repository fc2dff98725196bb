package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	v1 "hotel_concierge/internal/transport/http/v1"
	"hotel_concierge/src/logger"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API and the widget WebSocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := opts.open(ctx)
			if err != nil {
				return err
			}

			server := v1.NewServer(v1.NewHandler(a.registry, a.cfg.Server))
			errCh := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", a.cfg.Server.Addr).Msg("starting concierge API")
				if err := server.Start(a.cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
				logger.Info().Msg("shutting down")
			case err := <-errCh:
				if err != nil {
					a.Close(context.Background())
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
			}
			a.Close(shutdownCtx)
			return nil
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = opts.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
