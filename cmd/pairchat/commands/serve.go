package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pairchat/internal/app"
	"pairchat/internal/domain"
)

// serve runs the relay server until SIGINT or SIGTERM.
func serveCmd() *cobra.Command {
	var (
		addr  string
		mode  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the relay server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg, err := app.Load(files...)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if limit > 0 {
				cfg.MailboxLimit = limit
			}
			if mode != "" {
				if cfg.CipherMode, err = domain.ParseCipherMode(mode); err != nil {
					return err
				}
			}

			logger := app.NewLogger(cfg)
			w := app.NewWire(cfg, logger)

			srv := &http.Server{
				Addr:         cfg.Addr,
				Handler:      w.Handler,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				logger.Info().Str("addr", cfg.Addr).Str("mode", string(cfg.CipherMode)).Msg("server starting")
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("server failed")
					return err
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info().Msg("shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server forced to shutdown")
				return err
			}
			stats := w.App.Stats()
			logger.Info().Int("queued", stats.Queued).Int("pairs", stats.Pairs).Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ADDR)")
	cmd.Flags().StringVar(&mode, "mode", "", "cipher mode: parity or sealed (overrides CIPHER_MODE)")
	cmd.Flags().IntVar(&limit, "mailbox-limit", 0, "per-user undelivered message cap (overrides MAILBOX_LIMIT)")
	return cmd
}
