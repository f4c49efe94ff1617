package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thehopecrystal/verify-properties/internal/config"
	"github.com/thehopecrystal/verify-properties/internal/handlers"
	"github.com/thehopecrystal/verify-properties/internal/identity"
	"github.com/thehopecrystal/verify-properties/internal/metrics"
	"github.com/thehopecrystal/verify-properties/internal/notify"
	"github.com/thehopecrystal/verify-properties/internal/records"
	"github.com/thehopecrystal/verify-properties/internal/router"
	"github.com/thehopecrystal/verify-properties/internal/storage"
	"github.com/thehopecrystal/verify-properties/internal/storage/backend"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "verify-properties",
		Short:         "Property verification service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd(), dashboardCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*config.Config, storage.Storage, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	s, closeFn, err := backend.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf(`open %s storage: %w`, cfg.StorageDriver, err)
	}

	return cfg, s, closeFn, nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, s, closeFn, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if addr, _ := cmd.Flags().GetString("addr"); addr != `` {
				cfg.HTTPAddr = addr
			}

			m := metrics.New()
			sink := notify.Multi{notify.NewLogger(slog.Default()), m}

			ids := identity.New(s, sink, identity.WithSessionTTL(cfg.TokenTTL))
			store := records.New(s, sink)
			tokens := &handlers.Tokens{Key: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}

			server := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           router.New(ids, store, tokens, m),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Listening", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("addr", ``, "Listen address, overrides HTTP_ADDR")

	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Print the administrator dashboard as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			_, s, closeFn, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			admin := identity.BootstrapAdmin()
			d, err := records.New(s, notify.NewLogger(slog.Default())).Dashboard(ctx, &admin)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(``, `  `)
			return enc.Encode(d)
		},
	}
}
