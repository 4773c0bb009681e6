package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/walkthrough/internal/cli"
	httpAdapter "github.com/aretw0/walkthrough/pkg/adapters/http"
	"github.com/aretw0/walkthrough/pkg/observability"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve [workflow]",
	Short: "Serve the walkthrough over HTTP",
	Long: `Starts the HTTP host: a server-rendered wizard page per browser session, a
JSON API, server-sent events, a WebSocket endpoint, /health and, with
--metrics, Prometheus metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("port") {
			settings.Port, _ = flags.GetInt("port")
		}
		if flags.Changed("metrics") {
			settings.Metrics, _ = flags.GetBool("metrics")
		}
		if flags.Changed("watch") {
			settings.Watch, _ = flags.GetBool("watch")
		}
		debug, _ := flags.GetBool("debug")
		logger := newLogger(settings)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		wf, err := cli.OpenWorkflow(settings.Config, settings.ContentDir, logger)
		if err != nil {
			return err
		}
		store, closer, err := cli.OpenStore(ctx, settings)
		if err != nil {
			return err
		}
		defer closer.Close()

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithPreferenceStore(store),
			httpAdapter.WithIdleTimeout(settings.IdleTimeout),
			httpAdapter.WithHotReload(settings.Watch),
			httpAdapter.WithEngineOptions(cli.EngineOptions(settings, wf, store, logger, debug)...),
		}
		if settings.Metrics {
			opts = append(opts, httpAdapter.WithMetrics(observability.NewMetrics()))
		}
		server := httpAdapter.NewServer(wf.Source, opts...)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", settings.Port),
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Starting walkthrough server", "addr", srv.Addr, "config", settings.Config)
			fmt.Printf("Serving %s on http://localhost%s\n", settings.Config, srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			return server.Run(ctx)
		})
		g.Go(func() error {
			<-ctx.Done()
			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			fmt.Println("Walkthrough server stopped gracefully")
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics on /metrics")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload sessions when the workflow or a fragment changes")
}
