package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/tradestats/internal/refresh"
	"github.com/rustyeddy/tradestats/internal/server"
	"github.com/rustyeddy/tradestats/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the latest report over HTTP",
	Long: `Start the HTTP read API and keep the report refreshed on a schedule.

Endpoints:
  GET /health
  GET /api/v1/report
  GET /api/v1/export
  GET /metrics

Example:
  tradestats serve --config tradestats.yaml --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	minInterval, err := cfg.MinIntervalDuration()
	if err != nil {
		return err
	}
	ttl, err := cfg.CacheTTLDuration()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	src, done, err := openSource()
	if err != nil {
		return err
	}
	defer done()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := refresh.New(src, refresh.Options{
		Balance:     cfg.Account.Balance,
		MinInterval: minInterval,
		CacheTTL:    ttl,
		Location:    loc,
	}, log)

	if _, err := r.Refresh(ctx); err != nil {
		log.Warn("initial refresh failed", logger.ErrorField(err))
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Refresh.Schedule != "" {
		if err := r.Start(gctx, cfg.Refresh.Schedule); err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			r.Stop()
			return nil
		})
	}

	g.Go(func() error {
		return server.Run(gctx, cfg.Server.Addr, server.NewRouter(r, log), log)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return fmt.Errorf("serve: %w", err)
	}
	log.Info("tradestats stopped")
	return nil
}
