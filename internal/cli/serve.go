package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"draw_fetcher/internal/api"
	"draw_fetcher/internal/scheduler"
	"draw_fetcher/internal/source/wingo"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	handler := api.NewHandler(a.pipeline, a.draws, a.states, wingo.SourceID, a.logger)
	server := &http.Server{
		Addr:    a.cfg.HTTP.Addr,
		Handler: api.NewRouter(handler, prometheus.DefaultGatherer, a.logger),
	}

	var wg sync.WaitGroup
	if a.cfg.Schedule.IsEnabled() {
		sched := scheduler.NewScheduler(a.pipeline, a.cfg.Schedule.Align, a.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("scheduler stopped", "error", err)
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	a.logger.Info("drawsync started",
		"source", wingo.SourceName,
		"scheduler", a.cfg.Schedule.IsEnabled(),
		"align", a.cfg.Schedule.Align,
	)

	select {
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			a.logger.Error("http server failed", "error", err)
			stop()
			wg.Wait()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http server shutdown incomplete", "error", err)
	}

	wg.Wait()
	a.logger.Info("drawsync stopped")
	return nil
}
