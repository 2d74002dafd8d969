package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cuemby/fxboard/pkg/engine"
	"github.com/cuemby/fxboard/pkg/events"
	"github.com/cuemby/fxboard/pkg/log"
	"github.com/cuemby/fxboard/pkg/metrics"
	"github.com/cuemby/fxboard/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start audio and keep the model in sync with the engine",
	Long: `Start an audio session on the engine and keep the unit model in sync
until interrupted. Prometheus metrics and health checks are served on the
metrics address when enabled.

Examples:
  # Run against the engine, printing meter and board updates
  fxboard run --watch levels,boards

  # Run without an engine
  fxboard run --engine loopback`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringSlice("watch", nil, "Topics to print (unit, levels, boards, midi)")
	runCmd.Flags().String("metrics-addr", "", "Address for /metrics and health endpoints")
	runCmd.Flags().Duration("stale-after", 30*time.Second, "Report the engine unhealthy after this long without events")
}

func engineOptions() engine.StartOptions {
	return engine.StartOptions{InDevice: cfg.Engine.InDevice, OutDevice: cfg.Engine.OutDevice}
}

func runRun(cmd *cobra.Command, args []string) error {
	watch, _ := cmd.Flags().GetStringSlice("watch")
	staleAfter, _ := cmd.Flags().GetDuration("stale-after")
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = cmd.Flags().GetString("metrics-addr")
		cfg.Metrics.Enabled = cfg.Metrics.Addr != ""
	}

	topics := make([]events.Topic, 0, len(watch))
	for _, name := range watch {
		topic, err := events.ParseTopic(strings.TrimSpace(name))
		if err != nil {
			return err
		}
		topics = append(topics, topic)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	key := "cli-" + uuid.New().String()
	for _, topic := range topics {
		if err := a.Handler.Subscribe(topic, key, func(m *types.UnitModel) {
			printModel(out, topic, m)
		}); err != nil {
			return err
		}
	}

	metrics.SetVersion(Version)
	errCh := make(chan error, 1)
	var server *http.Server
	if cfg.Metrics.Enabled {
		server = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metrics.NewServeMux(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()
		success(out, "Metrics on http://%s/metrics", cfg.Metrics.Addr)
	}

	collector := metrics.NewCollector(a.Handler, 5*time.Second, staleAfter)
	collector.Start()
	defer collector.Stop()

	if err := a.Handler.StartAudio(ctx); err != nil {
		return err
	}
	success(out, "Audio started (%s → %s)", cfg.Engine.InDevice, cfg.Engine.OutDevice)

	if err := a.Handler.RefreshPedalConfig(); err != nil {
		warning(out, "Could not request pedal config: %v", err)
	}

	fmt.Fprintln(out, "Running. Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
		fmt.Fprintln(out, "\nShutting down...")
	case err := <-errCh:
		log.Logger.Error().Err(err).Msg("Metrics server failed")
	}

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}
	if err := a.Handler.StopAudio(); err != nil {
		return err
	}

	success(out, "Shutdown complete")
	return nil
}
