package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/cowell/internal/config"
	"github.com/san-kum/cowell/internal/logging"
	"github.com/san-kum/cowell/internal/metrics"
	"github.com/san-kum/cowell/internal/registry"
	"github.com/san-kum/cowell/internal/storage"
)

var (
	v        = config.NewViper()
	settings config.Settings
	logger   = logging.NewNop()
	reg      = registry.NewRegistry()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cowell",
		Short:         "orbit propagation by direct integration of the equations of motion",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("data-dir", config.DefaultDataDir, "run storage directory")
	flags.String("log-level", config.DefaultLogLevel, "debug, info, warn or error")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")
	flags.Int("workers", config.DefaultWorkers, "batch worker goroutines")
	bindFlag(v, "data_dir", rootCmd, "data-dir")
	bindFlag(v, "log_level", rootCmd, "log-level")
	bindFlag(v, "metrics_addr", rootCmd, "metrics-addr")
	bindFlag(v, "workers", rootCmd, "workers")

	rootCmd.AddCommand(
		newPropagateCmd(),
		newBatchCmd(),
		newListCmd(),
		newShowCmd(),
		newPlotCmd(),
		newAnalyzeCmd(),
		newExportJSONCmd(),
		newExportCSVCmd(),
		newExportSVGCmd(),
		newReplayCmd(),
		newPresetsCmd(),
		newCatalogCmd(),
		newRotateCmd(),
	)
	return rootCmd
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		panic(err)
	}
}

func setup(ctx context.Context) error {
	s, err := config.LoadSettings(v)
	if err != nil {
		return err
	}
	settings = s

	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return err
	}
	logger = logging.New(level)

	if s.MetricsAddr != "" {
		serveMetrics(ctx, s.MetricsAddr)
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func openStore() (*storage.Store, error) {
	st := storage.New(settings.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// resolveRun accepts a run ID or "latest".
func resolveRun(st *storage.Store, ref string) (string, error) {
	if ref != "latest" {
		return ref, nil
	}
	meta, err := st.Latest()
	if err != nil {
		return "", err
	}
	logger.Debug("resolved latest run", slog.String("run", meta.ID))
	return meta.ID, nil
}
