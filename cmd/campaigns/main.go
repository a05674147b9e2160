package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aluiziolira/go-campaign-studio/api"
	"github.com/aluiziolira/go-campaign-studio/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	configFile  string
	envFile     string
	baseURL     string
	timeout     time.Duration
	verbose     bool
	metricsAddr string
	logFile     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&options{})
}

func buildRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "campaigns",
		Short:         "Browse the Britannia catalog and generate marketing campaigns",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file read before CAMPAIGNS_* variables")
	flags.StringVar(&opts.baseURL, "base-url", "", "campaign API base URL")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (e.g. 15s)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stdout")

	root.AddCommand(
		newBrowseCmd(opts),
		newProductsCmd(opts),
		newGenerateCmd(opts),
		newHistoryCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// loadConfig layers defaults, the YAML file, the dotenv file, CAMPAIGNS_*
// variables and finally explicitly set flags.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configFile != "" {
		if err := config.LoadFile(opts.configFile, cfg); err != nil {
			return nil, err
		}
	}
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = opts.baseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}
	cfg.ExportFormat = strings.ToLower(cfg.ExportFormat)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// session is what a command needs once flags are parsed.
type session struct {
	cfg     *config.Config
	client  *api.Client
	closers []func()
}

// start loads config, installs the logger, builds the API client and
// starts the metrics server when configured. quiet keeps logs off stdout
// for full-screen commands.
func start(cmd *cobra.Command, opts *options, quiet bool) (*session, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}

	out := io.Writer(os.Stdout)
	switch {
	case opts.logFile != "":
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		s.closers = append(s.closers, func() { _ = f.Close() })
	case quiet:
		out = io.Discard
	}
	logger, level := newLogger(cfg.Verbose, out)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	client, err := api.NewClient(cfg)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("initialising API client: %w", err)
	}
	s.client = client

	if cfg.MetricsAddr != "" && client.Metrics != nil {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(client.Metrics.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
		s.closers = append(s.closers, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("metrics server shutdown failed", slog.Any("error", err))
			}
		})
	}
	return s, nil
}

// close runs cleanups in reverse order.
func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		slog.Debug("shutdown signal received, waiting for in-flight work to finish")
	}()
	return ctx, stop
}

func newLogger(verbose bool, w io.Writer) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
