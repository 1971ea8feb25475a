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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hyperjiang/slottimer"
	"github.com/hyperjiang/slottimer/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "slottimerd",
	Short: "Run software timers multiplexed on one tick",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Register the configured timers and tick until interrupted",
	RunE:  runRun,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d timers, capacity %d, tick %v\n", len(cfg.Timers), cfg.Capacity, cfg.Tick)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "slottimer.yaml", "configuration file (yaml or json)")
	rootCmd.AddCommand(runCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Console {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.With().Timestamp().Logger().Level(level)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := setupLogger(cfg.Log)

	s := slottimer.New(
		slottimer.WithCapacity(cfg.Capacity),
		slottimer.WithTickDuration(cfg.Tick),
		slottimer.WithLogger(slottimer.ZerologLogger(logger)),
	)
	if err := registerTimers(s, cfg.Timers, logger); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(slottimer.NewCollector(s, "", nil))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server stopped")
				stop()
			}
		}()
		logger.Info().Str("listen", cfg.Metrics.Listen).Msg("serving metrics")
	}

	s.Start()
	logger.Info().
		Int("timers", s.ActiveCount()).
		Int("capacity", s.Capacity()).
		Dur("tick", cfg.Tick).
		Msg("slottimerd started")

	<-ctx.Done()
	s.Stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}

	st := s.Stats()
	logger.Info().
		Uint64("fired", st.Fired).
		Uint64("expired", st.Expired).
		Uint64("panics", st.Panics).
		Msg("slottimerd stopped")
	return nil
}

// registerTimers registers one logging timer per entry, in file order.
func registerTimers(s *slottimer.Scheduler, timers []config.Timer, logger zerolog.Logger) error {
	h := slottimer.NewHandlerFunc(func(param any) {
		t := param.(config.Timer)
		logger.Info().Str("timer", t.Name).Msg(t.Message)
	})
	for _, t := range timers {
		id, err := s.SetTimerWithPayload(t.Period, h, t, t.Runs)
		if err != nil {
			return fmt.Errorf("register timer %q: %w", t.Name, err)
		}
		if t.Disabled {
			s.Disable(id)
		}
		logger.Debug().Str("timer", t.Name).Int("slot", int(id)).Dur("period", t.Period).Int("runs", t.Runs).Msg("timer registered")
	}
	return nil
}
