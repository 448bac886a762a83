package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmontp/LocoHub-sub005/internal/config"
	"github.com/jmontp/LocoHub-sub005/internal/logging"
	"github.com/jmontp/LocoHub-sub005/internal/metrics"
	"github.com/jmontp/LocoHub-sub005/pkg/errs"
)

const (
	exitOK    = 0
	exitUsage = 1
	exitFatal = 2
)

var version = "dev"

// app carries what every subcommand shares.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath  string
	metricsFile string

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	recorder *metrics.Recorder
}

func run(args []string) int {
	return runWith(args, os.Stdout, os.Stderr)
}

func runWith(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	cmd := a.rootCmd()
	cmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cmd.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}

	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(stderr, "Error:", err)
	if errs.IsFatal(err) {
		return exitFatal
	}

	return exitUsage
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locohub",
		Short: "Phase-normalize and validate locomotion datasets",
		Long: `locohub turns time-indexed gait recordings into 150-point phase-normalized cycles
and validates phase-normalized datasets in two tiers: generic physiological ranges,
then task-specific checkpoints and waveform patterns read from a markdown rule file.

Exit codes: 0 on success (data-quality failures included), 1 on usage or IO errors,
2 on structural or configuration errors.`,
		Version:           version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write prometheus metrics to this file")

	cmd.AddCommand(a.normalizeCmd(), a.validateCmd(), a.rulesCmd())

	return cmd
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.NewWithWriter(cfg.Log, a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger

	a.registry = prometheus.NewRegistry()
	a.recorder = metrics.New(a.registry)

	return nil
}

func (a *app) writeMetrics() error {
	if a.metricsFile == "" {
		return nil
	}
	if err := a.recorder.WriteToTextfile(a.metricsFile); err != nil {
		return err
	}
	a.logger.Info("metrics written", zap.String("path", a.metricsFile))

	return nil
}
