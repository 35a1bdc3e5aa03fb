package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cancer-registry-edits/internal/config"
	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/internal/service"
	"github.com/cancer-registry-edits/pkg/codes"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "registry-edits",
		Short: "Validate and auto-correct cancer registry records",
		Long: `registry-edits runs the cancer registry edit checks over a JSON array of
records: individual item checks, data combination checks and the
site-morphology matrix. Near-miss codes can be repaired first with
the auto-corrector.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	// set by initConfig
	configManager *config.Manager
	logger        *logrus.Logger
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	flags.String("codes-dir", "", "directory holding the code dictionaries")
	flags.Int("workers", 0, "records validated in parallel per stage")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.Float64("threshold", 0, "minimum fuzzy match confidence for auto-correction")

	_ = viper.BindPFlag("codes.dir", flags.Lookup("codes-dir"))
	_ = viper.BindPFlag("pipeline.workers", flags.Lookup("workers"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("correction.threshold", flags.Lookup("threshold"))

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(autocorrectCmd())
	rootCmd.AddCommand(codesCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	m, err := config.NewManager()
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// stdout carries command output
	logCfg := m.GetConfig().Logging
	if logCfg.Output == "" || logCfg.Output == "stdout" {
		logCfg.Output = "stderr"
	}
	l, err := config.NewLogger(logCfg)
	if err != nil {
		return err
	}

	configManager, logger = m, l
	return nil
}

func loadRegistry(ctx context.Context) (*codes.Registry, error) {
	return service.LoadRegistry(ctx, *configManager.GetCodesConfig(), logger)
}

func newPipeline(registry *codes.Registry, notifier domain.ProgressNotifier) (*service.Pipeline, error) {
	cfg := configManager.GetConfig()
	return service.NewPipeline(registry, service.PipelineOptions{
		Workers:  cfg.Pipeline.Workers,
		MemoSize: cfg.Correction.MemoSize,
		Notifier: notifier,
	}, logger)
}
