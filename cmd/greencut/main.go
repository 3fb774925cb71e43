package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ChandlerShores/Green-Cut-Sim/internal/config"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/journal"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/run"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/server"
	"github.com/ChandlerShores/Green-Cut-Sim/internal/state"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/constants"
	"github.com/ChandlerShores/Green-Cut-Sim/pkg/report"
)

var version = "dev"

var (
	configLocation string
	logLevel       string
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func loadEnvironment() (*config.Configuration, *zap.Logger, error) {
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
	}

	logger, err := initializeLogger(conf.Logging, logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	return conf, logger, nil
}

func newRecorder(logger *zap.Logger, conf *config.Configuration) (journal.Recorder, error) {
	if conf.Journal.SQLitePath == "" {
		return journal.NoopRecorder{}, nil
	}
	return journal.NewSQLiteRecorder(logger, conf.Journal.SQLitePath)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			recorder, err := newRecorder(logger, conf)
			if err != nil {
				return fmt.Errorf("failed to open recorder: %w", err)
			}
			manager := run.NewManager(logger, conf, recorder)
			defer func() {
				_ = manager.Close()
			}()

			srv := &http.Server{
				Addr:              conf.Server.Address,
				Handler:           server.NewHandler(logger, conf, manager, version),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening",
					zap.String("op", "main.serve"),
					zap.String("address", conf.Server.Address),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("server shutdown failed: %w", err)
				}
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}
}

func newTurnCmd() *cobra.Command {
	var turns int
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "turn [declaration]...",
		Short: "Resolve turns against a fresh run and print the result",
		Long: "Creates a run from the configured starting state and resolves one turn\n" +
			"per declaration argument. With no arguments, declarations are read from\n" +
			"stdin, one per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			declarations := args
			if len(declarations) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					line := strings.TrimSpace(scanner.Text())
					if line != "" {
						declarations = append(declarations, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read declarations: %w", err)
				}
			}
			if turns > 0 && len(declarations) > turns {
				declarations = declarations[:turns]
			}

			recorder, err := newRecorder(logger, conf)
			if err != nil {
				return fmt.Errorf("failed to open recorder: %w", err)
			}
			manager := run.NewManager(logger, conf, recorder)
			defer func() {
				_ = manager.Close()
			}()

			id, _, err := manager.Create()
			if err != nil {
				return fmt.Errorf("failed to create run: %w", err)
			}

			results := make([]state.TurnResult, 0, len(declarations))
			for _, declaration := range declarations {
				result, err := manager.Advance(id, declaration)
				if err != nil {
					return fmt.Errorf("failed to resolve turn: %w", err)
				}
				results = append(results, result)
			}

			switch outputFormat {
			case constants.OutputFormatPretty:
				report.PrettyFormat(id, results)
			case constants.OutputFormatCSV:
				report.CsvFormat(results)
			default:
				return fmt.Errorf("invalid output format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&turns, "turns", 0, "maximum number of turns to resolve (0 = all declarations)")
	cmd.Flags().StringVar(&outputFormat, "output-format", constants.OutputFormatPretty, "type of output: pretty, csv")
	return cmd
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <run-log.jsonl>",
		Short: "Re-resolve a journaled run and verify it reproduces exactly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, logger, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			manager := run.NewManager(logger, conf, journal.NoopRecorder{})
			defer func() {
				_ = manager.Close()
			}()

			entries, err := journal.ReadRun(args[0])
			if err != nil {
				return fmt.Errorf("failed to read run log: %w", err)
			}

			replayed, err := journal.Replay(logger, entries, manager.Resolver())
			if err != nil {
				return fmt.Errorf("replay failed: %w", err)
			}
			if !replayed.OK() {
				for _, mismatch := range replayed.Mismatches {
					fmt.Printf("mismatch: %s\n", mismatch)
				}
				return fmt.Errorf("run %s diverged on replay (%d mismatches over %d turns)",
					replayed.RunID, len(replayed.Mismatches), replayed.Turns)
			}

			fmt.Printf("run %s replayed cleanly over %d turns\n", replayed.RunID, replayed.Turns)
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "report <run-log.jsonl>",
		Short: "Render a journaled run's turn history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := journal.ReadRun(args[0])
			if err != nil {
				return fmt.Errorf("failed to read run log: %w", err)
			}

			var runID string
			var turns []state.TurnResult
			for _, entry := range entries {
				runID = entry.RunID
				if entry.Type == journal.TypeTurnResult && entry.Result != nil {
					turns = append(turns, *entry.Result)
				}
			}

			switch outputFormat {
			case constants.OutputFormatPretty:
				report.PrettyFormat(runID, turns)
			case constants.OutputFormatCSV:
				report.CsvFormat(turns)
			default:
				return fmt.Errorf("invalid output format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFormat, "output-format", constants.OutputFormatPretty, "type of output: pretty, csv")
	return cmd
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration scaffold",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configLocation); err == nil {
				return fmt.Errorf("refusing to overwrite existing %s", configLocation)
			}
			if err := config.WriteDefault(configLocation); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", configLocation)
			return nil
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "greencut",
		Short:         "Deterministic company-simulation engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newServeCmd(), newTurnCmd(), newReplayCmd(), newReportCmd(), newInitCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
