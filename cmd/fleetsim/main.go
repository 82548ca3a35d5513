package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/napolitain/fleetsim/internal/combat"
	"github.com/napolitain/fleetsim/internal/loader"
)

var (
	dataDir  string
	quiet    bool
	logLevel string
	logFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fleetsim",
		Short: "OGame fleet battle simulator",
		Long: `Monte-Carlo simulator for OGame space battles. Runs many independent
six-round battles between two fleets and reports the average survivors,
losses and win rates.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Directory with units.json / rapid_fire.json overrides")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Minimal output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(newSimulateCmd(), newUnitsCmd(), newRapidFireCmd())

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// newLogger builds the console logger shared by the engine and averager
func newLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	output := "stderr"
	if logFile != "" {
		output = logFile
	}

	config := zap.Config{
		Level:       level,
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}
	return config.Build()
}

// setup creates the logger and loads the combat tables
func setup() (*zap.Logger, *combat.Data, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}
	data, err := loader.LoadData(dataDir, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return logger, data, nil
}
