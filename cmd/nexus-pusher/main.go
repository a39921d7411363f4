package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nexus-pusher/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	debug   = false
	quiet   = false
	logFile = ""
)

var (
	logLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	logSink  = &fileSink{}
)

func main() {
	logger, err := newConsoleLogger(logLevel, logSink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	defer logSink.Close()

	initCommands(logger)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nexus-pusher",
	Short: "Relay container images into a private registry",
	Long: `nexus-pusher pulls an image from its public registry, optionally renames
it, tags it under a private registry host (such as a Nexus docker
repository), logs in and pushes it. The docker or podman CLI does the work.

Configuration is read from ~/.nexus-pusher/config.yaml and NEXUS_PUSHER_*
environment variables; flags take precedence over both.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Set debug mode globally so logStructuredError can check it
		cli.SetDebugMode(debug)
		if debug {
			logLevel.SetLevel(zap.DebugLevel)
		}
		cli.DefaultPrinter.Quiet = quiet

		cfg, err := cli.LoadCLIConfig(cmd.Context(), nil)
		if err != nil {
			return err
		}
		cli.DefaultCLIConfig = cfg

		path := logFile
		if path == "" {
			path = cfg.LogFile
		}
		if path != "" {
			logSink.Open(path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode with structured error logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print warnings and errors")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file (rotated)")
}

func initCommands(logger *zap.Logger) {
	rootCmd.AddCommand(cli.NewPushCmd(logger))
	rootCmd.AddCommand(cli.NewCheckCmd(logger))
	rootCmd.AddCommand(cli.NewResolveCmd(logger))
	rootCmd.AddCommand(cli.NewConfigCmd(logger))
}

// newConsoleLogger returns a human-friendly console logger with timestamps.
// The console level follows level (error unless --debug). Every entry at
// debug and above is also written as JSON to sink, which discards until a
// log file is opened.
func newConsoleLogger(level zap.AtomicLevel, sink *fileSink) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = level
	cfg.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "",
		CallerKey:      "",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	var opts []zap.Option
	if sink != nil {
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		fileCore := zapcore.NewCore(fileEncoder, sink, zap.DebugLevel)
		opts = append(opts, zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}
	return cfg.Build(opts...)
}
