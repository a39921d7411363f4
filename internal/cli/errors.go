package cli

// This file defines error handling utilities for the CLI, including:
//   - Sentinel errors for flag, password and configuration problems
//   - Error wrapping functions that integrate with the errx error system
//   - Structured error logging gated on debug mode

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"nexus-pusher/pkg/errx"
)

var (
	debugMode   bool
	debugModeMu sync.RWMutex
)

// SetDebugMode sets the global debug mode flag.
// When enabled, logStructuredError will output structured error logs to terminal.
func SetDebugMode(enabled bool) {
	debugModeMu.Lock()
	defer debugModeMu.Unlock()
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled.
func IsDebugMode() bool {
	debugModeMu.RLock()
	defer debugModeMu.RUnlock()
	return debugMode
}

type errorSpec struct {
	code        string
	description string
}

// errorSpecs must be declared before the sentinels that populate it.
var errorSpecs = make(map[error]errorSpec)

func newSentinelError(msg string, code, description string) error {
	err := errors.New(msg)
	errorSpecs[err] = errorSpec{code: code, description: description}
	return err
}

func lookupSpec(sentinel error) (code, description string) {
	spec, ok := errorSpecs[sentinel]
	if !ok {
		return errx.CodeCLI, errx.DescCLI
	}
	return spec.code, spec.description
}

func newWithSentinel(base error, msg string) error {
	if base == nil {
		return errx.CreateByCode(errx.CodeCLI, errx.DescCLI, msg, nil)
	}
	return errx.FromSentinel(base, lookupSpec, msg, nil)
}

func wrapWithSentinel(base, cause error, msg string) error {
	if base == nil {
		return errx.CreateByCode(errx.CodeCLI, errx.DescCLI, msg, cause)
	}
	return errx.FromSentinel(base, lookupSpec, msg, cause)
}

// wrapWithSentinelAndContext wraps an error with additional structured context
// such as the config path or flag names.
func wrapWithSentinelAndContext(base, cause error, msg string, context map[string]any) error {
	err := wrapWithSentinel(base, cause, msg)
	if errxErr, ok := err.(*errx.Error); ok && len(context) > 0 {
		return errxErr.WithContextMap(context)
	}
	return err
}

var (
	// CLI errors.
	ErrImageRequired          = newSentinelError("image is required", errx.CodeCLI, errx.DescCLI)
	ErrPasswordFlagsConflict  = newSentinelError("--password and --password-stdin are mutually exclusive", errx.CodeCLI, errx.DescCLI)
	ErrReadPasswordFailed     = newSentinelError("failed to read password", errx.CodeCLI, errx.DescCLI)
	ErrGetHomeDirectoryFailed = newSentinelError("failed to get home directory", errx.CodeCLI, errx.DescCLI)

	// Config errors.
	ErrLoadEnvConfigFailed   = newSentinelError("failed to load configuration from environment", errx.CodeConfig, errx.DescConfig)
	ErrReadConfigFailed      = newSentinelError("failed to read config file", errx.CodeConfig, errx.DescConfig)
	ErrUnmarshalConfigFailed = newSentinelError("failed to unmarshal config file", errx.CodeConfig, errx.DescConfig)
	ErrMarshalConfigFailed   = newSentinelError("failed to marshal config", errx.CodeConfig, errx.DescConfig)
)

// logStructuredError logs an error with structured fields to terminal.
// Only logs when debug mode is enabled (via --debug flag).
//
// For errx errors the fields are:
// - error.code: "74000"
// - error.category: "Pipeline error"
// - error.context.step: "pulling"
// - error.context.command: "docker pull nginx:latest"
// - error.cause: the wrapped command error
func logStructuredError(logger *zap.Logger, err error, msg string) {
	if logger == nil || err == nil || !IsDebugMode() {
		return
	}
	logger.Error(msg, errx.ZapFields(err)...)
}
