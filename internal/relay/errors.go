package relay

// This file defines the relay error taxonomy. Every sentinel is registered
// with an errx code so callers can match with errors.Is and render codes and
// context for debugging.

import (
	"errors"
	"fmt"

	"nexus-pusher/internal/runner"
	"nexus-pusher/pkg/errx"
)

type errorSpec struct {
	code        string
	description string
}

// errorSpecs must be declared before the sentinels that populate it.
var errorSpecs = make(map[error]errorSpec)

func newSentinelError(msg, code, description string) error {
	err := errors.New(msg)
	errorSpecs[err] = errorSpec{code: code, description: description}
	return err
}

var (
	// Input errors, reported synchronously before a run starts.
	ErrValidationFailed = newSentinelError("input validation failed", errx.CodeCLI, errx.DescCLI)
	ErrInvalidReference = newSentinelError("invalid image reference", errx.CodeCLI, errx.DescCLI)

	// Tool errors.
	ErrToolUnavailable = newSentinelError("container tool unavailable", errx.CodeTool, errx.DescTool)

	// Command execution errors.
	ErrCommandFailed   = newSentinelError("command failed", errx.CodeCommand, errx.DescCommand)
	ErrCommandTimedOut = newSentinelError("command timed out", errx.CodeCommand, errx.DescCommand)
	ErrCommandCanceled = newSentinelError("command canceled", errx.CodeCommand, errx.DescCommand)
	ErrLaunchFailed    = newSentinelError("command could not be started", errx.CodeCommand, errx.DescCommand)

	// Step errors. They wrap one of the command errors above.
	ErrVersionCheckFailed = newSentinelError("failed to query tool version", errx.CodeTool, errx.DescTool)
	ErrRemoveStaleFailed  = newSentinelError("failed to remove existing image", errx.CodePipeline, errx.DescPipeline)
	ErrPullFailed         = newSentinelError("failed to pull image", errx.CodePipeline, errx.DescPipeline)
	ErrRenameFailed       = newSentinelError("failed to rename image", errx.CodePipeline, errx.DescPipeline)
	ErrTagFailed          = newSentinelError("failed to tag image for registry", errx.CodeRegistry, errx.DescRegistry)
	ErrLoginFailed        = newSentinelError("failed to login to registry", errx.CodeRegistry, errx.DescRegistry)
	ErrPushFailed         = newSentinelError("failed to push image", errx.CodeRegistry, errx.DescRegistry)

	// Scheduling errors.
	ErrRunInProgress = newSentinelError("a relay is already running", errx.CodePipeline, errx.DescPipeline)
	ErrRunPanicked   = newSentinelError("relay aborted unexpectedly", errx.CodePipeline, errx.DescPipeline)
)

func lookupSpec(sentinel error) (code, description string) {
	spec, ok := errorSpecs[sentinel]
	if !ok {
		return errx.CodePipeline, errx.DescPipeline
	}
	return spec.code, spec.description
}

func newWithSentinel(base error, msg string) error {
	return errx.FromSentinel(base, lookupSpec, msg, nil)
}

func wrapWithSentinelAndContext(base, cause error, msg string, context map[string]any) error {
	err := errx.FromSentinel(base, lookupSpec, msg, cause)
	if len(context) > 0 {
		return err.WithContextMap(context)
	}
	return err
}

// ValidationError lists the required input fields that were empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %v", e.Missing)
}

// commandError classifies a runner failure into ErrCommandFailed,
// ErrCommandTimedOut, ErrCommandCanceled or ErrLaunchFailed, keeping the
// *runner.Error as cause.
func commandError(state State, err error) error {
	var rerr *runner.Error
	if !errors.As(err, &rerr) {
		return wrapWithSentinelAndContext(ErrLaunchFailed, err, err.Error(), map[string]any{"step": string(state)})
	}
	ctx := map[string]any{
		"command": rerr.CommandLine(),
		"step":    string(state),
	}
	switch rerr.Kind {
	case runner.NonZeroExit:
		ctx["exit_code"] = rerr.ExitCode
		return wrapWithSentinelAndContext(ErrCommandFailed, err, rerr.Error(), ctx)
	case runner.Timeout:
		ctx["timeout"] = rerr.Timeout.String()
		return wrapWithSentinelAndContext(ErrCommandTimedOut, err, rerr.Error(), ctx)
	case runner.Canceled:
		return wrapWithSentinelAndContext(ErrCommandCanceled, err, rerr.Error(), ctx)
	default:
		if rerr.Cause != nil {
			ctx["cause"] = rerr.Cause.Error()
		}
		return wrapWithSentinelAndContext(ErrLaunchFailed, err, rerr.Error(), ctx)
	}
}

// stepError wraps a classified command error with the step sentinel.
func stepError(base error, state State, err error, msg string, context map[string]any) error {
	cmdErr := commandError(state, err)
	return wrapWithSentinelAndContext(base, cmdErr, fmt.Sprintf("%s: %s", msg, errx.UserString(cmdErr)), context)
}
