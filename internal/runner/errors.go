package runner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FailureKind classifies how an invocation ended.
type FailureKind int

const (
	None FailureKind = iota
	NonZeroExit
	Timeout
	LaunchError
	// Canceled means the caller's context was canceled before the process
	// finished; no timeout elapsed.
	Canceled
)

func (k FailureKind) String() string {
	switch k {
	case None:
		return "none"
	case NonZeroExit:
		return "non-zero exit"
	case Timeout:
		return "timeout"
	case LaunchError:
		return "launch error"
	case Canceled:
		return "canceled"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Error describes a failed invocation. Cause is the underlying process,
// context or validator error.
type Error struct {
	Kind     FailureKind
	Command  []string
	ExitCode int
	Timeout  time.Duration
	Cause    error
}

func (e *Error) Error() string {
	cmd := e.CommandLine()
	switch e.Kind {
	case NonZeroExit:
		return fmt.Sprintf("%s exited with code %d", cmd, e.ExitCode)
	case Timeout:
		return fmt.Sprintf("%s timed out after %s", cmd, e.Timeout)
	case Canceled:
		return fmt.Sprintf("%s was canceled", cmd)
	case LaunchError:
		return fmt.Sprintf("%s could not be started: %v", cmd, e.Cause)
	default:
		return fmt.Sprintf("%s failed: %v", cmd, e.Cause)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// CommandLine returns the argument vector joined by spaces.
func (e *Error) CommandLine() string {
	return strings.Join(e.Command, " ")
}

// KindOf returns the FailureKind of the first *Error in err's chain, None
// when err is nil and LaunchError for foreign errors.
func KindOf(err error) FailureKind {
	if err == nil {
		return None
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return LaunchError
}
