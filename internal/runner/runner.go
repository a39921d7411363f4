// Package runner executes external commands with a bounded lifetime and
// narrates every invocation line by line.
//
// Two read modes exist. Without stdin input, output is forwarded as each
// line arrives so long operations (pull, push) show live progress. With
// stdin input (a secret for an interactive prompt), the process runs to
// completion first and its combined output is forwarded as a block.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxLineSize caps a single output line; docker progress output stays far
// below this.
const maxLineSize = 1 << 20

// LineFunc receives narrated log lines in order.
type LineFunc func(line string)

// Request describes one invocation.
type Request struct {
	// Args is the full argument vector; Args[0] is the binary.
	Args []string
	// Description is a short human label logged before the command.
	Description string
	// Stdin, when non-empty, is written to the process followed by a
	// newline and switches the runner to buffered mode. It never appears
	// in Args or in the log.
	Stdin string
	// Timeout bounds the invocation; zero means only ctx bounds it.
	Timeout time.Duration
}

// Result is the outcome of one invocation.
type Result struct {
	ExitCode int
	Lines    []string
	Failure  FailureKind
}

// Runner runs Requests through an Executor.
type Runner struct {
	exec       Executor
	emit       LineFunc
	logger     *zap.Logger
	validators []Validator
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger used for debug traces.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithValidators sets validators applied to every argument vector.
func WithValidators(validators ...Validator) Option {
	return func(r *Runner) {
		r.validators = append(r.validators, validators...)
	}
}

// New returns a Runner that narrates to emit.
func New(exec Executor, emit LineFunc, opts ...Option) *Runner {
	r := &Runner{
		exec:   exec,
		emit:   emit,
		logger: zap.NewNop(),
	}
	if r.emit == nil {
		r.emit = func(string) {}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes req. On launch failure the returned Result is zero and the
// error is an *Error of Kind LaunchError. Non-zero exits, timeouts and
// cancellation return the Result collected so far together with an *Error.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	if len(req.Args) == 0 {
		return Result{}, r.launchFailed(req, errors.New("empty command"))
	}
	r.emitf(">>> %s: %s", req.Description, strings.Join(req.Args, " "))
	r.logger.Debug("Running command",
		zap.String("description", req.Description),
		zap.Strings("args", req.Args),
		zap.Duration("timeout", req.Timeout),
		zap.Bool("stdin", req.Stdin != ""),
	)

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd, err := r.exec.Command(ctx, req.Args[0], req.Args[1:], r.validators...)
	if err != nil {
		return Result{}, r.launchFailed(req, err)
	}

	start := time.Now()
	var lines []string
	var waitErr error
	if req.Stdin != "" {
		lines, err, waitErr = r.runBuffered(cmd, req.Stdin)
	} else {
		lines, err, waitErr = r.runStreaming(cmd)
	}
	if err != nil {
		return Result{}, r.launchFailed(req, err)
	}

	if ctxErr := ctx.Err(); waitErr != nil && ctxErr != nil {
		r.logger.Debug("Command did not complete", zap.Strings("args", req.Args), zap.Error(ctxErr))
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			r.emitf("Timeout after %s", req.Timeout)
			return Result{ExitCode: -1, Lines: lines, Failure: Timeout}, &Error{
				Kind:     Timeout,
				Command:  req.Args,
				ExitCode: -1,
				Timeout:  req.Timeout,
				Cause:    ctxErr,
			}
		}
		r.emitf("Canceled: %v", ctxErr)
		return Result{ExitCode: -1, Lines: lines, Failure: Canceled}, &Error{
			Kind:     Canceled,
			Command:  req.Args,
			ExitCode: -1,
			Cause:    ctxErr,
		}
	}

	code := exitCode(waitErr)
	r.emitf("Exit code: %d", code)
	r.logger.Debug("Command finished",
		zap.Strings("args", req.Args),
		zap.Int("exit_code", code),
		zap.Duration("elapsed", time.Since(start)),
	)
	if waitErr != nil {
		return Result{ExitCode: code, Lines: lines, Failure: NonZeroExit}, &Error{
			Kind:     NonZeroExit,
			Command:  req.Args,
			ExitCode: code,
			Cause:    waitErr,
		}
	}
	return Result{ExitCode: 0, Lines: lines}, nil
}

// runStreaming forwards combined output line by line while the process
// runs. startErr is non-nil only when the process never started.
func (r *Runner) runStreaming(cmd Command) (lines []string, startErr, waitErr error) {
	pr, pw := io.Pipe()
	cmd.SetStdout(pw)
	cmd.SetStderr(pw)
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return nil, err, nil
	}

	var g errgroup.Group
	g.Go(func() error {
		sc := bufio.NewScanner(pr)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			line := strings.TrimRight(sc.Text(), "\r")
			lines = append(lines, line)
			r.emit(line)
		}
		if err := sc.Err(); err != nil {
			// keep draining so the process never blocks on a full pipe
			_, _ = io.Copy(io.Discard, pr)
			return err
		}
		return nil
	})

	waitErr = cmd.Wait()
	_ = pw.Close()
	if err := g.Wait(); err != nil {
		r.logger.Warn("Output stream truncated", zap.Error(err))
	}
	return lines, nil, waitErr
}

// runBuffered feeds input on stdin, waits for completion and then forwards
// the combined output.
func (r *Runner) runBuffered(cmd Command, input string) (lines []string, startErr, waitErr error) {
	var out bytes.Buffer
	cmd.SetStdin(strings.NewReader(input + "\n"))
	cmd.SetStdout(&out)
	cmd.SetStderr(&out)
	if err := cmd.Start(); err != nil {
		return nil, err, nil
	}
	waitErr = cmd.Wait()

	lines = splitLines(out.String())
	for _, line := range lines {
		r.emit(line)
	}
	return lines, nil, waitErr
}

func (r *Runner) launchFailed(req Request, cause error) error {
	r.emitf("Error: %v", cause)
	r.logger.Debug("Command could not be started", zap.Strings("args", req.Args), zap.Error(cause))
	return &Error{
		Kind:     LaunchError,
		Command:  req.Args,
		ExitCode: -1,
		Cause:    cause,
	}
}

func (r *Runner) emitf(format string, args ...any) {
	r.emit(fmt.Sprintf(format, args...))
}

// exitCode extracts the process exit code from a Wait error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return -1
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\r\n")
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}
