// Package runnertest provides a scripted runner.Executor for tests.
package runnertest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"nexus-pusher/internal/runner"
)

// ExitError mimics *exec.ExitError for a given exit code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode returns the scripted exit code.
func (e *ExitError) ExitCode() int { return e.Code }

// Exit returns an *ExitError with code.
func Exit(code int) error { return &ExitError{Code: code} }

// ExecutedCommand records one command created through MockExecutor.
type ExecutedCommand struct {
	Name  string
	Args  []string
	Stdin string
}

// Argv returns Name followed by Args.
func (c ExecutedCommand) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// MockExecutor records every command and hands out scripted MockCommands.
type MockExecutor struct {
	// CommandFunc scripts the command for spec. It must return a fresh
	// MockCommand per call; nil falls back to the defaults below.
	CommandFunc func(spec runner.Spec) *MockCommand
	// CommandErr is returned from Command itself, before validators run.
	CommandErr error

	DefaultOutput []byte
	DefaultErr    error

	mu       sync.Mutex
	commands []*ExecutedCommand
}

// Command implements runner.Executor.
func (m *MockExecutor) Command(ctx context.Context, name string, args []string, validators ...runner.Validator) (runner.Command, error) {
	if m.CommandErr != nil {
		return nil, m.CommandErr
	}
	spec := runner.Spec{Name: name, Args: slices.Clone(args)}
	if err := runner.Validate(spec, validators...); err != nil {
		return nil, err
	}

	rec := &ExecutedCommand{Name: name, Args: spec.Args}
	m.mu.Lock()
	m.commands = append(m.commands, rec)
	m.mu.Unlock()

	var cmd *MockCommand
	if m.CommandFunc != nil {
		cmd = m.CommandFunc(spec)
	}
	if cmd == nil {
		cmd = &MockCommand{OutputData: m.DefaultOutput, WaitErr: m.DefaultErr}
	}
	cmd.ctx = ctx
	cmd.rec = rec
	cmd.mu = &m.mu
	return cmd, nil
}

// Commands returns a snapshot of the recorded commands.
func (m *MockExecutor) Commands() []ExecutedCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ExecutedCommand, len(m.commands))
	for i, c := range m.commands {
		out[i] = *c
	}
	return out
}

// Argvs returns the full argument vector of every recorded command.
func (m *MockExecutor) Argvs() [][]string {
	cmds := m.Commands()
	out := make([][]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Argv()
	}
	return out
}

// Subcommands returns the first argument of every recorded command.
func (m *MockExecutor) Subcommands() []string {
	var out []string
	for _, c := range m.Commands() {
		if len(c.Args) > 0 {
			out = append(out, c.Args[0])
		}
	}
	return out
}

// HasSubcommand reports whether any recorded command used sub.
func (m *MockExecutor) HasSubcommand(sub string) bool {
	return slices.Contains(m.Subcommands(), sub)
}

// MockCommand is a scripted runner.Command. Output is delivered on Wait so
// streaming readers are already attached.
type MockCommand struct {
	OutputData []byte
	StartErr   error
	WaitErr    error
	// Block makes Wait hang until the command context is done and then
	// return the context error, like a process killed on timeout.
	Block bool

	ctx    context.Context
	rec    *ExecutedCommand
	mu     *sync.Mutex
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *MockCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *MockCommand) SetStderr(w io.Writer) { c.stderr = w }
func (c *MockCommand) SetStdin(r io.Reader)  { c.stdin = r }

// Start records stdin and fails with StartErr when set.
func (c *MockCommand) Start() error {
	if c.StartErr != nil {
		return c.StartErr
	}
	if c.stdin != nil && c.rec != nil {
		data, _ := io.ReadAll(c.stdin)
		c.mu.Lock()
		c.rec.Stdin = string(data)
		c.mu.Unlock()
	}
	return nil
}

// Wait writes OutputData to stdout and returns WaitErr.
func (c *MockCommand) Wait() error {
	if c.Block && c.ctx != nil {
		<-c.ctx.Done()
		return c.ctx.Err()
	}
	if c.stdout != nil && len(c.OutputData) > 0 {
		_, _ = c.stdout.Write(c.OutputData)
	}
	return c.WaitErr
}

// Run is Start followed by Wait.
func (c *MockCommand) Run() error {
	if err := c.Start(); err != nil {
		return err
	}
	return c.Wait()
}

// Output returns OutputData.
func (c *MockCommand) Output() ([]byte, error) {
	var buf bytes.Buffer
	c.stdout = &buf
	err := c.Run()
	return buf.Bytes(), err
}

// CombinedOutput returns OutputData.
func (c *MockCommand) CombinedOutput() ([]byte, error) {
	return c.Output()
}
