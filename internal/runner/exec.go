package runner

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"
)

// execCommandContext is a test seam for stubbing process creation.
var execCommandContext = exec.CommandContext

// waitDelay bounds how long Wait keeps reading output after the process was
// killed, in case a grandchild still holds the pipe open.
const waitDelay = 5 * time.Second

var (
	ErrBinaryNotAllowed = errors.New("exec: binary not allowed")
	ErrControlChars     = errors.New("exec: control characters not allowed")
)

// Command is a single external process.
type Command interface {
	Output() ([]byte, error)
	CombinedOutput() ([]byte, error)
	Run() error
	Start() error
	Wait() error
	SetStdout(w io.Writer)
	SetStderr(w io.Writer)
	SetStdin(r io.Reader)
}

// Executor creates commands bound to ctx; the process is killed when ctx
// is done.
type Executor interface {
	Command(ctx context.Context, name string, args []string, validators ...Validator) (Command, error)
}

type execCmd struct {
	cmd *exec.Cmd
}

func (c *execCmd) Output() ([]byte, error)         { return c.cmd.Output() }
func (c *execCmd) CombinedOutput() ([]byte, error) { return c.cmd.CombinedOutput() }
func (c *execCmd) Run() error                      { return c.cmd.Run() }
func (c *execCmd) Start() error                    { return c.cmd.Start() }
func (c *execCmd) Wait() error                     { return c.cmd.Wait() }
func (c *execCmd) SetStdout(w io.Writer)           { c.cmd.Stdout = w }
func (c *execCmd) SetStderr(w io.Writer)           { c.cmd.Stderr = w }
func (c *execCmd) SetStdin(r io.Reader)            { c.cmd.Stdin = r }

// OSExecutor runs real processes through os/exec.
type OSExecutor struct{}

// Command validates the argument vector and builds the process.
func (OSExecutor) Command(ctx context.Context, name string, args []string, validators ...Validator) (Command, error) {
	if err := Validate(Spec{Name: name, Args: args}, validators...); err != nil {
		return nil, err
	}
	cmd := execCommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	return &execCmd{cmd: cmd}, nil
}

// Spec is the argument vector a Validator inspects.
type Spec struct {
	Name string
	Args []string
}

// Validator rejects an argument vector before any process is created.
type Validator func(Spec) error

// Validate runs validators in order and returns the first rejection.
func Validate(spec Spec, validators ...Validator) error {
	for _, validate := range validators {
		if err := validate(spec); err != nil {
			return err
		}
	}
	return nil
}

// AllowlistBins only admits the named binaries.
func AllowlistBins(allowed ...string) Validator {
	set := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		set[name] = struct{}{}
	}
	return func(spec Spec) error {
		if _, ok := set[spec.Name]; !ok {
			return ErrBinaryNotAllowed
		}
		return nil
	}
}

// NoControlChars rejects arguments containing CR, LF or TAB.
func NoControlChars() Validator {
	return func(spec Spec) error {
		for _, arg := range spec.Args {
			if strings.ContainsAny(arg, "\r\n\t") {
				return ErrControlChars
			}
		}
		return nil
	}
}
