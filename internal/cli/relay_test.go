package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nexus-pusher/internal/relay"
	"nexus-pusher/internal/runner"
	"nexus-pusher/internal/runner/runnertest"
)

const testRegistry = "nexus.example.com/repository/docker"

// failingOn returns an executor whose subcommand sub exits with code 1.
func failingOn(sub string) *runnertest.MockExecutor {
	return &runnertest.MockExecutor{
		CommandFunc: func(spec runner.Spec) *runnertest.MockCommand {
			if len(spec.Args) > 0 && spec.Args[0] == sub {
				return &runnertest.MockCommand{WaitErr: runnertest.Exit(1)}
			}
			return nil
		},
	}
}

func newTestManager(t *testing.T, exec runner.Executor) (*RelayManager, *bytes.Buffer) {
	t.Helper()
	p, buf := newTestPrinter()
	return NewRelayManager(exec, zaptest.NewLogger(t), p), buf
}

func TestPushCommand(t *testing.T) {
	useConfig(t, "", Settings{})
	mock := &runnertest.MockExecutor{}
	mgr, out := newTestManager(t, mock)

	cmd := NewPushCmdWithManager(mgr)
	cmd.SetArgs([]string{
		"--image", "nginx:latest",
		"--registry", testRegistry,
		"--name", "myapp:v2",
		"--username", "admin",
		"--password-stdin",
	})
	cmd.SetIn(strings.NewReader("s3cret\n"))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, cmd.Execute())

	assert.Equal(t, []string{"info", "version", "images", "pull", "tag", "rmi", "tag", "login", "push"}, mock.Subcommands())
	var login runnertest.ExecutedCommand
	for _, c := range mock.Commands() {
		if c.Args[0] == "login" {
			login = c
		}
	}
	assert.Equal(t, "s3cret\n", login.Stdin)
	assert.Contains(t, out.String(), testRegistry+"/myapp:v2")
	assert.NotContains(t, out.String(), "s3cret")
}

func TestPushCommandUsesConfiguredDefaults(t *testing.T) {
	useConfig(t, "registry: "+testRegistry+"\nusername: ci\n", Settings{Tool: "podman", Password: "env-pw"})
	mock := &runnertest.MockExecutor{}
	mgr, _ := newTestManager(t, mock)

	err := mgr.Push(context.Background(), pushFlags{image: "alpine:3.20"}, NewPushCmdWithManager(mgr))
	require.NoError(t, err)

	cmds := mock.Commands()
	require.NotEmpty(t, cmds)
	for _, c := range cmds {
		assert.Equal(t, "podman", c.Name)
	}
	last := cmds[len(cmds)-1]
	assert.Equal(t, []string{"podman", "push", testRegistry + "/alpine:3.20"}, last.Argv())
}

func TestPushCommandErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		exec     *runnertest.MockExecutor
		sentinel error
	}{
		{
			name:     "missing image",
			args:     []string{"--registry", testRegistry, "--username", "u", "--password", "p"},
			sentinel: ErrImageRequired,
		},
		{
			name:     "password conflict",
			args:     []string{"--image", "nginx", "--registry", testRegistry, "--username", "u", "--password", "p", "--password-stdin"},
			sentinel: ErrPasswordFlagsConflict,
		},
		{
			name:     "missing credentials",
			args:     []string{"--image", "nginx", "--registry", testRegistry},
			sentinel: relay.ErrValidationFailed,
		},
		{
			name:     "pull fails",
			args:     []string{"--image", "nginx", "--registry", testRegistry, "--username", "u", "--password", "p"},
			exec:     failingOn("pull"),
			sentinel: relay.ErrPullFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useConfig(t, "", Settings{})
			stubTerminal(t, false, "", nil)
			exec := tt.exec
			if exec == nil {
				exec = &runnertest.MockExecutor{}
			}
			mgr, _ := newTestManager(t, exec)

			cmd := NewPushCmdWithManager(mgr)
			cmd.SetArgs(tt.args)
			cmd.SetIn(strings.NewReader(""))
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SilenceUsage = true

			err := cmd.Execute()
			assert.ErrorIs(t, err, tt.sentinel)
			if tt.exec == nil {
				assert.Empty(t, exec.Commands())
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	useConfig(t, "", Settings{})

	mock := &runnertest.MockExecutor{}
	mgr, _ := newTestManager(t, mock)
	mgr.printer.Quiet = true
	require.NoError(t, mgr.Check(context.Background(), Settings{Tool: "podman"}))
	assert.Equal(t, []string{"info", "version"}, mock.Subcommands())
	assert.Equal(t, "podman", mock.Commands()[0].Name)

	mgr, out := newTestManager(t, failingOn("info"))
	mgr.printer.Quiet = true
	err := mgr.Check(context.Background(), Settings{})
	assert.ErrorIs(t, err, relay.ErrToolUnavailable)
	assert.Contains(t, out.String(), "docker error:")
}

func TestResolveCommand(t *testing.T) {
	useConfig(t, "", Settings{Registry: testRegistry + "/"})
	mock := &runnertest.MockExecutor{}
	mgr, out := newTestManager(t, mock)

	cmd := NewResolveCmdWithManager(mgr)
	cmd.SetArgs([]string{"--image", "library/nginx:1.27", "--name", "web"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "web:1.27")
	assert.Contains(t, out.String(), testRegistry+"/web:1.27")
	assert.Empty(t, mock.Commands())
}

func TestResolveCommandErrors(t *testing.T) {
	useConfig(t, "", Settings{})
	mgr, _ := newTestManager(t, &runnertest.MockExecutor{})

	assert.ErrorIs(t, mgr.Resolve("", "", Settings{Registry: testRegistry}), ErrImageRequired)
	assert.ErrorIs(t, mgr.Resolve("nginx", "", Settings{}), relay.ErrValidationFailed)
	assert.ErrorIs(t, mgr.Resolve("nginx", "", Settings{Registry: "bad host"}), relay.ErrInvalidReference)
}
