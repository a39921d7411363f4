// Package e2e provides end-to-end tests for nexus-pusher.
//
// These tests drive a REAL docker daemon and a throwaway registry:2
// container published on a random localhost port.
//
// Prerequisites:
//   - docker installed and the daemon running
//   - network access to Docker Hub (busybox and registry:2 are pulled)
//
// Run with: go test -v ./test/e2e/...
// Skip with: go test -short ./...
package e2e

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"nexus-pusher/internal/relay"
	"nexus-pusher/internal/runner"
)

// skipIfShort skips the test if running in short mode.
func skipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
}

// skipIfNoDocker skips the test if no docker daemon is reachable.
func skipIfNoDocker(t *testing.T) {
	if err := exec.Command("docker", "info").Run(); err != nil {
		t.Skip("skipping: docker daemon not reachable")
	}
}

// runCommand runs a command and returns its trimmed output.
func runCommand(t *testing.T, name string, args ...string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("%s %v failed: %v\nstdout: %s\nstderr: %s",
			name, args, err, stdout.String(), stderr.String())
	}
	return strings.TrimSpace(stdout.String())
}

// startRegistry runs registry:2 and returns its host:port.
func startRegistry(t *testing.T) string {
	t.Helper()
	id := runCommand(t, "docker", "run", "-d", "--rm", "-p", "127.0.0.1::5000", "registry:2")
	t.Cleanup(func() { _ = exec.Command("docker", "rm", "-f", id).Run() })

	hostPort := runCommand(t, "docker", "port", id, "5000/tcp")
	// "127.0.0.1:49153", possibly followed by an IPv6 line
	hostPort = strings.SplitN(hostPort, "\n", 2)[0]
	return strings.Replace(hostPort, "127.0.0.1", "localhost", 1)
}

func TestRelayToLocalRegistry(t *testing.T) {
	skipIfShort(t)
	skipIfNoDocker(t)

	host := startRegistry(t) + "/e2e"
	target := "nexus-pusher-e2e:" + time.Now().Format("20060102150405")
	t.Cleanup(func() {
		_ = exec.Command("docker", "rmi", "-f", target, host+"/"+target).Run()
	})

	p := relay.NewPipeline(runner.OSExecutor{}, zaptest.NewLogger(t), relay.Options{Tool: "docker"})
	out, err := p.Run(context.Background(), relay.Input{
		SourceImage:  "busybox:latest",
		RegistryHost: host,
		NewName:      target,
		Username:     "e2e",
		Password:     "e2e",
	}, relay.NopObserver{})
	require.NoError(t, err, strings.Join(out.Log, "\n"))
	assert.Equal(t, relay.Succeeded, out.State)
	assert.Equal(t, host+"/"+target, out.Resolution.Registry)

	// the pushed image can be pulled back
	runCommand(t, "docker", "rmi", "-f", host+"/"+target)
	runCommand(t, "docker", "pull", host+"/"+target)
}

func TestRelayPullFailure(t *testing.T) {
	skipIfShort(t)
	skipIfNoDocker(t)

	p := relay.NewPipeline(runner.OSExecutor{}, zaptest.NewLogger(t), relay.Options{Tool: "docker"})
	out, err := p.Run(context.Background(), relay.Input{
		SourceImage:  "localhost:1/does-not-exist:never",
		RegistryHost: "localhost:1/e2e",
		Username:     "e2e",
		Password:     "e2e",
	}, relay.NopObserver{})
	require.ErrorIs(t, err, relay.ErrPullFailed)
	assert.Equal(t, relay.Failed, out.State)
	assert.Contains(t, strings.Join(out.Log, "\n"), "Exit code: ")
}
