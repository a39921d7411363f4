package cli

// This file implements the "push", "check" and "resolve" commands that drive
// the relay pipeline.

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nexus-pusher/internal/naming"
	"nexus-pusher/internal/relay"
	"nexus-pusher/internal/runner"
	"nexus-pusher/pkg/errx"
)

// RelayManager handles relay operations with injected dependencies.
type RelayManager struct {
	exec    runner.Executor
	logger  *zap.Logger
	printer *Printer
}

// NewRelayManager creates a RelayManager with the given dependencies.
func NewRelayManager(exec runner.Executor, logger *zap.Logger, printer *Printer) *RelayManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if printer == nil {
		printer = DefaultPrinter
	}
	return &RelayManager{exec: exec, logger: logger, printer: printer}
}

// DefaultRelayManager returns a RelayManager that runs real processes.
func DefaultRelayManager(logger *zap.Logger) *RelayManager {
	return NewRelayManager(runner.OSExecutor{}, logger, DefaultPrinter)
}

// NewPushCmd builds the push command.
func NewPushCmd(logger *zap.Logger) *cobra.Command {
	return NewPushCmdWithManager(DefaultRelayManager(logger))
}

// NewCheckCmd builds the check command.
func NewCheckCmd(logger *zap.Logger) *cobra.Command {
	return NewCheckCmdWithManager(DefaultRelayManager(logger))
}

// NewResolveCmd builds the resolve command.
func NewResolveCmd(logger *zap.Logger) *cobra.Command {
	return NewResolveCmdWithManager(DefaultRelayManager(logger))
}

type pushFlags struct {
	image         string
	newName       string
	settings      Settings
	password      string
	passwordStdin bool
}

// NewPushCmdWithManager returns the push command using the provided manager.
func NewPushCmdWithManager(mgr *RelayManager) *cobra.Command {
	var f pushFlags

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Pull an image and push it to a private registry",
		Long: `Pull an image from its public registry, optionally rename it, tag it
under the private registry host, log in and push it.

The password is read from --password-stdin, --password, NEXUS_PUSHER_PASSWORD,
the config file, or prompted for when running in a terminal.`,
		Example: `  nexus-pusher push --image nginx:latest --registry nexus.example.com/repository/docker --username admin
  echo "$PW" | nexus-pusher push --image nginx:1.27 --name web:1.27 --registry nexus.example.com --username ci --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mgr.Push(ctx, f, cmd)
		},
	}

	cmd.Flags().StringVar(&f.image, "image", "", "Source image reference (e.g. nginx:latest)")
	cmd.Flags().StringVar(&f.newName, "name", "", "Optional new local name (e.g. myapp:v2)")
	cmd.Flags().StringVar(&f.settings.Registry, "registry", "", "Registry host and repository path (e.g. nexus.example.com/repository/docker)")
	cmd.Flags().StringVar(&f.settings.Username, "username", "", "Registry username")
	cmd.Flags().StringVar(&f.password, "password", "", "Registry password (prefer --password-stdin)")
	cmd.Flags().BoolVar(&f.passwordStdin, "password-stdin", false, "Read the registry password from stdin")
	addToolFlags(cmd, &f.settings)

	return cmd
}

func addToolFlags(cmd *cobra.Command, s *Settings) {
	cmd.Flags().StringVar(&s.Tool, "tool", "", "Container CLI to drive (docker or podman)")
	cmd.Flags().DurationVar(&s.PullTimeout, "pull-timeout", 0, "Timeout for pulling the image")
	cmd.Flags().DurationVar(&s.PushTimeout, "push-timeout", 0, "Timeout for pushing the image")
	cmd.Flags().DurationVar(&s.LoginTimeout, "login-timeout", 0, "Timeout for registry login")
}

// Push resolves settings and credentials and runs one relay to completion.
func (m *RelayManager) Push(ctx context.Context, f pushFlags, cmd *cobra.Command) error {
	settings, err := resolveConfig(f.settings)
	if err != nil {
		m.printer.Error("Failed to load configuration")
		logStructuredError(m.logger, err, "Failed to load configuration")
		return err
	}
	if strings.TrimSpace(f.image) == "" {
		err := newWithSentinel(ErrImageRequired, "image is required (--image)")
		m.printer.Error("Image required")
		logStructuredError(m.logger, err, "Image required")
		return err
	}

	password, err := resolvePassword(
		passwordSource{flag: f.password, fromStdin: f.passwordStdin},
		settings.Password,
		cmd.InOrStdin(),
		cmd.ErrOrStderr(),
	)
	if err != nil {
		m.printer.Error("Failed to read password")
		logStructuredError(m.logger, err, "Failed to read password")
		return err
	}

	in := relay.Input{
		SourceImage:  f.image,
		RegistryHost: settings.Registry,
		NewName:      f.newName,
		Username:     settings.Username,
		Password:     password,
	}

	pipeline := relay.NewPipeline(m.exec, m.logger, settings.PipelineOptions())
	launcher := relay.NewLauncher(pipeline, func() {
		m.logger.Debug("Relay finished, launcher idle")
	})

	run, err := launcher.Start(ctx, in, newConsoleObserver(m.printer, m.logger, in.Normalized().SourceImage))
	if err != nil {
		m.printer.Error(errx.UserString(err))
		logStructuredError(m.logger, err, "Relay not started")
		return err
	}

	out, err := run.Wait()
	if err != nil {
		logStructuredError(m.logger, err, "Relay failed")
		return err
	}

	m.printer.Println()
	m.printer.TableBoxed([][]string{
		{"Field", "Value"},
		{"Source", out.Resolution.Source},
		{"Local image", out.Image},
		{"Pushed", Green(out.Resolution.Registry)},
		{"Run ID", out.RunID},
	})
	return nil
}

// NewCheckCmdWithManager returns the check command using the provided manager.
func NewCheckCmdWithManager(mgr *RelayManager) *cobra.Command {
	var s Settings

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the container tool is installed and running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mgr.Check(cmd.Context(), s)
		},
	}
	cmd.Flags().StringVar(&s.Tool, "tool", "", "Container CLI to check (docker or podman)")

	return cmd
}

// Check runs the tool availability check and version query.
func (m *RelayManager) Check(ctx context.Context, flags Settings) error {
	settings, err := resolveConfig(flags)
	if err != nil {
		logStructuredError(m.logger, err, "Failed to load configuration")
		return err
	}
	pipeline := relay.NewPipeline(m.exec, m.logger, settings.PipelineOptions())

	var lines []string
	stop := m.printer.SpinnerStart(fmt.Sprintf("Checking %s", pipeline.Tool()))
	err = pipeline.Preflight(ctx, func(line string) { lines = append(lines, line) })
	if err != nil {
		stop(false, errx.UserString(err))
		for _, line := range lines {
			m.printer.Warn(line)
		}
		logStructuredError(m.logger, err, "Tool check failed")
		return err
	}
	stop(true, fmt.Sprintf("%s is available", pipeline.Tool()))
	for _, line := range lines {
		m.logger.Debug("check", zap.String("line", line))
	}
	return nil
}

// NewResolveCmdWithManager returns the resolve command using the provided manager.
func NewResolveCmdWithManager(mgr *RelayManager) *cobra.Command {
	var image, newName string
	var s Settings

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the references a push would use without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mgr.Resolve(image, newName, s)
		},
	}
	cmd.Flags().StringVar(&image, "image", "", "Source image reference")
	cmd.Flags().StringVar(&newName, "name", "", "Optional new local name")
	cmd.Flags().StringVar(&s.Registry, "registry", "", "Registry host and repository path")

	return cmd
}

// Resolve prints the reference plan for image.
func (m *RelayManager) Resolve(image, newName string, flags Settings) error {
	settings, err := resolveConfig(flags)
	if err != nil {
		logStructuredError(m.logger, err, "Failed to load configuration")
		return err
	}
	image, newName = strings.TrimSpace(image), strings.TrimSpace(newName)
	if image == "" {
		err := newWithSentinel(ErrImageRequired, "image is required (--image)")
		m.printer.Error("Image required")
		return err
	}
	registry := strings.TrimSpace(settings.Registry)
	if registry == "" {
		err := newWithSentinel(relay.ErrValidationFailed, "registry is required (--registry, NEXUS_PUSHER_REGISTRY or config file)")
		m.printer.Error("Registry required")
		return err
	}

	res := naming.Resolve(image, registry, newName)
	if err := relay.CheckReferences(res); err != nil {
		m.printer.Error(errx.UserString(err))
		logStructuredError(m.logger, err, "Invalid reference")
		return err
	}

	renamed := "no"
	if res.Renamed {
		renamed = "yes"
	}
	m.printer.Table([][]string{
		{"Step", "Reference"},
		{"Pull", res.Source},
		{"Rename (" + renamed + ")", res.Target},
		{"Push", res.Registry},
	})
	return nil
}
