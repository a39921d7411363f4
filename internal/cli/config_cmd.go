package cli

// This file implements the "config" command for inspecting the effective
// configuration.

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd builds the config command.
func NewConfigCmd(logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
		Long:  "Commands for inspecting the configuration assembled from the config file and NEXUS_PUSHER_* environment variables",
	}

	cmd.AddCommand(newConfigShowCmd(logger, DefaultPrinter))
	cmd.AddCommand(newConfigPathCmd(DefaultPrinter))

	return cmd
}

func newConfigShowCmd(logger *zap.Logger, printer *Printer) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML (password masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := resolveConfig(Settings{})
			if err != nil {
				printer.Error("Failed to load configuration")
				logStructuredError(logger, err, "Failed to load configuration")
				return err
			}
			data, err := yaml.Marshal(settings)
			if err != nil {
				return wrapWithSentinel(ErrMarshalConfigFailed, err, "failed to marshal config")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigPathCmd(printer *Printer) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				printer.Error("Failed to locate config file")
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}
