package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/talentlens/pkg/logger"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "talentctl",
		Short: "talentctl - operator tool for the talentlens service",
		Long: `talentctl works with candidate profiles outside the server.

It can assemble a profile from a fixture file without a running service and
can seed a running server with synthetic candidates, then check that the
rankings and profiles it serves match the generated data.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries command output; logs go to stderr
			if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(logFormat)); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", logger.FormatText, "Log format: text or json")

	cmd.AddCommand(newProfileCommand())
	cmd.AddCommand(newSeedCommand())

	return cmd
}
