package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the Book Foundry API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()
			client, err := newClient(opts, log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API:     %s\n", client.BaseURL())
			fmt.Fprintf(cmd.OutOrStdout(), "Project: %s\n", opts.ProjectPath)
			if err := client.Health(cmd.Context()); err != nil {
				return asExit(fmt.Errorf("health check failed: %w", err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Status:  ok")
			return nil
		},
	}
}
