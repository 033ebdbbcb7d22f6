package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookfoundry/internal/mockserver"
)

func newServeMockCmd() *cobra.Command {
	var (
		addr       string
		timeScale  float64
		queueDelay time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve-mock",
		Short: "Run a local stand-in for the Book Foundry API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			// The request logger writes at debug level.
			opts.Verbose = true
			log, closeLog, err := newLogger(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			srv := mockserver.New(mockserver.Options{
				Addr:       addr,
				TimeScale:  timeScale,
				QueueDelay: queueDelay,
				Logger:     log,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Mock Book Foundry API on http://%s (time scale %g)\n", addr, timeScale)
			if err := srv.ListenAndServe(cmd.Context()); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	cmd.Flags().Float64Var(&timeScale, "time-scale", 1, "Multiplier for simulated render time")
	cmd.Flags().DurationVar(&queueDelay, "queue-delay", 2*time.Second, "How long new jobs stay pending")
	return cmd
}
