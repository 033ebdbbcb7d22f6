package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"bookfoundry/internal/api"
	"bookfoundry/internal/config"
	"bookfoundry/internal/dirs"
	"bookfoundry/internal/logging"
	"bookfoundry/internal/model"
	"bookfoundry/internal/poller"
)

const (
	ExitOK          = 0
	ExitCLIError    = 1
	ExitUnreachable = 2
	ExitJobFailed   = 3
	ExitTimedOut    = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookfoundry",
		Short:         "Write and narrate audiobooks with the Book Foundry service",
		Long:          "bookfoundry walks a book from prompt to outline, chapters and a narrated audiobook. Each step talks to a Book Foundry API; the render step submits a job and follows it until the audio is ready.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Init(cmd.Root()); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			return nil
		},
	}

	bindPersistentFlags(root.PersistentFlags())

	root.AddCommand(newInitCmd())
	root.AddCommand(newOutlineCmd())
	root.AddCommand(newChaptersCmd())
	root.AddCommand(newVoiceCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newServeMockCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func bindPersistentFlags(fs *pflag.FlagSet) {
	fs.String("api-url", config.DefaultAPIURL, "Base URL of the Book Foundry API")
	fs.StringP("project", "p", config.DefaultProject, "Project file")
	fs.StringP("out-dir", "o", ".", "Output directory")
	fs.BoolP("verbose", "v", false, "Enable debug logging")
	fs.String("log-format", "text", "Log format: text, json")
	fs.Duration("poll-interval", config.DefaultPollInterval, "Delay between status checks")
	fs.Duration("poll-timeout", config.DefaultPollTimeout, "Give up on a render after this long (0 = never)")
	fs.Int("max-polls", 0, "Give up after this many status checks (0 = unlimited)")
	fs.Int("poll-retries", config.DefaultPollRetries, "Consecutive failed status checks tolerated")
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

// loadOptions resolves the effective options for a command.
func loadOptions() (model.CLIOptions, error) {
	opts, err := config.Load()
	if err != nil {
		return opts, &ExitError{Code: ExitCLIError, Err: err}
	}
	return opts, nil
}

// newLogger builds the command logger. Logs go to w unless w is nil, in
// which case they go to the log file in the state directory so they do not
// tear the TUI. The returned func closes any file that was opened.
func newLogger(opts model.CLIOptions, w io.Writer) (*slog.Logger, func(), error) {
	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	closer := func() {}
	if w == nil {
		dir, err := dirs.StateDir()
		if err != nil {
			return logging.Discard(), closer, nil
		}
		f, err := logging.OpenFile(dir, dirs.LogFileName)
		if err != nil {
			return logging.Discard(), closer, nil
		}
		w, closer = f, func() { _ = f.Close() }
		level = "info"
		if opts.Verbose {
			level = "debug"
		}
	}
	log, err := logging.New(logging.Options{Level: level, Format: opts.LogFormat, Writer: w})
	if err != nil {
		closer()
		return nil, func() {}, &ExitError{Code: ExitCLIError, Err: err}
	}
	return log, closer, nil
}

func newClient(opts model.CLIOptions, log *slog.Logger) (*api.Client, error) {
	c, err := api.NewClient(api.Config{
		BaseURL:           opts.APIURL,
		Timeout:           opts.RequestTimeout,
		RequestsPerSecond: opts.RequestsPerSecond,
		Logger:            log,
	})
	if err != nil {
		return nil, &ExitError{Code: ExitCLIError, Err: err}
	}
	return c, nil
}

func pollOptions(opts model.CLIOptions, log *slog.Logger) poller.Options {
	return poller.Options{
		Interval:         opts.PollInterval,
		Timeout:          opts.PollTimeout,
		MaxAttempts:      opts.MaxPolls,
		TransientRetries: opts.PollRetries,
		Logger:           log,
	}
}

// exitCode picks the process exit code for err.
func exitCode(err error) int {
	var ee *ExitError
	var ve *api.ValidationError
	var je *poller.JobError
	var ae *api.APIError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ee):
		return ee.Code
	case errors.As(err, &ve):
		return ExitCLIError
	case errors.Is(err, poller.ErrTimedOut):
		return ExitTimedOut
	case errors.As(err, &je):
		return ExitJobFailed
	case errors.As(err, &ae) && ae.StatusCode == 0:
		return ExitUnreachable
	default:
		return ExitCLIError
	}
}

// asExit attaches the exit code for err, leaving nil and *ExitError alone.
func asExit(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return err
	}
	return &ExitError{Code: exitCode(err), Err: err}
}
