package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bookfoundry/internal/api"
	"bookfoundry/internal/model"
	"bookfoundry/internal/pipeline"
	"bookfoundry/internal/progress"
	"bookfoundry/internal/project"
	"bookfoundry/internal/ui"
	"bookfoundry/internal/util"
	"bookfoundry/internal/util/format"
)

func newRenderCmd() *cobra.Command {
	var noUI, includeOutline, download bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Narrate the project chapters and wait for the audiobook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			opts.NoUI = noUI
			useTUI := !opts.NoUI && isTerminal()

			// With the TUI on screen, logs go to the state log file.
			var logW io.Writer = cmd.ErrOrStderr()
			if useTUI {
				logW = nil
			}
			log, closeLog, err := newLogger(opts, logW)
			if err != nil {
				return err
			}
			defer closeLog()

			client, err := newClient(opts, log)
			if err != nil {
				return err
			}
			p, err := project.Load(opts.ProjectPath)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			req := p.RenderRequest(includeOutline)
			if err := api.ValidateRenderRequest(req); err != nil {
				return asExit(err)
			}

			popts := []pipeline.Option{
				pipeline.WithPollOptions(pollOptions(opts, log)),
				pipeline.WithLogger(log),
			}
			var st model.DisplayState
			if useTUI {
				st, err = ui.Run(cmd.Context(), client, req, popts...)
			} else {
				rep := &lineReporter{w: cmd.OutOrStdout()}
				popts = append(popts, pipeline.WithReporter(rep))
				st, err = pipeline.NewService(client, popts...).Render(cmd.Context(), req)
			}
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return &ExitError{Code: ExitCLIError, Err: errors.New("render cancelled")}
				}
				return asExit(err)
			}

			out := cmd.OutOrStdout()
			printResult(out, st)
			if !download {
				return nil
			}
			if st.Result == nil || !st.Result.Downloadable() {
				fmt.Fprintln(out, "No archive was produced; nothing to download.")
				return nil
			}
			path, n, err := downloadArchive(cmd.Context(), client, *st.Result.DownloadURL, opts.OutDir, p.Title)
			if err != nil {
				return asExit(err)
			}
			fmt.Fprintf(out, "Downloaded archive: %s (%s)\n", path, format.HumanizeBytes(n))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "Disable TUI; print plain progress lines")
	cmd.Flags().BoolVar(&includeOutline, "include-outline", false, "Narrate the outline before the chapters")
	cmd.Flags().BoolVar(&download, "download", false, "Download the audiobook archive into --out-dir")
	return cmd
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// lineReporter prints one line per status change for non-interactive runs.
type lineReporter struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func (r *lineReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := fmt.Sprintf("[%3d%%] %-10s %s", u.State.ProgressPercent, u.Stage, u.Message)
	if line == r.last {
		return
	}
	r.last = line
	fmt.Fprintln(r.w, line)
}

func (r *lineReporter) Result(progress.Result) {}

func printResult(w io.Writer, st model.DisplayState) {
	if st.Result == nil {
		return
	}
	fmt.Fprintf(w, "Audiobook ready in %s\n", st.Result.Folder)
	rows := make([][]string, 0, len(st.Result.AudioFiles))
	for i, f := range st.Result.AudioFiles {
		rows = append(rows, []string{strconv.Itoa(i + 1), f})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable([]string{"#", "Audio file"}, rows, []columnAlignment{alignRight, alignLeft}))
	}
	if st.Result.Downloadable() {
		fmt.Fprintf(w, "Archive: %s\n", *st.Result.DownloadURL)
	}
}

// downloadArchive saves the archive as <out-dir>/<base>_complete.zip.
func downloadArchive(ctx context.Context, c *api.Client, ref, outDir, title string) (string, int64, error) {
	if err := util.EnsureDir(outDir); err != nil {
		return "", 0, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outDir, util.SanitizeFilename(project.BaseName(title))+"_complete.zip")
	tmp, err := os.CreateTemp(outDir, ".download-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := c.DownloadArchive(ctx, ref, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return "", n, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", n, fmt.Errorf("save archive: %w", err)
	}
	return path, n, nil
}
