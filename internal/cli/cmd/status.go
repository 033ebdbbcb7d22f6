package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bookfoundry/internal/jobstate"
	"bookfoundry/internal/model"
	"bookfoundry/internal/progress"
	"bookfoundry/internal/util/format"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Fetch the current status of a render job once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			st, err := client.RenderStatus(cmd.Context(), args[0])
			if err != nil {
				return asExit(err)
			}

			rows := [][]string{
				{"Job", args[0]},
				{"Status", string(st.Status)},
				{"Progress", strconv.Itoa(progress.DisplayPercent(st)) + "%"},
				{"Chapters", fmt.Sprintf("%d of %d", st.CompletedChapters, st.TotalChapters)},
			}
			if st.ElapsedSeconds != nil {
				rows = append(rows, []string{"Elapsed", format.Seconds(*st.ElapsedSeconds)})
			}
			if st.EstimatedSeconds != nil {
				rows = append(rows, []string{"Estimated", format.Seconds(*st.EstimatedSeconds)})
			}
			if st.Result != nil {
				res := jobstate.ResolveResult(*st.Result)
				rows = append(rows, []string{"Folder", res.Folder}, []string{"Files", strconv.Itoa(len(res.AudioFiles))})
				if res.Downloadable() {
					rows = append(rows, []string{"Download", client.DownloadURL(*res.DownloadURL)})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))

			if st.Status == model.StatusError {
				msg := jobstate.FallbackError
				if st.Error != nil && *st.Error != "" {
					msg = *st.Error
				}
				return &ExitError{Code: ExitJobFailed, Err: errors.New(msg)}
			}
			return nil
		},
	}
}
