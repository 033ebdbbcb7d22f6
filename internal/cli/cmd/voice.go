package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"bookfoundry/internal/api"
	"bookfoundry/internal/model"
	"bookfoundry/internal/project"
	"bookfoundry/internal/util"
	"bookfoundry/internal/util/format"
)

func newVoiceCmd() *cobra.Command {
	var (
		voice, instructions, text, out string
		speed                          float64
		save                           bool
	)
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Preview a narration voice and optionally save it to the project",
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

			// The project is optional here: without one the sample text is
			// the built-in default.
			p, perr := project.Load(opts.ProjectPath)
			if perr != nil && save {
				return &ExitError{Code: ExitCLIError, Err: perr}
			}

			settings := p.EffectiveVoice()
			if cmd.Flags().Changed("voice") {
				settings.Voice = strings.ToLower(strings.TrimSpace(voice))
			}
			if cmd.Flags().Changed("speed") {
				settings.Speed = speed
			}
			if cmd.Flags().Changed("instructions") {
				settings.Instructions = instructions
			}

			sample := text
			if strings.TrimSpace(sample) == "" {
				sample = sampleText(p)
			}
			audio, err := client.VoicePreview(cmd.Context(), api.VoicePreviewRequest{
				Voice:        settings.Voice,
				Speed:        settings.Speed,
				Instructions: settings.Instructions,
				Text:         util.CleanForSpeech(sample),
			})
			if err != nil {
				return asExit(err)
			}

			if out == "" {
				out = filepath.Join(opts.OutDir, fmt.Sprintf("preview_%s.mp3", settings.Voice))
			}
			if err := util.EnsureDir(filepath.Dir(out)); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			if err := util.WriteFileAtomic(out, audio, 0o644); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved preview: %s (%s, voice %s at %.2gx)\n",
				out, format.HumanizeBytes(int64(len(audio))), settings.Voice, settings.Speed)

			if save {
				if _, err := project.Update(opts.ProjectPath, func(bp *model.BookProject) error {
					bp.Voice = &settings
					return nil
				}); err != nil {
					return &ExitError{Code: ExitCLIError, Err: err}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Voice settings saved to %s\n", opts.ProjectPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&voice, "voice", model.DefaultVoice, "Narration voice")
	cmd.Flags().Float64Var(&speed, "speed", model.DefaultSpeed, "Narration speed")
	cmd.Flags().StringVar(&instructions, "instructions", "", "Narration style instructions")
	cmd.Flags().StringVar(&text, "text", "", "Text to narrate (default: the opening of the first chapter)")
	cmd.Flags().StringVar(&out, "out", "", "Where to write the preview audio (default: <out-dir>/preview_<voice>.mp3)")
	cmd.Flags().BoolVar(&save, "save", false, "Store the voice settings in the project")
	return cmd
}

// sampleText picks preview text from the first chapter, falling back to
// the outline and then the built-in sample.
func sampleText(p model.BookProject) string {
	if len(p.Chapters) > 0 {
		return util.PreviewText(p.Chapters[0])
	}
	if strings.TrimSpace(p.Outline) != "" {
		return util.PreviewText(p.Outline)
	}
	return util.DefaultPreviewText
}
