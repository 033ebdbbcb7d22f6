package cmd

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"bookfoundry/internal/api"
	"bookfoundry/internal/model"
	"bookfoundry/internal/project"
	"bookfoundry/internal/util"
)

func newInitCmd() *cobra.Command {
	var title, prompt string
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new book project file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			p, err := project.Init(opts.ProjectPath, title, prompt, force)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s for %q\n", opts.ProjectPath, p.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Book title")
	cmd.Flags().StringVar(&prompt, "prompt", "", "What the book should be about")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing project file")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newOutlineCmd() *cobra.Command {
	var feedback string
	cmd := &cobra.Command{
		Use:   "outline",
		Short: "Generate the book outline, or regenerate it with --feedback",
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
			p, err := project.Load(opts.ProjectPath)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}

			var outline string
			if cmd.Flags().Changed("feedback") {
				outline, err = client.RegenerateOutline(cmd.Context(), api.OutlineFeedbackRequest{
					Title: p.Title, Prompt: p.Prompt, Feedback: feedback,
				})
			} else {
				outline, err = client.GenerateOutline(cmd.Context(), api.OutlineRequest{Title: p.Title, Prompt: p.Prompt})
			}
			if err != nil {
				return asExit(err)
			}

			// A new outline invalidates chapters drafted from the old one.
			if _, err := project.Update(opts.ProjectPath, func(bp *model.BookProject) error {
				bp.Outline = outline
				bp.Chapters = nil
				return nil
			}); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), outline)
			return nil
		},
	}
	cmd.Flags().StringVar(&feedback, "feedback", "", "Feedback on the current outline")
	return cmd
}

func newChaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chapters",
		Short: "Draft chapters from the project outline",
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
			p, err := project.Load(opts.ProjectPath)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			chapters, err := client.GenerateChapters(cmd.Context(), api.ChaptersRequest{Title: p.Title, Outline: p.Outline})
			if err != nil {
				return asExit(err)
			}
			if _, err := project.Update(opts.ProjectPath, func(bp *model.BookProject) error {
				bp.Chapters = chapters
				return nil
			}); err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			out := cmd.OutOrStdout()
			for i, ch := range chapters {
				fmt.Fprintf(out, "Chapter %d: %s\n", i+1, firstLine(ch))
			}
			fmt.Fprintf(out, "Saved %d chapters to %s\n", len(chapters), opts.ProjectPath)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var split bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the book as Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			p, err := project.Load(opts.ProjectPath)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			written, err := exportMarkdown(p, opts.OutDir, split)
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			for _, path := range written {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&split, "split", false, "Also write the outline and each chapter as separate files")
	return cmd
}

// exportMarkdown writes <base>_complete.md under outDir and, with split,
// a <base>_complete/text directory holding one file per section.
func exportMarkdown(p model.BookProject, outDir string, split bool) ([]string, error) {
	if strings.TrimSpace(p.Outline) == "" && len(p.Chapters) == 0 {
		return nil, fmt.Errorf("nothing to export: %q has no outline or chapters yet", p.Title)
	}
	base := util.SanitizeFilename(project.BaseName(p.Title)) + "_complete"
	if err := util.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	book := filepath.Join(outDir, base+".md")
	if err := util.WriteFileAtomic(book, []byte(project.Markdown(p)), 0o644); err != nil {
		return nil, err
	}
	written := []string{book}
	if !split {
		return written, nil
	}

	textDir := filepath.Join(outDir, base, "text")
	if err := util.EnsureDir(textDir); err != nil {
		return written, fmt.Errorf("create text dir: %w", err)
	}
	sections := map[string]string{}
	if strings.TrimSpace(p.Outline) != "" {
		sections["00_outline.md"] = project.OutlineMarkdown(p.Title, p.Outline)
	}
	for i, ch := range p.Chapters {
		sections[fmt.Sprintf("chapter_%02d.md", i+1)] = project.ChapterMarkdown(i+1, ch)
	}
	for _, name := range slices.Sorted(maps.Keys(sections)) {
		path := filepath.Join(textDir, name)
		if err := util.WriteFileAtomic(path, []byte(sections[name]), 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return truncate(strings.TrimLeft(s, "# "), 70)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
