package project

import (
	"fmt"
	"strings"

	"bookfoundry/internal/model"
)

// Markdown renders the whole book: title, outline, then numbered chapters.
func Markdown(p model.BookProject) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n## Outline\n\n%s\n\n## Chapters\n\n", p.Title, p.Outline)
	for i, ch := range p.Chapters {
		fmt.Fprintf(&b, "### Chapter %d\n\n%s\n\n", i+1, ch)
	}
	return b.String()
}

// ChapterMarkdown renders a single chapter as a standalone document.
func ChapterMarkdown(n int, text string) string {
	return fmt.Sprintf("# Chapter %d\n\n%s", n, text)
}

// OutlineMarkdown renders the outline as a standalone document.
func OutlineMarkdown(title, outline string) string {
	return fmt.Sprintf("# %s - Outline\n\n%s", title, outline)
}

// BaseName is the file stem used for exports of the book titled title.
func BaseName(title string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
}
