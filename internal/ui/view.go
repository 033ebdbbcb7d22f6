package ui

import (
	"fmt"
	"strings"

	"bookfoundry/internal/pipeline"
	"bookfoundry/internal/progress"
)

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("bookfoundry · " + truncate(m.job.title, 48))
	hint := "q: cancel"
	if m.job.done {
		hint = "done"
	}
	sub := m.styles.Subtitle.Render(fmt.Sprintf("%d chapters • %s", len(m.req.Chapters), hint))
	return title + "\n" + sub
}

func (m Model) viewJob() string {
	js := m.job
	stageStyle := m.styles.JobInfo
	switch js.stage {
	case progress.StageSubmitting, progress.StageQueued:
		stageStyle = m.styles.StageQueued
	case progress.StageRendering:
		stageStyle = m.styles.StageRender
	case progress.StageRetrying:
		stageStyle = m.styles.Warning
	case progress.StageCompleted:
		stageStyle = m.styles.Success
	case progress.StageError:
		stageStyle = m.styles.Error
	}

	id := js.id
	if id == "" {
		id = "pending submission"
	}
	line1 := fmt.Sprintf("%s  %s", m.styles.JobTitle.Render(id), stageStyle.Render(string(js.stage)))

	var line2 string
	switch {
	case js.done && js.err == nil:
		line2 = js.bar.ViewAs(1) + m.styles.Success.Render("  ✓ done")
	case js.err != nil:
		line2 = m.styles.Error.Render("✗ " + js.status)
	case js.showBar():
		pct := js.state.ProgressPercent
		line2 = fmt.Sprintf("%s %3d%%", js.bar.ViewAs(float64(pct)/100.0), pct)
	default:
		line2 = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render("waiting")
	}

	info := js.status
	if !js.done && js.showBar() {
		info = pipeline.StatusLine(js.state)
	}
	return m.styles.Box.Render(line1 + "\n" + line2 + "\n" + m.styles.JobInfo.Render(info))
}

func (m Model) viewSummary() string {
	res := m.job.state.Result
	if !m.job.done || res == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("✓ Audiobook folder: " + res.Folder))
	b.WriteString("\n")
	for _, f := range res.AudioFiles {
		b.WriteString(m.styles.Success.Render("  • " + f))
		b.WriteString("\n")
	}
	if res.DownloadURL != nil {
		b.WriteString(m.styles.Faint.Render("  archive: " + *res.DownloadURL))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
