package util

import (
	"regexp"
	"strings"
)

// DefaultPreviewText is narrated when a chapter yields no usable preview.
const DefaultPreviewText = "This is a preview of the selected voice."

const previewMaxChars = 300

var (
	reHeader     = regexp.MustCompile(`#{1,6}\s*`)
	reEmphasis   = regexp.MustCompile(`\*{1,2}([^*]+)\*{1,2}`)
	reInlineCode = regexp.MustCompile("`([^`]+)`")
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reBlankRuns  = regexp.MustCompile(`\n{3,}`)
	reSpaceRuns  = regexp.MustCompile(`\s{2,}`)
)

// CleanForSpeech strips markdown markup that a narrator should not read out
// and collapses whitespace.
func CleanForSpeech(text string) string {
	text = reHeader.ReplaceAllString(text, "")
	text = reEmphasis.ReplaceAllString(text, "$1")
	text = reInlineCode.ReplaceAllString(text, "$1")
	text = reLink.ReplaceAllString(text, "$1")
	text = reBlankRuns.ReplaceAllString(text, "\n\n")
	text = reSpaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// PreviewText picks a short narration sample from chapter text: the first
// paragraph, cut to three sentences when it is long.
func PreviewText(text string) string {
	cleaned := reHeader.ReplaceAllString(text, "")
	preview := strings.TrimSpace(cleaned)
	for _, p := range strings.Split(cleaned, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			preview = p
			break
		}
	}

	if len(preview) > previewMaxChars {
		sentences := strings.Split(preview, ". ")
		if len(sentences) > 3 {
			sentences = sentences[:3]
		}
		preview = strings.TrimSpace(strings.Join(sentences, ". "))
		if preview != "" && !strings.HasSuffix(preview, ".") {
			preview += "."
		}
	}

	if preview == "" {
		return DefaultPreviewText
	}
	return preview
}
