package mockserver

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"bookfoundry/internal/api"
	"bookfoundry/internal/util"
)

// Voices accepted by the narration backend.
var Voices = []string{"alloy", "ash", "ballad", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer"}

const (
	minSpeed = 0.25
	maxSpeed = 4.0
)

var reOutlineItem = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*])\s+(.+?)\s*$`)

func supportedVoice(v string) bool {
	for _, known := range Voices {
		if v == known {
			return true
		}
	}
	return false
}

func (s *Server) outline(c *gin.Context) {
	var req api.OutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		fail(c, http.StatusBadRequest, "Prompt is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"outline": makeOutline(req.Title, req.Prompt, "")})
}

func (s *Server) outlineFeedback(c *gin.Context) {
	var req api.OutlineFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		fail(c, http.StatusBadRequest, "Prompt is required")
		return
	}
	if strings.TrimSpace(req.Feedback) == "" {
		fail(c, http.StatusBadRequest, "Feedback is required")
		return
	}
	c.JSON(http.StatusOK, gin.H{"outline": makeOutline(req.Title, req.Prompt, req.Feedback)})
}

func (s *Server) chapters(c *gin.Context) {
	var req api.ChaptersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Outline) == "" {
		fail(c, http.StatusBadRequest, "Outline is required")
		return
	}
	items := outlineItems(req.Outline)
	chapters := make([]string, 0, len(items))
	for i, title := range items {
		chapters = append(chapters, makeChapter(i+1, title))
	}
	c.JSON(http.StatusOK, gin.H{"chapters": chapters})
}

func (s *Server) voicePreview(c *gin.Context) {
	var req api.VoicePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		fail(c, http.StatusBadRequest, "Preview text is required")
		return
	}
	if !supportedVoice(req.Voice) {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Voice '%s' is not supported", req.Voice))
		return
	}
	if req.Speed < minSpeed || req.Speed > maxSpeed {
		fail(c, http.StatusBadRequest, "Speed must be between 0.25 and 4.0")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="preview.mp3"`)
	c.Data(http.StatusOK, "audio/mpeg", fakeAudio(req.Voice, util.PreviewText(req.Text)))
}

func makeOutline(title, prompt, feedback string) string {
	subject := strings.TrimSpace(title)
	if subject == "" {
		subject = firstWords(prompt, 6)
	}
	lines := []string{
		"1. Introduction: " + subject,
		"2. The Call: " + firstWords(prompt, 10),
		"3. Trials and Allies",
		"4. The Turning Point",
		"5. Resolution",
	}
	if fb := strings.TrimSpace(feedback); fb != "" {
		lines = append(lines, "6. Epilogue: "+firstWords(fb, 10))
	}
	return strings.Join(lines, "\n")
}

// outlineItems extracts chapter titles from numbered or bulleted lines,
// falling back to a three-part structure.
func outlineItems(outline string) []string {
	var items []string
	for _, line := range strings.Split(outline, "\n") {
		if m := reOutlineItem.FindStringSubmatch(line); m != nil {
			items = append(items, m[1])
		}
	}
	if len(items) == 0 {
		items = []string{"Introduction", "Main Content", "Conclusion"}
	}
	return items
}

func makeChapter(n int, title string) string {
	return fmt.Sprintf("## Chapter %d: %s\n\n"+
		"The chapter opens on %s. The air is still and every detail matters. "+
		"Our narrator lingers here, letting the listener settle in.\n\n"+
		"By the end, %s has changed everything that follows.",
		n, title, strings.ToLower(title), strings.ToLower(title))
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// fakeAudio is a recognisable placeholder: an ID3 tag followed by the text
// that would have been narrated.
func fakeAudio(voice, text string) []byte {
	return []byte("ID3\x04\x00\x00\x00\x00\x00\x00" + "voice=" + voice + "\n" + text)
}
