// Package estimate predicts how long narration will take to render, for
// planning before a job is submitted.
package estimate

import (
	"math"
	"regexp"
	"strings"

	"bookfoundry/internal/model"
)

// Timing model fitted from sample renders of 50 to 300 words.
const (
	SecondsPerWord  = 0.0743
	OverheadSeconds = 0.5
	SafetyFactor    = 1.3
	MinSpeed        = 0.25
)

var reWord = regexp.MustCompile(`\b\w+\b`)

// CountWords approximates the word count of text. It takes the larger of a
// word-boundary count and a whitespace split so punctuation-heavy and
// non-ASCII text are both counted sensibly.
func CountWords(text string) int {
	if text == "" {
		return 0
	}
	return max(len(reWord.FindAllStringIndex(text, -1)), len(strings.Fields(text)))
}

// Seconds estimates render time for words at the given speed. Zero words
// take zero seconds; anything else takes at least one.
func Seconds(words int, speed float64) int {
	if words <= 0 {
		return 0
	}
	speed = math.Max(speed, MinSpeed)
	base := OverheadSeconds + SecondsPerWord*float64(words)
	return max(1, int(math.Round(base*SafetyFactor/speed)))
}

// Chapter is the per-chapter breakdown of a Plan.
type Chapter struct {
	Index   int
	Words   int
	Seconds int
}

// Plan is the estimate for a whole render request.
type Plan struct {
	Chapters     []Chapter
	OutlineWords int
	TotalWords   int
	TotalSeconds int
}

// Request estimates a render request chapter by chapter. When the outline
// is narrated it is counted as an extra segment.
func Request(req model.RenderRequest) Plan {
	speed := req.Speed
	if speed == 0 {
		speed = model.DefaultSpeed
	}
	var p Plan
	for i, ch := range req.Chapters {
		w := CountWords(ch)
		c := Chapter{Index: i + 1, Words: w, Seconds: Seconds(w, speed)}
		p.Chapters = append(p.Chapters, c)
		p.TotalWords += w
		p.TotalSeconds += c.Seconds
	}
	if req.IncludeOutline {
		p.OutlineWords = CountWords(req.Outline)
		p.TotalWords += p.OutlineWords
		p.TotalSeconds += Seconds(p.OutlineWords, speed)
	}
	return p
}
