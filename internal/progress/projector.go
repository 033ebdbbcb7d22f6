package progress

import (
	"math"

	"bookfoundry/internal/model"
)

// MaxEstimatedPercent caps time-based estimates; only a completed status
// may show 100.
const MaxEstimatedPercent = 99

// Percent projects a status snapshot onto a 0..100 display percentage.
//
// Elapsed/estimated timing wins when both are present and the estimate is
// positive; otherwise the server's unit-based progress is used.
func Percent(st model.JobStatus) int {
	if p, ok := timePercent(st.ElapsedSeconds, st.EstimatedSeconds); ok {
		return p
	}
	return clampPercent(st.Progress, 100)
}

// DisplayPercent is Percent for a status shown to the user: a completed
// job always reads 100.
func DisplayPercent(st model.JobStatus) int {
	if st.Status == model.StatusCompleted {
		return 100
	}
	return Percent(st)
}

func timePercent(elapsed, estimated *float64) (int, bool) {
	if elapsed == nil || estimated == nil {
		return 0, false
	}
	e, est := *elapsed, *estimated
	if !finite(e) || !finite(est) || est <= 0 {
		return 0, false
	}
	return clampPercent(e/est*100, MaxEstimatedPercent), true
}

func clampPercent(v float64, hi int) int {
	if !finite(v) {
		return 0
	}
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > float64(hi) {
		return hi
	}
	return int(r)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
