package format

import "fmt"

// Duration renders whole seconds for status lines: "0s", "45s", "3m 5s",
// "1h 2m".
func Duration(seconds int) string {
	if seconds <= 0 {
		return "0s"
	}
	minutes, secs := seconds/60, seconds%60
	hours, minutes := minutes/60, minutes%60
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, secs)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// Seconds is Duration for fractional seconds, rounded to the nearest second.
func Seconds(s float64) string {
	return Duration(int(s + 0.5))
}
