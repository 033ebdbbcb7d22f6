package format

import "fmt"

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// HumanizeBytes renders a download or audio size, e.g. "1.5 MB".
// Negative counts are treated as zero.
func HumanizeBytes(b int64) string {
	if b < 1024 {
		return fmt.Sprintf("%d B", max(b, 0))
	}
	v := float64(b) / 1024
	i := 0
	for v >= 1024 && i < len(byteUnits)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, byteUnits[i])
}
