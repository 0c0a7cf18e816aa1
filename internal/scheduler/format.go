package scheduler

import (
	"fmt"
	"math"
	"time"
)

// FormatInterval renders an interval as a short human string, e.g. "10m",
// "3h", "4d", "2.1mo", "1.5y". Used for per-rating hints before a review.
func FormatInterval(d time.Duration) string {
	if d < time.Minute {
		return "<1m"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(math.Round(d.Hours())))
	}

	days := d.Hours() / 24
	if days < 31 {
		return fmt.Sprintf("%dd", int(math.Round(days)))
	}
	if days < 365 {
		return fmt.Sprintf("%.1fmo", days/30.44)
	}
	return fmt.Sprintf("%.1fy", days/365.25)
}
