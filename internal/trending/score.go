// Package trending recomputes popularity scores from the view event log.
package trending

import "time"

const (
	// Threshold is the minimum score for a tool to be flagged trending
	Threshold = 10.0
	// NewnessBoost is added for tools at most NewnessWindow old
	NewnessBoost  = 50.0
	NewnessWindow = 7 * 24 * time.Hour

	day  = 24 * time.Hour
	week = 7 * day
)

// Score weights 7-day views by 0.7 and 1-day views by 0.3, plus NewnessBoost
// when ageDays <= 7. The weights are applied in integer tenths so the
// threshold comparison is exact for integer counts.
func Score(views7, views1 int64, ageDays float64) float64 {
	score := float64(7*views7+3*views1) / 10
	if ageDays <= NewnessWindow.Hours()/24 {
		score += NewnessBoost
	}
	return score
}

// IsTrending reports whether score reaches Threshold
func IsTrending(score float64) bool {
	return score >= Threshold
}

// AgeDays is the fractional number of days between createdAt and now
func AgeDays(createdAt, now time.Time) float64 {
	return now.Sub(createdAt).Hours() / 24
}
