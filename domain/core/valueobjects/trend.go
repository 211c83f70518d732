package valueobjects

// Trend is the direction a series has moved in
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	TrendUnknown   Trend = "unknown"
)

// ClassifyChange maps a signed change to a trend using a symmetric threshold.
// Changes exactly on the threshold are stable.
func ClassifyChange(change, threshold float64) Trend {
	switch {
	case change > threshold:
		return TrendImproving
	case change < -threshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}
