package risk

// Level is the ordered risk bucket derived from a risk score.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelVeryHigh
)

// Cutoffs on the 0-100 risk score. A score below a cutoff belongs to the
// level under it.
const (
	lowCutoff    = 25.0
	mediumCutoff = 50.0
	highCutoff   = 75.0
)

// String returns the label used on the wire.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "Low Risk"
	case LevelMedium:
		return "Medium Risk"
	case LevelHigh:
		return "High Risk"
	case LevelVeryHigh:
		return "Very High Risk"
	default:
		return "Unknown"
	}
}

// Levels lists every level in ascending order.
func Levels() []Level {
	return []Level{LevelLow, LevelMedium, LevelHigh, LevelVeryHigh}
}

// Classify maps a score on the 0-100 scale to its level.
func Classify(score float64) Level {
	switch {
	case score < lowCutoff:
		return LevelLow
	case score < mediumCutoff:
		return LevelMedium
	case score < highCutoff:
		return LevelHigh
	default:
		return LevelVeryHigh
	}
}
