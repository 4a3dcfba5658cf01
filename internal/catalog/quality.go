package catalog

// Quality is the measurement quality letter. The scale is totally ordered:
// A is best, then B, C, D, E, and finally the unknown sentinel.
type Quality string

// Quality letters, best first.
const (
	QualityA       Quality = "A"
	QualityB       Quality = "B"
	QualityC       Quality = "C"
	QualityD       Quality = "D"
	QualityE       Quality = "E"
	QualityUnknown Quality = NullText
)

// QualityOrder lists the letters best-first. The best-parameter selector
// iterates this slice and its correctness depends on the order.
var QualityOrder = []Quality{QualityA, QualityB, QualityC, QualityD, QualityE, QualityUnknown}

// ParseQuality normalizes a foreign quality string onto the letter scale.
// Anything outside A..E becomes the unknown sentinel.
func ParseQuality(s string) Quality {
	switch s {
	case "A", "B", "C", "D", "E":
		return Quality(s)
	}
	return QualityUnknown
}

// Rank returns the position of q on the scale, 0 being best. Unrecognized
// letters rank with the unknown sentinel.
func (q Quality) Rank() int {
	for i, o := range QualityOrder {
		if q == o {
			return i
		}
	}
	return len(QualityOrder) - 1
}

// BetterThan reports whether q is strictly better than other.
func (q Quality) BetterThan(other Quality) bool { return q.Rank() < other.Rank() }

// Lower returns the quality one step worse than q. E and the unknown
// sentinel both lower to unknown.
func (q Quality) Lower() Quality {
	r := q.Rank()
	if r >= len(QualityOrder)-1 {
		return QualityUnknown
	}
	return QualityOrder[r+1]
}

func (q Quality) String() string { return string(q) }
