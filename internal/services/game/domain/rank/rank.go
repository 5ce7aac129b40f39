// Package rank grades scores on the S to D ladder. Every surface that
// shows a rank goes through Of so the thresholds live in one place.
package rank

// Rank is a letter grade for a 0-100 score.
type Rank string

const (
	S Rank = "S"
	A Rank = "A"
	B Rank = "B"
	C Rank = "C"
	D Rank = "D"
)

var thresholds = []struct {
	min  int
	rank Rank
}{
	{90, S},
	{70, A},
	{50, B},
	{30, C},
}

// Of returns the rank for score. Scores below every threshold rank D.
func Of(score int) Rank {
	for _, t := range thresholds {
		if score >= t.min {
			return t.rank
		}
	}
	return D
}

// Order returns the position of the rank from best (0) to worst.
func (r Rank) Order() int {
	switch r {
	case S:
		return 0
	case A:
		return 1
	case B:
		return 2
	case C:
		return 3
	default:
		return 4
	}
}
