// Package scoring turns mini-game outcomes into graded phase results.
// All scorers emit a breakdown whose max points sum to 100; Finalize is
// the single place that validates, clamps, and ranks.
package scoring

import (
	"strconv"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/rank"
)

// Entry is one graded aspect of a phase result.
type Entry struct {
	Category  string `json:"category"`
	Points    int    `json:"points"`
	MaxPoints int    `json:"max_points"`
	Comment   string `json:"comment,omitempty"`
}

// Result is a finalized phase score.
type Result struct {
	Total     int       `json:"total"`
	Rank      rank.Rank `json:"rank"`
	Breakdown []Entry   `json:"breakdown"`
}

// ErrBreakdownInvalid indicates a scorer produced an inconsistent breakdown.
var ErrBreakdownInvalid = apperrors.New(apperrors.CodeScoreBreakdownInvalid, "score breakdown invalid")

// ErrScorerNotFound indicates no scorer is registered for a component.
var ErrScorerNotFound = apperrors.New(apperrors.CodeScorerNotFound, "no scorer for component")

// Finalize validates a breakdown and assembles the phase result. Entry
// points are clamped into [0, MaxPoints]; the max points must sum to
// exactly 100 so every phase grades on the same scale.
func Finalize(breakdown []Entry) (Result, error) {
	if len(breakdown) == 0 {
		return Result{}, apperrors.New(apperrors.CodeScoreBreakdownInvalid, "score breakdown is empty")
	}
	maxSum := 0
	total := 0
	out := make([]Entry, len(breakdown))
	for i, e := range breakdown {
		if e.MaxPoints <= 0 {
			return Result{}, apperrors.WithMetadata(apperrors.CodeScoreBreakdownInvalid, "entry max points must be positive: "+e.Category, map[string]string{"Category": e.Category})
		}
		if e.Points < 0 {
			e.Points = 0
		}
		if e.Points > e.MaxPoints {
			e.Points = e.MaxPoints
		}
		maxSum += e.MaxPoints
		total += e.Points
		out[i] = e
	}
	if maxSum != 100 {
		return Result{}, apperrors.WithMetadata(apperrors.CodeScoreBreakdownInvalid, "breakdown max points sum to "+strconv.Itoa(maxSum)+", want 100", map[string]string{"MaxSum": strconv.Itoa(maxSum)})
	}
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return Result{Total: total, Rank: rank.Of(total), Breakdown: out}, nil
}
