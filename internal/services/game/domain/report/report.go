// Package report assembles the end-of-run debrief from a completed
// session.
package report

import (
	"time"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/rank"
	"github.com/louisbranch/killchain/internal/services/game/domain/scoring"
	"github.com/louisbranch/killchain/internal/services/game/domain/session"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
)

// ErrNotReady indicates the session still has phases to play.
var ErrNotReady = apperrors.New(apperrors.CodeReportNotReady, "session not yet complete")

// PhaseSummary is one phase line of the debrief.
type PhaseSummary struct {
	Phase         story.Phase     `json:"phase"`
	ComponentID   string          `json:"component_id"`
	ComponentName string          `json:"component_name"`
	Score         int             `json:"score"`
	Rank          rank.Rank       `json:"rank"`
	Breakdown     []scoring.Entry `json:"breakdown"`
}

// Report is the final debrief for a completed run.
type Report struct {
	SessionID        string         `json:"session_id"`
	StoryID          string         `json:"story_id"`
	TotalScore       int            `json:"total_score"`
	Rank             rank.Rank      `json:"rank"`
	Phases           []PhaseSummary `json:"phases"`
	KeyLearnings     []string       `json:"key_learnings"`
	Narrative        string         `json:"narrative"`
	StealthRemaining int            `json:"stealth_remaining"`
	Detection        int            `json:"detection"`
	CompletedAt      time.Time      `json:"completed_at"`
}

// Build assembles the debrief. The total is the rounded mean of the
// phase scores; stealth is not folded in again here because each phase
// already grades its own stealth bonus.
func Build(s *session.Session, catalog *story.Catalog) (Report, error) {
	if !s.IsComplete() {
		return Report{}, ErrNotReady
	}

	phases := make([]PhaseSummary, 0, len(s.Results))
	var learnings []string
	seen := make(map[string]bool)
	sum := 0
	for _, r := range s.Results {
		name := r.ComponentID
		if comp, err := catalog.Component(r.ComponentID); err == nil {
			name = comp.Name
			for _, lp := range comp.LearningPoints {
				if !seen[lp] {
					seen[lp] = true
					learnings = append(learnings, lp)
				}
			}
		}
		phases = append(phases, PhaseSummary{
			Phase:         r.Phase,
			ComponentID:   r.ComponentID,
			ComponentName: name,
			Score:         r.Score.Total,
			Rank:          r.Score.Rank,
			Breakdown:     r.Score.Breakdown,
		})
		sum += r.Score.Total
	}

	total := (sum + len(s.Results)/2) / len(s.Results)
	overall := rank.Of(total)

	return Report{
		SessionID:        s.ID,
		StoryID:          s.StoryID,
		TotalScore:       total,
		Rank:             overall,
		Phases:           phases,
		KeyLearnings:     learnings,
		Narrative:        fallbackNarrative(s.Context, overall),
		StealthRemaining: s.Stealth,
		Detection:        s.Detection,
		CompletedAt:      s.CompletedAt,
	}, nil
}

// fallbackNarrative is used when no generated narrative is available.
func fallbackNarrative(ctx story.Context, r rank.Rank) string {
	switch r {
	case rank.S:
		return ctx.TargetOrg + "への攻撃は完璧に遂行された。防御側は最後まで侵入に気づかなかった。あなたの手口を防げる組織は少ない。"
	case rank.A:
		return ctx.TargetOrg + "への攻撃は成功した。わずかな痕跡は残ったが、目的は達成された。"
	case rank.B:
		return ctx.TargetOrg + "への攻撃はおおむね成功したが、防御側に複数の痕跡を残した。インシデント対応チームが調査を開始している。"
	case rank.C:
		return ctx.TargetOrg + "への攻撃は部分的な成功に終わった。防御側は侵入を検知し、対策を講じ始めている。"
	default:
		return ctx.TargetOrg + "への攻撃は失敗に近い結果となった。防御側の対策が機能した。どこで検知されたか振り返ろう。"
	}
}
