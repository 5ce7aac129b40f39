// Package session holds the run aggregate: a fixed plan of phases, the
// results recorded against it, and the attacker state that carries
// between phases.
package session

import (
	"strconv"
	"time"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/scoring"
	"github.com/louisbranch/killchain/internal/services/game/domain/stealth"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
)

// DefaultTTL is how long an untouched session stays loadable.
const DefaultTTL = 24 * time.Hour

// ErrNotFound indicates an unknown or expired session id.
var ErrNotFound = apperrors.New(apperrors.CodeSessionNotFound, "session not found")

// ErrCompleted indicates the run already finished.
var ErrCompleted = apperrors.New(apperrors.CodeSessionCompleted, "session already completed")

// ErrPhaseAlreadyCompleted indicates a result was already recorded for
// the slot. Completing a slot twice is always rejected; results are
// final once written.
var ErrPhaseAlreadyCompleted = apperrors.New(apperrors.CodeSessionPhaseAlreadyCompleted, "phase already completed")

// ErrInvalidSlot indicates the slot index is out of range or skips ahead.
var ErrInvalidSlot = apperrors.New(apperrors.CodeSessionInvalidSlot, "invalid phase slot")

// PhaseResult is one recorded phase outcome.
type PhaseResult struct {
	Slot        int               `json:"slot"`
	Phase       story.Phase       `json:"phase"`
	ComponentID string            `json:"component_id"`
	Score       scoring.Result    `json:"score"`
	Context     map[string]string `json:"context,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Session is one playthrough of a story.
type Session struct {
	ID      string        `json:"id"`
	StoryID string        `json:"story_id"`
	Context story.Context `json:"context"`
	Plan    []story.Slot  `json:"plan"`
	Results []PhaseResult `json:"results"`
	Seed    int64         `json:"seed"`

	Stealth          int      `json:"stealth"`
	Detection        int      `json:"detection"`
	PasswordAttempts int      `json:"password_attempts"`
	LockedOut        bool     `json:"locked_out"`
	CollectedClues   []string `json:"collected_clues,omitempty"`
	DiscoveredNodes  []string `json:"discovered_nodes,omitempty"`
	CompromisedNodes []string `json:"compromised_nodes,omitempty"`
	HasAdmin         bool     `json:"has_admin"`
	BackupDisabled   bool     `json:"backup_disabled"`

	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// New starts a session for a story with a fixed plan and replay seed.
func New(id string, def story.Definition, plan []story.Slot, seed int64, now time.Time) (*Session, error) {
	if len(plan) == 0 {
		return nil, story.ErrEmptyPlan
	}
	return &Session{
		ID:        id,
		StoryID:   def.ID,
		Context:   def.Context,
		Plan:      plan,
		Seed:      seed,
		Stealth:   stealth.Max,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(DefaultTTL),
	}, nil
}

// IsComplete reports whether every slot in the plan has a result.
func (s *Session) IsComplete() bool {
	return len(s.Results) >= len(s.Plan)
}

// CurrentSlot returns the next slot awaiting a result, or -1 when the
// run is complete.
func (s *Session) CurrentSlot() int {
	if s.IsComplete() {
		return -1
	}
	return len(s.Results)
}

// Expired reports whether the session passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// CompletePhase records a result for slot. Slots complete strictly in
// plan order, exactly once each; the last slot marks the run complete.
func (s *Session) CompletePhase(slot int, componentID string, score scoring.Result, ctx map[string]string, now time.Time) error {
	if s.IsComplete() {
		return ErrCompleted
	}
	if slot < 0 || slot >= len(s.Plan) {
		return apperrors.WithMetadata(apperrors.CodeSessionInvalidSlot, "slot out of range: "+strconv.Itoa(slot), map[string]string{"Slot": strconv.Itoa(slot)})
	}
	if slot < len(s.Results) {
		return apperrors.WithMetadata(apperrors.CodeSessionPhaseAlreadyCompleted, "phase already completed: slot "+strconv.Itoa(slot), map[string]string{"Slot": strconv.Itoa(slot)})
	}
	if slot > len(s.Results) {
		return apperrors.WithMetadata(apperrors.CodeSessionInvalidSlot, "slot skips ahead: "+strconv.Itoa(slot), map[string]string{"Slot": strconv.Itoa(slot)})
	}
	planned := s.Plan[slot]
	if componentID != planned.ComponentID {
		return apperrors.WithMetadata(apperrors.CodeComponentPhaseMismatch, "component does not match plan slot", map[string]string{"ComponentID": componentID, "Slot": strconv.Itoa(slot)})
	}
	s.Results = append(s.Results, PhaseResult{
		Slot:        slot,
		Phase:       planned.Phase,
		ComponentID: planned.ComponentID,
		Score:       score,
		Context:     ctx,
		CompletedAt: now,
	})
	s.UpdatedAt = now
	if s.IsComplete() {
		s.CompletedAt = now
	}
	return nil
}

// AccumulatedContext folds phase context maps in completion order.
// Later phases overwrite earlier keys.
func (s *Session) AccumulatedContext() map[string]string {
	out := make(map[string]string)
	for _, r := range s.Results {
		for k, v := range r.Context {
			out[k] = v
		}
	}
	return out
}

// Clone returns a deep copy safe to hand across store boundaries.
func (s *Session) Clone() *Session {
	out := *s
	out.Plan = append([]story.Slot(nil), s.Plan...)
	out.Results = make([]PhaseResult, len(s.Results))
	for i, r := range s.Results {
		r.Score.Breakdown = append([]scoring.Entry(nil), r.Score.Breakdown...)
		if r.Context != nil {
			ctx := make(map[string]string, len(r.Context))
			for k, v := range r.Context {
				ctx[k] = v
			}
			r.Context = ctx
		}
		out.Results[i] = r
	}
	out.CollectedClues = append([]string(nil), s.CollectedClues...)
	out.DiscoveredNodes = append([]string(nil), s.DiscoveredNodes...)
	out.CompromisedNodes = append([]string(nil), s.CompromisedNodes...)
	return &out
}

// Touch extends the session expiry from now.
func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(DefaultTTL)
}
