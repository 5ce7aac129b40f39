package session

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/scoring"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
)

var testPlan = []story.Slot{
	{Phase: story.PhaseRecon, ComponentID: "sns-recon"},
	{Phase: story.PhaseAccess, ComponentID: "phishing-email"},
	{Phase: story.PhaseLateral, ComponentID: "network-intrusion"},
	{Phase: story.PhaseObjective, ComponentID: "ransomware"},
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	def := story.Definition{ID: "cyber-corp"}
	s, err := New("sess-1", def, testPlan, 42, time.Unix(1700000000, 0).UTC())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := newTestSession(t)
	if s.Stealth != 100 {
		t.Errorf("Stealth = %d, want 100", s.Stealth)
	}
	if s.Detection != 0 {
		t.Errorf("Detection = %d, want 0", s.Detection)
	}
	if s.IsComplete() {
		t.Error("new session reports complete")
	}
	if got := s.CurrentSlot(); got != 0 {
		t.Errorf("CurrentSlot() = %d, want 0", got)
	}
	if want := s.CreatedAt.Add(DefaultTTL); !s.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", s.ExpiresAt, want)
	}
}

func TestNewEmptyPlan(t *testing.T) {
	_, err := New("sess-1", story.Definition{ID: "bare"}, nil, 1, time.Now())
	if !errors.Is(err, story.ErrEmptyPlan) {
		t.Errorf("New(empty plan) error = %v, want ErrEmptyPlan", err)
	}
}

func TestCompletePhaseInOrder(t *testing.T) {
	s := newTestSession(t)
	now := s.CreatedAt

	for i, slot := range testPlan {
		now = now.Add(time.Minute)
		err := s.CompletePhase(i, slot.ComponentID, scoring.Result{Total: 80}, map[string]string{"slot": slot.ComponentID}, now)
		if err != nil {
			t.Fatalf("CompletePhase(%d) error = %v", i, err)
		}
	}

	if !s.IsComplete() {
		t.Error("session not complete after all slots")
	}
	if s.CurrentSlot() != -1 {
		t.Errorf("CurrentSlot() = %d, want -1", s.CurrentSlot())
	}
	if s.CompletedAt.IsZero() {
		t.Error("CompletedAt not set")
	}
	if !s.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt = %v, want %v", s.CompletedAt, now)
	}
}

func TestCompletePhaseGuards(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	t.Run("double completion", func(t *testing.T) {
		s := newTestSession(t)
		if err := s.CompletePhase(0, "sns-recon", scoring.Result{Total: 70}, nil, now); err != nil {
			t.Fatal(err)
		}
		err := s.CompletePhase(0, "sns-recon", scoring.Result{Total: 90}, nil, now)
		if !errors.Is(err, ErrPhaseAlreadyCompleted) {
			t.Fatalf("error = %v, want ErrPhaseAlreadyCompleted", err)
		}
		if s.Results[0].Score.Total != 70 {
			t.Errorf("first result overwritten: total = %d", s.Results[0].Score.Total)
		}
	})

	t.Run("skipping ahead", func(t *testing.T) {
		s := newTestSession(t)
		err := s.CompletePhase(2, "network-intrusion", scoring.Result{}, nil, now)
		if !errors.Is(err, ErrInvalidSlot) {
			t.Fatalf("error = %v, want ErrInvalidSlot", err)
		}
	})

	t.Run("slot out of range", func(t *testing.T) {
		s := newTestSession(t)
		for _, slot := range []int{-1, len(testPlan)} {
			err := s.CompletePhase(slot, "sns-recon", scoring.Result{}, nil, now)
			if !errors.Is(err, ErrInvalidSlot) {
				t.Errorf("CompletePhase(%d) error = %v, want ErrInvalidSlot", slot, err)
			}
		}
	})

	t.Run("wrong component for slot", func(t *testing.T) {
		s := newTestSession(t)
		err := s.CompletePhase(0, "ransomware", scoring.Result{}, nil, now)
		if apperrors.CodeOf(err) != apperrors.CodeComponentPhaseMismatch {
			t.Fatalf("error = %v, want component phase mismatch", err)
		}
	})

	t.Run("completed session rejects more results", func(t *testing.T) {
		s := newTestSession(t)
		for i, slot := range testPlan {
			if err := s.CompletePhase(i, slot.ComponentID, scoring.Result{}, nil, now); err != nil {
				t.Fatal(err)
			}
		}
		err := s.CompletePhase(0, "sns-recon", scoring.Result{}, nil, now)
		if !errors.Is(err, ErrCompleted) {
			t.Fatalf("error = %v, want ErrCompleted", err)
		}
	})
}

func TestAccumulatedContext(t *testing.T) {
	s := newTestSession(t)
	now := s.CreatedAt

	steps := []map[string]string{
		{"target_email": "tanaka@example.co.jp", "hint": "pet name"},
		{"credentials": "tanaka:pochi2023", "hint": "reused password"},
		{"admin_host": "10.0.0.5"},
		nil,
	}
	for i, slot := range testPlan {
		if err := s.CompletePhase(i, slot.ComponentID, scoring.Result{}, steps[i], now); err != nil {
			t.Fatal(err)
		}
	}

	got := s.AccumulatedContext()
	want := map[string]string{
		"target_email": "tanaka@example.co.jp",
		"hint":         "reused password",
		"credentials":  "tanaka:pochi2023",
		"admin_host":   "10.0.0.5",
	}
	if len(got) != len(want) {
		t.Fatalf("AccumulatedContext() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("AccumulatedContext()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestExpired(t *testing.T) {
	s := newTestSession(t)
	if s.Expired(s.CreatedAt) {
		t.Error("fresh session reports expired")
	}
	if !s.Expired(s.CreatedAt.Add(DefaultTTL)) {
		t.Error("session past TTL not expired")
	}

	s.Touch(s.CreatedAt.Add(23 * time.Hour))
	if s.Expired(s.CreatedAt.Add(DefaultTTL)) {
		t.Error("touched session expired at original deadline")
	}
}
