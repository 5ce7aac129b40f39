package domain

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/louisbranch/killchain/internal/services/game/app"
	"github.com/louisbranch/killchain/internal/services/game/domain/scoring"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
	"github.com/louisbranch/killchain/internal/services/game/scenario"
	"github.com/louisbranch/killchain/internal/services/game/storage/memory"
)

func newTestService(t *testing.T) *app.Service {
	t.Helper()
	clock := func() time.Time { return time.Unix(1700000000, 0).UTC() }
	var nextID int
	return app.NewService(
		memory.New(memory.WithClock(clock)),
		story.DefaultCatalog(),
		scenario.NewStatic(),
		app.WithClock(clock),
		app.WithIDGenerator(func() (string, error) {
			nextID++
			return fmt.Sprintf("sess-%d", nextID), nil
		}),
		app.WithSeedSource(func() (int64, error) { return 42, nil }),
		app.WithRand(rand.New(rand.NewSource(1))),
	)
}

func startTestSession(t *testing.T, svc *app.Service) SessionState {
	t.Helper()
	handler := SessionStartHandler(svc, nil)
	_, state, err := handler(context.Background(), nil, SessionStartInput{
		StoryID:      "cyber-corp",
		ComponentIDs: []string{"sns-recon", "phishing-email", "network-intrusion", "ransomware"},
	})
	if err != nil {
		t.Fatalf("session start: %v", err)
	}
	return state
}

func TestSessionStartHandler(t *testing.T) {
	t.Run("explicit chain", func(t *testing.T) {
		svc := newTestService(t)
		state := startTestSession(t, svc)
		if state.ID == "" {
			t.Fatal("expected session id")
		}
		if len(state.Plan) != 4 {
			t.Fatalf("expected 4 plan slots, got %d", len(state.Plan))
		}
		if state.CurrentSlot != 0 {
			t.Errorf("expected current slot 0, got %d", state.CurrentSlot)
		}
		if state.Stealth != 100 {
			t.Errorf("expected full stealth, got %d", state.Stealth)
		}
	})

	t.Run("unknown story", func(t *testing.T) {
		svc := newTestService(t)
		handler := SessionStartHandler(svc, nil)
		_, _, err := handler(context.Background(), nil, SessionStartInput{StoryID: "nope"})
		if err == nil {
			t.Fatal("expected error for unknown story")
		}
	})

	t.Run("stores context", func(t *testing.T) {
		svc := newTestService(t)
		var stored Context
		handler := SessionStartHandler(svc, func(ctx Context) { stored = ctx })
		_, state, err := handler(context.Background(), nil, SessionStartInput{StoryID: "cyber-corp"})
		if err != nil {
			t.Fatalf("session start: %v", err)
		}
		if stored.SessionID != state.ID {
			t.Errorf("expected stored session %q, got %q", state.ID, stored.SessionID)
		}
	})
}

func TestSessionGetHandler(t *testing.T) {
	svc := newTestService(t)
	state := startTestSession(t, svc)

	t.Run("explicit id", func(t *testing.T) {
		handler := SessionGetHandler(svc, nil)
		_, got, err := handler(context.Background(), nil, SessionGetInput{SessionID: state.ID})
		if err != nil {
			t.Fatalf("session get: %v", err)
		}
		if got.ID != state.ID {
			t.Errorf("expected id %q, got %q", state.ID, got.ID)
		}
	})

	t.Run("falls back to context", func(t *testing.T) {
		handler := SessionGetHandler(svc, func() Context { return Context{SessionID: state.ID} })
		_, got, err := handler(context.Background(), nil, SessionGetInput{})
		if err != nil {
			t.Fatalf("session get: %v", err)
		}
		if got.ID != state.ID {
			t.Errorf("expected id %q, got %q", state.ID, got.ID)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		handler := SessionGetHandler(svc, nil)
		_, _, err := handler(context.Background(), nil, SessionGetInput{})
		if err == nil {
			t.Fatal("expected error without session id")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		handler := SessionGetHandler(svc, nil)
		_, _, err := handler(context.Background(), nil, SessionGetInput{SessionID: "missing"})
		if err == nil {
			t.Fatal("expected error for unknown session")
		}
	})
}

func TestPhaseCompleteHandler(t *testing.T) {
	svc := newTestService(t)
	state := startTestSession(t, svc)
	handler := PhaseCompleteHandler(svc, nil)

	_, result, err := handler(context.Background(), nil, PhaseCompleteInput{
		SessionID:   state.ID,
		Slot:        0,
		ComponentID: "sns-recon",
		Outcome: scoring.Outcome{Recon: &scoring.ReconOutcome{
			CluesFound:       5,
			CluesTotal:       5,
			KeyClueFound:     true,
			StealthRemaining: 100,
		}},
		Context: map[string]string{"email": "tanaka@cyber-corp.example"},
	})
	if err != nil {
		t.Fatalf("phase complete: %v", err)
	}
	if result.Score != 100 {
		t.Errorf("expected score 100, got %d", result.Score)
	}
	if result.Rank != "S" {
		t.Errorf("expected rank S, got %q", result.Rank)
	}
	if result.NextSlot != 1 {
		t.Errorf("expected next slot 1, got %d", result.NextSlot)
	}
	if result.Completed {
		t.Error("run should not be complete after one phase")
	}

	t.Run("repeat slot rejected", func(t *testing.T) {
		_, _, err := handler(context.Background(), nil, PhaseCompleteInput{
			SessionID:   state.ID,
			Slot:        0,
			ComponentID: "sns-recon",
			Outcome:     scoring.Outcome{Recon: &scoring.ReconOutcome{CluesTotal: 5}},
		})
		if err == nil {
			t.Fatal("expected error for repeated slot")
		}
	})
}

func TestActionHandlers(t *testing.T) {
	svc := newTestService(t)
	state := startTestSession(t, svc)
	apply := ActionApplyHandler(svc, nil)

	_, eff, err := apply(context.Background(), nil, ActionApplyInput{
		SessionID: state.ID,
		Type:      "scan",
		Target:    "file-server",
	})
	if err != nil {
		t.Fatalf("action apply: %v", err)
	}
	if !eff.Success {
		t.Error("expected scan to succeed")
	}
	if eff.StealthCost != 3 {
		t.Errorf("expected stealth cost 3, got %d", eff.StealthCost)
	}

	t.Run("unknown type", func(t *testing.T) {
		_, _, err := apply(context.Background(), nil, ActionApplyInput{
			SessionID: state.ID,
			Type:      "teleport",
		})
		if err == nil {
			t.Fatal("expected error for unknown action type")
		}
	})

	t.Run("log with filter", func(t *testing.T) {
		logHandler := ActionLogHandler(svc, nil)
		_, logResult, err := logHandler(context.Background(), nil, ActionLogInput{
			SessionID: state.ID,
			Filter:    `type = "scan"`,
		})
		if err != nil {
			t.Fatalf("action log: %v", err)
		}
		if len(logResult.Actions) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(logResult.Actions))
		}
		if logResult.Actions[0].Type != "scan" {
			t.Errorf("expected scan entry, got %q", logResult.Actions[0].Type)
		}
	})
}

func TestScenarioGetHandler(t *testing.T) {
	svc := newTestService(t)
	state := startTestSession(t, svc)
	handler := ScenarioGetHandler(svc, nil)

	_, data, err := handler(context.Background(), nil, ScenarioGetInput{SessionID: state.ID})
	if err != nil {
		t.Fatalf("scenario get: %v", err)
	}
	if data.Title == "" || data.Briefing == "" {
		t.Errorf("expected briefing content, got %+v", data)
	}
}

func TestSessionReportHandler(t *testing.T) {
	svc := newTestService(t)
	state := startTestSession(t, svc)
	report := SessionReportHandler(svc, nil)

	t.Run("not ready", func(t *testing.T) {
		_, _, err := report(context.Background(), nil, SessionReportInput{SessionID: state.ID})
		if err == nil {
			t.Fatal("expected error for incomplete run")
		}
	})

	complete := PhaseCompleteHandler(svc, nil)
	outcomes := []PhaseCompleteInput{
		{Slot: 0, ComponentID: "sns-recon", Outcome: scoring.Outcome{Recon: &scoring.ReconOutcome{CluesFound: 4, CluesTotal: 5, KeyClueFound: true, StealthRemaining: 90}}},
		{Slot: 1, ComponentID: "phishing-email", Outcome: scoring.Outcome{Phishing: &scoring.PhishingOutcome{SenderQuality: 80, SubjectQuality: 70, BodyQuality: 90, LinkQuality: 60}}},
		{Slot: 2, ComponentID: "network-intrusion", Outcome: scoring.Outcome{Intrusion: &scoring.IntrusionOutcome{AccessGained: true, NodesDiscovered: 6, NodesTotal: 8, ObjectiveReached: true, StealthRemaining: 70}}},
		{Slot: 3, ComponentID: "ransomware", Outcome: scoring.Outcome{Ransom: &scoring.RansomOutcome{BackupDisabled: true, FilesEncrypted: 9, FilesTotal: 10, Careful: true, StealthRemaining: 60}}},
	}
	for _, in := range outcomes {
		in.SessionID = state.ID
		if _, _, err := complete(context.Background(), nil, in); err != nil {
			t.Fatalf("phase complete slot %d: %v", in.Slot, err)
		}
	}

	_, rep, err := report(context.Background(), nil, SessionReportInput{SessionID: state.ID})
	if err != nil {
		t.Fatalf("session report: %v", err)
	}
	if rep.TotalScore <= 0 || rep.TotalScore > 100 {
		t.Errorf("total score out of range: %d", rep.TotalScore)
	}
	if len(rep.Phases) != 4 {
		t.Errorf("expected 4 phase summaries, got %d", len(rep.Phases))
	}
	if rep.Narrative == "" {
		t.Error("expected closing narrative")
	}
	if len(rep.KeyLearnings) == 0 {
		t.Error("expected key learnings")
	}
}

func TestSetContextHandler(t *testing.T) {
	svc := newTestService(t)
	state := startTestSession(t, svc)

	t.Run("valid session", func(t *testing.T) {
		var stored Context
		handler := SetContextHandler(svc, func(ctx Context) { stored = ctx })
		_, result, err := handler(context.Background(), nil, SetContextInput{SessionID: state.ID})
		if err != nil {
			t.Fatalf("set context: %v", err)
		}
		if result.SessionID != state.ID {
			t.Errorf("expected session %q, got %q", state.ID, result.SessionID)
		}
		if stored.SessionID != state.ID {
			t.Errorf("expected stored session %q, got %q", state.ID, stored.SessionID)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		handler := SetContextHandler(svc, nil)
		_, _, err := handler(context.Background(), nil, SetContextInput{SessionID: "missing"})
		if err == nil {
			t.Fatal("expected error for unknown session")
		}
	})

	t.Run("empty session id", func(t *testing.T) {
		handler := SetContextHandler(svc, nil)
		_, _, err := handler(context.Background(), nil, SetContextInput{})
		if err == nil {
			t.Fatal("expected error for empty session id")
		}
	})
}

func TestCatalogResources(t *testing.T) {
	svc := newTestService(t)

	stories := StoryListResourceHandler(svc)
	result, err := stories(context.Background(), nil)
	if err != nil {
		t.Fatalf("story list resource: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].Text == "" {
		t.Fatal("expected story list payload")
	}

	components := ComponentListResourceHandler(svc)
	result, err = components(context.Background(), nil)
	if err != nil {
		t.Fatalf("component list resource: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].Text == "" {
		t.Fatal("expected component list payload")
	}
}
