package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
	"github.com/louisbranch/killchain/internal/services/game/domain/scoring"
	"github.com/louisbranch/killchain/internal/services/game/domain/session"
	"github.com/louisbranch/killchain/internal/services/game/domain/stealth"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
	"github.com/louisbranch/killchain/internal/services/game/scenario"
	"github.com/louisbranch/killchain/internal/services/game/storage/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	clock := func() time.Time { return time.Unix(1700000000, 0).UTC() }
	var nextID int
	return NewService(
		memory.New(memory.WithClock(clock)),
		story.DefaultCatalog(),
		scenario.NewStatic(),
		WithClock(clock),
		WithIDGenerator(func() (string, error) {
			nextID++
			return fmt.Sprintf("sess-%d", nextID), nil
		}),
		WithSeedSource(func() (int64, error) { return 42, nil }),
		WithRand(rand.New(rand.NewSource(1))),
	)
}

var fullChain = []string{"sns-recon", "phishing-email", "network-intrusion", "ransomware"}

func startFixedSession(t *testing.T, svc *Service) *session.Session {
	t.Helper()
	sess, err := svc.StartSession(context.Background(), StartSessionInput{
		StoryID:      "cyber-corp",
		ComponentIDs: fullChain,
	})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	return sess
}

func TestStartSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, StartSessionInput{StoryID: "cyber-corp"})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if sess.ID != "sess-1" {
		t.Errorf("ID = %q, want sess-1", sess.ID)
	}
	if sess.Seed != 42 {
		t.Errorf("Seed = %d, want 42", sess.Seed)
	}
	if len(sess.Plan) != 4 {
		t.Errorf("Plan len = %d, want 4", len(sess.Plan))
	}
	if sess.Context.TargetOrg != "サイバーコーポレーション" {
		t.Errorf("TargetOrg = %q, want story context", sess.Context.TargetOrg)
	}

	got, err := svc.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("GetSession() id = %q", got.ID)
	}
}

func TestStartSessionUnknownStory(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.StartSession(context.Background(), StartSessionInput{StoryID: "nope"})
	if !errors.Is(err, story.ErrStoryNotFound) {
		t.Errorf("StartSession() error = %v, want ErrStoryNotFound", err)
	}
}

func TestStartSessionGeneratedContext(t *testing.T) {
	svc := newTestService(t)
	sess, err := svc.StartSession(context.Background(), StartSessionInput{
		StoryID:     "cyber-corp",
		ContextHint: "金融",
	})
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if sess.Context.TargetOrg != "みらい銀行" {
		t.Errorf("TargetOrg = %q, want generated context", sess.Context.TargetOrg)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetSession(context.Background(), "missing")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("GetSession(missing) error = %v, want session.ErrNotFound", err)
	}
}

func TestFullRun(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess := startFixedSession(t, svc)

	outcomes := []scoring.Outcome{
		{Recon: &scoring.ReconOutcome{CluesFound: 4, CluesTotal: 5, KeyClueFound: true, StealthRemaining: 90}},
		{Phishing: &scoring.PhishingOutcome{SenderQuality: 80, SubjectQuality: 70, BodyQuality: 90, LinkQuality: 60}},
		{Intrusion: &scoring.IntrusionOutcome{AccessGained: true, NodesDiscovered: 6, NodesTotal: 8, ObjectiveReached: true, StealthRemaining: 70}},
		{Ransom: &scoring.RansomOutcome{BackupDisabled: true, FilesEncrypted: 9, FilesTotal: 10, Careful: true, StealthRemaining: 60}},
	}

	for i, outcome := range outcomes {
		updated, err := svc.CompletePhase(ctx, CompletePhaseInput{
			SessionID:   sess.ID,
			Slot:        i,
			ComponentID: fullChain[i],
			Outcome:     outcome,
			Context:     map[string]string{"step": fullChain[i]},
		})
		if err != nil {
			t.Fatalf("CompletePhase(%d) error = %v", i, err)
		}
		if len(updated.Results) != i+1 {
			t.Fatalf("Results len = %d, want %d", len(updated.Results), i+1)
		}
	}

	rep, err := svc.Report(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if rep.TotalScore <= 0 || rep.TotalScore > 100 {
		t.Errorf("TotalScore = %d, want within (0,100]", rep.TotalScore)
	}
	if rep.Rank == "" {
		t.Error("Rank is empty")
	}
	if len(rep.Phases) != 4 {
		t.Errorf("Phases = %d, want 4", len(rep.Phases))
	}
	if rep.Narrative == "" {
		t.Error("Narrative is empty")
	}
}

func TestCompletePhaseDoubleCompletion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess := startFixedSession(t, svc)

	in := CompletePhaseInput{
		SessionID:   sess.ID,
		Slot:        0,
		ComponentID: "sns-recon",
		Outcome:     scoring.Outcome{Recon: &scoring.ReconOutcome{CluesFound: 5, CluesTotal: 5, StealthRemaining: 100}},
	}
	if _, err := svc.CompletePhase(ctx, in); err != nil {
		t.Fatalf("CompletePhase() error = %v", err)
	}
	if _, err := svc.CompletePhase(ctx, in); !errors.Is(err, session.ErrPhaseAlreadyCompleted) {
		t.Fatalf("second CompletePhase() error = %v, want ErrPhaseAlreadyCompleted", err)
	}
}

func TestCompletePhaseStealthFromSession(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess := startFixedSession(t, svc)

	for i := 0; i < 5; i++ {
		if _, err := svc.ApplyAction(ctx, sess.ID, action.Request{Type: action.TypeScan, Target: "file-server"}); err != nil {
			t.Fatalf("ApplyAction(%d) error = %v", i, err)
		}
	}
	got, err := svc.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stealth >= stealth.Max {
		t.Fatalf("Stealth = %d, want spent below %d", got.Stealth, stealth.Max)
	}

	updated, err := svc.CompletePhase(ctx, CompletePhaseInput{
		SessionID:   sess.ID,
		Slot:        0,
		ComponentID: "sns-recon",
		Outcome: scoring.Outcome{Recon: &scoring.ReconOutcome{
			CluesFound: 5, CluesTotal: 5, KeyClueFound: true,
			// Claims an untouched meter; the tracked level must win.
			StealthRemaining: stealth.Max,
		}},
	})
	if err != nil {
		t.Fatalf("CompletePhase() error = %v", err)
	}

	points, maxPoints := -1, 0
	for _, e := range updated.Results[0].Score.Breakdown {
		if e.Category == "stealth" {
			points, maxPoints = e.Points, e.MaxPoints
		}
	}
	if want := stealth.Bonus(got.Stealth); points != want {
		t.Errorf("stealth points = %d, want %d from tracked level %d", points, want, got.Stealth)
	}
	if points == maxPoints {
		t.Errorf("stealth points = %d, full bonus awarded from claimed level", points)
	}
}

func TestReportBeforeCompletion(t *testing.T) {
	svc := newTestService(t)
	sess := startFixedSession(t, svc)

	_, err := svc.Report(context.Background(), sess.ID)
	if apperrors.CodeOf(err) != apperrors.CodeReportNotReady {
		t.Errorf("Report(incomplete) error = %v, want report not ready", err)
	}
}

func TestApplyActionAndLog(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess := startFixedSession(t, svc)

	eff, err := svc.ApplyAction(ctx, sess.ID, action.Request{Type: action.TypeScan, Target: "file-server"})
	if err != nil {
		t.Fatalf("ApplyAction() error = %v", err)
	}
	if eff.Stealth != 97 {
		t.Errorf("Stealth = %d, want 97", eff.Stealth)
	}

	got, err := svc.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Stealth != 97 {
		t.Errorf("persisted stealth = %d, want 97", got.Stealth)
	}

	entries, err := svc.ListActions(ctx, sess.ID, "")
	if err != nil {
		t.Fatalf("ListActions() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Type != action.TypeScan {
		t.Errorf("ListActions() = %v, want one scan entry", entries)
	}

	filtered, err := svc.ListActions(ctx, sess.ID, `type = "exploit"`)
	if err != nil {
		t.Fatalf("ListActions(filter) error = %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("ListActions(filter) = %v, want empty", filtered)
	}
}

func TestLockEntriesReleased(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess := startFixedSession(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ApplyAction(ctx, sess.ID, action.Request{Type: action.TypeScan, Target: "file-server"}); err != nil {
				t.Errorf("ApplyAction() error = %v", err)
			}
		}()
	}
	wg.Wait()

	svc.locksMu.Lock()
	held := len(svc.locks)
	svc.locksMu.Unlock()
	if held != 0 {
		t.Errorf("lock entries = %d, want 0 once operations finish", held)
	}
}

func TestScenarioFollowsCurrentSlot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sess := startFixedSession(t, svc)

	data, err := svc.Scenario(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Scenario() error = %v", err)
	}
	if data.Title != "SNS偵察" {
		t.Errorf("Title = %q, want first slot briefing", data.Title)
	}

	if _, err := svc.CompletePhase(ctx, CompletePhaseInput{
		SessionID:   sess.ID,
		Slot:        0,
		ComponentID: "sns-recon",
		Outcome:     scoring.Outcome{Recon: &scoring.ReconOutcome{CluesFound: 3, CluesTotal: 5, StealthRemaining: 95}},
	}); err != nil {
		t.Fatal(err)
	}

	data, err = svc.Scenario(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Scenario() error = %v", err)
	}
	if data.Title != "フィッシングメール" {
		t.Errorf("Title = %q, want second slot briefing", data.Title)
	}
}

func TestListCatalog(t *testing.T) {
	svc := newTestService(t)
	if len(svc.ListStories()) == 0 {
		t.Error("ListStories() is empty")
	}
	if len(svc.ListComponents()) == 0 {
		t.Error("ListComponents() is empty")
	}
}
