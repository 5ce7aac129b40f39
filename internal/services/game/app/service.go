// Package app orchestrates the game service: session lifecycle, phase
// completion, in-phase actions, scenario generation, and the final
// report. It owns per-session locking so concurrent requests against
// one run serialize.
package app

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/louisbranch/killchain/internal/platform/id"
	"github.com/louisbranch/killchain/internal/platform/random"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
	"github.com/louisbranch/killchain/internal/services/game/domain/report"
	"github.com/louisbranch/killchain/internal/services/game/domain/scoring"
	"github.com/louisbranch/killchain/internal/services/game/domain/session"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
	"github.com/louisbranch/killchain/internal/services/game/scenario"
	"github.com/louisbranch/killchain/internal/services/game/storage"
)

// Service exposes the game operations to transports.
type Service struct {
	store    storage.Store
	catalog  *story.Catalog
	provider scenario.Provider

	now     func() time.Time
	newID   func() (string, error)
	newSeed func() (int64, error)

	rngMu sync.Mutex
	rng   *rand.Rand

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newID = gen }
}

// WithSeedSource overrides the replay seed source.
func WithSeedSource(seed func() (int64, error)) Option {
	return func(s *Service) { s.newSeed = seed }
}

// WithRand overrides the service rng used for detection rolls.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// NewService wires a game service over a store and a scenario provider.
func NewService(store storage.Store, catalog *story.Catalog, provider scenario.Provider, opts ...Option) *Service {
	s := &Service{
		store:    store,
		catalog:  catalog,
		provider: provider,
		now:      time.Now,
		newID:    id.NewID,
		newSeed:  random.NewSeed,
		locks:    make(map[string]*sessionLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed, err := s.newSeed()
		if err != nil {
			seed = time.Now().UnixNano()
		}
		s.rng = rand.New(rand.NewSource(seed))
	}
	return s
}

// lock serializes operations on one session id. Entries are
// refcounted and dropped on release so the map does not grow with
// every session ever seen.
func (s *Service) lock(sessionID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.locksMu.Unlock()
	}
}

// StartSessionInput selects the mission for a new run.
type StartSessionInput struct {
	// StoryID picks a built-in story. Empty picks one at random.
	StoryID string
	// ComponentIDs fixes the plan explicitly. Empty draws one
	// component per phase from the story pools.
	ComponentIDs []string
	// ContextHint asks the scenario provider for a generated mission
	// context instead of the story's built-in one.
	ContextHint string
}

// StartSession creates a session with a fixed plan and replay seed.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*session.Session, error) {
	var def story.Definition
	var err error
	if in.StoryID != "" {
		def, err = s.catalog.Story(in.StoryID)
		if err != nil {
			return nil, err
		}
	} else {
		stories := s.catalog.Stories()
		if len(stories) == 0 {
			return nil, story.ErrStoryNotFound
		}
		s.rngMu.Lock()
		def = stories[s.rng.Intn(len(stories))]
		s.rngMu.Unlock()
	}

	if in.ContextHint != "" {
		generated, err := s.provider.GenerateStoryContext(ctx, in.ContextHint)
		if err != nil {
			return nil, err
		}
		def.Context = generated
	}

	seed, err := s.newSeed()
	if err != nil {
		return nil, err
	}
	var plan []story.Slot
	if len(in.ComponentIDs) > 0 {
		plan, err = story.PlanFromChain(s.catalog, in.ComponentIDs)
	} else {
		plan, err = story.BuildPlan(s.catalog, def, rand.New(rand.NewSource(seed)))
	}
	if err != nil {
		return nil, err
	}

	sessionID, err := s.newID()
	if err != nil {
		return nil, err
	}
	sess, err := session.New(sessionID, def, plan, seed, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.PutSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetSession loads a session by id.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*session.Session, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, session.ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// CompletePhaseInput records one mini-game result.
type CompletePhaseInput struct {
	SessionID   string
	Slot        int
	ComponentID string
	Outcome     scoring.Outcome
	// Context carries what the phase yielded for later phases.
	Context map[string]string
}

// CompletePhase scores the outcome and records it against the slot.
func (s *Service) CompletePhase(ctx context.Context, in CompletePhaseInput) (*session.Session, error) {
	unlock := s.lock(in.SessionID)
	defer unlock()

	sess, err := s.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	result, err := scoring.Score(in.ComponentID, in.Outcome.WithStealth(sess.Stealth))
	if err != nil {
		return nil, err
	}
	if err := sess.CompletePhase(in.Slot, in.ComponentID, result, in.Context, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.PutSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// ApplyAction executes one player move and appends it to the log.
func (s *Service) ApplyAction(ctx context.Context, sessionID string, req action.Request) (action.Effect, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return action.Effect{}, err
	}

	s.rngMu.Lock()
	eff, entry, err := action.Apply(sess, s.rng, req, s.now())
	s.rngMu.Unlock()
	if err != nil {
		return action.Effect{}, err
	}

	if err := s.store.PutSession(ctx, sess); err != nil {
		return action.Effect{}, err
	}
	if _, err := s.store.AppendAction(ctx, entry); err != nil {
		return action.Effect{}, err
	}
	return eff, nil
}

// Scenario returns the briefing for the session's current slot.
func (s *Service) Scenario(ctx context.Context, sessionID string) (scenario.Data, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return scenario.Data{}, err
	}
	slot := sess.CurrentSlot()
	if slot < 0 {
		return scenario.Data{}, session.ErrCompleted
	}
	comp, err := s.catalog.Component(sess.Plan[slot].ComponentID)
	if err != nil {
		return scenario.Data{}, err
	}
	return s.provider.GenerateScenario(ctx, scenario.Request{
		Component:   comp,
		Context:     sess.Context,
		Accumulated: sess.AccumulatedContext(),
	})
}

// Report builds the final debrief for a completed session. The closing
// narrative comes from the scenario provider when available.
func (s *Service) Report(ctx context.Context, sessionID string) (report.Report, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return report.Report{}, err
	}
	rep, err := report.Build(sess, s.catalog)
	if err != nil {
		return report.Report{}, err
	}
	narrative, err := s.provider.GenerateNarrative(ctx, scenario.NarrativeRequest{
		Context:    sess.Context,
		TotalScore: rep.TotalScore,
		Rank:       rep.Rank,
		Detection:  sess.Detection,
	})
	if err == nil && narrative != "" {
		rep.Narrative = narrative
	}
	return rep, nil
}

// ListActions returns the session's action log, optionally filtered.
func (s *Service) ListActions(ctx context.Context, sessionID, filter string) ([]action.Entry, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListActions(ctx, sessionID, filter)
}

// ListStories returns the playable story definitions.
func (s *Service) ListStories() []story.Definition {
	return s.catalog.Stories()
}

// ListComponents returns all component definitions.
func (s *Service) ListComponents() []story.Component {
	return s.catalog.Components()
}

// SweepExpired drops expired sessions until ctx is done.
func (s *Service) SweepExpired(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			_, _ = s.store.DeleteExpiredSessions(ctx, now)
		}
	}
}
