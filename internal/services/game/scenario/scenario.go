// Package scenario produces the narrative content for a run: mission
// contexts, per-component briefings, and the closing narrative. Content
// may come from a generative model or from built-in fallbacks; callers
// always get something playable.
package scenario

import (
	"context"

	"github.com/louisbranch/killchain/internal/services/game/domain/rank"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
)

// Request asks for the briefing of one component within a run.
type Request struct {
	Component   story.Component
	Context     story.Context
	Accumulated map[string]string
}

// Data is the playable briefing for one component.
type Data struct {
	Title     string   `json:"title"`
	Briefing  string   `json:"briefing"`
	Situation string   `json:"situation"`
	Hints     []string `json:"hints,omitempty"`
}

// NarrativeRequest asks for the closing narrative of a finished run.
type NarrativeRequest struct {
	Context    story.Context
	TotalScore int
	Rank       rank.Rank
	Detection  int
}

// Provider generates narrative content.
type Provider interface {
	// GenerateScenario returns the briefing for one component.
	GenerateScenario(ctx context.Context, req Request) (Data, error)
	// GenerateStoryContext invents a mission context. The hint nudges
	// the industry or tone and may be empty.
	GenerateStoryContext(ctx context.Context, hint string) (story.Context, error)
	// GenerateNarrative writes the closing debrief paragraph.
	GenerateNarrative(ctx context.Context, req NarrativeRequest) (string, error)
}
