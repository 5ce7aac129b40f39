package scenario

import (
	"context"
	"log"

	"github.com/louisbranch/killchain/internal/services/game/domain/story"
)

// Resilient tries a primary provider and falls back on any error. The
// game must never stall on a flaky model call.
type Resilient struct {
	primary  Provider
	fallback Provider
}

// NewResilient wraps primary with fallback. A nil primary serves the
// fallback directly.
func NewResilient(primary, fallback Provider) *Resilient {
	return &Resilient{primary: primary, fallback: fallback}
}

func (r *Resilient) GenerateScenario(ctx context.Context, req Request) (Data, error) {
	if r.primary != nil {
		out, err := r.primary.GenerateScenario(ctx, req)
		if err == nil {
			return out, nil
		}
		log.Printf("scenario generation failed, using fallback: %v", err)
	}
	return r.fallback.GenerateScenario(ctx, req)
}

func (r *Resilient) GenerateStoryContext(ctx context.Context, hint string) (story.Context, error) {
	if r.primary != nil {
		out, err := r.primary.GenerateStoryContext(ctx, hint)
		if err == nil {
			return out, nil
		}
		log.Printf("context generation failed, using fallback: %v", err)
	}
	return r.fallback.GenerateStoryContext(ctx, hint)
}

func (r *Resilient) GenerateNarrative(ctx context.Context, req NarrativeRequest) (string, error) {
	if r.primary != nil {
		out, err := r.primary.GenerateNarrative(ctx, req)
		if err == nil {
			return out, nil
		}
		log.Printf("narrative generation failed, using fallback: %v", err)
	}
	return r.fallback.GenerateNarrative(ctx, req)
}
