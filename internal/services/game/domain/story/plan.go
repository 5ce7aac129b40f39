package story

import (
	"math/rand"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
)

// BuildPlan fixes a run plan for the story by drawing one component from
// each phase pool. The rng must not be nil; callers seed it so a run can
// be replayed.
func BuildPlan(c *Catalog, def Definition, rng *rand.Rand) ([]Slot, error) {
	if len(def.Phases) == 0 {
		return nil, apperrors.WithMetadata(apperrors.CodeStoryEmptyPlan, "story has no phases: "+def.ID, map[string]string{"StoryID": def.ID})
	}
	plan := make([]Slot, 0, len(def.Phases))
	for _, pd := range def.Phases {
		if len(pd.ComponentPool) == 0 {
			return nil, apperrors.WithMetadata(apperrors.CodeStoryEmptyPlan, "phase has no components: "+string(pd.Phase), map[string]string{"StoryID": def.ID, "Phase": string(pd.Phase)})
		}
		id := pd.ComponentPool[rng.Intn(len(pd.ComponentPool))]
		comp, err := c.Component(id)
		if err != nil {
			return nil, err
		}
		if comp.Phase != pd.Phase {
			return nil, apperrors.WithMetadata(apperrors.CodeComponentPhaseMismatch, "component does not belong to phase", map[string]string{"ComponentID": id, "Phase": string(pd.Phase)})
		}
		plan = append(plan, Slot{Phase: pd.Phase, ComponentID: id})
	}
	return plan, nil
}

// PlanFromChain builds a plan from an explicit component chain. Components
// must exist and appear in strict chain order, one per phase.
func PlanFromChain(c *Catalog, componentIDs []string) ([]Slot, error) {
	if len(componentIDs) == 0 {
		return nil, ErrEmptyPlan
	}
	plan := make([]Slot, 0, len(componentIDs))
	prev := -1
	for _, id := range componentIDs {
		comp, err := c.Component(id)
		if err != nil {
			return nil, err
		}
		order := comp.Phase.Order()
		if order <= prev {
			return nil, apperrors.WithMetadata(apperrors.CodeComponentPhaseMismatch, "components out of chain order", map[string]string{"ComponentID": id, "Phase": string(comp.Phase)})
		}
		prev = order
		plan = append(plan, Slot{Phase: comp.Phase, ComponentID: id})
	}
	return plan, nil
}
