package playthrough

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/killchain/internal/services/game/app"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
	"github.com/louisbranch/killchain/internal/services/game/domain/scoring"
)

func (r *Runner) runStep(ctx context.Context, state *runState, step Step) error {
	switch step.Kind {
	case "start":
		return r.runStart(ctx, state, step)
	case "scenario":
		return r.runScenario(ctx, state)
	case "action":
		return r.runAction(ctx, state, step)
	case "phase":
		return r.runPhase(ctx, state, step)
	case "expect":
		return r.runExpect(ctx, state, step)
	case "report":
		return r.runReport(ctx, state, step)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runStart(ctx context.Context, state *runState, step Step) error {
	if state.sessionID != "" {
		return r.failf("session already started")
	}
	sess, err := r.svc.StartSession(ctx, app.StartSessionInput{
		StoryID:      stringArg(step.Args, "story"),
		ComponentIDs: stringSliceArg(step.Args, "chain"),
		ContextHint:  stringArg(step.Args, "context_hint"),
	})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	state.sessionID = sess.ID
	r.logf("session %s: %s vs %s (%d phases)", sess.ID, sess.StoryID, sess.Context.TargetOrg, len(sess.Plan))
	return nil
}

func (r *Runner) runScenario(ctx context.Context, state *runState) error {
	if err := r.ensureSession(state); err != nil {
		return err
	}
	data, err := r.svc.Scenario(ctx, state.sessionID)
	if err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	r.logf("briefing: %s", data.Title)
	return nil
}

func (r *Runner) runAction(ctx context.Context, state *runState, step Step) error {
	if err := r.ensureSession(state); err != nil {
		return err
	}
	eff, err := r.svc.ApplyAction(ctx, state.sessionID, action.Request{
		Type:    action.Type(stringArg(step.Args, "type")),
		Target:  stringArg(step.Args, "target"),
		Correct: boolArg(step.Args, "correct"),
		Admin:   boolArg(step.Args, "admin"),
		Careful: boolArg(step.Args, "careful"),
	})
	if err != nil {
		return fmt.Errorf("apply action: %w", err)
	}
	r.logf("action %s: success=%t stealth=%d detection=%d", stringArg(step.Args, "type"), eff.Success, eff.Stealth, eff.Detection)
	if want, ok := step.Args["expect_success"].(bool); ok && eff.Success != want {
		return r.assertf("action success = %t, want %t", eff.Success, want)
	}
	return nil
}

func (r *Runner) runPhase(ctx context.Context, state *runState, step Step) error {
	if err := r.ensureSession(state); err != nil {
		return err
	}
	sess, err := r.svc.GetSession(ctx, state.sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	slot := sess.CurrentSlot()
	if slot < 0 {
		return r.failf("all phases already completed")
	}

	outcome, err := outcomeArg(step.Args)
	if err != nil {
		return err
	}
	sess, err = r.svc.CompletePhase(ctx, app.CompletePhaseInput{
		SessionID:   state.sessionID,
		Slot:        slot,
		ComponentID: stringArg(step.Args, "component"),
		Outcome:     outcome,
		Context:     stringMapArg(step.Args, "context"),
	})
	if err != nil {
		return fmt.Errorf("complete phase: %w", err)
	}
	recorded := sess.Results[slot]
	r.logf("phase %d (%s): score=%d rank=%s", slot, recorded.ComponentID, recorded.Score.Total, recorded.Score.Rank)
	if min, ok := intArgOK(step.Args, "min_score"); ok && recorded.Score.Total < min {
		return r.assertf("phase score = %d, want at least %d", recorded.Score.Total, min)
	}
	return nil
}

func (r *Runner) runExpect(ctx context.Context, state *runState, step Step) error {
	if err := r.ensureSession(state); err != nil {
		return err
	}
	sess, err := r.svc.GetSession(ctx, state.sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if min, ok := intArgOK(step.Args, "stealth_at_least"); ok && sess.Stealth < min {
		return r.assertf("stealth = %d, want at least %d", sess.Stealth, min)
	}
	if max, ok := intArgOK(step.Args, "detection_at_most"); ok && sess.Detection > max {
		return r.assertf("detection = %d, want at most %d", sess.Detection, max)
	}
	if want, ok := step.Args["locked_out"].(bool); ok && sess.LockedOut != want {
		return r.assertf("locked_out = %t, want %t", sess.LockedOut, want)
	}
	if want, ok := step.Args["completed"].(bool); ok && sess.IsComplete() != want {
		return r.assertf("completed = %t, want %t", sess.IsComplete(), want)
	}
	return nil
}

func (r *Runner) runReport(ctx context.Context, state *runState, step Step) error {
	if err := r.ensureSession(state); err != nil {
		return err
	}
	rep, err := r.svc.Report(ctx, state.sessionID)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	r.logf("report: total=%d rank=%s detection=%d", rep.TotalScore, rep.Rank, rep.Detection)
	if min, ok := intArgOK(step.Args, "min_score"); ok && rep.TotalScore < min {
		return r.assertf("total score = %d, want at least %d", rep.TotalScore, min)
	}
	if want := stringArg(step.Args, "rank"); want != "" && string(rep.Rank) != want {
		return r.assertf("rank = %s, want %s", rep.Rank, want)
	}
	return nil
}

func (r *Runner) ensureSession(state *runState) error {
	if state.sessionID == "" {
		return r.failf("session is required; call start first")
	}
	return nil
}

// outcomeArg converts the Lua outcome table into a scoring outcome
// through its JSON shape.
func outcomeArg(args map[string]any) (scoring.Outcome, error) {
	raw, ok := args["outcome"]
	if !ok {
		return scoring.Outcome{}, fmt.Errorf("outcome is required")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return scoring.Outcome{}, fmt.Errorf("encode outcome: %w", err)
	}
	var outcome scoring.Outcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return scoring.Outcome{}, fmt.Errorf("decode outcome: %w", err)
	}
	return outcome, nil
}

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func boolArg(args map[string]any, key string) bool {
	value, _ := args[key].(bool)
	return value
}

func intArgOK(args map[string]any, key string) (int, bool) {
	switch value := args[key].(type) {
	case int:
		return value, true
	case float64:
		return int(value), true
	default:
		return 0, false
	}
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringMapArg(args map[string]any, key string) map[string]string {
	raw, ok := args[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
