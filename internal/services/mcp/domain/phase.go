package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/killchain/internal/services/game/app"
	"github.com/louisbranch/killchain/internal/services/game/domain/scoring"
)

// PhaseCompleteInput represents the MCP tool input for recording a phase
// result.
type PhaseCompleteInput struct {
	SessionID   string            `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	Slot        int               `json:"slot" jsonschema:"zero-based plan slot being completed"`
	ComponentID string            `json:"component_id" jsonschema:"component planned for the slot"`
	Outcome     scoring.Outcome   `json:"outcome" jsonschema:"mini-game outcome for the component, exactly one variant set"`
	Context     map[string]string `json:"context,omitempty" jsonschema:"facts the phase yielded for later phases"`
}

// PhaseCompleteResult represents the MCP tool output for a recorded phase.
type PhaseCompleteResult struct {
	Slot        int             `json:"slot" jsonschema:"completed slot"`
	ComponentID string          `json:"component_id" jsonschema:"component that was scored"`
	Score       int             `json:"score" jsonschema:"phase score out of 100"`
	Rank        string          `json:"rank" jsonschema:"phase rank (S, A, B, C, D)"`
	Breakdown   []scoring.Entry `json:"breakdown" jsonschema:"per-category scoring breakdown"`
	NextSlot    int             `json:"next_slot" jsonschema:"next slot awaiting a result, -1 when the run is complete"`
	Completed   bool            `json:"completed" jsonschema:"whether the run is now complete"`
}

// PhaseCompleteTool defines the MCP tool schema for completing a phase.
func PhaseCompleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "phase_complete",
		Description: "Scores a mini-game outcome and records it against the session's next plan slot. Slots complete strictly in order, exactly once each.",
	}
}

// PhaseCompleteHandler executes a phase completion request.
func PhaseCompleteHandler(svc *app.Service, getContext func() Context) mcp.ToolHandlerFor[PhaseCompleteInput, PhaseCompleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PhaseCompleteInput) (*mcp.CallToolResult, PhaseCompleteResult, error) {
		sessionID, err := resolveSessionID(input.SessionID, getContext)
		if err != nil {
			return nil, PhaseCompleteResult{}, err
		}
		sess, err := svc.CompletePhase(ctx, app.CompletePhaseInput{
			SessionID:   sessionID,
			Slot:        input.Slot,
			ComponentID: input.ComponentID,
			Outcome:     input.Outcome,
			Context:     input.Context,
		})
		if err != nil {
			return nil, PhaseCompleteResult{}, fmt.Errorf("phase complete failed: %w", err)
		}
		if input.Slot >= len(sess.Results) {
			return nil, PhaseCompleteResult{}, fmt.Errorf("phase result is missing for slot %d", input.Slot)
		}
		recorded := sess.Results[input.Slot]
		return nil, PhaseCompleteResult{
			Slot:        recorded.Slot,
			ComponentID: recorded.ComponentID,
			Score:       recorded.Score.Total,
			Rank:        string(recorded.Score.Rank),
			Breakdown:   recorded.Score.Breakdown,
			NextSlot:    sess.CurrentSlot(),
			Completed:   sess.IsComplete(),
		}, nil
	}
}
