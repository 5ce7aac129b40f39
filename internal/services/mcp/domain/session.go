package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/killchain/internal/services/game/app"
	"github.com/louisbranch/killchain/internal/services/game/domain/session"
)

// PlanSlot is one planned phase in a session summary.
type PlanSlot struct {
	Slot        int    `json:"slot" jsonschema:"zero-based position in the plan"`
	Phase       string `json:"phase" jsonschema:"attack phase (recon, access, lateral, objective)"`
	ComponentID string `json:"component_id" jsonschema:"mini-game component for this slot"`
	Completed   bool   `json:"completed" jsonschema:"whether a result is recorded"`
	Score       int    `json:"score,omitempty" jsonschema:"recorded phase score when completed"`
}

// SessionState represents a playable session for MCP clients.
type SessionState struct {
	ID          string     `json:"id" jsonschema:"session identifier"`
	StoryID     string     `json:"story_id" jsonschema:"story the session plays"`
	TargetOrg   string     `json:"target_org" jsonschema:"name of the fictional target organization"`
	Objective   string     `json:"objective" jsonschema:"mission objective"`
	Plan        []PlanSlot `json:"plan" jsonschema:"ordered phase plan"`
	CurrentSlot int        `json:"current_slot" jsonschema:"next slot awaiting a result, -1 when complete"`
	Stealth     int        `json:"stealth" jsonschema:"remaining stealth points"`
	Detection   int        `json:"detection" jsonschema:"defender detection level"`
	LockedOut   bool       `json:"locked_out" jsonschema:"whether password attempts are locked out"`
	Completed   bool       `json:"completed" jsonschema:"whether every phase has a result"`
	CreatedAt   string     `json:"created_at" jsonschema:"RFC3339 timestamp when the session started"`
	ExpiresAt   string     `json:"expires_at" jsonschema:"RFC3339 timestamp when the session expires"`
}

func sessionStateFrom(sess *session.Session) SessionState {
	state := SessionState{
		ID:          sess.ID,
		StoryID:     sess.StoryID,
		TargetOrg:   sess.Context.TargetOrg,
		Objective:   sess.Context.Objective,
		CurrentSlot: sess.CurrentSlot(),
		Stealth:     sess.Stealth,
		Detection:   sess.Detection,
		LockedOut:   sess.LockedOut,
		Completed:   sess.IsComplete(),
		CreatedAt:   sess.CreatedAt.Format(time.RFC3339),
		ExpiresAt:   sess.ExpiresAt.Format(time.RFC3339),
	}
	for i, slot := range sess.Plan {
		entry := PlanSlot{
			Slot:        i,
			Phase:       string(slot.Phase),
			ComponentID: slot.ComponentID,
		}
		if i < len(sess.Results) {
			entry.Completed = true
			entry.Score = sess.Results[i].Score.Total
		}
		state.Plan = append(state.Plan, entry)
	}
	return state
}

// SessionStartInput represents the MCP tool input for starting a session.
type SessionStartInput struct {
	StoryID      string   `json:"story_id,omitempty" jsonschema:"story identifier, random when omitted"`
	ComponentIDs []string `json:"component_ids,omitempty" jsonschema:"explicit kill chain of component ids, drawn from story pools when omitted"`
	ContextHint  string   `json:"context_hint,omitempty" jsonschema:"industry or theme hint for a generated mission context"`
}

// SessionStartTool defines the MCP tool schema for starting a session.
func SessionStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_start",
		Description: "Starts a new attack simulation run with a fixed phase plan and replay seed.",
	}
}

// SessionStartHandler executes a session start request.
func SessionStartHandler(svc *app.Service, setContext func(Context)) mcp.ToolHandlerFor[SessionStartInput, SessionState] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionStartInput) (*mcp.CallToolResult, SessionState, error) {
		sess, err := svc.StartSession(ctx, app.StartSessionInput{
			StoryID:      input.StoryID,
			ComponentIDs: input.ComponentIDs,
			ContextHint:  input.ContextHint,
		})
		if err != nil {
			return nil, SessionState{}, fmt.Errorf("session start failed: %w", err)
		}
		if setContext != nil {
			setContext(Context{SessionID: sess.ID})
		}
		return nil, sessionStateFrom(sess), nil
	}
}

// SessionGetInput represents the MCP tool input for reading a session.
type SessionGetInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
}

// SessionGetTool defines the MCP tool schema for reading a session.
func SessionGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_get",
		Description: "Reads the current state of a run: plan, progress, stealth, and detection.",
	}
}

// SessionGetHandler executes a session read request.
func SessionGetHandler(svc *app.Service, getContext func() Context) mcp.ToolHandlerFor[SessionGetInput, SessionState] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionGetInput) (*mcp.CallToolResult, SessionState, error) {
		sessionID, err := resolveSessionID(input.SessionID, getContext)
		if err != nil {
			return nil, SessionState{}, err
		}
		sess, err := svc.GetSession(ctx, sessionID)
		if err != nil {
			return nil, SessionState{}, fmt.Errorf("session get failed: %w", err)
		}
		return nil, sessionStateFrom(sess), nil
	}
}
