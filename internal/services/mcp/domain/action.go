package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/killchain/internal/services/game/app"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
)

// ActionApplyInput represents the MCP tool input for one player move.
type ActionApplyInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	Type      string `json:"type" jsonschema:"move type (collect_clue, scan, access, exploit, phishing_send, password_attempt, disable_backup, encrypt)"`
	Target    string `json:"target,omitempty" jsonschema:"clue or node the move targets"`
	Correct   bool   `json:"correct,omitempty" jsonschema:"whether a phishing send or password attempt was right"`
	Admin     bool   `json:"admin,omitempty" jsonschema:"whether an exploit grants admin rights"`
	Careful   bool   `json:"careful,omitempty" jsonschema:"whether to encrypt slowly for less noise"`
}

// ActionApplyResult represents the MCP tool output for one player move.
type ActionApplyResult struct {
	Success      bool   `json:"success" jsonschema:"whether the move succeeded"`
	StealthCost  int    `json:"stealth_cost" jsonschema:"stealth points the move spent"`
	Stealth      int    `json:"stealth" jsonschema:"remaining stealth points"`
	Detected     bool   `json:"detected" jsonschema:"whether the defender noticed the move"`
	Detection    int    `json:"detection" jsonschema:"defender detection level after the move"`
	Reaction     string `json:"reaction" jsonschema:"defender posture (quiet, alert, lockdown)"`
	LockedOut    bool   `json:"locked_out" jsonschema:"whether password attempts are locked out"`
	AttemptsLeft int    `json:"attempts_left,omitempty" jsonschema:"password attempts remaining before lockout"`
}

// ActionApplyTool defines the MCP tool schema for applying a move.
func ActionApplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_apply",
		Description: "Executes one in-phase move against the simulated target, spending stealth and possibly raising detection.",
	}
}

// ActionApplyHandler executes a move request.
func ActionApplyHandler(svc *app.Service, getContext func() Context) mcp.ToolHandlerFor[ActionApplyInput, ActionApplyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionApplyInput) (*mcp.CallToolResult, ActionApplyResult, error) {
		sessionID, err := resolveSessionID(input.SessionID, getContext)
		if err != nil {
			return nil, ActionApplyResult{}, err
		}
		eff, err := svc.ApplyAction(ctx, sessionID, action.Request{
			Type:    action.Type(input.Type),
			Target:  input.Target,
			Correct: input.Correct,
			Admin:   input.Admin,
			Careful: input.Careful,
		})
		if err != nil {
			return nil, ActionApplyResult{}, fmt.Errorf("action apply failed: %w", err)
		}
		return nil, ActionApplyResult{
			Success:      eff.Success,
			StealthCost:  eff.StealthCost,
			Stealth:      eff.Stealth,
			Detected:     eff.Detected,
			Detection:    eff.Detection,
			Reaction:     string(eff.Reaction),
			LockedOut:    eff.LockedOut,
			AttemptsLeft: eff.AttemptsLeft,
		}, nil
	}
}

// ActionLogInput represents the MCP tool input for reading the move log.
type ActionLogInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter, e.g. type = \"scan\" AND success = false"`
}

// ActionLogEntry is one recorded move.
type ActionLogEntry struct {
	Seq         int64  `json:"seq" jsonschema:"position in the session log"`
	Type        string `json:"type" jsonschema:"move type"`
	Target      string `json:"target,omitempty" jsonschema:"move target"`
	Success     bool   `json:"success" jsonschema:"whether the move succeeded"`
	StealthCost int    `json:"stealth_cost" jsonschema:"stealth points the move spent"`
	Detection   int    `json:"detection" jsonschema:"detection level after the move"`
	At          string `json:"at" jsonschema:"RFC3339 timestamp of the move"`
}

// ActionLogResult represents the MCP tool output for the move log.
type ActionLogResult struct {
	Actions []ActionLogEntry `json:"actions" jsonschema:"moves in log order"`
}

// ActionLogTool defines the MCP tool schema for reading the move log.
func ActionLogTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_log",
		Description: "Reads the session's move log, optionally narrowed by an AIP-160 filter over type, target, success, stealth_cost, detection, and at.",
	}
}

// ActionLogHandler executes a move log request.
func ActionLogHandler(svc *app.Service, getContext func() Context) mcp.ToolHandlerFor[ActionLogInput, ActionLogResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionLogInput) (*mcp.CallToolResult, ActionLogResult, error) {
		sessionID, err := resolveSessionID(input.SessionID, getContext)
		if err != nil {
			return nil, ActionLogResult{}, err
		}
		entries, err := svc.ListActions(ctx, sessionID, input.Filter)
		if err != nil {
			return nil, ActionLogResult{}, fmt.Errorf("action log failed: %w", err)
		}
		result := ActionLogResult{}
		for _, entry := range entries {
			result.Actions = append(result.Actions, ActionLogEntry{
				Seq:         entry.Seq,
				Type:        string(entry.Type),
				Target:      entry.Target,
				Success:     entry.Success,
				StealthCost: entry.StealthCost,
				Detection:   entry.Detection,
				At:          entry.At.Format(time.RFC3339),
			})
		}
		return nil, result, nil
	}
}
