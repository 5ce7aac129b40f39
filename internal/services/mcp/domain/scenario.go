package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/killchain/internal/services/game/app"
)

// ScenarioGetInput represents the MCP tool input for a phase briefing.
type ScenarioGetInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
}

// ScenarioGetResult represents the MCP tool output for a phase briefing.
type ScenarioGetResult struct {
	Title     string   `json:"title" jsonschema:"briefing title"`
	Briefing  string   `json:"briefing" jsonschema:"mission briefing for the current phase"`
	Situation string   `json:"situation" jsonschema:"current situation against the target"`
	Hints     []string `json:"hints,omitempty" jsonschema:"play hints for the phase"`
}

// ScenarioGetTool defines the MCP tool schema for a phase briefing.
func ScenarioGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scenario_get",
		Description: "Returns the narrative briefing for the session's current phase.",
	}
}

// ScenarioGetHandler executes a briefing request.
func ScenarioGetHandler(svc *app.Service, getContext func() Context) mcp.ToolHandlerFor[ScenarioGetInput, ScenarioGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ScenarioGetInput) (*mcp.CallToolResult, ScenarioGetResult, error) {
		sessionID, err := resolveSessionID(input.SessionID, getContext)
		if err != nil {
			return nil, ScenarioGetResult{}, err
		}
		data, err := svc.Scenario(ctx, sessionID)
		if err != nil {
			return nil, ScenarioGetResult{}, fmt.Errorf("scenario get failed: %w", err)
		}
		return nil, ScenarioGetResult{
			Title:     data.Title,
			Briefing:  data.Briefing,
			Situation: data.Situation,
			Hints:     data.Hints,
		}, nil
	}
}
