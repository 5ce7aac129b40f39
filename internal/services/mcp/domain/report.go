package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/killchain/internal/services/game/app"
)

// SessionReportInput represents the MCP tool input for the final debrief.
type SessionReportInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"session identifier (defaults to context)"`
}

// ReportPhase is one phase line of the debrief.
type ReportPhase struct {
	Phase         string `json:"phase" jsonschema:"attack phase"`
	ComponentID   string `json:"component_id" jsonschema:"mini-game component"`
	ComponentName string `json:"component_name" jsonschema:"component display name"`
	Score         int    `json:"score" jsonschema:"phase score out of 100"`
	Rank          string `json:"rank" jsonschema:"phase rank (S, A, B, C, D)"`
}

// SessionReportResult represents the MCP tool output for the final debrief.
type SessionReportResult struct {
	SessionID        string        `json:"session_id" jsonschema:"session identifier"`
	StoryID          string        `json:"story_id" jsonschema:"story the session played"`
	TotalScore       int           `json:"total_score" jsonschema:"overall score out of 100, the rounded mean of the phase scores"`
	Rank             string        `json:"rank" jsonschema:"overall rank (S, A, B, C, D)"`
	Phases           []ReportPhase `json:"phases" jsonschema:"per-phase results in plan order"`
	KeyLearnings     []string      `json:"key_learnings" jsonschema:"security lessons from the components played"`
	Narrative        string        `json:"narrative" jsonschema:"closing mission narrative"`
	StealthRemaining int           `json:"stealth_remaining" jsonschema:"stealth points left at the end"`
	Detection        int           `json:"detection" jsonschema:"final defender detection level"`
	CompletedAt      string        `json:"completed_at" jsonschema:"RFC3339 timestamp when the run finished"`
}

// SessionReportTool defines the MCP tool schema for the final debrief.
func SessionReportTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_report",
		Description: "Builds the end-of-run debrief with overall score, rank, per-phase breakdowns, and key learnings. The run must be complete.",
	}
}

// SessionReportHandler executes a debrief request.
func SessionReportHandler(svc *app.Service, getContext func() Context) mcp.ToolHandlerFor[SessionReportInput, SessionReportResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionReportInput) (*mcp.CallToolResult, SessionReportResult, error) {
		sessionID, err := resolveSessionID(input.SessionID, getContext)
		if err != nil {
			return nil, SessionReportResult{}, err
		}
		rep, err := svc.Report(ctx, sessionID)
		if err != nil {
			return nil, SessionReportResult{}, fmt.Errorf("session report failed: %w", err)
		}
		result := SessionReportResult{
			SessionID:        rep.SessionID,
			StoryID:          rep.StoryID,
			TotalScore:       rep.TotalScore,
			Rank:             string(rep.Rank),
			KeyLearnings:     rep.KeyLearnings,
			Narrative:        rep.Narrative,
			StealthRemaining: rep.StealthRemaining,
			Detection:        rep.Detection,
			CompletedAt:      rep.CompletedAt.Format(time.RFC3339),
		}
		for _, phase := range rep.Phases {
			result.Phases = append(result.Phases, ReportPhase{
				Phase:         string(phase.Phase),
				ComponentID:   phase.ComponentID,
				ComponentName: phase.ComponentName,
				Score:         phase.Score,
				Rank:          string(phase.Rank),
			})
		}
		return nil, result, nil
	}
}
