package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/killchain/internal/services/game/app"
)

// Context holds the default session for subsequent tool calls so clients
// do not have to repeat the session id on every invocation.
type Context struct {
	SessionID string
}

// SetContextInput represents the MCP tool input for setting context.
type SetContextInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier (required)"`
}

// SetContextResult represents the MCP tool output for setting context.
type SetContextResult struct {
	SessionID string `json:"session_id" jsonschema:"session identifier now used as default"`
}

// SetContextTool defines the MCP tool schema for setting context.
func SetContextTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "set_context",
		Description: "Sets the default session for subsequent tool calls so session_id can be omitted.",
	}
}

// SetContextHandler validates the session and stores it as the default.
func SetContextHandler(svc *app.Service, setContext func(Context)) mcp.ToolHandlerFor[SetContextInput, SetContextResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetContextInput) (*mcp.CallToolResult, SetContextResult, error) {
		sessionID := strings.TrimSpace(input.SessionID)
		if sessionID == "" {
			return nil, SetContextResult{}, fmt.Errorf("session_id is required")
		}
		if _, err := svc.GetSession(ctx, sessionID); err != nil {
			return nil, SetContextResult{}, fmt.Errorf("validate session: %w", err)
		}
		if setContext != nil {
			setContext(Context{SessionID: sessionID})
		}
		return nil, SetContextResult{SessionID: sessionID}, nil
	}
}

// resolveSessionID prefers the explicit id and falls back to the stored
// context.
func resolveSessionID(explicit string, getContext func() Context) (string, error) {
	sessionID := strings.TrimSpace(explicit)
	if sessionID == "" && getContext != nil {
		sessionID = getContext().SessionID
	}
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return sessionID, nil
}
