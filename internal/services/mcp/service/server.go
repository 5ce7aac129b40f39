// Package service hosts the MCP server for the game: tool and resource
// registration plus the stdio runtime.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/killchain/internal/services/game/app"
	"github.com/louisbranch/killchain/internal/services/mcp/domain"
)

const (
	// serverName identifies the MCP server implementation.
	serverName = "killchain"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Server hosts the MCP server over the game application service.
type Server struct {
	mcpServer *mcp.Server
	svc       *app.Service

	ctx   domain.Context
	ctxMu sync.RWMutex
}

// New creates a configured MCP server with tool and resource handlers
// bound to the game service.
func New(svc *app.Service) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("game service is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler:  completionHandler,
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})

	server := &Server{mcpServer: mcpServer, svc: svc}

	mcp.AddTool(mcpServer, domain.SessionStartTool(), domain.SessionStartHandler(svc, server.setContext))
	mcp.AddTool(mcpServer, domain.SessionGetTool(), domain.SessionGetHandler(svc, server.getContext))
	mcp.AddTool(mcpServer, domain.PhaseCompleteTool(), domain.PhaseCompleteHandler(svc, server.getContext))
	mcp.AddTool(mcpServer, domain.ActionApplyTool(), domain.ActionApplyHandler(svc, server.getContext))
	mcp.AddTool(mcpServer, domain.ActionLogTool(), domain.ActionLogHandler(svc, server.getContext))
	mcp.AddTool(mcpServer, domain.ScenarioGetTool(), domain.ScenarioGetHandler(svc, server.getContext))
	mcp.AddTool(mcpServer, domain.SessionReportTool(), domain.SessionReportHandler(svc, server.getContext))
	mcp.AddTool(mcpServer, domain.SetContextTool(), domain.SetContextHandler(svc, server.setContext))

	mcpServer.AddResource(domain.StoryListResource(), domain.StoryListResourceHandler(svc))
	mcpServer.AddResource(domain.ComponentListResource(), domain.ComponentListResourceHandler(svc))

	return server, nil
}

// setContext updates the server's context state.
func (s *Server) setContext(ctx domain.Context) {
	if s == nil {
		return
	}
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	s.ctx = ctx
}

// getContext returns the server's current context state.
func (s *Server) getContext() domain.Context {
	if s == nil {
		return domain.Context{}
	}
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	return s.ctx
}

// completionHandler handles completion/complete requests with empty results.
func completionHandler(ctx context.Context, req *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

// resourceSubscribeHandler accepts resource subscriptions with a valid URI.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// resourceUnsubscribeHandler accepts resource unsubscriptions with a valid URI.
func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}
