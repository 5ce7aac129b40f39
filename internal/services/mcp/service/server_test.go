package service

import (
	"testing"

	"github.com/louisbranch/killchain/internal/services/game/app"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
	"github.com/louisbranch/killchain/internal/services/game/scenario"
	"github.com/louisbranch/killchain/internal/services/game/storage/memory"
	"github.com/louisbranch/killchain/internal/services/mcp/domain"
)

func TestNew(t *testing.T) {
	t.Run("requires service", func(t *testing.T) {
		if _, err := New(nil); err == nil {
			t.Fatal("expected error for nil service")
		}
	})

	t.Run("registers handlers", func(t *testing.T) {
		svc := app.NewService(memory.New(), story.DefaultCatalog(), scenario.NewStatic())
		server, err := New(svc)
		if err != nil {
			t.Fatalf("new server: %v", err)
		}
		if server.mcpServer == nil {
			t.Fatal("expected configured MCP server")
		}
	})
}

func TestServerContextState(t *testing.T) {
	svc := app.NewService(memory.New(), story.DefaultCatalog(), scenario.NewStatic())
	server, err := New(svc)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	if got := server.getContext(); got.SessionID != "" {
		t.Errorf("expected empty initial context, got %+v", got)
	}
	server.setContext(domain.Context{SessionID: "sess-1"})
	if got := server.getContext(); got.SessionID != "sess-1" {
		t.Errorf("expected stored session, got %+v", got)
	}
}

func TestServeRejectsUnconfigured(t *testing.T) {
	var server *Server
	if err := server.Serve(t.Context()); err == nil {
		t.Fatal("expected error for nil server")
	}
}
