// Package mcp parses MCP command flags and starts the stdio server.
package mcp

import (
	"context"
	"flag"
	"time"

	servercmd "github.com/louisbranch/killchain/internal/cmd/server"
	entrypoint "github.com/louisbranch/killchain/internal/platform/cmd"
	"github.com/louisbranch/killchain/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	DBPath        string        `env:"KILLCHAIN_DB_PATH"`
	GeminiAPIKey  string        `env:"KILLCHAIN_GEMINI_API_KEY"`
	GeminiModel   string        `env:"KILLCHAIN_GEMINI_MODEL"`
	SweepInterval time.Duration `env:"KILLCHAIN_SWEEP_INTERVAL" envDefault:"1h"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (empty keeps sessions in memory)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server on stdio.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		svc, closeStore, err := servercmd.BuildService(ctx, servercmd.Config{
			DBPath:       cfg.DBPath,
			GeminiAPIKey: cfg.GeminiAPIKey,
			GeminiModel:  cfg.GeminiModel,
		})
		if err != nil {
			return err
		}
		defer closeStore()

		if cfg.SweepInterval > 0 {
			go svc.SweepExpired(ctx, cfg.SweepInterval)
		}
		return service.Run(ctx, svc)
	})
}
