// Package server parses server command flags and starts the HTTP API.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	entrypoint "github.com/louisbranch/killchain/internal/platform/cmd"
	gamehttp "github.com/louisbranch/killchain/internal/services/game/api/http"
	"github.com/louisbranch/killchain/internal/services/game/app"
	"github.com/louisbranch/killchain/internal/services/game/domain/story"
	"github.com/louisbranch/killchain/internal/services/game/scenario"
	"github.com/louisbranch/killchain/internal/services/game/storage"
	"github.com/louisbranch/killchain/internal/services/game/storage/memory"
	"github.com/louisbranch/killchain/internal/services/game/storage/sqlite"
)

// Config holds server command configuration.
type Config struct {
	Port          int           `env:"KILLCHAIN_PORT" envDefault:"8080"`
	Addr          string        `env:"KILLCHAIN_ADDR"`
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
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The HTTP server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The HTTP server listen address (overrides -port)")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (empty keeps sessions in memory)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the game HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGame, func(ctx context.Context) error {
		svc, closeStore, err := BuildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				log.Printf("close store: %v", err)
			}
		}()

		if cfg.SweepInterval > 0 {
			go svc.SweepExpired(ctx, cfg.SweepInterval)
		}

		addr := cfg.Addr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Port)
		}
		server := &http.Server{
			Addr:    addr,
			Handler: otelhttp.NewHandler(gamehttp.NewHandler(svc), "game-api"),
		}

		errCh := make(chan error, 1)
		go func() {
			log.Printf("listening on %s", addr)
			errCh <- server.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	})
}

// BuildService wires the game service from configuration: the session
// store, the story catalog, and the scenario provider.
func BuildService(ctx context.Context, cfg Config) (*app.Service, func() error, error) {
	var store storage.Store
	if cfg.DBPath != "" {
		sqlStore, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		store = sqlStore
	} else {
		store = memory.New()
	}

	provider := NewProvider(ctx, cfg)
	svc := app.NewService(store, story.DefaultCatalog(), provider)
	return svc, store.Close, nil
}

// NewProvider builds the scenario provider. With a Gemini API key the
// generated content is primary and the built-in content is the
// fallback; without one the built-in content serves alone.
func NewProvider(ctx context.Context, cfg Config) scenario.Provider {
	static := scenario.NewStatic()
	if cfg.GeminiAPIKey == "" {
		return static
	}
	gemini, err := scenario.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Printf("gemini unavailable, using built-in scenarios: %v", err)
		return static
	}
	return scenario.NewResilient(gemini, static)
}
