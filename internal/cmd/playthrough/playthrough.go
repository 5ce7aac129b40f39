// Package playthrough parses playthrough command flags and runs scripted
// sessions from Lua files.
package playthrough

import (
	"context"
	"errors"
	"flag"
	"time"

	servercmd "github.com/louisbranch/killchain/internal/cmd/server"
	entrypoint "github.com/louisbranch/killchain/internal/platform/cmd"
	"github.com/louisbranch/killchain/internal/tools/playthrough"
)

// Config holds playthrough command configuration.
type Config struct {
	DBPath       string        `env:"KILLCHAIN_DB_PATH"`
	GeminiAPIKey string        `env:"KILLCHAIN_GEMINI_API_KEY"`
	GeminiModel  string        `env:"KILLCHAIN_GEMINI_MODEL"`
	Timeout      time.Duration `env:"KILLCHAIN_PLAYTHROUGH_TIMEOUT" envDefault:"10s"`
	Warn         bool
	Verbose      bool
	Files        []string
}

// ParseConfig parses environment and flags into a Config. Positional
// arguments are the Lua files to run.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path (empty keeps sessions in memory)")
	fs.BoolVar(&cfg.Warn, "warn", false, "Log failed expectations instead of aborting")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log each step")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Files = fs.Args()
	return cfg, nil
}

// Run executes each playthrough file in order.
func Run(ctx context.Context, cfg Config) error {
	if len(cfg.Files) == 0 {
		return errors.New("at least one playthrough file is required")
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePlaythrough, func(ctx context.Context) error {
		svc, closeStore, err := servercmd.BuildService(ctx, servercmd.Config{
			DBPath:       cfg.DBPath,
			GeminiAPIKey: cfg.GeminiAPIKey,
			GeminiModel:  cfg.GeminiModel,
		})
		if err != nil {
			return err
		}
		defer closeStore()

		runnerCfg := playthrough.DefaultConfig()
		runnerCfg.Timeout = cfg.Timeout
		runnerCfg.Verbose = cfg.Verbose
		if cfg.Warn {
			runnerCfg.Assertions = playthrough.AssertionWarn
		}
		for _, path := range cfg.Files {
			if err := playthrough.RunFile(ctx, svc, runnerCfg, path); err != nil {
				return err
			}
		}
		return nil
	})
}
