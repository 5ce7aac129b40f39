package playthrough

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/louisbranch/killchain/internal/services/game/app"
)

// AssertionMode controls whether failed expectations abort the run.
type AssertionMode int

const (
	// AssertionStrict aborts the run on a failed expectation.
	AssertionStrict AssertionMode = iota
	// AssertionWarn logs failed expectations and keeps going.
	AssertionWarn
)

// Assertions evaluates scripted expectations per the configured mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
}

// Assertf reports a failed expectation. Strict mode returns an error,
// warn mode logs and continues.
func (a Assertions) Assertf(format string, args ...any) error {
	if a.Mode == AssertionWarn {
		if a.Logger != nil {
			a.Logger.Printf("assertion failed: "+format, args...)
		}
		return nil
	}
	return fmt.Errorf(format, args...)
}

// Config controls playthrough execution.
type Config struct {
	Timeout    time.Duration
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Runner executes Lua playthroughs against the game service.
type Runner struct {
	svc        *app.Service
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
}

// runState tracks progress through one playthrough.
type runState struct {
	sessionID string
}

// NewRunner prepares a playthrough runner over a game service.
func NewRunner(svc *app.Service, cfg Config) (*Runner, error) {
	if svc == nil {
		return nil, errors.New("game service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Runner{
		svc:        svc,
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}, nil
}

// RunFile loads and executes a playthrough file.
func RunFile(ctx context.Context, svc *app.Service, cfg Config, path string) error {
	runner, err := NewRunner(svc, cfg)
	if err != nil {
		return err
	}
	run, err := LoadFromFile(path)
	if err != nil {
		return err
	}
	return runner.Run(ctx, run)
}

// Run executes the playthrough steps in order.
func (r *Runner) Run(ctx context.Context, run *Playthrough) error {
	if run == nil {
		return errors.New("playthrough is required")
	}
	r.logf("playthrough start: %s (%d steps)", run.Name, len(run.Steps))
	state := &runState{}

	for index, step := range run.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(run.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(run.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("playthrough done: %s", run.Name)
	return nil
}

func (r *Runner) failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
