// Package engine orchestrates loading, validating, and compiling semantic
// model definitions into deployable artifacts.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/weftlabs/weft/internal/state"
)

// Engine coordinates the load, validate, compile, emit pipeline and records
// each run in the state store.
type Engine struct {
	store       state.Store
	modelsDir   string
	outputDir   string
	environment string
	logger      *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// ModelsDir is the path to the model definitions directory
	ModelsDir string
	// OutputDir is the directory compiled artifacts are written to
	OutputDir string
	// StatePath is the path to the SQLite state database
	StatePath string
	// Environment is the current environment (dev, staging, prod)
	Environment string
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates a new engine and opens the state store.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine", "models_dir", cfg.ModelsDir, "environment", cfg.Environment)

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state store: %w", err)
	}

	env := cfg.Environment
	if env == "" {
		env = "dev"
	}

	return &Engine{
		store:       store,
		modelsDir:   cfg.ModelsDir,
		outputDir:   cfg.OutputDir,
		environment: env,
		logger:      logger,
	}, nil
}

// Store exposes the state store for commands that report run history.
func (e *Engine) Store() state.Store {
	return e.store
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}
