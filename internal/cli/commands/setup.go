package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/engine"
)

// getConfig returns the current configuration, falling back to environment
// variables when no config was loaded (for example in tests).
func getConfig() *config.Config {
	if cfg := config.Current(); cfg != nil {
		return cfg
	}

	return &config.Config{
		ModelsDir:   getEnvOrDefault("WEFT_MODELS_DIR", config.DefaultModelsDir),
		OutputDir:   getEnvOrDefault("WEFT_OUTPUT_DIR", config.DefaultOutputDir),
		StatePath:   getEnvOrDefault("WEFT_STATE_PATH", config.DefaultStateFile),
		Environment: getEnvOrDefault("WEFT_ENVIRONMENT", config.DefaultEnv),
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// createEngine builds an engine from the configuration, creating the state
// directory if needed.
func createEngine(cmd *cobra.Command, cfg *config.Config) (*engine.Engine, error) {
	if err := ensureStateDir(cfg.StatePath); err != nil {
		return nil, err
	}

	return engine.New(engine.Config{
		ModelsDir:   cfg.ModelsDir,
		OutputDir:   cfg.OutputDir,
		StatePath:   cfg.StatePath,
		Environment: cfg.Environment,
		Logger:      config.GetLogger(cmd.Context()),
	})
}

func ensureStateDir(statePath string) error {
	if statePath == "" || statePath == ":memory:" {
		return nil
	}
	if dir := filepath.Dir(statePath); dir != "." {
		return os.MkdirAll(dir, 0o750)
	}
	return nil
}
