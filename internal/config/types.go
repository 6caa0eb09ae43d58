// Package config provides configuration management for the weft CLI.
//
// Configuration is loaded from four layers with increasing precedence:
// built-in defaults, a weft.yaml project file, WEFT_-prefixed environment
// variables, and explicitly set command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot string `koanf:"-"`
	ModelsDir   string `koanf:"models_dir"`
	OutputDir   string `koanf:"output_dir"`
	StatePath   string `koanf:"state_path"`
	Environment string `koanf:"environment"`
	Workspace   string `koanf:"workspace"`
	Verbose     bool   `koanf:"verbose"`

	Environments map[string]EnvConfig `koanf:"environments"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	ModelsDir string `koanf:"models_dir"`
	OutputDir string `koanf:"output_dir"`
	Workspace string `koanf:"workspace"`
}

// Default configuration values.
const (
	DefaultModelsDir = "models"
	DefaultOutputDir = "compiled"
	DefaultStateFile = ".weft/state.db"
	DefaultEnv       = "dev"
)
