package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

var (
	k              = koanf.New(".")
	configFileUsed string
)

// Walking up more levels than this while looking for weft.yaml means we
// are almost certainly outside any project.
const maxUpwardSearchLevels = 10

// findConfigFile returns the config file to use, searching the standard
// names when no explicit path is given.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"weft.yaml", "weft.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findProjectRootUpward walks up from dir looking for a directory that
// contains weft.yaml or weft.yml. Returns dir itself if none is found.
func findProjectRootUpward(dir string) string {
	current := dir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range []string{"weft.yaml", "weft.yml"} {
			if _, err := os.Stat(filepath.Join(current, name)); err == nil {
				return current
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return dir
}

// inferProjectRoot determines the project root from flags or the working
// directory. A --models-dir flag anchors the root at the directory that
// contains the models directory.
func inferProjectRoot(flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("models-dir") {
		if v, _ := flags.GetString("models-dir"); v != "" {
			if abs, err := filepath.Abs(v); err == nil {
				return filepath.Dir(abs)
			}
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return findProjectRootUpward(cwd)
}

func resolvePathRelativeTo(path, base string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(flags)

	// Paths given as flags are relative to the CWD, not the project root.
	// Convert them now so the resolution step below cannot re-anchor them.
	var flagModelsDir, flagOutputDir, flagStatePath string
	if flags != nil {
		if flags.Changed("models-dir") {
			if v, _ := flags.GetString("models-dir"); v != "" {
				flagModelsDir, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("output-dir") {
			if v, _ := flags.GetString("output-dir"); v != "" {
				flagOutputDir, _ = filepath.Abs(v)
			}
		}
		if flags.Changed("state") {
			if v, _ := flags.GetString("state"); v != "" {
				flagStatePath, _ = filepath.Abs(v)
			}
		}
	}

	// An explicit config file pins the project root to its directory.
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"models_dir":  DefaultModelsDir,
		"output_dir":  DefaultOutputDir,
		"state_path":  DefaultStateFile,
		"environment": DefaultEnv,
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		for _, name := range []string{"weft.yaml", "weft.yml"} {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Environment variables: WEFT_MODELS_DIR -> models_dir
	if err := k.Load(env.Provider("WEFT_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "WEFT_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			// The CLI uses --state for brevity; the config key is state_path.
			if key == "state" {
				return "state_path", posflag.FlagVal(flags, f)
			}
			if key == "env" {
				return "environment", posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot

	if flagModelsDir != "" {
		cfg.ModelsDir = flagModelsDir
	} else {
		cfg.ModelsDir = resolvePathRelativeTo(cfg.ModelsDir, projectRoot)
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	} else {
		cfg.OutputDir = resolvePathRelativeTo(cfg.OutputDir, projectRoot)
	}
	if flagStatePath != "" {
		cfg.StatePath = flagStatePath
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}

	// Environment-specific overrides
	if cfg.Environment != "" && cfg.Environments != nil {
		if envCfg, ok := cfg.Environments[cfg.Environment]; ok {
			if envCfg.ModelsDir != "" && flagModelsDir == "" {
				cfg.ModelsDir = resolvePathRelativeTo(envCfg.ModelsDir, projectRoot)
			}
			if envCfg.OutputDir != "" && flagOutputDir == "" {
				cfg.OutputDir = resolvePathRelativeTo(envCfg.OutputDir, projectRoot)
			}
			if envCfg.Workspace != "" {
				cfg.Workspace = envCfg.Workspace
			}
		}
	}

	SetCurrent(&cfg)

	return &cfg, nil
}

// ConfigFileUsed returns the path to the config file being used, if any.
func ConfigFileUsed() string {
	return configFileUsed
}
