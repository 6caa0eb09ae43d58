package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/engine"
)

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	Watch bool
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile model definitions into artifacts",
		Long: `Load, validate, and compile every model definition in the models directory.

Each model produces a JSON document and a TMDL document in the output
directory. Validation findings abort the build before anything is written.`,
		Example: `  # Compile all models
  weft compile

  # Recompile on every change
  weft compile --watch`,
		Aliases: []string{"build"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompile(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Watch the models directory and recompile on change")

	return cmd
}

func runCompile(cmd *cobra.Command, opts *CompileOptions) error {
	cfg := getConfig()

	eng, err := createEngine(cmd, cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := compileOnce(cmd, eng); err != nil {
		if !opts.Watch {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}

	if opts.Watch {
		return watchAndCompile(cmd, eng, cfg.ModelsDir)
	}
	return nil
}

func compileOnce(cmd *cobra.Command, eng *engine.Engine) error {
	start := time.Now()

	result, err := eng.Build(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range result.Models {
		fmt.Fprintf(out, "  compiled %s (%d tables, %d model measures)\n", m.Name, m.Tables, m.Measures)
		for _, art := range m.Artifacts {
			fmt.Fprintf(out, "    %s\n", art.Path)
		}
	}
	fmt.Fprintf(out, "\nCompiled %d model(s) in %s (run %s)\n",
		len(result.Models), time.Since(start).Round(time.Millisecond), result.RunID)

	return nil
}

// watchAndCompile recompiles whenever a definition file changes. Events are
// debounced so editors that write multiple times trigger one build.
func watchAndCompile(cmd *cobra.Command, eng *engine.Engine, modelsDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, modelsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", modelsDir, err)
	}

	logger := config.GetLogger(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", modelsDir)

	var debounceTimer *time.Timer

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			ext := filepath.Ext(event.Name)
			if ext != ".yaml" && ext != ".yml" {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				logger.Debug("definition changed", "file", event.Name)
				if err := compileOnce(cmd, eng); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

func watchDirRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
