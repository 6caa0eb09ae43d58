package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/weftlabs/weft/internal/compile"
	"github.com/weftlabs/weft/internal/loader"
	"github.com/weftlabs/weft/internal/model"
	"github.com/weftlabs/weft/internal/state"
	"github.com/weftlabs/weft/internal/validate"
)

// ModelResult summarizes the compilation of a single model.
type ModelResult struct {
	Name      string
	Tables    int
	Measures  int
	Artifacts []*state.Artifact
}

// BuildResult summarizes a full build run.
type BuildResult struct {
	RunID  string
	Models []ModelResult
}

// Build loads every model definition, validates it, compiles it, and writes
// the JSON and TMDL artifacts to the output directory. Validation findings
// abort the build before anything is written.
func (e *Engine) Build(ctx context.Context) (*BuildResult, error) {
	models, err := loader.LoadDir(e.modelsDir)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no model definitions found in %s", e.modelsDir)
	}

	for _, m := range models {
		if report := validate.Validate(m); !report.OK() {
			return nil, report
		}
	}

	run, err := e.store.CreateRun(e.environment)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		e.failRun(run.ID, err)
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	results := make([]ModelResult, len(models))

	eg, egctx := errgroup.WithContext(ctx)
	for i, m := range models {
		i, m := i, m
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			res, err := e.buildModel(run.ID, m)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		e.failRun(run.ID, err)
		return nil, err
	}

	if err := e.store.CompleteRun(run.ID, state.RunStatusCompleted, ""); err != nil {
		return nil, err
	}

	e.logger.Info("build completed", "run_id", run.ID, "models", len(models))
	return &BuildResult{RunID: run.ID, Models: results}, nil
}

func (e *Engine) buildModel(runID string, m *model.Model) (ModelResult, error) {
	doc := compile.Compile(m)

	res := ModelResult{
		Name:     m.Name,
		Tables:   len(doc.Tables),
		Measures: len(doc.Measures),
	}

	var jsonBuf bytes.Buffer
	if err := doc.EncodeJSON(&jsonBuf); err != nil {
		return res, fmt.Errorf("model %s: %w", m.Name, err)
	}
	var tmdlBuf bytes.Buffer
	if err := doc.WriteTMDL(&tmdlBuf); err != nil {
		return res, fmt.Errorf("model %s: %w", m.Name, err)
	}

	for _, out := range []struct {
		format string
		ext    string
		data   []byte
	}{
		{"json", ".json", jsonBuf.Bytes()},
		{"tmdl", ".tmdl", tmdlBuf.Bytes()},
	} {
		path := filepath.Join(e.outputDir, m.Name+out.ext)
		if err := os.WriteFile(path, out.data, 0o644); err != nil {
			return res, fmt.Errorf("model %s: failed to write %s: %w", m.Name, path, err)
		}
		sum := sha256.Sum256(out.data)
		art, err := e.store.SaveArtifact(runID, m.Name, out.format, path, hex.EncodeToString(sum[:]))
		if err != nil {
			return res, fmt.Errorf("model %s: %w", m.Name, err)
		}
		res.Artifacts = append(res.Artifacts, art)
		e.logger.Debug("artifact written", "model", m.Name, "path", path, "digest", art.Digest)
	}

	return res, nil
}

func (e *Engine) failRun(runID string, cause error) {
	if err := e.store.CompleteRun(runID, state.RunStatusFailed, cause.Error()); err != nil {
		e.logger.Warn("failed to record run failure", "run_id", runID, "error", err)
	}
}

// ValidationResult pairs a model with its validation report.
type ValidationResult struct {
	Model  *model.Model
	Report *validate.Report
}

// Validate loads and validates every model definition without compiling.
func (e *Engine) Validate(ctx context.Context) ([]ValidationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	models, err := loader.LoadDir(e.modelsDir)
	if err != nil {
		return nil, err
	}

	results := make([]ValidationResult, 0, len(models))
	for _, m := range models {
		results = append(results, ValidationResult{Model: m, Report: validate.Validate(m)})
	}
	return results, nil
}

// Load loads every model definition without validating or compiling.
func (e *Engine) Load() ([]*model.Model, error) {
	return loader.LoadDir(e.modelsDir)
}
