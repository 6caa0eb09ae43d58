// Package state tracks compilation runs and emitted artifacts in SQLite.
package state

import "time"

// RunStatus represents the lifecycle state of a compilation run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents a single invocation of the compiler over a project.
type Run struct {
	ID          string
	Environment string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Artifact records a compiled output file and its content digest.
type Artifact struct {
	ID        string
	RunID     string
	Model     string
	Format    string
	Path      string
	Digest    string
	CreatedAt time.Time
}

// Store is the persistence interface for runs and artifacts.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(env string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	GetLatestRun(env string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	SaveArtifact(runID, model, format, path, digest string) (*Artifact, error)
	ListArtifacts(runID string) ([]*Artifact, error)
	LatestArtifact(model, format string) (*Artifact, error)
}
