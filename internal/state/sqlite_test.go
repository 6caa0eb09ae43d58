package state

import (
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_Migrate(t *testing.T) {
	store := setupTestStore(t)

	for _, table := range []string{"runs", "artifacts"} {
		rows, err := store.db.Query("SELECT 1 FROM " + table + " LIMIT 1")
		if err != nil {
			t.Errorf("table %s does not exist: %v", table, err)
			continue
		}
		rows.Close()
	}

	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("failed to get migration version: %v", err)
	}
	if version < 1 {
		t.Errorf("migration version = %d, want >= 1", version)
	}
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("dev")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if run.Status != RunStatusRunning {
		t.Errorf("new run status = %s, want %s", run.Status, RunStatusRunning)
	}

	if err := store.CompleteRun(run.ID, RunStatusCompleted, ""); err != nil {
		t.Fatalf("failed to complete run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Status != RunStatusCompleted {
		t.Errorf("run status = %s, want %s", got.Status, RunStatusCompleted)
	}
	if got.CompletedAt == nil {
		t.Error("completed run has no completion time")
	}
	if got.Error != "" {
		t.Errorf("completed run has error %q", got.Error)
	}
}

func TestSQLiteStore_CompleteRun_Failed(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("dev")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if err := store.CompleteRun(run.ID, RunStatusFailed, "validation failed"); err != nil {
		t.Fatalf("failed to fail run: %v", err)
	}

	got, err := store.GetRun(run.ID)
	if err != nil {
		t.Fatalf("failed to get run: %v", err)
	}
	if got.Error != "validation failed" {
		t.Errorf("run error = %q, want %q", got.Error, "validation failed")
	}
}

func TestSQLiteStore_CompleteRun_NotFound(t *testing.T) {
	store := setupTestStore(t)

	if err := store.CompleteRun("does-not-exist", RunStatusCompleted, ""); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestSQLiteStore_GetLatestRun(t *testing.T) {
	store := setupTestStore(t)

	latest, err := store.GetLatestRun("dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil run for empty store, got %+v", latest)
	}

	first, err := store.CreateRun("dev")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	// started_at must differ for ordering
	if _, err := store.db.Exec(`UPDATE runs SET started_at = ? WHERE id = ?`,
		time.Now().UTC().Add(-time.Minute), first.ID); err != nil {
		t.Fatalf("failed to backdate run: %v", err)
	}

	second, err := store.CreateRun("dev")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	if _, err := store.CreateRun("prod"); err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	latest, err = store.GetLatestRun("dev")
	if err != nil {
		t.Fatalf("failed to get latest run: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Errorf("latest run = %+v, want id %s", latest, second.ID)
	}
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := setupTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := store.CreateRun("dev"); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
	}

	runs, err := store.ListRuns(3)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("ListRuns(3) returned %d runs", len(runs))
	}
}

func TestSQLiteStore_Artifacts(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.CreateRun("dev")
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	art, err := store.SaveArtifact(run.ID, "Retail", "json", "compiled/Retail.json", "abc123")
	if err != nil {
		t.Fatalf("failed to save artifact: %v", err)
	}
	if art.ID == "" {
		t.Error("artifact has no id")
	}
	if _, err := store.SaveArtifact(run.ID, "Retail", "tmdl", "compiled/Retail.tmdl", "def456"); err != nil {
		t.Fatalf("failed to save artifact: %v", err)
	}

	arts, err := store.ListArtifacts(run.ID)
	if err != nil {
		t.Fatalf("failed to list artifacts: %v", err)
	}
	if len(arts) != 2 {
		t.Fatalf("ListArtifacts returned %d artifacts, want 2", len(arts))
	}

	latest, err := store.LatestArtifact("Retail", "json")
	if err != nil {
		t.Fatalf("failed to get latest artifact: %v", err)
	}
	if latest == nil || latest.Digest != "abc123" {
		t.Errorf("latest artifact = %+v, want digest abc123", latest)
	}

	missing, err := store.LatestArtifact("Missing", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil artifact, got %+v", missing)
	}
}
