package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestOpenAppliesMigrations(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	v, err := db.Version(ctx)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("version = %d, want %d", v, len(migrations))
	}
	// Reapplying is a no-op.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	var mode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode); err != nil || mode != "wal" {
		t.Errorf("journal_mode = %q, %v", mode, err)
	}
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	id, err := NewRunRepository(db).Create(ctx, Run{Kind: KindRecognize, Success: true})
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	if r, err := NewRunRepository(db).Get(ctx, id); err != nil || r == nil {
		t.Errorf("Get after reopen = %v, %v", r, err)
	}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestDB(t))

	id, err := repo.Create(ctx, Run{
		Kind:         KindSolve,
		Success:      true,
		KociembaCode: strPtr("UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB"),
		RawSolution:  strPtr("R U R' U'"),
		StepCount:    intPtr(4),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated run id")
	}

	run, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run == nil {
		t.Fatal("run not found")
	}
	if run.Kind != KindSolve || !run.Success {
		t.Errorf("unexpected run %+v", run)
	}
	if run.StepCount == nil || *run.StepCount != 4 {
		t.Errorf("step count = %v, want 4", run.StepCount)
	}
	if run.Error != nil {
		t.Errorf("error = %q, want nil", *run.Error)
	}
}

func TestGetMissing(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	run, err := repo.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil run, got %+v", run)
	}
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestDB(t))
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	for i, kind := range []string{KindRecognize, KindSolve, KindSolve} {
		_, err := repo.Create(ctx, Run{
			Kind:      kind,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Success:   true,
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d runs, want 3", len(all))
	}
	if !all[0].CreatedAt.After(all[2].CreatedAt) {
		t.Error("runs not ordered newest first")
	}

	solves, err := repo.List(ctx, KindSolve, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(solves) != 2 {
		t.Errorf("got %d solves, want 2", len(solves))
	}

	limited, err := repo.List(ctx, "", 1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d runs, want 1", len(limited))
	}
}

func TestLastSolutionAndStats(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestDB(t))
	code := "UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB"
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	runs := []Run{
		{Kind: KindSolve, CreatedAt: base, Success: true, KociembaCode: strPtr(code), RawSolution: strPtr("R"), StepCount: intPtr(2)},
		{Kind: KindSolve, CreatedAt: base.Add(time.Minute), Success: true, KociembaCode: strPtr(code), RawSolution: strPtr("U"), StepCount: intPtr(4)},
		{Kind: KindSolve, CreatedAt: base.Add(2 * time.Minute), Success: false, KociembaCode: strPtr(code), Error: strPtr("boom")},
	}
	for _, r := range runs {
		if _, err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	raw, err := repo.LastSolution(ctx, code)
	if err != nil {
		t.Fatalf("LastSolution: %v", err)
	}
	if raw != "U" {
		t.Errorf("LastSolution = %q, want U", raw)
	}

	none, err := repo.LastSolution(ctx, "other")
	if err != nil || none != "" {
		t.Errorf("LastSolution(other) = %q, %v", none, err)
	}

	stats, err := repo.SolveStats(ctx)
	if err != nil {
		t.Fatalf("SolveStats: %v", err)
	}
	if stats.Solves != 3 || stats.Succeeded != 2 || stats.AverageSteps != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestDB(t))
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := repo.Create(ctx, Run{Kind: KindRecognize, CreatedAt: old, Success: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(ctx, Run{Kind: KindRecognize, Success: true}); err != nil {
		t.Fatal(err)
	}

	n, err := repo.Prune(ctx, old.Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
}
