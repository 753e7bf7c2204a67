package storage

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/swingup/internal/dynamo"
)

func sampleTrace() Trace {
	trs := []dynamo.Transition{
		{Step: 0, Action: 1, Reward: 0.1, Next: dynamo.State{0.01, 0.1, math.Pi - 0.3, -0.4}},
		{Step: 1, Action: -0.25, Reward: 0.2, Next: dynamo.State{0.02, 0.1 / 3, -3.1, 1e-9}},
	}
	return TraceFromTransitions(trs, 0.1)
}

func backends(t *testing.T) map[string]Store {
	dir := t.TempDir()
	file, err := NewStore("file", filepath.Join(dir, "files"))
	if err != nil {
		t.Fatal(err)
	}
	sqlite, err := NewStore("sqlite", filepath.Join(dir, "db"))
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{"file": file, "sqlite": sqlite}
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Init(ctx); err != nil {
				t.Fatalf("init failed: %v", err)
			}
			defer st.Close()

			meta := RunMetadata{
				Controller: "swingup",
				RewardMode: "default",
				Seed:       42,
				Dt:         0.1,
				Steps:      2,
				Return:     0.3,
				Metrics:    map[string]float64{"upright_fraction": 0.5},
			}
			runID, err := st.Save(ctx, meta, sampleTrace())
			if err != nil {
				t.Fatalf("save failed: %v", err)
			}
			if runID == "" {
				t.Fatal("expected non-empty run id")
			}

			got, err := st.Load(ctx, runID)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if got.ID != runID || got.Controller != "swingup" || got.Seed != 42 {
				t.Errorf("unexpected metadata %+v", got)
			}
			if got.Metrics["upright_fraction"] != 0.5 {
				t.Errorf("metrics not stored: %v", got.Metrics)
			}
			if got.Timestamp.IsZero() {
				t.Error("timestamp should be set on save")
			}

			trace, err := st.LoadTrace(ctx, runID)
			if err != nil {
				t.Fatalf("load trace failed: %v", err)
			}
			want := sampleTrace()
			if len(trace) != len(want) {
				t.Fatalf("expected %d rows, got %d", len(want), len(trace))
			}
			for i := range want {
				if trace[i] != want[i] {
					t.Errorf("row %d: got %+v, want %+v", i, trace[i], want[i])
				}
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Init(ctx); err != nil {
				t.Fatal(err)
			}
			defer st.Close()

			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, ctrl := range []string{"random", "none", "swingup"} {
				meta := RunMetadata{Controller: ctrl, Timestamp: base.Add(time.Duration(i) * time.Minute)}
				if _, err := st.Save(ctx, meta, nil); err != nil {
					t.Fatal(err)
				}
			}

			runs, err := st.List(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(runs) != 3 {
				t.Fatalf("expected 3 runs, got %d", len(runs))
			}
			if runs[0].Controller != "random" || runs[2].Controller != "swingup" {
				t.Errorf("runs not in timestamp order: %v, %v", runs[0].Controller, runs[2].Controller)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Init(ctx); err != nil {
				t.Fatal(err)
			}
			defer st.Close()

			id, err := st.Save(ctx, RunMetadata{ID: "fixed", Return: 1}, sampleTrace())
			if err != nil {
				t.Fatal(err)
			}
			if _, err := st.Save(ctx, RunMetadata{ID: id, Return: 2}, sampleTrace()[:1]); err != nil {
				t.Fatal(err)
			}

			runs, err := st.List(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(runs) != 1 || runs[0].Return != 2 {
				t.Errorf("expected one updated run, got %+v", runs)
			}
			trace, err := st.LoadTrace(ctx, id)
			if err != nil {
				t.Fatal(err)
			}
			if len(trace) != 1 {
				t.Errorf("expected trace to be replaced, got %d rows", len(trace))
			}
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Init(ctx); err != nil {
				t.Fatal(err)
			}
			defer st.Close()

			if _, err := st.Load(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
				t.Errorf("Load: expected ErrRunNotFound, got %v", err)
			}
			if _, err := st.LoadTrace(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
				t.Errorf("LoadTrace: expected ErrRunNotFound, got %v", err)
			}
		})
	}
}

func TestFileStoreLayout(t *testing.T) {
	dir := t.TempDir()
	st := NewFileStore(dir)
	id, err := st.Save(context.Background(), RunMetadata{}, sampleTrace())
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range []string{metadataFile, traceFile} {
		if _, err := os.Stat(filepath.Join(dir, id, f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}

	if _, err := st.Load(context.Background(), "../escape"); err == nil {
		t.Error("expected error for a path-like run id")
	}
}

func TestFileStoreListMissingDir(t *testing.T) {
	st := NewFileStore(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestSQLiteNotInitialized(t *testing.T) {
	st := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	if _, err := st.List(context.Background()); err == nil {
		t.Error("expected error before Init")
	}
	if err := st.Close(); err != nil {
		t.Errorf("close before init: %v", err)
	}
}

func TestNewStoreUnknown(t *testing.T) {
	if _, err := NewStore("redis", t.TempDir()); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestTraceColumn(t *testing.T) {
	trace := sampleTrace()

	steps, err := trace.Column("step")
	if err != nil {
		t.Fatal(err)
	}
	if steps[0] != 1 || steps[1] != 2 {
		t.Errorf("steps %v", steps)
	}

	times, _ := trace.Column("time")
	if math.Abs(times[1]-0.2) > 1e-12 {
		t.Errorf("time %v", times)
	}

	if _, err := trace.Column("bogus"); err == nil {
		t.Error("expected error for unknown column")
	}
}
