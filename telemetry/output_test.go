package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/icing/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("empty dir should disable output, got %v, %v", om, err)
	}
	// All methods are nil-safe.
	if err := om.WriteIteration(IterationStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteSummary(RunSummary{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager should report empty dir")
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for it := 1; it <= 3; it++ {
		s := IterationStats{Iteration: it, Droplets: it * 100}
		s.MinTemp = 4.5
		if err := om.WriteIteration(s); err != nil {
			t.Fatalf("WriteIteration: %v", err)
		}
	}
	if err := om.WritePerf(PerfStats{}, 3); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WriteSummary(RunSummary{Seed: 9, Reason: "ice_detected", IceFormed: true, DropletsAtIce: 250}); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkFirstIce, Iteration: 3, Droplets: 300}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "iterations.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "iteration,droplets,applied,removed,spilled,min_temp") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Count(string(data), "iteration,") != 1 {
		t.Error("header written more than once")
	}

	summary, err := os.ReadFile(filepath.Join(dir, "summary.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(summary), "ice_detected") {
		t.Errorf("summary missing reason: %s", summary)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "perf.csv")); err != nil {
		t.Errorf("perf.csv missing: %v", err)
	}
	bms, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(bms), "type,iteration,droplets,description\nfirst_ice,3,300,") {
		t.Errorf("unexpected bookmarks.csv:\n%s", bms)
	}
}

func TestCSVLogHeaderOnce(t *testing.T) {
	type row struct {
		A int     `csv:"a"`
		B float64 `csv:"b"`
	}
	path := filepath.Join(t.TempDir(), "log.csv")
	l, err := CreateCSVLog(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := l.Write([]row{{A: i, B: 0.5}}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "a,b\n0,0.5\n1,0.5\n2,0.5\n"
	if string(data) != want {
		t.Errorf("got %q, want %q", data, want)
	}
}
