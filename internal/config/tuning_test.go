package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/containment/internal/game"
)

func TestParseTuningOverlaysDefaults(t *testing.T) {
	cfg, err := ParseTuning([]byte("hazard_count: 3\nlevel_time_sec: 20\n"))
	if err != nil {
		t.Fatalf("ParseTuning: %v", err)
	}
	if cfg.HazardCount != 3 || cfg.LevelTimeSec != 20 {
		t.Errorf("overlay not applied: %+v", cfg)
	}
	if cfg.LevelsTotal != 5 || len(cfg.Kinds) != 5 {
		t.Errorf("defaults lost: levels=%d kinds=%d", cfg.LevelsTotal, len(cfg.Kinds))
	}
}

func TestParseTuningEmpty(t *testing.T) {
	cfg, err := ParseTuning(nil)
	if err != nil {
		t.Fatalf("ParseTuning(nil): %v", err)
	}
	if cfg.LevelTimeSec != game.DefaultConfig().LevelTimeSec {
		t.Errorf("LevelTimeSec = %d", cfg.LevelTimeSec)
	}
}

func TestParseTuningRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "hazard_cuont: 3\n"},
		{"invalid value", "lives_total: 0\n"},
		{"unknown kind", "kinds:\n  - kind: sticky\n    speed_min: 0.1\n    speed_max: 0.2\n    multiplier: 1\n"},
		{"bad yaml", "speed_table: [1, 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseTuning([]byte(tt.yaml)); err == nil {
				t.Error("ParseTuning accepted it")
			}
		})
	}

	_, err := ParseTuning([]byte("lives_total: 0\n"))
	if !errors.Is(err, game.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestMarshalTuningRoundTrip(t *testing.T) {
	cfg := game.DefaultConfig()
	cfg.SpeedTable = []float64{1, 2, 3}
	data, err := MarshalTuning(cfg)
	if err != nil {
		t.Fatalf("MarshalTuning: %v", err)
	}
	if !strings.Contains(string(data), "kind: heavy") {
		t.Errorf("kinds not written by name:\n%s", data)
	}
	back, err := ParseTuning(data)
	if err != nil {
		t.Fatalf("ParseTuning: %v", err)
	}
	if len(back.SpeedTable) != 3 || back.SpeedTable[2] != 3 {
		t.Errorf("SpeedTable = %v", back.SpeedTable)
	}
}

func TestLoadTuning(t *testing.T) {
	if _, err := LoadTuning(""); err != nil {
		t.Errorf("LoadTuning(\"\") = %v", err)
	}
	if _, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}

	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("lives_total: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadTuning(path)
	if err != nil || cfg.LivesTotal != 2 {
		t.Errorf("LoadTuning = %+v, %v", cfg.LivesTotal, err)
	}
}

func writeAtomic(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func TestWatchTuningReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	writeAtomic(t, path, "hazard_count: 2\n")

	tw, err := WatchTuning(path)
	if err != nil {
		t.Fatalf("WatchTuning: %v", err)
	}
	defer tw.Close()

	writeAtomic(t, path, "hazard_count: 4\n")
	select {
	case cfg := <-tw.Configs:
		if cfg.HazardCount != 4 {
			t.Errorf("HazardCount = %d, want 4", cfg.HazardCount)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}

	writeAtomic(t, path, "hazard_count: -1\n")
	select {
	case err := <-tw.Errors:
		if !errors.Is(err, game.ErrInvalidConfig) {
			t.Errorf("err = %v, want ErrInvalidConfig", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload error")
	}

	if err := tw.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	_ = tw.Close()
}

func TestLoadAndWatchWithoutPath(t *testing.T) {
	cfg, updates, stop, err := LoadAndWatch("", NewLogger(nil, "error", ""))
	if err != nil {
		t.Fatalf("LoadAndWatch: %v", err)
	}
	defer stop()
	if updates != nil {
		t.Error("updates channel without a file")
	}
	if cfg.LevelsTotal != 5 {
		t.Errorf("LevelsTotal = %d", cfg.LevelsTotal)
	}
}
