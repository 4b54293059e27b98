package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	got, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != Defaults() {
		t.Error("empty path did not return the defaults")
	}
}

func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := []byte("movement:\n  warp_range_limit: 50.0\n  lane_slow_ticks: 3\ndetection:\n  base_merit: 40\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Movement.WarpRangeLimit != 50.0 {
		t.Errorf("warp range: got %v, want 50.0", got.Movement.WarpRangeLimit)
	}
	if got.Movement.LaneSlowTicks != 3 {
		t.Errorf("lane slow ticks: got %d, want 3", got.Movement.LaneSlowTicks)
	}
	if got.Detection.BaseMerit != 40 {
		t.Errorf("base merit: got %d, want 40", got.Detection.BaseMerit)
	}

	// Untouched values keep their defaults.
	def := Defaults()
	if got.Movement.MaxLocalMovesPerTurn != def.Movement.MaxLocalMovesPerTurn {
		t.Error("unset movement value lost its default")
	}
	if got.Detection.BaseDifficulty != def.Detection.BaseDifficulty {
		t.Error("unset detection value lost its default")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("movement: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
