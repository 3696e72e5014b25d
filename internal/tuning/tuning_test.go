package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultBalance(t *testing.T) {
	cfg := Default()
	if cfg.Energy.SurgeCeiling != 1.5 {
		t.Fatalf("surge ceiling %.2f, want 1.5", cfg.Energy.SurgeCeiling)
	}
	if cfg.Energy.StartingCredits != 1000 {
		t.Fatalf("starting credits %.0f, want 1000", cfg.Energy.StartingCredits)
	}
	if cfg.Buildings["bio"].Capacity != 1 || cfg.Buildings["bio"].CostCr != 1000 {
		t.Fatalf("bio spec %+v unexpected", cfg.Buildings["bio"])
	}
	if len(cfg.Nano.MealHours) != 3 {
		t.Fatalf("meal hours %v, want three", cfg.Nano.MealHours)
	}
}

func TestLoadOverridesOnTopOfDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte("seed: 7\nenergy:\n  starting_credits: 5000\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 7 {
		t.Fatalf("seed %d, want override 7", cfg.Seed)
	}
	if cfg.Energy.StartingCredits != 5000 {
		t.Fatalf("credits %.0f, want override 5000", cfg.Energy.StartingCredits)
	}
	// Untouched keys keep their defaults.
	if cfg.Energy.SellRate != 1000 {
		t.Fatalf("sell rate %.0f, want default 1000", cfg.Energy.SellRate)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("load of missing file did not error")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("energy: ["), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("load of invalid yaml did not error")
	}
}
