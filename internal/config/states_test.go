package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStatesFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write states file: %v", err)
	}
	return path
}

func TestLoadStatesDefaults(t *testing.T) {
	states, err := LoadStates("")
	if err != nil {
		t.Fatalf("LoadStates: %v", err)
	}
	if len(states) != 32 {
		t.Fatalf("states has %d entries, want 32", len(states))
	}
	if states["0"] != 0 || states["1A"] != 1 {
		t.Errorf("unexpected defaults: 0=%d 1A=%d", states["0"], states["1A"])
	}
}

func TestLoadStatesJSON(t *testing.T) {
	path := writeStatesFile(t, "states.json", `{"1C": 0, "2A": 0}`)

	states, err := LoadStates(path)
	if err != nil {
		t.Fatalf("LoadStates: %v", err)
	}
	if states["1C"] != 0 || states["2A"] != 0 {
		t.Errorf("overrides not applied: 1C=%d 2A=%d", states["1C"], states["2A"])
	}
	// Codes not mentioned in the file keep their defaults.
	if states["1A"] != 1 || states["5"] != 1 {
		t.Errorf("defaults lost: 1A=%d 5=%d", states["1A"], states["5"])
	}
}

func TestLoadStatesYAML(t *testing.T) {
	path := writeStatesFile(t, "states.yaml", "\"1B\": 0\n\"3G\": 0\n")

	states, err := LoadStates(path)
	if err != nil {
		t.Fatalf("LoadStates: %v", err)
	}
	if states["1B"] != 0 || states["3G"] != 0 {
		t.Errorf("overrides not applied: 1B=%d 3G=%d", states["1B"], states["3G"])
	}
}

func TestLoadStatesMissingFile(t *testing.T) {
	states, err := LoadStates(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadStates: %v", err)
	}
	if len(states) != 32 {
		t.Errorf("missing file should yield defaults, got %d entries", len(states))
	}
}

func TestLoadStatesCorruptFileFallsBack(t *testing.T) {
	path := writeStatesFile(t, "states.json", `{broken`)

	states, err := LoadStates(path)
	if err != nil {
		t.Fatalf("LoadStates: %v", err)
	}
	if states["1A"] != 1 {
		t.Errorf("corrupt file should yield defaults, got 1A=%d", states["1A"])
	}
}

func TestMergeStates(t *testing.T) {
	base := map[string]int{"1A": 1, "1B": 1}
	overlay := map[string]int{"1B": 0, "XX": 7}

	merged := MergeStates(base, overlay)
	if merged["1A"] != 1 || merged["1B"] != 0 || merged["XX"] != 7 {
		t.Errorf("merged = %v", merged)
	}
	// Inputs stay untouched.
	if base["1B"] != 1 {
		t.Error("base map was mutated")
	}
}
