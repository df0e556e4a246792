// Package config provides configuration management for the zombie detector.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"zombie-detector/internal/classifier"
)

// LoadStates reads the per-code state policy from a JSON or YAML file
// (decided by extension). An empty path, a missing file or a corrupt
// file all fall back to the default policy: a broken policy file must
// degrade to full detection, never to silence.
func LoadStates(path string) (map[string]int, error) {
	defaults := classifier.DefaultStates()
	if path == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, fmt.Errorf("failed to read states file %s: %w", path, err)
	}

	var states map[string]int
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &states)
	default:
		err = json.Unmarshal(data, &states)
	}
	if err != nil {
		return defaults, nil
	}

	return MergeStates(defaults, states), nil
}

// MergeStates overlays a partial policy on top of a base policy. Codes
// absent from the overlay keep their base state; unknown codes in the
// overlay are carried along untouched.
func MergeStates(base, overlay map[string]int) map[string]int {
	merged := make(map[string]int, len(base)+len(overlay))
	for code, state := range base {
		merged[code] = state
	}
	for code, state := range overlay {
		merged[code] = state
	}
	return merged
}
