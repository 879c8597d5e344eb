package util

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		base string
		rel  string
		want string
	}{
		{"relative joins", "data", "tidewave.json", filepath.Join("data", "tidewave.json")},
		{"absolute overrides", "data", "/etc/tidewave.json", "/etc/tidewave.json"},
		{"absolute cleaned", "data", "/etc//./tidewave.json", "/etc/tidewave.json"},
		{"empty rel", "data", "", "data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePath(tt.base, tt.rel); got != tt.want {
				t.Errorf("ResolvePath(%q, %q) = %q, expected %q", tt.base, tt.rel, got, tt.want)
			}
		})
	}
}

func TestWriteJSONFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.json")

	if err := WriteJSONFile(path, map[string]int{"n": 1}); err != nil {
		t.Fatalf("WriteJSONFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["n"] != 1 {
		t.Errorf("round trip = %v, expected n=1", got)
	}
}
