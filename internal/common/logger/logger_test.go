package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if line == "" {
			continue
		}
		var e map[string]any
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		out = append(out, e)
	}
	return out
}

func TestEntriesCarryServiceAndAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	lg := New("api", WithOutput(path), WithLevel("debug"))

	lg.Info("order_placed", map[string]any{"token": 101})
	lg.Named("store").Error("save_failed", errors.New("disk full"), nil)
	lg.Debug("tick", nil)
	_ = lg.Sync()

	entries := readEntries(t, path)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	first := entries[0]
	if first["service"] != "api" || first["action"] != "order_placed" || first["level"] != "INFO" {
		t.Fatalf("unexpected first entry %v", first)
	}
	if first["token"] != float64(101) {
		t.Fatalf("expected token field, got %v", first["token"])
	}
	if _, ok := first["timestamp"]; !ok {
		t.Fatalf("expected a timestamp, got %v", first)
	}
	second := entries[1]
	if second["service"] != "store" || second["error"] != "disk full" || second["level"] != "ERROR" {
		t.Fatalf("unexpected second entry %v", second)
	}
}

func TestWithLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	lg := New("api", WithOutput(path), WithLevel("warn"))
	lg.Info("ignored", nil)
	lg.Warn("kept", nil)
	_ = lg.Sync()

	entries := readEntries(t, path)
	if len(entries) != 1 || entries[0]["action"] != "kept" {
		t.Fatalf("expected only the warn entry, got %v", entries)
	}
}

func TestNopIsSilent(t *testing.T) {
	lg := NewNop()
	lg.Error("anything", errors.New("x"), map[string]any{"k": "v"})
	lg.Named("other").Warn("anything", nil)
}
