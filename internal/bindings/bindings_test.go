//go:build darwin

package bindings

import "testing"

func TestIsLoadedFalseBeforeLoad(t *testing.T) {
	if IsLoaded() {
		t.Error("IsLoaded should be false before Load is called")
	}
}

// Integration test: only meaningful on a real macOS host with the system
// frameworks present, mirrors the teacher's requireFFmpeg-gated load test.
func TestLoadAppleFrameworks(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping framework load in short mode")
	}

	if err := Load(); err != nil {
		t.Fatalf("Apple frameworks not available: %v", err)
	}
	if !IsLoaded() {
		t.Error("IsLoaded should be true after successful Load")
	}
	if LibAVFoundation() == 0 {
		t.Error("LibAVFoundation should be non-zero after Load")
	}
}
