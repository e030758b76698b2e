package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDataPath(t *testing.T) {
	t.Parallel()

	devBase := filepath.Join(os.TempDir(), DevDirName)
	inTemp := filepath.Join(os.TempDir(), "already-safe")

	tests := []struct {
		name      string
		userPath  string
		forceTemp bool
		expected  string
	}{
		{"Normal Mode - Empty Path", "", false, "."},
		{"Normal Mode - Specific Path", "/some/path", false, "/some/path"},
		{"Dev Mode - Empty Path", "", true, filepath.Join(devBase, "default")},
		{"Dev Mode - Current Dir", ".", true, filepath.Join(devBase, "default")},
		{"Dev Mode - Relative Name", "my-data", true, filepath.Join(devBase, "my-data")},
		{"Dev Mode - Traversal Is Cleaned", "../bad/path", true, filepath.Join(devBase, "path")},
		{"Dev Mode - Temp Dir Is Trusted", inTemp, true, inTemp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveDataPath(tt.userPath, tt.forceTemp); got != tt.expected {
				t.Errorf("ResolveDataPath(%q, %v) = %q, want %q", tt.userPath, tt.forceTemp, got, tt.expected)
			}
		})
	}
}

func TestIsDevRunUnderTest(t *testing.T) {
	if !IsDevRun() {
		t.Error("expected go test binaries to count as dev runs")
	}
}
