package fs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New Slot File", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "pets.slot")

		if err := writeFileAtomic(filename, []byte(`[{"id":1}]`), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != `[{"id":1}]` {
			t.Errorf("Expected slot content, got '%s'", string(got))
		}
	})

	t.Run("Overwrites Existing Slot", func(t *testing.T) {
		dir := t.TempDir()
		filename := filepath.Join(dir, "settings.slot")

		if err := os.WriteFile(filename, []byte("{}"), 0644); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
		if err := writeFileAtomic(filename, []byte(`{"theme":"dark"}`), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != `{"theme":"dark"}` {
			t.Errorf("Expected overwritten content, got '%s'", string(got))
		}
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		if err := writeFileAtomic(filepath.Join(dir, "tasks.slot"), []byte("[]"), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("Expected only the slot file, found %d entries", len(entries))
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		dir := t.TempDir()
		err := writeFileAtomic(filepath.Join(dir, "missing", "pets.slot"), []byte("[]"), 0644)
		if err == nil {
			t.Error("Expected error when directory is missing, got nil")
		}
	})
}

func TestRemoveStaleTemp(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, TempFilePrefix+"12345")
	keep := filepath.Join(dir, "pets.slot")

	for _, name := range []string{stale, keep} {
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if err := removeStaleTemp(dir); err != nil {
		t.Fatalf("removeStaleTemp failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("Expected stale temp file to be removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("Expected slot file to survive: %v", err)
	}
}
