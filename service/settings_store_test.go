package service

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSettingsStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store := NewFileSettingsStore(path)

	if err := store.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := store.Get("key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "value" {
		t.Errorf("expected %q, got %q", "value", got)
	}

	// A second store over the same file sees the persisted value
	second := NewFileSettingsStore(path)
	got, err = second.Get("key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "value" {
		t.Errorf("expected %q after reopen, got %q", "value", got)
	}
}

func TestFileSettingsStoreMissingFile(t *testing.T) {
	store := NewFileSettingsStore(filepath.Join(t.TempDir(), "absent.json"))

	got, err := store.Get("anything")
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty value, got %q", got)
	}
}

func TestFileSettingsStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{corrupt"), 0600); err != nil {
		t.Fatal(err)
	}
	store := NewFileSettingsStore(path)

	got, err := store.Get("key")
	if err != nil {
		t.Fatalf("corrupt file should not be an error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty value from corrupt file, got %q", got)
	}

	// Writes recover the file
	if err := store.Set("key", "fresh"); err != nil {
		t.Fatalf("Set over corrupt file failed: %v", err)
	}
	got, _ = store.Get("key")
	if got != "fresh" {
		t.Errorf("expected %q, got %q", "fresh", got)
	}
}

func TestFileSettingsStoreUpdateKeepsOtherKeys(t *testing.T) {
	store := NewFileSettingsStore(filepath.Join(t.TempDir(), "settings.json"))

	if err := store.Set("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("b", "2"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("a", "updated"); err != nil {
		t.Fatal(err)
	}

	if got, _ := store.Get("a"); got != "updated" {
		t.Errorf("expected updated value, got %q", got)
	}
	if got, _ := store.Get("b"); got != "2" {
		t.Errorf("unrelated key lost on update, got %q", got)
	}
}

func TestMemorySettingsStore(t *testing.T) {
	store := NewMemorySettingsStore()

	if got, _ := store.Get("missing"); got != "" {
		t.Errorf("expected empty value for missing key, got %q", got)
	}
	if err := store.Set("key", "value"); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get("key"); got != "value" {
		t.Errorf("expected %q, got %q", "value", got)
	}
}
