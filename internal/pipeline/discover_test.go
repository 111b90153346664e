package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name  string
		order int
		ok    bool
	}{
		{"1-fetch.sh", 1, true},
		{"10-model.py", 10, true},
		{"+2-cleanup.sh", 2, true},
		{"-2-cleanup.sh", 0, false}, // first hyphen is the sign, leaving an empty left part
		{"007-agent.R", 7, true},
		{"fetch.sh", 0, false},
		{"one-fetch.sh", 0, false},
		{"1.5-fetch.sh", 0, false},
		{"-stuff.sh", 0, false},
	}
	for _, tt := range tests {
		order, ok := ParseOrder(tt.name)
		if ok != tt.ok || order != tt.order {
			t.Errorf("ParseOrder(%q) = (%d, %v), want (%d, %v)", tt.name, order, ok, tt.order, tt.ok)
		}
	}
}

func TestDiscover_NumericOrdering(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"10-a.sh", "2-b.py", "1-c.py", "notes.txt", "build-all.sh"} {
		touch(t, dir, name)
	}

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"1-c.py", "2-b.py", "10-a.sh"}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d", len(files), len(want))
	}
	for i, name := range want {
		if files[i].Name != name {
			t.Errorf("files[%d] = %q, want %q", i, files[i].Name, name)
		}
	}
}

func TestDiscover_ExcludesIneligible(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"readme.md", "x-run.sh", "image.jpeg", "1.sh"} {
		touch(t, dir, name)
	}

	files, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no eligible files, got %v", files)
	}
}

func TestDiscover_DuplicatePrefix(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2-b.py")
	touch(t, dir, "02-c.sh")

	_, err := Discover(dir)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Order != 2 {
		t.Errorf("duplicate order = %d, want 2", verr.Order)
	}
	if len(verr.Files) != 2 {
		t.Errorf("expected both colliding files, got %v", verr.Files)
	}
}

func TestDiscover_Deterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"3-z.sh", "1-a.sh", "2-m.py"} {
		touch(t, dir, name)
	}

	first, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	second, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("discovery not stable: %v vs %v", first, second)
		}
	}
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
