package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportResults(t *testing.T) {
	s, _ := playingSession(t, 2)
	if _, err := s.Submit("Casablanca"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Advance(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Submit("Vertigo"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Advance(); err != nil {
		t.Fatal(err)
	}

	file := filepath.Join(t.TempDir(), "results", "out.txt")
	if err := ExportResults(s, file); err != nil {
		t.Fatalf("should export results: %v", err)
	}

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("should read export file: %v", err)
	}
	out := string(b)
	for _, want := range []string{
		"Session TEST1",
		"Score: 110",
		"Accuracy: 50%",
		"[RIGHT]",
		"[WRONG]",
		"Question 1?",
		"Question 2?",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("export missing %q:\n%s", want, out)
		}
	}

	// appending a second session must not truncate the first
	if err := ExportResults(s, file); err != nil {
		t.Fatal(err)
	}
	b2, _ := os.ReadFile(file)
	if len(b2) <= len(b) {
		t.Fatal("export should append")
	}
}
