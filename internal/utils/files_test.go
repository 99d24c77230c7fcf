package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeWriteFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "job.yaml")
	if err := SafeWriteFile(p, []byte("a: 1\n")); err != nil {
		t.Fatalf("SafeWriteFile: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "a: 1\n" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestAtomicFileCommit(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "data_out.txt")
	f, err := CreateAtomic(p)
	if err != nil {
		t.Fatalf("CreateAtomic: %v", err)
	}
	if _, err := f.WriteString("x\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatal("destination exists before Commit")
	}
	if err := f.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	f.Abort()
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "x\n" {
		t.Fatalf("read back %q, %v", b, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the destination, got %d entries", len(entries))
	}
}

func TestAtomicFileAbort(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.txt")
	f, err := CreateAtomic(p)
	if err != nil {
		t.Fatalf("CreateAtomic: %v", err)
	}
	_, _ = f.WriteString("partial")
	f.Abort()
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("abort left %d entries", len(entries))
	}
}

func TestFindJobFile(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	job := filepath.Join(root, JobFileName)
	if err := os.WriteFile(job, []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := FindJobFile(nested)
	if err != nil {
		t.Fatalf("FindJobFile: %v", err)
	}
	if got != job {
		t.Fatalf("got %s, want %s", got, job)
	}
	if _, err := FindJobFile(t.TempDir()); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}
