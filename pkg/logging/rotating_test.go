package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func rotRecord(msg string) Record {
	return Record{
		Timestamp: time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC),
		ThreadID:  7,
		Level:     LevelInfo,
		Message:   msg,
	}
}

func TestRotatingSinkWritesActiveFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "server")

	s := NewRotatingSink(base, 1<<20, 3, false)
	consumeAll(t, s, rotRecord("hello"))
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(base + ".0.log")
	if err != nil {
		t.Fatalf("failed to read active file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("active file content = %q, want it to contain %q", data, "hello")
	}
}

func TestRotatingSinkBoundedBackups(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "server")

	// 100-byte threshold, max 2 backups. Each line is ~70 bytes, so every
	// second write rotates.
	s := NewRotatingSink(base, 100, 2, false)
	total := 0
	for i := 0; total <= 250; i++ {
		msg := fmt.Sprintf("records and more records %02d", i)
		consumeAll(t, s, rotRecord(msg))
		total += len(msg) + 45
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	for _, idx := range []int{0, 1, 2} {
		path := fmt.Sprintf("%s.%d.log", base, idx)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", filepath.Base(path), err)
		}
	}
	if _, err := os.Stat(base + ".3.log"); !os.IsNotExist(err) {
		t.Errorf("%s.3.log exists, want at most 3 files on disk", filepath.Base(base))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) > 3 {
		t.Errorf("%d files on disk, want at most 3", len(entries))
	}
}

func TestRotatingSinkRotationShiftsContent(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "server")

	s := NewRotatingSink(base, 80, 3, false)
	consumeAll(t, s, rotRecord("first"), rotRecord("second"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The first write filled .0 past the threshold, so the second write
	// rotated it to .1 and started a fresh .0.
	backup, err := os.ReadFile(base + ".1.log")
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if !strings.Contains(string(backup), "first") {
		t.Errorf("backup content = %q, want it to contain %q", backup, "first")
	}
	active, err := os.ReadFile(base + ".0.log")
	if err != nil {
		t.Fatalf("failed to read active file: %v", err)
	}
	if !strings.Contains(string(active), "second") {
		t.Errorf("active content = %q, want it to contain %q", active, "second")
	}
}

func TestRotatingSinkJSONFormat(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "server")

	s := NewRotatingSink(base, 1<<20, 3, true)
	consumeAll(t, s, rotRecord("a"), rotRecord("b"))
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(base + ".0.log")
	if err != nil {
		t.Fatalf("failed to read active file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("active file has %d lines, want 2", len(lines))
	}
	for i, line := range lines {
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Errorf("line %d is not valid JSON: %v\n%s", i, err, line)
		}
	}
}

func TestRotatingSinkFallsBackToStdout(t *testing.T) {
	dir := t.TempDir()

	// Make the parent path unusable: the base directory is a regular file.
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create blocker file: %v", err)
	}
	base := filepath.Join(blocker, "server")

	s := NewRotatingSink(base, 50, 2, false)
	var out bytes.Buffer
	s.stdout = &out

	// Writes go to the fallback stream and rotation stays disabled even
	// past the threshold.
	consumeAll(t, s,
		rotRecord("fallback one"),
		rotRecord("fallback two"),
		rotRecord("fallback three"))

	got := out.String()
	for _, want := range []string{"fallback one", "fallback two", "fallback three"} {
		if !strings.Contains(got, want) {
			t.Errorf("fallback output missing %q:\n%s", want, got)
		}
	}
	if _, err := os.Stat(base + ".0.log"); !os.IsNotExist(err) {
		t.Error("fallback sink still created a log file")
	}
	if err := s.Flush(); err != nil {
		t.Errorf("Flush on fallback sink failed: %v", err)
	}
}
