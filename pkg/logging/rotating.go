package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// RotatingSink appends formatted records to a size-rotated set of files.
// The active file is {basePath}.0.log; on rotation existing backups are
// shifted up one index and the one pushed past maxFiles is deleted.
//
// If the active file cannot be opened at construction or rotation time, the
// sink falls back to writing to standard output and disables rotation for
// the remainder of its life. All writes and the rotation decision are
// serialized under one lock so the byte accounting stays consistent with
// the file content.
type RotatingSink struct {
	mu sync.Mutex

	basePath string
	maxBytes int64
	maxFiles int
	json     bool

	file     *os.File
	size     int64
	fallback bool
	stdout   io.Writer // fallback destination, os.Stdout outside tests
}

// NewRotatingSink creates a RotatingSink. maxBytes is the rotation
// threshold for the active file; maxFiles is the number of retained
// backups. jsonFormat selects JSON lines instead of plain text and is
// fixed for the sink's lifetime.
func NewRotatingSink(basePath string, maxBytes int64, maxFiles int, jsonFormat bool) *RotatingSink {
	s := &RotatingSink{
		basePath: basePath,
		maxBytes: maxBytes,
		maxFiles: maxFiles,
		json:     jsonFormat,
		stdout:   os.Stdout,
	}

	if dir := filepath.Dir(basePath); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	f, err := os.OpenFile(s.indexPath(0), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		s.fallback = true
		return s
	}
	s.file = f
	if info, err := f.Stat(); err == nil {
		s.size = info.Size()
	}
	return s
}

// Consume formats and appends the record, rotating first when the write
// would push the active file past the threshold.
func (s *RotatingSink) Consume(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var line string
	if s.json {
		line = formatJSON(rec) + "\n"
	} else {
		line = formatPlain(rec) + "\n"
	}

	if !s.fallback {
		s.rotateIfNeeded(int64(len(line)))
	}

	var (
		n   int
		err error
	)
	if s.fallback {
		n, err = io.WriteString(s.stdout, line)
	} else {
		n, err = s.file.WriteString(line)
	}
	s.size += int64(n)
	return err
}

// Flush syncs the active file, if any.
func (s *RotatingSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	return s.file.Sync()
}

// Close closes the active file. Records consumed after Close fall back to
// standard output.
func (s *RotatingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.fallback = true
	return err
}

// rotateIfNeeded shifts backups and opens a fresh active file when the
// pending write would exceed the threshold. Called with s.mu held.
func (s *RotatingSink) rotateIfNeeded(pending int64) {
	if s.size+pending <= s.maxBytes {
		return
	}

	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}

	// Shift base.N-1 -> base.N down to base.0 -> base.1, deleting the
	// backup that would be pushed past maxFiles.
	for i := s.maxFiles - 1; i >= 0; i-- {
		src := s.indexPath(i)
		dst := s.indexPath(i + 1)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if i+1 >= s.maxFiles {
			_ = os.Remove(dst)
		}
		_ = os.Rename(src, dst)
	}

	f, err := os.OpenFile(s.indexPath(0), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		s.fallback = true
		s.size = 0
		return
	}
	s.file = f
	s.size = 0
}

func (s *RotatingSink) indexPath(i int) string {
	return fmt.Sprintf("%s.%d.log", s.basePath, i)
}

// Compile-time interface satisfaction check.
var _ Sink = (*RotatingSink)(nil)
