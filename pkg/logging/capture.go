package logging

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// CaptureSink writes every consumed record to a file in CBOR format for
// offline inspection with the keyforge-log tool.
// It is safe for concurrent use.
type CaptureSink struct {
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewCaptureSink creates a CaptureSink that writes to the specified path.
// If the file exists, new records are appended. The file is created with
// permissions 0644 if it doesn't exist.
func NewCaptureSink(path string) (*CaptureSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &CaptureSink{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Consume appends the record to the capture file. Records consumed after
// Close are silently ignored.
func (c *CaptureSink) Consume(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	return c.encoder.Encode(rec)
}

// Flush syncs the capture file.
func (c *CaptureSink) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	return c.file.Sync()
}

// Close closes the capture file. It is safe to call Close multiple times.
func (c *CaptureSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.file.Close()
}

// Compile-time interface satisfaction check.
var _ Sink = (*CaptureSink)(nil)
