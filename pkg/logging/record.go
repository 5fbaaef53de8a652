package logging

import (
	"bytes"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Record is the immutable unit of data flowing through the pipeline.
// Records are value types: sinks and subscribers receive independent
// copies and must not assume shared mutable state.
// CBOR encoding uses integer keys for compactness.
type Record struct {
	// Timestamp when the record was constructed (millisecond display
	// resolution).
	Timestamp time.Time `cbor:"1,keyasint" json:"ts"`

	// ThreadID is an opaque token identifying the originating goroutine.
	ThreadID uint64 `cbor:"2,keyasint" json:"tid"`

	// Level is the record's severity.
	Level Level `cbor:"3,keyasint" json:"lvl"`

	// SessionID correlates related records. Empty means global/unscoped.
	SessionID string `cbor:"4,keyasint,omitempty" json:"session,omitempty"`

	// Message is the log text. Arbitrary bytes are allowed.
	Message string `cbor:"5,keyasint" json:"msg"`
}

// Level is a totally ordered severity: Trace < Debug < Info < Warn <
// Error < Fatal.
type Level uint8

const (
	// LevelTrace is the lowest severity.
	LevelTrace Level = 0
	// LevelDebug is for developer diagnostics.
	LevelDebug Level = 1
	// LevelInfo is for routine operational messages.
	LevelInfo Level = 2
	// LevelWarn is for recoverable anomalies.
	LevelWarn Level = 3
	// LevelError is for failures of an operation.
	LevelError Level = 4
	// LevelFatal is the highest severity.
	LevelFatal Level = 5
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (case-insensitive) to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "ERROR":
		return LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// goroutineID extracts the current goroutine's numeric ID from the runtime
// stack header ("goroutine 123 [running]:"). The value is only used as an
// opaque origin token on records.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
