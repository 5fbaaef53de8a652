// Package commands implements the keyforge-log CLI commands.
package commands

import (
	"fmt"
	"io"

	"github.com/SouradipPatra7904/KeyForge/pkg/logging"
)

// RunView writes a human-readable rendering of the capture file to w.
func RunView(path string, filter logging.Filter, w io.Writer) error {
	reader, err := logging.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	count := 0
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read record: %w", err)
		}
		formatRecord(w, rec)
		count++
	}

	fmt.Fprintf(w, "\n%d records\n", count)
	return nil
}

// formatRecord writes one record as a single aligned line.
func formatRecord(w io.Writer, rec logging.Record) {
	ts := rec.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")
	session := "-"
	if rec.SessionID != "" {
		session = shortenSession(rec.SessionID)
	}
	fmt.Fprintf(w, "%s %-5s g:%-4d [%s] %s\n", ts, rec.Level, rec.ThreadID, session, rec.Message)
}

// shortenSession truncates long session IDs (UUIDs) for display.
func shortenSession(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
