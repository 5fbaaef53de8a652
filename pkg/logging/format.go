package logging

import (
	"strconv"
	"strings"
	"time"
)

// timestampLayout renders wall-clock time with millisecond resolution.
const timestampLayout = "2006-01-02 15:04:05.000"

// ANSI escape sequences for colored console output.
const (
	ansiReset  = "\x1b[0m"
	ansiGray   = "\x1b[90m"
	ansiCyan   = "\x1b[36m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiBold   = "\x1b[1;31m"
)

func levelColor(l Level) string {
	switch l {
	case LevelTrace:
		return ansiGray
	case LevelDebug:
		return ansiCyan
	case LevelInfo:
		return ansiGreen
	case LevelWarn:
		return ansiYellow
	case LevelError:
		return ansiRed
	case LevelFatal:
		return ansiBold
	default:
		return ansiReset
	}
}

func formatTime(ts time.Time) string {
	return ts.Format(timestampLayout)
}

// formatPlain renders a record as one line of annotated text:
//
//	[2026-01-02 15:04:05.000] [ INFO] (g:42) <session> message
func formatPlain(rec Record) string {
	var b strings.Builder
	b.Grow(48 + len(rec.SessionID) + len(rec.Message))
	b.WriteByte('[')
	b.WriteString(formatTime(rec.Timestamp))
	b.WriteString("] [")
	writePaddedLevel(&b, rec.Level)
	b.WriteString("] (g:")
	b.WriteString(strconv.FormatUint(rec.ThreadID, 10))
	b.WriteString(") ")
	if rec.SessionID != "" {
		b.WriteByte('<')
		b.WriteString(rec.SessionID)
		b.WriteString("> ")
	}
	b.WriteString(rec.Message)
	return b.String()
}

// formatColored is formatPlain with the level tag wrapped in ANSI color.
func formatColored(rec Record) string {
	var b strings.Builder
	b.Grow(64 + len(rec.SessionID) + len(rec.Message))
	b.WriteByte('[')
	b.WriteString(formatTime(rec.Timestamp))
	b.WriteString("] ")
	b.WriteString(levelColor(rec.Level))
	b.WriteByte('[')
	writePaddedLevel(&b, rec.Level)
	b.WriteByte(']')
	b.WriteString(ansiReset)
	b.WriteString(" (g:")
	b.WriteString(strconv.FormatUint(rec.ThreadID, 10))
	b.WriteString(") ")
	if rec.SessionID != "" {
		b.WriteByte('<')
		b.WriteString(rec.SessionID)
		b.WriteString("> ")
	}
	b.WriteString(rec.Message)
	return b.String()
}

// formatJSON renders a record as a single-line JSON object:
//
//	{"ts":"...","lvl":2,"tid":42,"session":"s1","msg":"..."}
//
// The message is escaped for embedded quote and backslash characters only;
// control characters pass through unchanged.
func formatJSON(rec Record) string {
	var b strings.Builder
	b.Grow(72 + len(rec.SessionID) + len(rec.Message))
	b.WriteString(`{"ts":"`)
	b.WriteString(formatTime(rec.Timestamp))
	b.WriteString(`","lvl":`)
	b.WriteString(strconv.Itoa(int(rec.Level)))
	b.WriteString(`,"tid":`)
	b.WriteString(strconv.FormatUint(rec.ThreadID, 10))
	if rec.SessionID != "" {
		b.WriteString(`,"session":"`)
		writeEscaped(&b, rec.SessionID)
		b.WriteByte('"')
	}
	b.WriteString(`,"msg":"`)
	writeEscaped(&b, rec.Message)
	b.WriteString(`"}`)
	return b.String()
}

// writePaddedLevel writes the level name right-aligned in five columns,
// matching the width of the longest name.
func writePaddedLevel(b *strings.Builder, l Level) {
	name := l.String()
	for i := len(name); i < 5; i++ {
		b.WriteByte(' ')
	}
	b.WriteString(name)
}

func writeEscaped(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
}
