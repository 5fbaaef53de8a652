package logging

// SessionLogger binds a session ID to a pipeline so callers handling one
// logical session don't have to thread the ID through every call.
type SessionLogger struct {
	pipe      *Pipeline
	sessionID string
}

// NewSessionLogger creates a SessionLogger for the given session ID.
func NewSessionLogger(p *Pipeline, sessionID string) *SessionLogger {
	return &SessionLogger{pipe: p, sessionID: sessionID}
}

// ID returns the bound session ID.
func (s *SessionLogger) ID() string {
	return s.sessionID
}

// Log logs a record under the bound session.
func (s *SessionLogger) Log(level Level, message string) {
	s.pipe.Log(level, s.sessionID, message)
}

// Trace logs at LevelTrace under the bound session.
func (s *SessionLogger) Trace(message string) { s.Log(LevelTrace, message) }

// Debug logs at LevelDebug under the bound session.
func (s *SessionLogger) Debug(message string) { s.Log(LevelDebug, message) }

// Info logs at LevelInfo under the bound session.
func (s *SessionLogger) Info(message string) { s.Log(LevelInfo, message) }

// Warn logs at LevelWarn under the bound session.
func (s *SessionLogger) Warn(message string) { s.Log(LevelWarn, message) }

// Error logs at LevelError under the bound session.
func (s *SessionLogger) Error(message string) { s.Log(LevelError, message) }

// Fatal logs at LevelFatal under the bound session.
func (s *SessionLogger) Fatal(message string) { s.Log(LevelFatal, message) }
