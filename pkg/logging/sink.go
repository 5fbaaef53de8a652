package logging

// Sink is a destination capability for log records. Implementations must
// be safe for concurrent use; the pipeline may hand the same record to
// multiple sinks without inter-sink synchronization.
//
// Errors returned from Consume and Flush are best-effort signals: the
// pipeline captures and discards them so one failing sink can never affect
// other sinks or the producer.
type Sink interface {
	// Consume records one log record.
	Consume(rec Record) error

	// Flush forces any buffered state to the underlying destination.
	Flush() error
}

// RecencyStore is an optional secondary capability a Sink may implement to
// serve bounded-recency queries over retained records. The pipeline
// delegates its query methods to the first registered sink offering this
// capability.
type RecencyStore interface {
	// RecentGlobal returns the last min(n, retained) records, oldest first.
	RecentGlobal(n int) []Record

	// RecentForSession returns the last min(n, retained) records for the
	// session, oldest first. Unknown sessions return an empty slice.
	RecentForSession(sessionID string, n int) []Record

	// ExportSession renders every retained record for the session as plain
	// formatted text lines.
	ExportSession(sessionID string) string

	// ClearSession drops the session's retained records entirely. Future
	// records under the same ID start a fresh buffer.
	ClearSession(sessionID string)
}
