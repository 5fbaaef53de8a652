// Package logging implements the asynchronous multi-sink logging pipeline
// used by KeyForge.
//
// Producers anywhere in the process call Pipeline.Log (or the per-level
// helpers) with a severity, an optional session ID, and a message. The
// pipeline never blocks the producer on I/O: records are appended to a
// bounded queue and handed to every registered Sink by a single background
// consumer goroutine. When the queue is full the oldest undelivered record
// is dropped to make room.
//
// # Sinks
//
// A Sink is any destination implementing Consume/Flush:
//
//	pipe := logging.NewPipeline()
//	pipe.AddSink(logging.NewConsoleSink(logging.ConsoleModeColored))
//	pipe.AddSink(logging.NewMemorySink())
//	pipe.AddSink(logging.NewRotatingSink("/var/log/keyforge/server", 10<<20, 5, false))
//	pipe.Start()
//	defer pipe.Shutdown(true)
//
// Sink failures are best-effort: an error or panic from one sink is
// discarded and never reaches the producer or the other sinks.
//
// # Sessions and recency queries
//
// Records may carry a session ID correlating related activity, such as one
// client connection. A sink that retains records in memory implements the
// RecencyStore interface; the pipeline delegates RecentGlobal,
// RecentForSession, ExportSession and ClearSession to the first registered
// sink offering that capability.
//
// # Subscribers
//
// Subscribe registers a callback invoked synchronously on the calling
// goroutine for every record that passes the threshold. Callbacks must be
// fast and non-blocking; they run inline on every goroutine that logs.
//
// # Capture files
//
// CaptureSink writes records to a CBOR-encoded capture file with the .kclog
// extension. The keyforge-log CLI tool provides viewing, filtering, and
// export capabilities over capture files.
package logging
