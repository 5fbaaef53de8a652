package logging

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueCapacity bounds the pipeline queue to avoid unbounded memory
// growth under sustained overload.
const DefaultQueueCapacity = 1 << 20

// wakeInterval bounds how long the consumer sleeps without re-checking the
// stop condition.
const wakeInterval = 200 * time.Millisecond

// Subscriber is a synchronous observer invoked inline on the goroutine
// that logs. Callbacks must be fast and non-blocking; a panic from a
// subscriber is captured and discarded.
type Subscriber func(rec Record)

// Pipeline is the asynchronous multi-sink logging core. Producers call Log
// concurrently; a single background consumer goroutine fans each record
// out to every registered sink. Log never blocks on I/O or on the
// consumer: when the queue is full the oldest undelivered record is
// dropped.
type Pipeline struct {
	threshold atomic.Int32

	sinksMu sync.Mutex
	sinks   []Sink
	recency RecencyStore

	subsMu    sync.Mutex
	subs      map[int]Subscriber
	nextSubID int

	queueMu  sync.Mutex
	queue    []Record
	head     int
	queueCap int

	wake chan struct{}

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPipeline creates a stopped pipeline with the default queue capacity
// and an Info threshold. Call Start to launch the consumer.
func NewPipeline() *Pipeline {
	return NewPipelineWithCapacity(DefaultQueueCapacity)
}

// NewPipelineWithCapacity creates a stopped pipeline whose queue holds at
// most queueCapacity undelivered records.
func NewPipelineWithCapacity(queueCapacity int) *Pipeline {
	if queueCapacity <= 0 {
		queueCapacity = DefaultQueueCapacity
	}
	p := &Pipeline{
		subs:     make(map[int]Subscriber),
		queueCap: queueCapacity,
		wake:     make(chan struct{}, 1),
	}
	p.threshold.Store(int32(LevelInfo))
	return p
}

// Start launches the background consumer. Calling Start while the pipeline
// is already running is a no-op.
func (p *Pipeline) Start() {
	if p.running.Swap(true) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.wg.Add(1)
	go p.consumeLoop(ctx)
}

// Shutdown signals the consumer to stop, waits for it to drain the queue
// and exit, and, if flush is true, additionally flushes every sink.
// Calling Shutdown on a stopped pipeline is a no-op.
func (p *Pipeline) Shutdown(flush bool) {
	if !p.running.Swap(false) {
		return
	}

	p.cancel()
	p.wg.Wait()
	if flush {
		p.Flush()
	}
}

// AddSink registers a sink. If no recency-queryable sink is registered yet
// and this one implements RecencyStore, it becomes the query target.
func (p *Pipeline) AddSink(sink Sink) {
	p.sinksMu.Lock()
	defer p.sinksMu.Unlock()

	p.sinks = append(p.sinks, sink)
	if p.recency == nil {
		if rs, ok := sink.(RecencyStore); ok {
			p.recency = rs
		}
	}
}

// RemoveSink deregisters a sink, matching by identity. When the removed
// sink was the recency-query target, the target moves to the next
// registered sink offering that capability, if any.
func (p *Pipeline) RemoveSink(sink Sink) {
	p.sinksMu.Lock()
	defer p.sinksMu.Unlock()

	kept := p.sinks[:0]
	for _, s := range p.sinks {
		if s != sink {
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(p.sinks); i++ {
		p.sinks[i] = nil
	}
	p.sinks = kept

	if rs, ok := sink.(RecencyStore); ok && p.recency == rs {
		p.recency = nil
		for _, s := range p.sinks {
			if rs, ok := s.(RecencyStore); ok {
				p.recency = rs
				break
			}
		}
	}
}

// Subscribe registers a synchronous observer and returns its handle.
// Handles are assigned monotonically and never reused.
func (p *Pipeline) Subscribe(fn Subscriber) int {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()

	p.nextSubID++
	id := p.nextSubID
	p.subs[id] = fn
	return id
}

// Unsubscribe deregisters the observer with the given handle.
func (p *Pipeline) Unsubscribe(id int) {
	p.subsMu.Lock()
	defer p.subsMu.Unlock()
	delete(p.subs, id)
}

// SetLevel replaces the severity threshold. It takes effect for subsequent
// Log calls only; already-enqueued records are never retroactively
// filtered.
func (p *Pipeline) SetLevel(level Level) {
	p.threshold.Store(int32(level))
}

// Level returns the current severity threshold.
func (p *Pipeline) Level() Level {
	return Level(p.threshold.Load())
}

// Log constructs a record and feeds it into the pipeline. Calls below the
// threshold return immediately with no side effects. The record is
// appended to the bounded queue (dropping the oldest undelivered record
// when full) and then handed synchronously to every subscriber on the
// calling goroutine. Subscribers receive the exact record this call
// constructed, never another producer's.
func (p *Pipeline) Log(level Level, sessionID, message string) {
	if level < p.Level() {
		return
	}

	rec := Record{
		Timestamp: time.Now(),
		ThreadID:  goroutineID(),
		Level:     level,
		SessionID: sessionID,
		Message:   message,
	}

	p.enqueue(rec)
	select {
	case p.wake <- struct{}{}:
	default:
	}
	p.notify(rec)
}

// Per-level convenience helpers for unscoped records.

// Trace logs an unscoped record at LevelTrace.
func (p *Pipeline) Trace(message string) { p.Log(LevelTrace, "", message) }

// Debug logs an unscoped record at LevelDebug.
func (p *Pipeline) Debug(message string) { p.Log(LevelDebug, "", message) }

// Info logs an unscoped record at LevelInfo.
func (p *Pipeline) Info(message string) { p.Log(LevelInfo, "", message) }

// Warn logs an unscoped record at LevelWarn.
func (p *Pipeline) Warn(message string) { p.Log(LevelWarn, "", message) }

// Error logs an unscoped record at LevelError.
func (p *Pipeline) Error(message string) { p.Log(LevelError, "", message) }

// Fatal logs an unscoped record at LevelFatal. It does not terminate the
// process.
func (p *Pipeline) Fatal(message string) { p.Log(LevelFatal, "", message) }

// Flush synchronously asks every registered sink to flush. It is a
// sink-durability barrier, not a queue-drain barrier: records still queued
// are not processed first.
func (p *Pipeline) Flush() {
	for _, s := range p.snapshotSinks() {
		// Best effort: a failing sink must not affect the others.
		_ = flushSink(s)
	}
}

// QueueDepth reports the number of queued-but-undelivered records.
func (p *Pipeline) QueueDepth() int {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()
	return len(p.queue) - p.head
}

// RecentGlobal returns the last min(n, retained) records from the
// recency-queryable sink, or nil when none is registered.
func (p *Pipeline) RecentGlobal(n int) []Record {
	if rs := p.recencyStore(); rs != nil {
		return rs.RecentGlobal(n)
	}
	return nil
}

// RecentForSession returns the last min(n, retained) records for the
// session from the recency-queryable sink, or nil when none is registered.
func (p *Pipeline) RecentForSession(sessionID string, n int) []Record {
	if rs := p.recencyStore(); rs != nil {
		return rs.RecentForSession(sessionID, n)
	}
	return nil
}

// ExportSession renders the session's retained records as plain text
// lines, or returns "" when no recency-queryable sink is registered.
func (p *Pipeline) ExportSession(sessionID string) string {
	if rs := p.recencyStore(); rs != nil {
		return rs.ExportSession(sessionID)
	}
	return ""
}

// ClearSession drops the session's retained records. No-op when no
// recency-queryable sink is registered.
func (p *Pipeline) ClearSession(sessionID string) {
	if rs := p.recencyStore(); rs != nil {
		rs.ClearSession(sessionID)
	}
}

func (p *Pipeline) recencyStore() RecencyStore {
	p.sinksMu.Lock()
	defer p.sinksMu.Unlock()
	return p.recency
}

func (p *Pipeline) snapshotSinks() []Sink {
	p.sinksMu.Lock()
	defer p.sinksMu.Unlock()
	out := make([]Sink, len(p.sinks))
	copy(out, p.sinks)
	return out
}

// enqueue appends the record, evicting the oldest undelivered one when the
// queue is at capacity.
func (p *Pipeline) enqueue(rec Record) {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()

	if len(p.queue)-p.head >= p.queueCap {
		p.queue[p.head] = Record{}
		p.head++
	}
	p.queue = append(p.queue, rec)

	// Compact once the consumed prefix dominates the backing array.
	if p.head > 64 && p.head > len(p.queue)/2 {
		p.queue = append(p.queue[:0], p.queue[p.head:]...)
		p.head = 0
	}
}

func (p *Pipeline) dequeue() (Record, bool) {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()

	if p.head >= len(p.queue) {
		p.queue = p.queue[:0]
		p.head = 0
		return Record{}, false
	}
	rec := p.queue[p.head]
	p.queue[p.head] = Record{}
	p.head++
	return rec, true
}

// queueSnapshot copies the undelivered records, oldest first.
func (p *Pipeline) queueSnapshot() []Record {
	p.queueMu.Lock()
	defer p.queueMu.Unlock()

	out := make([]Record, len(p.queue)-p.head)
	copy(out, p.queue[p.head:])
	return out
}

// notify invokes every current subscriber with the record, on the calling
// goroutine. Each invocation is panic-isolated so one bad subscriber
// cannot break logging for others or for the caller.
func (p *Pipeline) notify(rec Record) {
	p.subsMu.Lock()
	if len(p.subs) == 0 {
		p.subsMu.Unlock()
		return
	}
	subs := make([]Subscriber, 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.subsMu.Unlock()

	for _, fn := range subs {
		invokeSubscriber(fn, rec)
	}
}

// consumeLoop is the single background consumer. It drains the queue one
// record at a time, fanning each out to all registered sinks, and waits
// for new items with a bounded timeout so the stop condition is observed
// promptly even without traffic. Once stopping and drained, it performs a
// final flush of all sinks and exits.
func (p *Pipeline) consumeLoop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(wakeInterval)
	defer ticker.Stop()

	for {
		if rec, ok := p.dequeue(); ok {
			p.deliver(rec)
			continue
		}

		if ctx.Err() != nil {
			p.Flush()
			return
		}

		select {
		case <-p.wake:
		case <-ticker.C:
		case <-ctx.Done():
		}
	}
}

func (p *Pipeline) deliver(rec Record) {
	for _, s := range p.snapshotSinks() {
		// Best effort: a failing sink must not affect the others.
		_ = consumeSink(s, rec)
	}
}

func consumeSink(s Sink, rec Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return s.Consume(rec)
}

func flushSink(s Sink) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return s.Flush()
}

func invokeSubscriber(fn Subscriber, rec Record) {
	defer func() {
		_ = recover()
	}()
	fn(rec)
}
