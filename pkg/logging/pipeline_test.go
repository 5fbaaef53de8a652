package logging

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// captureSink is a test double that records everything it consumes.
type captureSink struct {
	mu         sync.Mutex
	recs       []Record
	flushes    int
	consumeErr error
	panicky    bool
}

func (c *captureSink) Consume(rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panicky {
		panic("sink failure")
	}
	if c.consumeErr != nil {
		return c.consumeErr
	}
	c.recs = append(c.recs, rec)
	return nil
}

func (c *captureSink) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flushes++
	return nil
}

func (c *captureSink) records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.recs))
	copy(out, c.recs)
	return out
}

func (c *captureSink) flushCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flushes
}

func TestLogBelowThresholdHasNoSideEffects(t *testing.T) {
	p := NewPipelineWithCapacity(16)
	p.SetLevel(LevelWarn)

	invoked := 0
	p.Subscribe(func(Record) { invoked++ })

	p.Log(LevelInfo, "", "filtered out")
	p.Debug("also filtered")

	if depth := p.QueueDepth(); depth != 0 {
		t.Errorf("QueueDepth = %d, want 0", depth)
	}
	if invoked != 0 {
		t.Errorf("subscriber invoked %d times, want 0", invoked)
	}
}

func TestSetLevelAffectsSubsequentCallsOnly(t *testing.T) {
	p := NewPipelineWithCapacity(16)
	p.SetLevel(LevelTrace)
	p.Trace("passes")

	p.SetLevel(LevelError)
	p.Trace("dropped")

	if got := p.Level(); got != LevelError {
		t.Errorf("Level() = %v, want %v", got, LevelError)
	}
	// The already-enqueued record is never retroactively filtered.
	if depth := p.QueueDepth(); depth != 1 {
		t.Errorf("QueueDepth = %d, want 1", depth)
	}
}

func TestDropOldestPreservesMostRecent(t *testing.T) {
	p := NewPipelineWithCapacity(3)
	for i := 1; i <= 5; i++ {
		p.Log(LevelInfo, "", fmt.Sprintf("m%d", i))
	}

	got := messages(p.queueSnapshot())
	want := []string{"m3", "m4", "m5"}
	if len(got) != len(want) {
		t.Fatalf("queue holds %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("queue[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDropOldestUnderConcurrentProducers(t *testing.T) {
	const (
		producers = 4
		perWorker = 50
		capacity  = 8
	)
	p := NewPipelineWithCapacity(capacity)

	var wg sync.WaitGroup
	for w := 0; w < producers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				p.Log(LevelInfo, "", fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	if depth := p.QueueDepth(); depth != capacity {
		t.Errorf("QueueDepth = %d, want %d", depth, capacity)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	p := NewPipelineWithCapacity(64)
	sink := &captureSink{}
	p.AddSink(sink)

	p.Start()
	p.Start()

	for i := 0; i < 10; i++ {
		p.Info(fmt.Sprintf("m%d", i))
	}
	p.Shutdown(true)

	if got := len(sink.records()); got != 10 {
		t.Errorf("sink received %d records, want 10", got)
	}
}

func TestShutdownDrainsFlushesAndIsIdempotent(t *testing.T) {
	p := NewPipelineWithCapacity(1024)
	sink := &captureSink{}
	p.AddSink(sink)

	p.Start()
	for i := 0; i < 100; i++ {
		p.Info(fmt.Sprintf("m%d", i))
	}
	p.Shutdown(true)

	if got := len(sink.records()); got != 100 {
		t.Errorf("sink received %d records after drain, want 100", got)
	}
	if sink.flushCount() == 0 {
		t.Error("sink was never flushed during shutdown")
	}
	if depth := p.QueueDepth(); depth != 0 {
		t.Errorf("QueueDepth after shutdown = %d, want 0", depth)
	}

	flushesBefore := sink.flushCount()
	p.Shutdown(true) // no-op, must not block or error
	if got := sink.flushCount(); got != flushesBefore {
		t.Errorf("second Shutdown flushed again: %d -> %d", flushesBefore, got)
	}
}

func TestSubscriberReceivesExactRecord(t *testing.T) {
	p := NewPipelineWithCapacity(16)

	var got Record
	p.Subscribe(func(rec Record) { got = rec })

	p.Log(LevelWarn, "s1", "the message")

	if got.Message != "the message" {
		t.Errorf("subscriber record message = %q, want %q", got.Message, "the message")
	}
	if got.SessionID != "s1" {
		t.Errorf("subscriber record session = %q, want %q", got.SessionID, "s1")
	}
	if got.Level != LevelWarn {
		t.Errorf("subscriber record level = %v, want %v", got.Level, LevelWarn)
	}
	if got.ThreadID == 0 {
		t.Error("subscriber record has zero thread token")
	}
	if got.Timestamp.IsZero() {
		t.Error("subscriber record has zero timestamp")
	}
}

func TestFailingSubscriberIsIsolated(t *testing.T) {
	p := NewPipelineWithCapacity(64)
	sink := &captureSink{}
	p.AddSink(sink)

	p.Subscribe(func(Record) { panic("bad subscriber") })
	received := 0
	p.Subscribe(func(Record) { received++ })

	p.Start()
	for i := 0; i < 5; i++ {
		p.Info("m")
	}
	p.Shutdown(true)

	if received != 5 {
		t.Errorf("healthy subscriber invoked %d times, want 5", received)
	}
	if got := len(sink.records()); got != 5 {
		t.Errorf("sink received %d records, want 5", got)
	}
}

func TestFailingSinkIsIsolated(t *testing.T) {
	p := NewPipelineWithCapacity(64)
	broken := &captureSink{consumeErr: errors.New("disk full")}
	panicking := &captureSink{panicky: true}
	healthy := &captureSink{}
	p.AddSink(broken)
	p.AddSink(panicking)
	p.AddSink(healthy)

	p.Start()
	for i := 0; i < 5; i++ {
		p.Info("m")
	}
	p.Shutdown(true)

	if got := len(healthy.records()); got != 5 {
		t.Errorf("healthy sink received %d records, want 5", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	p := NewPipelineWithCapacity(16)

	invoked := 0
	id := p.Subscribe(func(Record) { invoked++ })
	p.Info("first")
	p.Unsubscribe(id)
	p.Info("second")

	if invoked != 1 {
		t.Errorf("subscriber invoked %d times, want 1", invoked)
	}
}

func TestSubscriberHandlesAreNeverReused(t *testing.T) {
	p := NewPipelineWithCapacity(16)

	a := p.Subscribe(func(Record) {})
	p.Unsubscribe(a)
	b := p.Subscribe(func(Record) {})
	if a == b {
		t.Errorf("handle %d was reused", a)
	}
}

func TestRemoveSinkByIdentity(t *testing.T) {
	p := NewPipelineWithCapacity(64)
	keep := &captureSink{}
	drop := &captureSink{}
	p.AddSink(keep)
	p.AddSink(drop)
	p.RemoveSink(drop)

	p.Start()
	p.Info("m")
	p.Shutdown(true)

	if got := len(keep.records()); got != 1 {
		t.Errorf("kept sink received %d records, want 1", got)
	}
	if got := len(drop.records()); got != 0 {
		t.Errorf("removed sink received %d records, want 0", got)
	}
}

func TestRecencyQueriesWithoutStore(t *testing.T) {
	p := NewPipelineWithCapacity(16)

	if got := p.RecentGlobal(10); len(got) != 0 {
		t.Errorf("RecentGlobal = %d records, want 0", len(got))
	}
	if got := p.RecentForSession("s1", 10); len(got) != 0 {
		t.Errorf("RecentForSession = %d records, want 0", len(got))
	}
	if got := p.ExportSession("s1"); got != "" {
		t.Errorf("ExportSession = %q, want empty", got)
	}
	p.ClearSession("s1") // must be a no-op
}

func TestRecencyQueriesDelegateToMemorySink(t *testing.T) {
	p := NewPipelineWithCapacity(64)
	mem := NewMemorySinkWithCapacity(3, 8)
	p.AddSink(&captureSink{}) // non-queryable sink registered first
	p.AddSink(mem)

	p.Start()
	for _, m := range []string{"A", "B", "C", "D"} {
		p.Log(LevelInfo, "", m)
	}
	p.Shutdown(true)

	got := messages(p.RecentGlobal(10))
	want := []string{"B", "C", "D"}
	if len(got) != len(want) {
		t.Fatalf("RecentGlobal returned %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("RecentGlobal[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecencyTargetMovesOnRemoval(t *testing.T) {
	p := NewPipelineWithCapacity(16)
	first := NewMemorySinkWithCapacity(8, 8)
	second := NewMemorySinkWithCapacity(8, 8)
	p.AddSink(first)
	p.AddSink(second)

	if err := second.Consume(Record{Message: "only-second"}); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	// The first registered store serves queries until it is removed.
	if got := p.RecentGlobal(10); len(got) != 0 {
		t.Fatalf("RecentGlobal before removal = %d records, want 0", len(got))
	}

	p.RemoveSink(first)
	got := messages(p.RecentGlobal(10))
	if len(got) != 1 || got[0] != "only-second" {
		t.Errorf("RecentGlobal after removal = %v, want [only-second]", got)
	}

	p.RemoveSink(second)
	if got := p.RecentGlobal(10); len(got) != 0 {
		t.Errorf("RecentGlobal with no store = %d records, want 0", len(got))
	}
}

func TestSessionLoggerScopesRecords(t *testing.T) {
	p := NewPipelineWithCapacity(64)
	mem := NewMemorySink()
	p.AddSink(mem)

	sl := NewSessionLogger(p, "conn-1")
	if sl.ID() != "conn-1" {
		t.Fatalf("ID() = %q, want %q", sl.ID(), "conn-1")
	}

	p.Start()
	sl.Info("hello")
	sl.Warn("careful")
	p.Info("unscoped")
	p.Shutdown(true)

	got := p.RecentForSession("conn-1", 10)
	if len(got) != 2 {
		t.Fatalf("RecentForSession returned %d records, want 2", len(got))
	}
	if got[0].Message != "hello" || got[1].Message != "careful" {
		t.Errorf("session records = %v, want [hello careful]", messages(got))
	}
}
