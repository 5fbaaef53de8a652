package logging

import (
	"testing"
)

func TestLevelOrdering(t *testing.T) {
	ordered := []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal}
	for i := 1; i < len(ordered); i++ {
		if !(ordered[i-1] < ordered[i]) {
			t.Errorf("%v is not below %v", ordered[i-1], ordered[i])
		}
	}
}

func TestParseLevelRoundTrip(t *testing.T) {
	for _, l := range []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal} {
		got, err := ParseLevel(l.String())
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", l.String(), err)
			continue
		}
		if got != l {
			t.Errorf("ParseLevel(%q) = %v, want %v", l.String(), got, l)
		}
	}

	if got, err := ParseLevel("warning"); err != nil || got != LevelWarn {
		t.Errorf("ParseLevel(warning) = %v, %v, want LevelWarn", got, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) succeeded, want error")
	}
}

func TestGoroutineIDIsStableAndDistinct(t *testing.T) {
	a := goroutineID()
	b := goroutineID()
	if a == 0 {
		t.Fatal("goroutineID returned 0")
	}
	if a != b {
		t.Errorf("goroutineID changed within one goroutine: %d then %d", a, b)
	}

	ch := make(chan uint64)
	go func() { ch <- goroutineID() }()
	if other := <-ch; other == a {
		t.Errorf("distinct goroutines share token %d", a)
	}
}
