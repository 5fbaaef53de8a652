package main

import (
	"sync/atomic"

	"github.com/SouradipPatra7904/KeyForge/pkg/logging"
)

// The process-wide default pipeline lives at the application boundary; the
// library packages always take an explicit *logging.Pipeline.
var defaultPipeline atomic.Pointer[logging.Pipeline]

// SetDefault installs the process-wide default pipeline.
func SetDefault(p *logging.Pipeline) {
	defaultPipeline.Store(p)
}

// Default returns the process-wide default pipeline. Before SetDefault it
// returns a stopped pipeline with no sinks, so calls are safe no-ops.
func Default() *logging.Pipeline {
	if p := defaultPipeline.Load(); p != nil {
		return p
	}
	p := logging.NewPipeline()
	if defaultPipeline.CompareAndSwap(nil, p) {
		return p
	}
	return defaultPipeline.Load()
}
