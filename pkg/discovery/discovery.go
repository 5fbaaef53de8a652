// Package discovery announces a KeyForge server on the local network via
// mDNS so interactive clients can find it without configuration.
package discovery

import (
	"fmt"
	"sync"

	"github.com/enbility/zeroconf/v3"
)

const (
	// ServiceType is the mDNS service type for KeyForge servers.
	ServiceType = "_keyforge._tcp"

	// Domain is the mDNS domain.
	Domain = "local."
)

// Announcer advertises one KeyForge server instance over mDNS.
type Announcer struct {
	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAnnouncer creates an idle Announcer.
func NewAnnouncer() *Announcer {
	return &Announcer{}
}

// Announce starts advertising the instance on the given port.
func (a *Announcer) Announce(instance string, port int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		return fmt.Errorf("already announcing")
	}

	server, err := zeroconf.Register(
		instance,
		ServiceType,
		Domain,
		port,
		[]string{"proto=keyforge-text"},
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}

	a.server = server
	return nil
}

// Stop withdraws the advertisement. Safe to call when not announcing.
func (a *Announcer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
