// Package gate tracks whether the simulated account is "live". The gate is
// observable state only: order submission is accepted regardless of
// connection state, matching the reference behavior of the demo interface.
package gate

import (
	"sync"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/domain"
)

// Gate holds the connection flag and the opaque credential configured by the
// presentation layer.
type Gate struct {
	mu         sync.RWMutex
	connected  bool
	credential string
}

// New creates a disconnected gate.
func New() *Gate {
	return &Gate{}
}

// Connect marks the account live. It fails with domain.ErrMissingCredential
// when the credential is empty, leaving the gate disconnected.
func (g *Gate) Connect(credential string) error {
	if credential == "" {
		return domain.ErrMissingCredential
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = true
	g.credential = credential
	return nil
}

// Disconnect marks the account offline. Calling it repeatedly is a no-op
// beyond duplicate feed events published by the coordinator.
func (g *Gate) Disconnect() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = false
}

// Connected reports whether the account is live.
func (g *Gate) Connected() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.connected
}

// State returns a snapshot of the connection state.
func (g *Gate) State() domain.ConnectionState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return domain.ConnectionState{Connected: g.connected, Credential: g.credential}
}
