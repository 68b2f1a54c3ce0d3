package addrmgr

import (
	"time"

	"go.uber.org/zap"
)

type registeredClient struct {
	client Client
	state  ClientState
}

// Register adds c to the barrier and returns the current policy so c can
// configure itself. A client joining while commands are pending is paused
// before the next one is sent. Register panics on a nil client.
func (m *Manager) Register(c Client) AddressPolicy {
	if c == nil {
		panic("addrmgr: register nil client")
	}
	m.handler.Post(func() { m.registerClient(c) })
	return m.GetAddressPolicy()
}

// Unregister removes c. A barrier c was holding up no longer waits for it.
func (m *Manager) Unregister(c Client) {
	m.handler.Post(func() { m.unregisterClient(c) })
}

// UnregisterSync removes c and waits up to timeout for the commands pending
// at that moment to be sent and completed. It reports whether they were. c is
// removed either way. It must not be called from a client callback.
func (m *Manager) UnregisterSync(c Client, timeout time.Duration) bool {
	settled := make(chan struct{})
	if !m.handler.Post(func() {
		m.unregisterClient(c)
		if m.idle() {
			close(settled)
			return
		}
		m.settleWaiters = append(m.settleWaiters, settled)
	}) {
		return false
	}

	t := m.clock.Timer(timeout)
	defer t.Stop()
	select {
	case <-settled:
		return true
	case <-t.C:
		m.log.Warn("unregister did not settle in time", zap.Duration("timeout", timeout))
		return false
	}
}

// AckPause acknowledges an OnPause. Acknowledging twice is a no-op;
// acknowledging for a client that is not registered aborts.
func (m *Manager) AckPause(c Client) {
	m.handler.Post(func() { m.ackPause(c) })
}

// AckResume acknowledges an OnResume. Acknowledging twice is a no-op;
// acknowledging for a client that is not registered aborts.
func (m *Manager) AckResume(c Client) {
	m.handler.Post(func() { m.ackResume(c) })
}

func (m *Manager) find(c Client) int {
	for i, rc := range m.clients {
		if rc.client == c {
			return i
		}
	}
	return -1
}

func (m *Manager) registerClient(c Client) {
	if m.find(c) >= 0 {
		m.log.Warn("client already registered")
		return
	}
	m.clients = append(m.clients, &registeredClient{client: c, state: Resumed})
	m.metrics.RegisteredClients.Set(float64(len(m.clients)))
	m.log.Debug("client registered", zap.Int("clients", len(m.clients)))
	if len(m.cachedCommands) > 0 {
		m.advance()
	}
}

func (m *Manager) unregisterClient(c Client) {
	i := m.find(c)
	if i < 0 {
		m.log.Debug("unregister of unknown client")
		return
	}
	state := m.clients[i].state
	m.clients = append(m.clients[:i], m.clients[i+1:]...)
	m.metrics.RegisteredClients.Set(float64(len(m.clients)))
	m.log.Debug("client unregistered", zap.Stringer("state", state), zap.Int("clients", len(m.clients)))
	if len(m.cachedCommands) > 0 {
		m.advance()
	}
}

func (m *Manager) ackPause(c Client) {
	i := m.find(c)
	if i < 0 {
		m.log.Fatal("pause acknowledged by unregistered client")
		return
	}
	rc := m.clients[i]
	switch rc.state {
	case Paused:
		return
	case WaitingForPause:
		rc.state = Paused
	default:
		m.log.Warn("unexpected pause acknowledgement", zap.Stringer("state", rc.state))
		return
	}
	m.advance()
}

func (m *Manager) ackResume(c Client) {
	i := m.find(c)
	if i < 0 {
		m.log.Fatal("resume acknowledged by unregistered client")
		return
	}
	rc := m.clients[i]
	switch rc.state {
	case Resumed:
	case WaitingForResume:
		rc.state = Resumed
	default:
		m.log.Warn("unexpected resume acknowledgement", zap.Stringer("state", rc.state))
	}
}

// pauseRegisteredClients asks every client that is not already pausing to
// pause.
func (m *Manager) pauseRegisteredClients() {
	for _, rc := range m.clients {
		switch rc.state {
		case Paused, WaitingForPause:
		case WaitingForResume, Resumed:
			rc.state = WaitingForPause
			rc.client.OnPause()
		}
	}
}

// resumeRegisteredClients resumes the paused clients once the queue has
// drained and releases UnregisterSync callers.
func (m *Manager) resumeRegisteredClients() {
	if !m.idle() {
		return
	}
	for _, rc := range m.clients {
		if rc.state == Paused {
			rc.state = WaitingForResume
			rc.client.OnResume()
		}
	}
	for _, w := range m.settleWaiters {
		close(w)
	}
	m.settleWaiters = nil
}

func (m *Manager) allPaused() bool {
	for _, rc := range m.clients {
		if rc.state != Paused {
			return false
		}
	}
	return true
}

func (m *Manager) idle() bool {
	return m.inFlight == nil && len(m.cachedCommands) == 0
}
