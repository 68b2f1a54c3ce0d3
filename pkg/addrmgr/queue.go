package addrmgr

import (
	"github.com/muxable/leprivacy/pkg/hci"
	"go.uber.org/zap"
)

func (m *Manager) pushCommand(c command) {
	m.cachedCommands = append(m.cachedCommands, c)
	m.metrics.QueueDepth.Set(float64(len(m.cachedCommands)))
	m.log.Debug("command queued", zap.Stringer("type", c.typ), zap.Int("cached", len(m.cachedCommands)))
	m.advance()
}

// advance moves the barrier forward. With a command in flight it waits for
// the completion. With an empty queue it resumes the clients. Otherwise it
// pauses whoever is not paused yet, or sends the next command when every
// client is paused.
func (m *Manager) advance() {
	if m.inFlight != nil {
		return
	}
	if len(m.cachedCommands) == 0 {
		m.resumeRegisteredClients()
		return
	}
	if !m.allPaused() {
		m.pauseRegisteredClients()
		return
	}
	m.handleNextCommand()
}

func (m *Manager) handleNextCommand() {
	c := m.cachedCommands[0]
	m.cachedCommands[0] = command{}
	m.cachedCommands = m.cachedCommands[1:]
	m.metrics.QueueDepth.Set(float64(len(m.cachedCommands)))

	switch contents := c.contents.(type) {
	case rotateRandomAddress:
		m.rotateRandomAddress(c)
	case hciCommand:
		m.enqueue(c, contents.packet, nil)
	}
}

// enqueue sends p to the controller on behalf of c. after, if set, runs on
// the handler with the completion status before the barrier moves on.
func (m *Manager) enqueue(c command, p hci.CommandPacket, after func(hci.StatusCode)) {
	m.inFlight = &c
	m.log.Debug("sending command", zap.Stringer("type", c.typ), zap.Stringer("opcode", p.Opcode()))
	m.channel.EnqueueCommand(p, func(status hci.StatusCode, _ []byte) {
		m.handler.Post(func() {
			m.onCommandComplete(c, status, after)
		})
	})
}

func (m *Manager) onCommandComplete(c command, status hci.StatusCode, after func(hci.StatusCode)) {
	m.inFlight = nil
	m.metrics.Commands.WithLabelValues(c.typ.String(), status.String()).Inc()
	if status != hci.StatusSuccess {
		m.log.Warn("controller rejected command", zap.Stringer("type", c.typ), zap.Stringer("status", status))
	}
	if after != nil {
		after(status)
	}
	m.advance()
}
