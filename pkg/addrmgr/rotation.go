package addrmgr

import (
	"time"

	"github.com/muxable/leprivacy/pkg/hci"
	"github.com/muxable/leprivacy/pkg/privacy"
	"go.uber.org/zap"
)

func (m *Manager) prepareToRotate() {
	m.pushCommand(command{typ: CommandRotateRandomAddress, contents: rotateRandomAddress{}})
}

// rotateRandomAddress derives the next address and sends it to the
// controller. The initiator address only changes once the controller
// accepts it.
func (m *Manager) rotateRandomAddress(c command) {
	policy := m.GetAddressPolicy()
	if !policy.Rotating() {
		m.advance()
		return
	}

	var (
		addr hci.Address
		err  error
	)
	if policy == UseResolvableAddress {
		addr, err = privacy.GenerateRPA(m.key.Load().irk, m.rand)
	} else {
		addr, err = privacy.GenerateNRPA(m.rand)
	}
	if err != nil {
		m.log.Error("deriving random address", zap.Error(err))
		m.scheduleRotation()
		m.advance()
		return
	}

	m.cachedAddress = hci.AddressWithType{Address: addr, Type: hci.AddressTypeRandomDeviceAddress}
	m.enqueue(c, &hci.LESetRandomAddressCommandPacket{Address: addr}, m.setRandomAddress)
}

func (m *Manager) setRandomAddress(status hci.StatusCode) {
	if status == hci.StatusSuccess {
		m.leAddress = m.cachedAddress
		m.storeInitiatorAddress(m.leAddress)
		m.metrics.Rotations.Inc()
		m.log.Info("random address rotated", zap.Stringer("address", m.leAddress))
	}
	m.scheduleRotation()
}

// scheduleRotation arms the rotation timer with a fresh interval, canceling
// any earlier one.
func (m *Manager) scheduleRotation() {
	if m.rotationTimer != nil {
		m.rotationTimer.Stop()
		m.rotationTimer = nil
	}
	if m.closed {
		return
	}
	d := m.NextPrivateAddressInterval()
	m.rotationTimer = m.clock.AfterFunc(d, func() {
		m.handler.Post(m.prepareToRotate)
	})
	m.log.Debug("next rotation scheduled", zap.Duration("in", d))
}

func (m *Manager) updateIRK(irk privacy.IRK, minRotation, maxRotation time.Duration) {
	m.key.Store(&rotationKey{irk: irk, minRotation: minRotation, maxRotation: maxRotation})
	for _, rc := range m.clients {
		if n, ok := rc.client.(IRKChangeNotifier); ok {
			n.NotifyOnIRKChange()
		}
	}
	m.log.Info("rotation key updated")
	m.pushCommand(command{typ: CommandUpdateIRK, contents: rotateRandomAddress{}})
}
