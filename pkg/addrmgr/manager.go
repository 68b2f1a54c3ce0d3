package addrmgr

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/muxable/leprivacy/pkg/handler"
	"github.com/muxable/leprivacy/pkg/hci"
	"github.com/muxable/leprivacy/pkg/privacy"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultUnregisterSyncTimeout bounds UnregisterSync when callers have no
// better value.
const DefaultUnregisterSyncTimeout = 10 * time.Millisecond

// CommandChannel accepts controller commands. done must be called exactly
// once per command. *hci.Adapter implements it.
type CommandChannel interface {
	EnqueueCommand(p hci.CommandPacket, done hci.CommandCompleteFunc)
}

// Client is a consumer of the initiator address whose controller activity
// must stop while the address or the controller lists change. Calls are made
// on the manager's handler and must not block; the client acknowledges
// later with AckPause and AckResume. Clients are compared with ==, so they
// are usually pointers.
type Client interface {
	OnPause()
	OnResume()
}

// IRKChangeNotifier is implemented by clients that want to hear about a new
// rotation key.
type IRKChangeNotifier interface {
	NotifyOnIRKChange()
}

type rotationKey struct {
	irk         privacy.IRK
	minRotation time.Duration
	maxRotation time.Duration
}

type Manager struct {
	channel CommandChannel
	handler *handler.Handler
	clock   clock.Clock
	rand    io.Reader
	log     *zap.Logger
	metrics *Metrics

	acceptListSize    uint8
	resolvingListSize uint8
	publicAddress     hci.Address

	// readable from any goroutine.
	policy           atomic.Int32
	initiatorAddress atomic.Pointer[hci.AddressWithType]
	key              atomic.Pointer[rotationKey]

	// owned by the handler.
	clients         []*registeredClient
	leAddress       hci.AddressWithType
	cachedAddress   hci.AddressWithType
	rotationTimer   *clock.Timer
	cachedCommands  []command
	inFlight        *command
	supportsPrivacy bool
	settleWaiters   []chan struct{}
	closed          bool
}

// NewManager creates a manager sending its commands through channel and
// running on h. The list sizes are the capacities the controller reported.
func NewManager(channel CommandChannel, h *handler.Handler, publicAddress hci.Address, acceptListSize, resolvingListSize uint8, opts ...Option) *Manager {
	m := &Manager{
		channel:           channel,
		handler:           h,
		clock:             clock.New(),
		rand:              rand.Reader,
		log:               zap.L(),
		acceptListSize:    acceptListSize,
		resolvingListSize: resolvingListSize,
		publicAddress:     publicAddress,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics = NewMetrics(nil)
	}
	m.log = m.log.Named("addrmgr")
	m.leAddress = hci.AddressWithType{Address: publicAddress, Type: hci.AddressTypePublicDeviceAddress}
	m.cachedAddress = m.leAddress
	m.storeInitiatorAddress(m.leAddress)
	return m
}

// SetPrivacyPolicyForInitiatorAddress fixes the address policy for the life
// of the manager. It panics when called twice or with arguments no policy
// can work with.
//
// Rotating policies derive their first address right away and then rotate
// every NextPrivateAddressInterval. Fixed policies use fixedAddress, which
// for UseStaticAddress is also programmed as the controller's random address.
func (m *Manager) SetPrivacyPolicyForInitiatorAddress(policy AddressPolicy, fixedAddress hci.AddressWithType, irk privacy.IRK, supportsBlePrivacy bool, minRotation, maxRotation time.Duration) {
	switch policy {
	case UsePublicAddress:
	case UseStaticAddress:
		if fixedAddress.Address.RandomSubtype() != hci.RandomSubtypeStatic {
			panic(fmt.Sprintf("addrmgr: %s is not a static random address", fixedAddress.Address))
		}
	case UseResolvableAddress, UseNonResolvableAddress:
		checkRotationBounds(minRotation, maxRotation)
	default:
		panic(fmt.Sprintf("addrmgr: invalid address policy %s", policy))
	}
	if !m.policy.CompareAndSwap(int32(PolicyNotSet), int32(policy)) {
		panic(fmt.Sprintf("addrmgr: address policy already set to %s", m.GetAddressPolicy()))
	}

	m.log.Info("address policy set", zap.Stringer("policy", policy), zap.Bool("supports_ble_privacy", supportsBlePrivacy))
	if policy.Rotating() {
		m.key.Store(&rotationKey{irk: irk, minRotation: minRotation, maxRotation: maxRotation})
	} else {
		m.storeInitiatorAddress(fixedAddress)
	}

	m.handler.Post(func() {
		m.supportsPrivacy = supportsBlePrivacy
		switch policy {
		case UsePublicAddress:
			m.leAddress = fixedAddress
			m.cachedAddress = fixedAddress
		case UseStaticAddress:
			m.leAddress = fixedAddress
			m.cachedAddress = fixedAddress
			m.pushCommand(command{
				typ:      CommandSetRandomAddress,
				contents: hciCommand{&hci.LESetRandomAddressCommandPacket{Address: fixedAddress.Address}},
			})
		default:
			m.prepareToRotate()
		}
	})
}

func checkRotationBounds(minRotation, maxRotation time.Duration) {
	if minRotation < 0 || maxRotation < minRotation {
		panic(fmt.Sprintf("addrmgr: invalid rotation bounds [%s, %s]", minRotation, maxRotation))
	}
}

func (m *Manager) GetAddressPolicy() AddressPolicy {
	return AddressPolicy(m.policy.Load())
}

// RotatingAddress reports whether the initiator address rotates.
func (m *Manager) RotatingAddress() bool {
	return m.GetAddressPolicy().Rotating()
}

// GetInitiatorAddress returns the address currently programmed into the
// controller. It never blocks and is safe from client callbacks.
func (m *Manager) GetInitiatorAddress() hci.AddressWithType {
	return *m.initiatorAddress.Load()
}

func (m *Manager) storeInitiatorAddress(a hci.AddressWithType) {
	m.initiatorAddress.Store(&a)
}

// NewResolvableAddress derives a fresh resolvable private address from the
// rotation key without touching the initiator address.
func (m *Manager) NewResolvableAddress() (hci.AddressWithType, error) {
	k := m.key.Load()
	if k == nil {
		return hci.AddressWithType{}, errors.Errorf("addrmgr: no rotation key under policy %s", m.GetAddressPolicy())
	}
	addr, err := privacy.GenerateRPA(k.irk, m.rand)
	if err != nil {
		return hci.AddressWithType{}, err
	}
	return hci.AddressWithType{Address: addr, Type: hci.AddressTypeRandomDeviceAddress}, nil
}

// NewNonResolvableAddress returns a fresh non-resolvable private address
// without touching the initiator address.
func (m *Manager) NewNonResolvableAddress() (hci.AddressWithType, error) {
	addr, err := privacy.GenerateNRPA(m.rand)
	if err != nil {
		return hci.AddressWithType{}, err
	}
	return hci.AddressWithType{Address: addr, Type: hci.AddressTypeRandomDeviceAddress}, nil
}

// NextPrivateAddressInterval draws the delay until the next rotation
// uniformly, at millisecond granularity, from the rotation bounds. Every
// call draws again.
func (m *Manager) NextPrivateAddressInterval() time.Duration {
	k := m.key.Load()
	if k == nil {
		return 0
	}
	span := (k.maxRotation - k.minRotation) / time.Millisecond
	if span <= 0 {
		return k.minRotation
	}
	n, err := rand.Int(m.rand, big.NewInt(int64(span)+1))
	if err != nil {
		m.log.Error("drawing rotation interval", zap.Error(err))
		return k.maxRotation
	}
	return k.minRotation + time.Duration(n.Int64())*time.Millisecond
}

func (m *Manager) GetFilterAcceptListSize() uint8 {
	return m.acceptListSize
}

func (m *Manager) GetResolvingListSize() uint8 {
	return m.resolvingListSize
}

func (m *Manager) AddDeviceToFilterAcceptList(addressType hci.FilterAcceptListAddressType, address hci.Address) {
	m.post(CommandAddDeviceToFilterAcceptList, &hci.LEAddDeviceToFilterAcceptListCommandPacket{
		AddressType: addressType,
		Address:     address,
	})
}

func (m *Manager) RemoveDeviceFromFilterAcceptList(addressType hci.FilterAcceptListAddressType, address hci.Address) {
	m.post(CommandRemoveDeviceFromFilterAcceptList, &hci.LERemoveDeviceFromFilterAcceptListCommandPacket{
		AddressType: addressType,
		Address:     address,
	})
}

func (m *Manager) ClearFilterAcceptList() {
	m.post(CommandClearFilterAcceptList, hci.NewGenericCommandPacket(hci.OpcodeClearFilterAcceptList))
}

func (m *Manager) AddDeviceToResolvingList(peerType hci.PeerAddressType, peer hci.Address, peerIRK, localIRK privacy.IRK) {
	m.post(CommandAddDeviceToResolvingList, &hci.LEAddDeviceToResolvingListCommandPacket{
		PeerIdentityAddressType: peerType,
		PeerIdentityAddress:     peer,
		PeerIRK:                 peerIRK.WireBytes(),
		LocalIRK:                localIRK.WireBytes(),
	})
}

func (m *Manager) RemoveDeviceFromResolvingList(peerType hci.PeerAddressType, peer hci.Address) {
	m.post(CommandRemoveDeviceFromResolvingList, &hci.LERemoveDeviceFromResolvingListCommandPacket{
		PeerIdentityAddressType: peerType,
		PeerIdentityAddress:     peer,
	})
}

func (m *Manager) ClearResolvingList() {
	m.post(CommandClearResolvingList, hci.NewGenericCommandPacket(hci.OpcodeLEClearResolvingList))
}

// SetAddressResolutionEnable turns controller-side address resolution on or
// off. Controllers without LE privacy support are left alone.
func (m *Manager) SetAddressResolutionEnable(enable bool) {
	m.postIfPrivacy(CommandSetAddressResolutionEnable, &hci.LESetAddressResolutionEnableCommandPacket{
		AddressResolutionEnable: enable,
	})
}

// SetPrivacyMode sets the privacy mode of a resolving list entry.
// Controllers without LE privacy support are left alone.
func (m *Manager) SetPrivacyMode(peerType hci.PeerAddressType, peer hci.Address, mode hci.PrivacyMode) {
	m.postIfPrivacy(CommandSetPrivacyMode, &hci.LESetPrivacyModeCommandPacket{
		PeerIdentityAddressType: peerType,
		PeerIdentityAddress:     peer,
		PrivacyMode:             mode,
	})
}

// UpdateIRK replaces the rotation key and bounds and tells IRKChangeNotifier
// clients at once. The rotation to an address under the new key goes through
// the barrier.
func (m *Manager) UpdateIRK(irk privacy.IRK, minRotation, maxRotation time.Duration) {
	checkRotationBounds(minRotation, maxRotation)
	m.handler.Post(func() {
		m.updateIRK(irk, minRotation, maxRotation)
	})
}

func (m *Manager) post(typ CommandType, p hci.CommandPacket) {
	m.handler.Post(func() {
		m.pushCommand(command{typ: typ, contents: hciCommand{p}})
	})
}

func (m *Manager) postIfPrivacy(typ CommandType, p hci.CommandPacket) {
	m.handler.Post(func() {
		if !m.supportsPrivacy {
			m.log.Warn("controller does not support LE privacy, skipping command", zap.Stringer("type", typ))
			return
		}
		m.pushCommand(command{typ: typ, contents: hciCommand{p}})
	})
}

// NumberCachedCommands returns the number of commands waiting for the
// barrier, excluding the one in flight. It waits for the handler.
func (m *Manager) NumberCachedCommands() int {
	var n int
	m.handler.Call(func() {
		n = len(m.cachedCommands)
	})
	return n
}

// GetRegisteredClientStates returns client states in registration order. It
// waits for the handler.
func (m *Manager) GetRegisteredClientStates() []ClientState {
	var states []ClientState
	m.handler.Call(func() {
		states = make([]ClientState, 0, len(m.clients))
		for _, c := range m.clients {
			states = append(states, c.state)
		}
	})
	return states
}

// Close stops address rotation. Commands already queued still run.
func (m *Manager) Close() {
	m.handler.Call(func() {
		m.closed = true
		if m.rotationTimer != nil {
			m.rotationTimer.Stop()
			m.rotationTimer = nil
		}
	})
}
