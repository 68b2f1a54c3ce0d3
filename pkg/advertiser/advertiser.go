// Package advertiser runs legacy advertising as a client of the address
// manager, stepping aside whenever the manager changes the random address or
// the controller lists.
package advertiser

import (
	"sync"
	"time"

	"github.com/muxable/leprivacy/pkg/addrmgr"
	"github.com/muxable/leprivacy/pkg/handler"
	"github.com/muxable/leprivacy/pkg/hci"
	"go.uber.org/zap"
)

// Controller is the subset of *hci.Adapter used for advertising.
type Controller interface {
	LESetAdvertisingParameters(request *hci.SetAdvertisingParametersRequest) error
	SetAdvertisingData(data ...hci.DataType) error
	LESetAdvertisingEnable(enable bool) error
}

// Manager is the subset of *addrmgr.Manager an advertiser talks to.
type Manager interface {
	Register(c addrmgr.Client) addrmgr.AddressPolicy
	UnregisterSync(c addrmgr.Client, timeout time.Duration) bool
	AckPause(c addrmgr.Client)
	AckResume(c addrmgr.Client)
	GetInitiatorAddress() hci.AddressWithType
}

// Advertiser is an address manager client. Pause and resume requests run in
// call order on the advertiser's own worker. It cannot be restarted after
// Stop.
type Advertiser struct {
	ctrl   Controller
	mgr    Manager
	log    *zap.Logger
	data   []hci.DataType
	worker *handler.Handler

	Interval time.Duration

	mu         sync.Mutex
	registered bool
	paused     bool
	enabled    bool
}

func New(ctrl Controller, mgr Manager, logger *zap.Logger, data ...hci.DataType) *Advertiser {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("advertiser")
	return &Advertiser{
		ctrl:   ctrl,
		mgr:    mgr,
		log:    log,
		data:   data,
		worker: handler.New(log),
	}
}

// Start registers with the manager and starts advertising, unless the
// manager has already asked for a pause.
func (a *Advertiser) Start() error {
	a.mu.Lock()
	a.registered = true
	a.mu.Unlock()

	policy := a.mgr.Register(a)
	a.log.Info("advertiser registered", zap.Stringer("policy", policy))

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.paused {
		return nil
	}
	return a.enable()
}

// Stop stops advertising and leaves the manager. Pauses requested after Stop
// are not acknowledged.
func (a *Advertiser) Stop() error {
	a.mu.Lock()
	a.registered = false
	err := a.disable()
	a.mu.Unlock()

	if !a.mgr.UnregisterSync(a, addrmgr.DefaultUnregisterSyncTimeout) {
		a.log.Warn("address manager still busy after unregister")
	}
	a.worker.Close()
	return err
}

func (a *Advertiser) OnPause() {
	a.worker.Post(a.pause)
}

func (a *Advertiser) OnResume() {
	a.worker.Post(a.resume)
}

func (a *Advertiser) pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.registered {
		return
	}
	a.paused = true
	if err := a.disable(); err != nil {
		a.log.Error("disabling advertising", zap.Error(err))
	}
	a.mgr.AckPause(a)
}

func (a *Advertiser) resume() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.registered {
		return
	}
	a.paused = false
	if err := a.enable(); err != nil {
		a.log.Error("enabling advertising", zap.Error(err))
	}
	a.mgr.AckResume(a)
}

func (a *Advertiser) String() string {
	return "advertiser"
}

func (a *Advertiser) NotifyOnIRKChange() {
	a.log.Info("local irk changed")
}

// Enabled reports whether advertising is currently on.
func (a *Advertiser) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// enable programs the parameters for the current initiator address, the
// advertising data, and turns advertising on. a.mu must be held.
func (a *Advertiser) enable() error {
	addr := a.mgr.GetInitiatorAddress()
	interval := intervalUnits(a.Interval)
	err := a.ctrl.LESetAdvertisingParameters(&hci.SetAdvertisingParametersRequest{
		AdvertisingIntervalMin: interval,
		AdvertisingIntervalMax: interval,
		AdvertisingType:        hci.AdvertisingTypeConnectableAndScannableUndirectedAdvertising,
		OwnAddressType:         addr.OwnAddressType(),
	})
	if err != nil {
		return err
	}
	if err := a.ctrl.SetAdvertisingData(a.data...); err != nil {
		return err
	}
	if err := a.ctrl.LESetAdvertisingEnable(true); err != nil {
		return err
	}
	a.enabled = true
	a.log.Debug("advertising", zap.Stringer("address", addr))
	return nil
}

// disable turns advertising off if it is on. a.mu must be held.
func (a *Advertiser) disable() error {
	if !a.enabled {
		return nil
	}
	if err := a.ctrl.LESetAdvertisingEnable(false); err != nil {
		return err
	}
	a.enabled = false
	return nil
}

// intervalUnits converts d to 0.625ms units. Zero leaves the controller
// default.
func intervalUnits(d time.Duration) uint16 {
	if d <= 0 {
		return 0
	}
	return uint16(d * 8 / (5 * time.Millisecond))
}
