package hci

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrClosed is returned once the adapter's transport has failed or been closed.
var ErrClosed = errors.New("hci: adapter closed")

// CommandCompleteFunc receives the outcome of an enqueued command: the status
// octet and the return parameters that follow it.
type CommandCompleteFunc func(status StatusCode, returnParameters []byte)

type pendingCommand struct {
	id     string
	packet CommandPacket
	done   CommandCompleteFunc
}

// Adapter is the command channel to a controller. It keeps a FIFO of
// commands and writes the next one only after the controller has completed
// the previous one.
type Adapter struct {
	conn PacketConn
	log  *zap.Logger

	onPacketLock sync.Mutex
	onPacket     map[string]func(Packet, error)

	cmdLock        sync.Mutex
	cmdQueue       []*pendingCommand
	cmdOutstanding *pendingCommand
	err            error

	done chan struct{}
}

func NewAdapter(conn PacketConn, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.L()
	}
	a := &Adapter{
		conn:     conn,
		log:      logger.Named("hci"),
		onPacket: make(map[string]func(Packet, error)),
		done:     make(chan struct{}),
	}
	go a.readLoop()
	return a
}

func (a *Adapter) readLoop() {
	defer close(a.done)
	for {
		p, err := a.conn.ReadPacket()
		if errors.Is(err, ErrUnsupportedPacket) {
			continue
		}
		if errors.Is(err, ErrMalformedPacket) {
			a.log.Warn("skipping malformed packet", zap.Error(err))
			continue
		}
		if err != nil {
			a.fail(err)
			a.onPacketLock.Lock()
			for _, cb := range a.onPacket {
				go cb(nil, err)
			}
			a.onPacketLock.Unlock()
			return
		}
		switch p := p.(type) {
		case *CommandCompleteEventPacket:
			status := p.Status()
			var params []byte
			if len(p.ReturnParameters) > 1 {
				params = p.ReturnParameters[1:]
			}
			a.complete(p.CommandOpcode, status, params)
		case *CommandStatusEventPacket:
			// none of the commands issued here expect a later completion event,
			// so a status event always ends the command.
			a.complete(p.CommandOpcode, p.Status, nil)
		}
		a.onPacketLock.Lock()
		for _, cb := range a.onPacket {
			go cb(p, nil)
		}
		a.onPacketLock.Unlock()
	}
}

// Subscribe registers fn for every packet read from the controller. fn is
// called with a non-nil error once when the transport fails.
func (a *Adapter) Subscribe(fn func(Packet, error)) (unsubscribe func()) {
	id := uuid.NewString()
	a.onPacketLock.Lock()
	a.onPacket[id] = fn
	a.onPacketLock.Unlock()
	return func() {
		a.onPacketLock.Lock()
		delete(a.onPacket, id)
		a.onPacketLock.Unlock()
	}
}

// EnqueueCommand queues p without blocking. done is called exactly once,
// from the adapter's reader goroutine or from the caller when the adapter has
// already failed.
func (a *Adapter) EnqueueCommand(p CommandPacket, done CommandCompleteFunc) {
	c := &pendingCommand{id: uuid.NewString(), packet: p, done: done}
	a.cmdLock.Lock()
	if a.err != nil {
		a.cmdLock.Unlock()
		a.log.Warn("dropping command on failed adapter", zap.Stringer("opcode", p.Opcode()), zap.Error(a.err))
		done(StatusUnspecifiedError, nil)
		return
	}
	a.cmdQueue = append(a.cmdQueue, c)
	a.cmdLock.Unlock()
	a.sendNext()
}

func (a *Adapter) sendNext() {
	for {
		a.cmdLock.Lock()
		if a.cmdOutstanding != nil || len(a.cmdQueue) == 0 || a.err != nil {
			a.cmdLock.Unlock()
			return
		}
		c := a.cmdQueue[0]
		a.cmdQueue = a.cmdQueue[1:]
		a.cmdOutstanding = c
		a.cmdLock.Unlock()

		a.log.Debug("sending command", zap.String("id", c.id), zap.Stringer("opcode", c.packet.Opcode()))
		err := a.conn.WritePacket(c.packet)
		if err == nil {
			return
		}
		a.log.Error("command write failed", zap.String("id", c.id), zap.Stringer("opcode", c.packet.Opcode()), zap.Error(err))
		a.cmdLock.Lock()
		owned := a.cmdOutstanding == c
		if owned {
			a.cmdOutstanding = nil
		}
		a.cmdLock.Unlock()
		if !owned {
			// fail already completed c.
			return
		}
		c.done(StatusUnspecifiedError, nil)
	}
}

func (a *Adapter) complete(opcode Opcode, status StatusCode, params []byte) {
	a.cmdLock.Lock()
	c := a.cmdOutstanding
	if c == nil || c.packet.Opcode() != opcode {
		a.cmdLock.Unlock()
		a.log.Debug("completion for command not in flight", zap.Stringer("opcode", opcode))
		return
	}
	a.cmdOutstanding = nil
	a.cmdLock.Unlock()

	a.log.Debug("command complete", zap.String("id", c.id), zap.Stringer("opcode", opcode), zap.Stringer("status", status))
	c.done(status, params)
	a.sendNext()
}

// fail completes every queued command with an unspecified error.
func (a *Adapter) fail(err error) {
	a.cmdLock.Lock()
	if a.err == nil {
		a.err = err
	}
	pending := a.cmdQueue
	if a.cmdOutstanding != nil {
		pending = append([]*pendingCommand{a.cmdOutstanding}, pending...)
	}
	a.cmdQueue = nil
	a.cmdOutstanding = nil
	a.cmdLock.Unlock()

	if len(pending) > 0 {
		a.log.Warn("failing queued commands", zap.Int("count", len(pending)), zap.Error(err))
	}
	for _, c := range pending {
		c.done(StatusUnspecifiedError, nil)
	}
}

// op runs p through the command queue and waits for its completion.
func (a *Adapter) op(p CommandPacket) ([]byte, error) {
	type result struct {
		status StatusCode
		params []byte
	}
	done := make(chan result, 1)
	a.EnqueueCommand(p, func(status StatusCode, params []byte) {
		done <- result{status, params}
	})
	r := <-done
	if r.status != StatusSuccess {
		a.cmdLock.Lock()
		err := a.err
		a.cmdLock.Unlock()
		if err != nil {
			return nil, errors.Wrap(ErrClosed, err.Error())
		}
		return nil, &CommandError{Opcode: p.Opcode(), Status: r.status}
	}
	return r.params, nil
}

// Close closes the transport and waits for the reader to finish. Commands
// still queued complete with StatusUnspecifiedError.
func (a *Adapter) Close() error {
	err := a.conn.Close()
	<-a.done
	return err
}

func (a *Adapter) Reset() error {
	_, err := a.op(NewGenericCommandPacket(OpcodeReset))
	return err
}

func (a *Adapter) ReadBDAddr() (Address, error) {
	var addr Address
	buf, err := a.op(NewGenericCommandPacket(OpcodeReadBDAddr))
	if err != nil {
		return addr, err
	}
	if copy(addr[:], buf) != 6 {
		return addr, errors.New("short Read_BD_ADDR response")
	}
	return addr, nil
}

func (a *Adapter) ReadFilterAcceptListSize() (uint8, error) {
	buf, err := a.op(NewGenericCommandPacket(OpcodeReadFilterAcceptListSize))
	if err != nil {
		return 0, err
	}
	if len(buf) < 1 {
		return 0, errors.New("short filter accept list size response")
	}
	return buf[0], nil
}

func (a *Adapter) LEReadResolvingListSize() (uint8, error) {
	buf, err := a.op(NewGenericCommandPacket(OpcodeLEReadResolvingListSize))
	if err != nil {
		return 0, err
	}
	if len(buf) < 1 {
		return 0, errors.New("short resolving list size response")
	}
	return buf[0], nil
}

func (a *Adapter) LESetAdvertisingEnable(enable bool) error {
	_, err := a.op(&LESetAdvertisingEnableCommandPacket{AdvertisingEnable: enable})
	return err
}
