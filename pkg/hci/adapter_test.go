package hci

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type readResult struct {
	p   Packet
	err error
}

type fakeConn struct {
	written chan Packet
	reads   chan readResult
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		written: make(chan Packet, 16),
		reads:   make(chan readResult, 16),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadPacket() (Packet, error) {
	select {
	case r := <-c.reads:
		return r.p, r.err
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *fakeConn) WritePacket(p Packet) error {
	c.written <- p
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) complete(opcode Opcode, params ...byte) {
	c.reads <- readResult{p: &CommandCompleteEventPacket{NumCommandPackets: 1, CommandOpcode: opcode, ReturnParameters: params}}
}

func (c *fakeConn) nextWritten(t *testing.T) Packet {
	t.Helper()
	select {
	case p := <-c.written:
		return p
	case <-time.After(time.Second):
		t.Fatal("no packet written")
		return nil
	}
}

func (c *fakeConn) requireNothingWritten(t *testing.T) {
	t.Helper()
	select {
	case p := <-c.written:
		t.Fatalf("unexpected packet %T", p)
	case <-time.After(20 * time.Millisecond):
	}
}

type completion struct {
	opcode Opcode
	status StatusCode
}

func TestAdapterWritesOneCommandAtATime(t *testing.T) {
	conn := newFakeConn()
	a := NewAdapter(conn, zaptest.NewLogger(t))
	defer a.Close()

	results := make(chan completion, 3)
	enqueue := func(p CommandPacket) {
		a.EnqueueCommand(p, func(status StatusCode, _ []byte) {
			results <- completion{p.Opcode(), status}
		})
	}
	enqueue(&LESetRandomAddressCommandPacket{})
	enqueue(NewGenericCommandPacket(OpcodeClearFilterAcceptList))
	enqueue(NewGenericCommandPacket(OpcodeLEClearResolvingList))

	assert.Equal(t, OpcodeLESetRandomAddress, conn.nextWritten(t).(CommandPacket).Opcode())
	conn.requireNothingWritten(t)

	// a completion for some other opcode does not release the queue.
	conn.complete(OpcodeReset, 0x00)
	conn.requireNothingWritten(t)

	conn.complete(OpcodeLESetRandomAddress, byte(StatusCommandDisallowed))
	assert.Equal(t, completion{OpcodeLESetRandomAddress, StatusCommandDisallowed}, <-results)
	assert.Equal(t, OpcodeClearFilterAcceptList, conn.nextWritten(t).(CommandPacket).Opcode())

	conn.complete(OpcodeClearFilterAcceptList, 0x00)
	assert.Equal(t, completion{OpcodeClearFilterAcceptList, StatusSuccess}, <-results)
	assert.Equal(t, OpcodeLEClearResolvingList, conn.nextWritten(t).(CommandPacket).Opcode())

	conn.reads <- readResult{p: &CommandStatusEventPacket{Status: StatusUnknownCommand, CommandOpcode: OpcodeLEClearResolvingList}}
	assert.Equal(t, completion{OpcodeLEClearResolvingList, StatusUnknownCommand}, <-results)
}

func TestAdapterSynchronousHelpers(t *testing.T) {
	conn := newFakeConn()
	a := NewAdapter(conn, zaptest.NewLogger(t))
	defer a.Close()

	t.Run("ReturnParameters", func(t *testing.T) {
		size := make(chan uint8, 1)
		go func() {
			n, err := a.LEReadResolvingListSize()
			assert.NoError(t, err)
			size <- n
		}()
		assert.Equal(t, OpcodeLEReadResolvingListSize, conn.nextWritten(t).(CommandPacket).Opcode())
		conn.complete(OpcodeLEReadResolvingListSize, 0x00, 0x10)
		assert.Equal(t, uint8(16), <-size)
	})

	t.Run("ReadBDAddr", func(t *testing.T) {
		addr := make(chan Address, 1)
		go func() {
			got, err := a.ReadBDAddr()
			assert.NoError(t, err)
			addr <- got
		}()
		conn.nextWritten(t)
		conn.complete(OpcodeReadBDAddr, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06)
		assert.Equal(t, "06:05:04:03:02:01", (<-addr).String())
	})

	t.Run("AdvertisingParametersDefaults", func(t *testing.T) {
		errs := make(chan error, 1)
		go func() {
			errs <- a.LESetAdvertisingParameters(&SetAdvertisingParametersRequest{
				OwnAddressType: OwnAddressTypeRandomDeviceAddress,
			})
		}()
		p, ok := conn.nextWritten(t).(*HCILESetAdvertisingParametersCommandPacket)
		require.True(t, ok)
		assert.Equal(t, uint16(0x0800), p.AdvertisingIntervalMin)
		assert.Equal(t, uint16(0x0800), p.AdvertisingIntervalMax)
		assert.Equal(t, AdvertisingChannelMapDefault, p.AdvertisingChannelMap)
		assert.Equal(t, OwnAddressTypeRandomDeviceAddress, p.OwnAddressType)
		conn.complete(OpcodeLESetAdvertisingParameters, 0x00)
		assert.NoError(t, <-errs)

		assert.Error(t, a.LESetAdvertisingParameters(&SetAdvertisingParametersRequest{AdvertisingIntervalMin: 0x10}))
		assert.Error(t, a.LESetAdvertisingParameters(&SetAdvertisingParametersRequest{AdvertisingIntervalMin: 0x100, AdvertisingIntervalMax: 0x80}))
	})

	t.Run("Rejected", func(t *testing.T) {
		errs := make(chan error, 1)
		go func() { errs <- a.Reset() }()
		conn.nextWritten(t)
		conn.complete(OpcodeReset, byte(StatusHardwareFailure))
		var cerr *CommandError
		require.ErrorAs(t, <-errs, &cerr)
		assert.Equal(t, StatusHardwareFailure, cerr.Status)
		assert.Equal(t, OpcodeReset, cerr.Opcode)
	})
}

func TestAdapterSkipsUnsupportedPackets(t *testing.T) {
	conn := newFakeConn()
	a := NewAdapter(conn, zaptest.NewLogger(t))
	defer a.Close()

	done := make(chan StatusCode, 1)
	a.EnqueueCommand(NewGenericCommandPacket(OpcodeLEClearResolvingList), func(status StatusCode, _ []byte) {
		done <- status
	})
	conn.nextWritten(t)
	conn.reads <- readResult{err: ErrUnsupportedPacket}
	conn.complete(OpcodeLEClearResolvingList, 0x00)
	assert.Equal(t, StatusSuccess, <-done)
}

func TestAdapterSkipsMalformedPackets(t *testing.T) {
	conn := newFakeConn()
	a := NewAdapter(conn, zaptest.NewLogger(t))
	defer a.Close()

	done := make(chan StatusCode, 1)
	a.EnqueueCommand(NewGenericCommandPacket(OpcodeLEClearResolvingList), func(status StatusCode, _ []byte) {
		done <- status
	})
	conn.nextWritten(t)
	_, err := Unmarshal([]byte{0x04, 0x0E, 0x01, 0x01})
	require.ErrorIs(t, err, ErrMalformedPacket)
	conn.reads <- readResult{err: err}
	// a failed connection attempt is an ordinary event.
	conn.reads <- readResult{p: &LEConnectionCompleteEventPacket{Status: StatusCode(0x3C)}}
	conn.complete(OpcodeLEClearResolvingList, 0x00)
	assert.Equal(t, StatusSuccess, <-done)
}

// blockingWriteConn holds WritePacket until release is closed, then fails it.
type blockingWriteConn struct {
	writing chan struct{}
	release chan struct{}
	reads   chan error
}

func (c *blockingWriteConn) ReadPacket() (Packet, error) {
	return nil, <-c.reads
}

func (c *blockingWriteConn) WritePacket(Packet) error {
	close(c.writing)
	<-c.release
	return errors.New("write: broken pipe")
}

func (c *blockingWriteConn) Close() error {
	return nil
}

func TestAdapterCompletesOnceWhenWriteFailsAfterTransportLoss(t *testing.T) {
	conn := &blockingWriteConn{
		writing: make(chan struct{}),
		release: make(chan struct{}),
		reads:   make(chan error, 1),
	}
	a := NewAdapter(conn, zaptest.NewLogger(t))

	var calls atomic.Int32
	completed := make(chan StatusCode, 2)
	enqueued := make(chan struct{})
	go func() {
		defer close(enqueued)
		a.EnqueueCommand(NewGenericCommandPacket(OpcodeLEClearResolvingList), func(status StatusCode, _ []byte) {
			calls.Add(1)
			completed <- status
		})
	}()
	<-conn.writing

	// the reader fails the outstanding command while its write is in progress.
	conn.reads <- io.EOF
	assert.Equal(t, StatusUnspecifiedError, <-completed)
	<-a.done

	close(conn.release)
	<-enqueued
	assert.Never(t, func() bool { return calls.Load() != 1 }, 50*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAdapterCloseCompletesPendingCommands(t *testing.T) {
	conn := newFakeConn()
	a := NewAdapter(conn, zaptest.NewLogger(t))

	statuses := make(chan StatusCode, 3)
	for i := 0; i < 2; i++ {
		a.EnqueueCommand(NewGenericCommandPacket(OpcodeClearFilterAcceptList), func(status StatusCode, _ []byte) {
			statuses <- status
		})
	}
	conn.nextWritten(t)
	require.NoError(t, a.Close())
	assert.Equal(t, StatusUnspecifiedError, <-statuses)
	assert.Equal(t, StatusUnspecifiedError, <-statuses)

	// later commands complete immediately.
	a.EnqueueCommand(NewGenericCommandPacket(OpcodeClearFilterAcceptList), func(status StatusCode, _ []byte) {
		statuses <- status
	})
	assert.Equal(t, StatusUnspecifiedError, <-statuses)
	assert.ErrorIs(t, a.Reset(), ErrClosed)
}

func TestAdapterSubscribe(t *testing.T) {
	conn := newFakeConn()
	a := NewAdapter(conn, zaptest.NewLogger(t))
	defer a.Close()

	got := make(chan Packet, 1)
	unsubscribe := a.Subscribe(func(p Packet, err error) {
		if err == nil {
			got <- p
		}
	})
	defer unsubscribe()

	conn.reads <- readResult{p: &LEConnectionCompleteEventPacket{ConnectionHandle: 0x40}}
	select {
	case p := <-got:
		require.IsType(t, &LEConnectionCompleteEventPacket{}, p)
		assert.Equal(t, uint16(0x40), p.(*LEConnectionCompleteEventPacket).ConnectionHandle)
	case <-time.After(time.Second):
		t.Fatal("subscriber not called")
	}
}
