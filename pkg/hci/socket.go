package hci

import (
	"fmt"
	"io"
	"math"
	"sync"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

func ioR(t, nr, size uintptr) uintptr {
	return (2 << 30) | (t << 8) | nr | (size << 16)
}

func ioW(t, nr, size uintptr) uintptr {
	return (1 << 30) | (t << 8) | nr | (size << 16)
}

func ioctl(fd, op, arg uintptr) error {
	if _, _, ep := unix.Syscall(unix.SYS_IOCTL, fd, op, arg); ep != 0 {
		return ep
	}
	return nil
}

const (
	ioctlSize     = 4
	hciMaxDevices = 16
	typHCI        = 72 // 'H'
)

var (
	hciUpDevice      = ioW(typHCI, 201, ioctlSize) // HCIDEVUP
	hciDownDevice    = ioW(typHCI, 202, ioctlSize) // HCIDEVDOWN
	hciGetDeviceList = ioR(typHCI, 210, ioctlSize) // HCIGETDEVLIST
)

type devListRequest struct {
	devNum     uint16
	devRequest [hciMaxDevices]struct {
		id  uint16
		opt uint32
	}
}

// PacketConn is the packet level transport under an Adapter.
type PacketConn interface {
	ReadPacket() (Packet, error)
	WritePacket(Packet) error
	Close() error
}

// Socket implements a HCI User Channel as a PacketConn.
type Socket struct {
	fd     int
	dev    int
	closed chan struct{}
	once   sync.Once
	rmu    sync.Mutex
	wmu    sync.Mutex
	rbuf   []byte
}

// NewSocket returns a HCI User Channel of specified device id.
// If id is -1, the first available HCI device is returned.
func NewSocket(id int) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_RAW, unix.BTPROTO_HCI)
	if err != nil {
		return nil, errors.Wrap(err, "create hci socket")
	}

	if id != -1 {
		s, err := open(fd, id)
		if err != nil {
			unix.Close(fd)
			return nil, errors.Wrapf(err, "open hci%d", id)
		}
		return s, nil
	}

	req := devListRequest{devNum: hciMaxDevices}
	if err = ioctl(uintptr(fd), hciGetDeviceList, uintptr(unsafe.Pointer(&req))); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "list hci devices")
	}
	var msg string
	for id := 0; id < int(req.devNum); id++ {
		s, err := open(fd, id)
		if err == nil {
			return s, nil
		}
		msg = msg + fmt.Sprintf("(hci%d: %s)", id, err)
	}
	unix.Close(fd)
	return nil, errors.Errorf("no devices available: %s", msg)
}

func open(fd, id int) (*Socket, error) {
	// Reset the device in case previous session didn't cleanup properly.
	if err := ioctl(uintptr(fd), hciDownDevice, uintptr(id)); err != nil {
		return nil, err
	}
	if err := ioctl(uintptr(fd), hciUpDevice, uintptr(id)); err != nil {
		return nil, err
	}

	// HCI User Channel requires exclusive access to the device.
	// The device has to be down at the time of binding.
	if err := ioctl(uintptr(fd), hciDownDevice, uintptr(id)); err != nil {
		return nil, err
	}

	sa := unix.SockaddrHCI{Dev: uint16(id), Channel: unix.HCI_CHANNEL_USER}
	if err := unix.Bind(fd, &sa); err != nil {
		return nil, err
	}

	// poll for 20ms to see if any data becomes available, then clear it
	pfds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	unix.Poll(pfds, 20)
	if pfds[0].Revents&unix.POLLIN > 0 {
		b := make([]byte, 100)
		unix.Read(fd, b)
	}

	return &Socket{
		fd:     fd,
		dev:    id,
		closed: make(chan struct{}),
		rbuf:   make([]byte, math.MaxUint16),
	}, nil
}

// Device returns the index of the bound controller, as in hciN.
func (s *Socket) Device() int {
	return s.dev
}

// ReadPacket blocks for the next packet from the controller. Packets that
// Unmarshal does not decode are returned as ErrUnsupportedPacket or
// ErrMalformedPacket.
func (s *Socket) ReadPacket() (Packet, error) {
	select {
	case <-s.closed:
		return nil, io.EOF
	default:
	}
	s.rmu.Lock()
	n, err := unix.Read(s.fd, s.rbuf)
	if err != nil {
		s.rmu.Unlock()
		return nil, err
	}
	buf := make([]byte, n)
	copy(buf, s.rbuf[:n])
	s.rmu.Unlock()
	zap.L().Debug("bluetooth reading", zap.String("packet", fmt.Sprintf("%x", buf)))
	return Unmarshal(buf)
}

func (s *Socket) WritePacket(p Packet) error {
	buf, err := p.Marshal()
	if err != nil {
		return err
	}
	zap.L().Debug("bluetooth writing", zap.String("packet", fmt.Sprintf("%x", buf)))
	s.wmu.Lock()
	defer s.wmu.Unlock()
	_, err = unix.Write(s.fd, buf)
	return err
}

func (s *Socket) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		// a Read_BD_ADDR wakes the reader blocked in unix.Read.
		s.wmu.Lock()
		unix.Write(s.fd, []byte{0x01, 0x09, 0x10, 0x00})
		s.wmu.Unlock()
		s.rmu.Lock()
		defer s.rmu.Unlock()
		err = unix.Close(s.fd)
	})
	return err
}
