package hci

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// ErrUnsupportedPacket is returned by Unmarshal for packets this package does
// not decode. Readers skip them.
var ErrUnsupportedPacket = errors.New("unsupported packet type")

// ErrMalformedPacket matches errors from Unmarshal for packets of a supported
// type whose contents do not decode. Readers skip them too.
var ErrMalformedPacket = errors.New("malformed packet")

type malformedPacketError struct {
	err error
}

func (e *malformedPacketError) Error() string {
	return ErrMalformedPacket.Error() + ": " + e.err.Error()
}

func (e *malformedPacketError) Unwrap() error { return e.err }

func (e *malformedPacketError) Is(target error) bool { return target == ErrMalformedPacket }

type Packet interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

type CommandPacket interface {
	Packet
	Opcode() Opcode
}

func Unmarshal(buf []byte) (Packet, error) {
	p, err := unmarshal(buf)
	if err != nil {
		if errors.Is(err, ErrUnsupportedPacket) {
			return nil, err
		}
		return nil, &malformedPacketError{err: err}
	}
	return p, nil
}

func unmarshal(buf []byte) (Packet, error) {
	if len(buf) == 0 {
		return nil, io.ErrShortBuffer
	}
	switch PacketType(buf[0]) {
	case PacketTypeCommand:
		p := &GenericCommandPacket{}
		if err := p.Unmarshal(buf); err != nil {
			return nil, err
		}
		return p, nil
	case PacketTypeEvent:
		if len(buf) < 3 || len(buf) != int(buf[2])+3 {
			return nil, io.ErrShortBuffer
		}
		switch EventCode(buf[1]) {
		case EventCodeCommandComplete:
			p := &CommandCompleteEventPacket{}
			return p, p.Unmarshal(buf)
		case EventCodeCommandStatus:
			p := &CommandStatusEventPacket{}
			return p, p.Unmarshal(buf)
		case EventCodeLEMeta:
			if len(buf) > 3 && LEMetaSubeventCode(buf[3]) == LEMetaSubeventCodeConnectionComplete {
				p := &LEConnectionCompleteEventPacket{}
				if err := p.Unmarshal(buf); err != nil {
					return nil, err
				}
				return p, nil
			}
		}
	}
	return nil, ErrUnsupportedPacket
}

// marshalCommand frames the parameters of a command with the packet type,
// opcode and parameter length.
func marshalCommand(opcode Opcode, params []byte) ([]byte, error) {
	if len(params) > math.MaxUint8 {
		return nil, io.ErrShortWrite
	}
	buf := make([]byte, 4+len(params))
	buf[0] = byte(PacketTypeCommand)
	binary.LittleEndian.PutUint16(buf[1:], uint16(opcode))
	buf[3] = byte(len(params))
	copy(buf[4:], params)
	return buf, nil
}

// unmarshalCommand checks the framing of a command and returns its
// parameters, which must be exactly n bytes long.
func unmarshalCommand(buf []byte, opcode Opcode, n int) ([]byte, error) {
	if len(buf) < 4 || buf[0] != byte(PacketTypeCommand) || Opcode(binary.LittleEndian.Uint16(buf[1:])) != opcode {
		return nil, errors.New("incorrect packet")
	}
	if int(buf[3]) != n || len(buf) != 4+n {
		return nil, io.ErrShortBuffer
	}
	return buf[4:], nil
}

// GenericCommandPacket encompasses many argument-less packets.
type GenericCommandPacket struct {
	opcode Opcode
}

func NewGenericCommandPacket(opcode Opcode) *GenericCommandPacket {
	return &GenericCommandPacket{opcode}
}

func (p *GenericCommandPacket) Marshal() ([]byte, error) {
	return marshalCommand(p.opcode, nil)
}

func (p *GenericCommandPacket) Unmarshal(buf []byte) error {
	if len(buf) != 4 || buf[0] != byte(PacketTypeCommand) {
		return errors.New("incorrect packet")
	}
	if buf[3] != 0 {
		return io.ErrShortBuffer
	}
	p.opcode = Opcode(binary.LittleEndian.Uint16(buf[1:3]))
	return nil
}

func (p *GenericCommandPacket) Opcode() Opcode {
	return p.opcode
}

type LESetAdvertisingEnableCommandPacket struct {
	AdvertisingEnable bool
}

func (p *LESetAdvertisingEnableCommandPacket) Marshal() ([]byte, error) {
	return marshalCommand(OpcodeLESetAdvertisingEnable, []byte{boolByte(p.AdvertisingEnable)})
}

func (p *LESetAdvertisingEnableCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLESetAdvertisingEnable, 1)
	if err != nil {
		return err
	}
	p.AdvertisingEnable = params[0] == 1
	return nil
}

func (p *LESetAdvertisingEnableCommandPacket) Opcode() Opcode {
	return OpcodeLESetAdvertisingEnable
}

type CommandCompleteEventPacket struct {
	NumCommandPackets uint8
	CommandOpcode     Opcode
	ReturnParameters  []byte
}

func (p *CommandCompleteEventPacket) Unmarshal(buf []byte) error {
	if len(buf) < 6 || buf[0] != byte(PacketTypeEvent) || buf[1] != byte(EventCodeCommandComplete) {
		return errors.New("incorrect packet")
	}
	if len(buf) != int(buf[2])+3 {
		return io.ErrShortBuffer
	}
	p.NumCommandPackets = buf[3]
	p.CommandOpcode = Opcode(binary.LittleEndian.Uint16(buf[4:]))
	p.ReturnParameters = buf[6:]
	return nil
}

func (p *CommandCompleteEventPacket) Marshal() ([]byte, error) {
	if len(p.ReturnParameters)+3 > math.MaxUint8 {
		return nil, io.ErrShortWrite
	}
	buf := make([]byte, 6+len(p.ReturnParameters))
	buf[0] = byte(PacketTypeEvent)
	buf[1] = byte(EventCodeCommandComplete)
	buf[2] = byte(len(p.ReturnParameters) + 3)
	buf[3] = p.NumCommandPackets
	binary.LittleEndian.PutUint16(buf[4:], uint16(p.CommandOpcode))
	copy(buf[6:], p.ReturnParameters)
	return buf, nil
}

// Status returns the status octet that leads the return parameters of every
// command this package issues.
func (p *CommandCompleteEventPacket) Status() StatusCode {
	if len(p.ReturnParameters) == 0 {
		return StatusUnspecifiedError
	}
	return StatusCode(p.ReturnParameters[0])
}

type CommandStatusEventPacket struct {
	Status            StatusCode
	NumCommandPackets uint8
	CommandOpcode     Opcode
}

func (p *CommandStatusEventPacket) Unmarshal(buf []byte) error {
	if len(buf) < 3 || buf[0] != byte(PacketTypeEvent) || buf[1] != byte(EventCodeCommandStatus) {
		return errors.New("incorrect packet")
	}
	if buf[2] != 4 || len(buf) != 7 {
		return io.ErrShortBuffer
	}
	p.Status = StatusCode(buf[3])
	p.NumCommandPackets = buf[4]
	p.CommandOpcode = Opcode(binary.LittleEndian.Uint16(buf[5:]))
	return nil
}

func (p *CommandStatusEventPacket) Marshal() ([]byte, error) {
	buf := make([]byte, 7)
	buf[0] = byte(PacketTypeEvent)
	buf[1] = byte(EventCodeCommandStatus)
	buf[2] = 4
	buf[3] = byte(p.Status)
	buf[4] = p.NumCommandPackets
	binary.LittleEndian.PutUint16(buf[5:], uint16(p.CommandOpcode))
	return buf, nil
}

// LEConnectionCompleteEventPacket reports a new connection. A non-zero Status
// reports a failed attempt, such as a directed advertising timeout; the other
// fields are then not meaningful.
type LEConnectionCompleteEventPacket struct {
	Status               StatusCode
	ConnectionHandle     uint16
	Role                 Role
	PeerAddressType      PeerAddressType
	PeerAddress          Address
	ConnectionInterval   uint16
	PeripheralLatency    uint16
	SupervisionTimeout   uint16
	CentralClockAccuracy CentralClockAccuracy
}

func (p *LEConnectionCompleteEventPacket) Marshal() ([]byte, error) {
	buf := make([]byte, 22)
	buf[0] = byte(PacketTypeEvent)
	buf[1] = byte(EventCodeLEMeta)
	buf[2] = 19
	buf[3] = byte(LEMetaSubeventCodeConnectionComplete)
	buf[4] = byte(p.Status)
	binary.LittleEndian.PutUint16(buf[5:], p.ConnectionHandle)
	buf[7] = byte(p.Role)
	buf[8] = byte(p.PeerAddressType)
	copy(buf[9:15], p.PeerAddress[:])
	binary.LittleEndian.PutUint16(buf[15:], p.ConnectionInterval)
	binary.LittleEndian.PutUint16(buf[17:], p.PeripheralLatency)
	binary.LittleEndian.PutUint16(buf[19:], p.SupervisionTimeout)
	buf[21] = byte(p.CentralClockAccuracy)
	return buf, nil
}

func (p *LEConnectionCompleteEventPacket) Unmarshal(buf []byte) error {
	if len(buf) < 4 || buf[0] != byte(PacketTypeEvent) || buf[1] != byte(EventCodeLEMeta) {
		return errors.New("incorrect packet")
	}
	if buf[2] != 19 || len(buf) != 22 {
		return io.ErrShortBuffer
	}
	if buf[3] != byte(LEMetaSubeventCodeConnectionComplete) {
		return errors.New("incorrect subevent")
	}
	p.Status = StatusCode(buf[4])
	p.ConnectionHandle = binary.LittleEndian.Uint16(buf[5:7])
	p.Role = Role(buf[7])
	p.PeerAddressType = PeerAddressType(buf[8])
	copy(p.PeerAddress[:], buf[9:15])
	p.ConnectionInterval = binary.LittleEndian.Uint16(buf[15:17])
	p.PeripheralLatency = binary.LittleEndian.Uint16(buf[17:19])
	p.SupervisionTimeout = binary.LittleEndian.Uint16(buf[19:21])
	p.CentralClockAccuracy = CentralClockAccuracy(buf[21])
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
