package hci

import "encoding/binary"

// Section 7.3.1
type EventMask uint64

const (
	EventMaskDisconnectionCompleteEvent        EventMask = (1 << 4)
	EventMaskEncryptionChangeEvent             EventMask = (1 << 7)
	EventMaskHardwareErrorEvent                EventMask = (1 << 15)
	EventMaskEncryptionKeyRefreshCompleteEvent EventMask = (1 << 47)
	EventMaskLEMetaEvent                       EventMask = (1 << 61)
)

type HCISetEventMaskCommandPacket struct {
	EventMask
}

func (p *HCISetEventMaskCommandPacket) Marshal() ([]byte, error) {
	params := make([]byte, 8)
	binary.LittleEndian.PutUint64(params, uint64(p.EventMask))
	return marshalCommand(OpcodeSetEventMask, params)
}

func (p *HCISetEventMaskCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeSetEventMask, 8)
	if err != nil {
		return err
	}
	p.EventMask = EventMask(binary.LittleEndian.Uint64(params))
	return nil
}

func (p *HCISetEventMaskCommandPacket) Opcode() Opcode {
	return OpcodeSetEventMask
}

func (a *Adapter) SetEventMask(mask EventMask) error {
	_, err := a.op(&HCISetEventMaskCommandPacket{EventMask: mask})
	return err
}
