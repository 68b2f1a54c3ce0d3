package hci

import "encoding/binary"

// Section 7.8.1
type LEEventMask uint64

const (
	LEEventMaskConnectionCompleteEvent             LEEventMask = (1 << 0)
	LEEventMaskAdvertisingReportEvent              LEEventMask = (1 << 1)
	LEEventMaskConnectionUpdateCompleteEvent       LEEventMask = (1 << 2)
	LEEventMaskReadRemoteUsedFeaturesCompleteEvent LEEventMask = (1 << 3)
	LEEventMaskLongTermKeyRequestEvent             LEEventMask = (1 << 4)
	LEEventMaskEnhancedConnectionCompleteEvent     LEEventMask = (1 << 9)
)

type HCILESetEventMaskCommandPacket struct {
	LEEventMask
}

func (p *HCILESetEventMaskCommandPacket) Marshal() ([]byte, error) {
	params := make([]byte, 8)
	binary.LittleEndian.PutUint64(params, uint64(p.LEEventMask))
	return marshalCommand(OpcodeLESetEventMask, params)
}

func (p *HCILESetEventMaskCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLESetEventMask, 8)
	if err != nil {
		return err
	}
	p.LEEventMask = LEEventMask(binary.LittleEndian.Uint64(params))
	return nil
}

func (p *HCILESetEventMaskCommandPacket) Opcode() Opcode {
	return OpcodeLESetEventMask
}

func (a *Adapter) LESetEventMask(mask LEEventMask) error {
	_, err := a.op(&HCILESetEventMaskCommandPacket{LEEventMask: mask})
	return err
}
