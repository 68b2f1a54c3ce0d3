package hci

import (
	"io"

	"github.com/pkg/errors"
)

type HCISetAdvertisingDataCommandPacket struct {
	AdvertisingData []DataType
}

func (p *HCISetAdvertisingDataCommandPacket) Marshal() ([]byte, error) {
	var ads []byte
	for _, data := range p.AdvertisingData {
		ad, err := data.Marshal()
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad...)
	}

	if len(ads) > 31 {
		return nil, io.ErrShortWrite
	}

	params := make([]byte, 32)
	params[0] = uint8(len(ads))
	copy(params[1:], ads)
	return marshalCommand(OpcodeSetAdvertisingData, params)
}

func (p *HCISetAdvertisingDataCommandPacket) Unmarshal(buf []byte) error {
	return errors.New("not implemented")
}

func (p *HCISetAdvertisingDataCommandPacket) Opcode() Opcode {
	return OpcodeSetAdvertisingData
}

func (a *Adapter) SetAdvertisingData(data ...DataType) error {
	_, err := a.op(&HCISetAdvertisingDataCommandPacket{AdvertisingData: data})
	return err
}
