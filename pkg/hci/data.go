package hci

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// DataType is one AD structure of advertising or scan response data
// (Core Supplement, Part A).
type DataType interface {
	Marshal() ([]byte, error)
}

// adStructure prefixes payload with its length and AD type.
func adStructure(adType byte, payload []byte) ([]byte, error) {
	if len(payload) > 29 {
		return nil, errors.Errorf("ad type 0x%02x: payload of %d bytes does not fit", adType, len(payload))
	}
	return append([]byte{byte(len(payload) + 1), adType}, payload...), nil
}

type FlagsDataType uint8

const (
	FlagsDataTypeLELimitedDiscoverableMode                           FlagsDataType = (1 << 0)
	FlagsDataTypeLEGeneralDiscoverableMode                           FlagsDataType = (1 << 1)
	FlagsDataTypeBREDRNotSupported                                   FlagsDataType = (1 << 2)
	FlagsDataTypeSimultaneousLEAndBREDRTosameDeviceCapableController FlagsDataType = (1 << 3)
)

func (f FlagsDataType) Marshal() ([]byte, error) {
	return adStructure(0x01, []byte{byte(f)})
}

type ShortLocalName string

func (l ShortLocalName) Marshal() ([]byte, error) {
	return adStructure(0x08, []byte(l))
}

type CompleteLocalName string

func (l CompleteLocalName) Marshal() ([]byte, error) {
	return adStructure(0x09, []byte(l))
}

// TxPowerLevel is in dBm.
type TxPowerLevel int8

func (p TxPowerLevel) Marshal() ([]byte, error) {
	return adStructure(0x0A, []byte{byte(p)})
}

type ManufacturerSpecificData struct {
	CompanyID uint16
	Data      []byte
}

func (m ManufacturerSpecificData) Marshal() ([]byte, error) {
	payload := binary.LittleEndian.AppendUint16(nil, m.CompanyID)
	return adStructure(0xFF, append(payload, m.Data...))
}
