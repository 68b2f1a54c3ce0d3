package hci

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

type AdvertisingType uint8

const (
	AdvertisingTypeConnectableAndScannableUndirectedAdvertising AdvertisingType = 0x00
	AdvertisingTypeConnectableHighDutyCycleDirectedAdvertising  AdvertisingType = 0x01
	AdvertisingTypeScannableUndirectedAdvertising               AdvertisingType = 0x02
	AdvertisingTypeNonConnectableUndirectedAdvertising          AdvertisingType = 0x03
	AdvertisingTypeConnectableLowDutyCycleDirectedAdvertising   AdvertisingType = 0x04
)

type AdvertisingChannelMap uint8

const (
	AdvertisingChannelMapChannel37 AdvertisingChannelMap = 0x01
	AdvertisingChannelMapChannel38 AdvertisingChannelMap = 0x02
	AdvertisingChannelMapChannel39 AdvertisingChannelMap = 0x04

	AdvertisingChannelMapDefault AdvertisingChannelMap = 0x07
)

type AdvertisingFilterPolicy uint8

const (
	AdvertisingFilterPolicyProcessScanAndConnectionRequestsFromAllDevices                       AdvertisingFilterPolicy = 0x00
	AdvertisingFilterPolicyProcessConnectionRequestsFromAllDevicesAndScanRequestsFromFilterList AdvertisingFilterPolicy = 0x01
	AdvertisingFilterPolicyProcessScanRequestsFromAllDevicesAndConnectionRequestsFromFilterList AdvertisingFilterPolicy = 0x02
	AdvertisingFilterPolicyProcessScanAndConnectionRequestsFromFilterList                       AdvertisingFilterPolicy = 0x03
)

type HCILESetAdvertisingParametersCommandPacket struct {
	AdvertisingIntervalMin  uint16
	AdvertisingIntervalMax  uint16
	AdvertisingType         AdvertisingType
	OwnAddressType          OwnAddressType
	PeerAddressType         PeerAddressType
	PeerAddress             Address
	AdvertisingChannelMap   AdvertisingChannelMap
	AdvertisingFilterPolicy AdvertisingFilterPolicy
}

func (p *HCILESetAdvertisingParametersCommandPacket) Marshal() ([]byte, error) {
	params := make([]byte, 15)
	binary.LittleEndian.PutUint16(params[0:], p.AdvertisingIntervalMin)
	binary.LittleEndian.PutUint16(params[2:], p.AdvertisingIntervalMax)
	params[4] = byte(p.AdvertisingType)
	params[5] = byte(p.OwnAddressType)
	params[6] = byte(p.PeerAddressType)
	copy(params[7:13], p.PeerAddress[:])
	params[13] = byte(p.AdvertisingChannelMap)
	params[14] = byte(p.AdvertisingFilterPolicy)
	return marshalCommand(OpcodeLESetAdvertisingParameters, params)
}

func (p *HCILESetAdvertisingParametersCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLESetAdvertisingParameters, 15)
	if err != nil {
		return err
	}
	p.AdvertisingIntervalMin = binary.LittleEndian.Uint16(params[0:])
	p.AdvertisingIntervalMax = binary.LittleEndian.Uint16(params[2:])
	p.AdvertisingType = AdvertisingType(params[4])
	p.OwnAddressType = OwnAddressType(params[5])
	p.PeerAddressType = PeerAddressType(params[6])
	copy(p.PeerAddress[:], params[7:13])
	p.AdvertisingChannelMap = AdvertisingChannelMap(params[13])
	p.AdvertisingFilterPolicy = AdvertisingFilterPolicy(params[14])
	return nil
}

func (p *HCILESetAdvertisingParametersCommandPacket) Opcode() Opcode {
	return OpcodeLESetAdvertisingParameters
}

// SetAdvertisingParametersRequest has the fields of the command. Zero
// intervals and channel map select the controller defaults.
type SetAdvertisingParametersRequest HCILESetAdvertisingParametersCommandPacket

// Section 7.8.5: intervals are in 0.625ms units.
const (
	advertisingIntervalDefault uint16 = 0x0800
	advertisingIntervalLowest  uint16 = 0x0020
	advertisingIntervalHighest uint16 = 0x4000
)

func (a *Adapter) LESetAdvertisingParameters(request *SetAdvertisingParametersRequest) error {
	p := HCILESetAdvertisingParametersCommandPacket(*request)
	for _, interval := range []*uint16{&p.AdvertisingIntervalMin, &p.AdvertisingIntervalMax} {
		if *interval == 0 {
			*interval = advertisingIntervalDefault
		}
		if *interval < advertisingIntervalLowest || *interval > advertisingIntervalHighest {
			return errors.Errorf("advertising interval 0x%04x out of range", *interval)
		}
	}
	if p.AdvertisingIntervalMin > p.AdvertisingIntervalMax {
		return errors.New("advertising interval min above max")
	}
	if p.AdvertisingChannelMap == 0 {
		p.AdvertisingChannelMap = AdvertisingChannelMapDefault
	}
	_, err := a.op(&p)
	return err
}
