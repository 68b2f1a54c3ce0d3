package hci

// Section 7.8.4
type LESetRandomAddressCommandPacket struct {
	Address Address
}

func (p *LESetRandomAddressCommandPacket) Marshal() ([]byte, error) {
	return marshalCommand(OpcodeLESetRandomAddress, p.Address[:])
}

func (p *LESetRandomAddressCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLESetRandomAddress, 6)
	if err != nil {
		return err
	}
	copy(p.Address[:], params)
	return nil
}

func (p *LESetRandomAddressCommandPacket) Opcode() Opcode {
	return OpcodeLESetRandomAddress
}

// Section 7.8.16
type LEAddDeviceToFilterAcceptListCommandPacket struct {
	AddressType FilterAcceptListAddressType
	Address     Address
}

func (p *LEAddDeviceToFilterAcceptListCommandPacket) Marshal() ([]byte, error) {
	return marshalCommand(OpcodeLEAddDeviceToFilterAcceptList, append([]byte{byte(p.AddressType)}, p.Address[:]...))
}

func (p *LEAddDeviceToFilterAcceptListCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLEAddDeviceToFilterAcceptList, 7)
	if err != nil {
		return err
	}
	p.AddressType = FilterAcceptListAddressType(params[0])
	copy(p.Address[:], params[1:])
	return nil
}

func (p *LEAddDeviceToFilterAcceptListCommandPacket) Opcode() Opcode {
	return OpcodeLEAddDeviceToFilterAcceptList
}

// Section 7.8.17
type LERemoveDeviceFromFilterAcceptListCommandPacket struct {
	AddressType FilterAcceptListAddressType
	Address     Address
}

func (p *LERemoveDeviceFromFilterAcceptListCommandPacket) Marshal() ([]byte, error) {
	return marshalCommand(OpcodeLERemoveDeviceFromFilterAcceptList, append([]byte{byte(p.AddressType)}, p.Address[:]...))
}

func (p *LERemoveDeviceFromFilterAcceptListCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLERemoveDeviceFromFilterAcceptList, 7)
	if err != nil {
		return err
	}
	p.AddressType = FilterAcceptListAddressType(params[0])
	copy(p.Address[:], params[1:])
	return nil
}

func (p *LERemoveDeviceFromFilterAcceptListCommandPacket) Opcode() Opcode {
	return OpcodeLERemoveDeviceFromFilterAcceptList
}

// Section 7.8.38. Both keys are carried least significant octet first.
type LEAddDeviceToResolvingListCommandPacket struct {
	PeerIdentityAddressType PeerAddressType
	PeerIdentityAddress     Address
	PeerIRK                 [16]byte
	LocalIRK                [16]byte
}

func (p *LEAddDeviceToResolvingListCommandPacket) Marshal() ([]byte, error) {
	params := make([]byte, 39)
	params[0] = byte(p.PeerIdentityAddressType)
	copy(params[1:7], p.PeerIdentityAddress[:])
	copy(params[7:23], p.PeerIRK[:])
	copy(params[23:39], p.LocalIRK[:])
	return marshalCommand(OpcodeLEAddDeviceToResolvingList, params)
}

func (p *LEAddDeviceToResolvingListCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLEAddDeviceToResolvingList, 39)
	if err != nil {
		return err
	}
	p.PeerIdentityAddressType = PeerAddressType(params[0])
	copy(p.PeerIdentityAddress[:], params[1:7])
	copy(p.PeerIRK[:], params[7:23])
	copy(p.LocalIRK[:], params[23:39])
	return nil
}

func (p *LEAddDeviceToResolvingListCommandPacket) Opcode() Opcode {
	return OpcodeLEAddDeviceToResolvingList
}

// Section 7.8.39
type LERemoveDeviceFromResolvingListCommandPacket struct {
	PeerIdentityAddressType PeerAddressType
	PeerIdentityAddress     Address
}

func (p *LERemoveDeviceFromResolvingListCommandPacket) Marshal() ([]byte, error) {
	return marshalCommand(OpcodeLERemoveDeviceFromResolvingList, append([]byte{byte(p.PeerIdentityAddressType)}, p.PeerIdentityAddress[:]...))
}

func (p *LERemoveDeviceFromResolvingListCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLERemoveDeviceFromResolvingList, 7)
	if err != nil {
		return err
	}
	p.PeerIdentityAddressType = PeerAddressType(params[0])
	copy(p.PeerIdentityAddress[:], params[1:])
	return nil
}

func (p *LERemoveDeviceFromResolvingListCommandPacket) Opcode() Opcode {
	return OpcodeLERemoveDeviceFromResolvingList
}

// Section 7.8.44
type LESetAddressResolutionEnableCommandPacket struct {
	AddressResolutionEnable bool
}

func (p *LESetAddressResolutionEnableCommandPacket) Marshal() ([]byte, error) {
	return marshalCommand(OpcodeLESetAddressResolutionEnable, []byte{boolByte(p.AddressResolutionEnable)})
}

func (p *LESetAddressResolutionEnableCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLESetAddressResolutionEnable, 1)
	if err != nil {
		return err
	}
	p.AddressResolutionEnable = params[0] == 1
	return nil
}

func (p *LESetAddressResolutionEnableCommandPacket) Opcode() Opcode {
	return OpcodeLESetAddressResolutionEnable
}

// Section 7.8.77
type LESetPrivacyModeCommandPacket struct {
	PeerIdentityAddressType PeerAddressType
	PeerIdentityAddress     Address
	PrivacyMode             PrivacyMode
}

func (p *LESetPrivacyModeCommandPacket) Marshal() ([]byte, error) {
	params := make([]byte, 8)
	params[0] = byte(p.PeerIdentityAddressType)
	copy(params[1:7], p.PeerIdentityAddress[:])
	params[7] = byte(p.PrivacyMode)
	return marshalCommand(OpcodeLESetPrivacyMode, params)
}

func (p *LESetPrivacyModeCommandPacket) Unmarshal(buf []byte) error {
	params, err := unmarshalCommand(buf, OpcodeLESetPrivacyMode, 8)
	if err != nil {
		return err
	}
	p.PeerIdentityAddressType = PeerAddressType(params[0])
	copy(p.PeerIdentityAddress[:], params[1:7])
	p.PrivacyMode = PrivacyMode(params[7])
	return nil
}

func (p *LESetPrivacyModeCommandPacket) Opcode() Opcode {
	return OpcodeLESetPrivacyMode
}
