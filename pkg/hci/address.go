package hci

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Address is a device address in the order it travels over HCI, least
// significant octet first.
type Address [6]byte

// ParseAddress parses the colon separated form produced by String.
func ParseAddress(s string) (Address, error) {
	var a Address
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return a, errors.Errorf("invalid address %q", s)
	}
	for i, part := range parts {
		b, err := hex.DecodeString(part)
		if err != nil || len(b) != 1 {
			return a, errors.Errorf("invalid address %q", s)
		}
		a[5-i] = b[0]
	}
	return a, nil
}

func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[5], a[4], a[3], a[2], a[1], a[0])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// RandomSubtype classifies a random device address by its two most
// significant bits.
type RandomSubtype uint8

const (
	RandomSubtypeNonResolvable RandomSubtype = 0b00
	RandomSubtypeResolvable    RandomSubtype = 0b01
	RandomSubtypeReserved      RandomSubtype = 0b10
	RandomSubtypeStatic        RandomSubtype = 0b11
)

func (s RandomSubtype) String() string {
	switch s {
	case RandomSubtypeNonResolvable:
		return "non-resolvable"
	case RandomSubtypeResolvable:
		return "resolvable"
	case RandomSubtypeStatic:
		return "static"
	}
	return "reserved"
}

func (a Address) RandomSubtype() RandomSubtype {
	return RandomSubtype(a[5] >> 6)
}

type AddressType uint8

const (
	AddressTypePublicDeviceAddress   AddressType = 0x00
	AddressTypeRandomDeviceAddress   AddressType = 0x01
	AddressTypePublicIdentityAddress AddressType = 0x02
	AddressTypeRandomIdentityAddress AddressType = 0x03
)

func (t AddressType) String() string {
	switch t {
	case AddressTypePublicDeviceAddress:
		return "public"
	case AddressTypeRandomDeviceAddress:
		return "random"
	case AddressTypePublicIdentityAddress:
		return "public-identity"
	case AddressTypeRandomIdentityAddress:
		return "random-identity"
	}
	return fmt.Sprintf("AddressType(0x%02x)", uint8(t))
}

type AddressWithType struct {
	Address Address
	Type    AddressType
}

func (a AddressWithType) String() string {
	if a.Type == AddressTypeRandomDeviceAddress {
		return fmt.Sprintf("%s (random %s)", a.Address, a.Address.RandomSubtype())
	}
	return fmt.Sprintf("%s (%s)", a.Address, a.Type)
}

// OwnAddressType returns the own address type to program for advertising,
// scanning or initiating with this address.
func (a AddressWithType) OwnAddressType() OwnAddressType {
	switch a.Type {
	case AddressTypeRandomDeviceAddress, AddressTypeRandomIdentityAddress:
		return OwnAddressTypeRandomDeviceAddress
	}
	return OwnAddressTypePublicDeviceAddress
}
