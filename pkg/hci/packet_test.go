package hci

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressString(t *testing.T) {
	a := Address{0xAA, 0xFB, 0x0D, 0x94, 0x81, 0x70}
	assert.Equal(t, "70:81:94:0D:FB:AA", a.String())

	parsed, err := ParseAddress("70:81:94:0d:fb:aa")
	require.NoError(t, err)
	assert.Equal(t, a, parsed)

	for _, bad := range []string{"", "70:81:94:0D:FB", "70:81:94:0D:FB:AA:00", "zz:81:94:0D:FB:AA", "708:1:94:0D:FB:AA"} {
		_, err := ParseAddress(bad)
		assert.Error(t, err, bad)
	}
}

func TestAddressRandomSubtype(t *testing.T) {
	tests := []struct {
		msb  byte
		want RandomSubtype
	}{
		{0x3F, RandomSubtypeNonResolvable},
		{0x40, RandomSubtypeResolvable},
		{0x80, RandomSubtypeReserved},
		{0xC0, RandomSubtypeStatic},
	}
	for _, tt := range tests {
		a := Address{5: tt.msb}
		assert.Equal(t, tt.want, a.RandomSubtype(), "%s", a)
	}
}

func TestAddressWithTypeOwnAddressType(t *testing.T) {
	assert.Equal(t, OwnAddressTypePublicDeviceAddress, AddressWithType{Type: AddressTypePublicDeviceAddress}.OwnAddressType())
	assert.Equal(t, OwnAddressTypeRandomDeviceAddress, AddressWithType{Type: AddressTypeRandomDeviceAddress}.OwnAddressType())
}

func TestLESetRandomAddressMarshal(t *testing.T) {
	p := &LESetRandomAddressCommandPacket{Address: Address{0x01, 0x02, 0x03, 0x04, 0x05, 0xC6}}
	buf, err := p.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x05, 0x20, 0x06, 0x01, 0x02, 0x03, 0x04, 0x05, 0xC6}, buf)

	var q LESetRandomAddressCommandPacket
	require.NoError(t, q.Unmarshal(buf))
	assert.Equal(t, *p, q)

	assert.Error(t, q.Unmarshal(buf[:9]))
	assert.Error(t, (&LESetPrivacyModeCommandPacket{}).Unmarshal(buf))
}

func TestLEAddDeviceToResolvingListMarshal(t *testing.T) {
	p := &LEAddDeviceToResolvingListCommandPacket{
		PeerIdentityAddressType: PeerAddressTypeRandomDeviceAddress,
		PeerIdentityAddress:     Address{1, 2, 3, 4, 5, 0xC6},
	}
	for i := range p.PeerIRK {
		p.PeerIRK[i] = byte(i)
		p.LocalIRK[i] = byte(0xF0 + i)
	}
	buf, err := p.Marshal()
	require.NoError(t, err)
	require.Len(t, buf, 43)
	assert.Equal(t, []byte{0x01, 0x27, 0x20, 39, 0x01}, buf[:5])
	assert.Equal(t, byte(0x00), buf[11])
	assert.Equal(t, byte(0xFF), buf[42])

	var q LEAddDeviceToResolvingListCommandPacket
	require.NoError(t, q.Unmarshal(buf))
	assert.Equal(t, *p, q)
}

func TestLESetPrivacyModeMarshal(t *testing.T) {
	p := &LESetPrivacyModeCommandPacket{
		PeerIdentityAddressType: PeerAddressTypePublicDeviceAddress,
		PeerIdentityAddress:     Address{1, 2, 3, 4, 5, 6},
		PrivacyMode:             PrivacyModeDevice,
	}
	buf, err := p.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x4E, 0x20, 0x08, 0x00, 1, 2, 3, 4, 5, 6, 0x01}, buf)
}

func TestUnmarshalEvents(t *testing.T) {
	t.Run("CommandComplete", func(t *testing.T) {
		p, err := Unmarshal([]byte{0x04, 0x0E, 0x05, 0x01, 0x2A, 0x20, 0x00, 0x0C})
		require.NoError(t, err)
		cc := p.(*CommandCompleteEventPacket)
		assert.Equal(t, OpcodeLEReadResolvingListSize, cc.CommandOpcode)
		assert.Equal(t, StatusSuccess, cc.Status())
		assert.Equal(t, []byte{0x00, 0x0C}, cc.ReturnParameters)

		buf, err := cc.Marshal()
		require.NoError(t, err)
		assert.Equal(t, []byte{0x04, 0x0E, 0x05, 0x01, 0x2A, 0x20, 0x00, 0x0C}, buf)
	})

	t.Run("CommandStatus", func(t *testing.T) {
		p, err := Unmarshal([]byte{0x04, 0x0F, 0x04, 0x01, 0x01, 0x05, 0x20})
		require.NoError(t, err)
		cs := p.(*CommandStatusEventPacket)
		assert.Equal(t, StatusUnknownCommand, cs.Status)
		assert.Equal(t, OpcodeLESetRandomAddress, cs.CommandOpcode)
	})

	t.Run("LEConnectionComplete", func(t *testing.T) {
		in := &LEConnectionCompleteEventPacket{
			ConnectionHandle: 0x0040,
			Role:             RolePeripheral,
			PeerAddressType:  PeerAddressTypeRandomDeviceAddress,
			PeerAddress:      Address{1, 2, 3, 4, 5, 0x46},
		}
		buf, err := in.Marshal()
		require.NoError(t, err)
		p, err := Unmarshal(buf)
		require.NoError(t, err)
		assert.Equal(t, in, p)
	})

	t.Run("LEConnectionCompleteFailed", func(t *testing.T) {
		buf, err := (&LEConnectionCompleteEventPacket{}).Marshal()
		require.NoError(t, err)
		buf[4] = 0x3C
		p, err := Unmarshal(buf)
		require.NoError(t, err)
		assert.Equal(t, StatusCode(0x3C), p.(*LEConnectionCompleteEventPacket).Status)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := Unmarshal([]byte{0x04, 0x05, 0x04, 0x00, 0x40, 0x00, 0x13})
		assert.ErrorIs(t, err, ErrUnsupportedPacket)
		_, err = Unmarshal([]byte{0x02, 0x40, 0x20, 0x00, 0x00})
		assert.ErrorIs(t, err, ErrUnsupportedPacket)
	})

	t.Run("Truncated", func(t *testing.T) {
		_, err := Unmarshal([]byte{0x04, 0x0E, 0x05, 0x01})
		assert.ErrorIs(t, err, ErrMalformedPacket)
		assert.ErrorIs(t, err, io.ErrShortBuffer)
		_, err = Unmarshal(nil)
		assert.Error(t, err)
	})
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "LE_Set_Random_Address", OpcodeLESetRandomAddress.String())
	assert.Equal(t, "Opcode(0xfc01)", Opcode(0xFC01).String())
	assert.Equal(t, "memory capacity exceeded", StatusMemoryCapacityExceeded.String())
}
