package privacy

import (
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

// IRK is an identity resolving key, most significant octet first.
type IRK [16]byte

func ParseIRK(s string) (IRK, error) {
	var k IRK
	b, err := hex.DecodeString(s)
	if err != nil {
		return k, errors.Wrap(err, "invalid irk")
	}
	if len(b) != len(k) {
		return k, errors.Errorf("invalid irk length %d", len(b))
	}
	copy(k[:], b)
	return k, nil
}

func GenerateIRK(rand io.Reader) (IRK, error) {
	var k IRK
	if _, err := io.ReadFull(rand, k[:]); err != nil {
		return k, errors.Wrap(err, "generate irk")
	}
	return k, nil
}

func (k IRK) String() string {
	return hex.EncodeToString(k[:])
}

func (k IRK) IsZero() bool {
	return k == IRK{}
}

// WireBytes returns the key least significant octet first, as HCI carries it.
func (k IRK) WireBytes() [16]byte {
	var b [16]byte
	for i := range k {
		b[i] = k[len(k)-1-i]
	}
	return b
}
