package privacy

import (
	"crypto/aes"
	"io"

	"github.com/muxable/leprivacy/pkg/hci"
	"github.com/pkg/errors"
)

// Ah is the random address hash function: the low 24 bits of
// AES-128(irk, 0^104 || prand). prand and the result are most significant
// octet first.
func Ah(irk IRK, prand [3]byte) [3]byte {
	block, err := aes.NewCipher(irk[:])
	if err != nil {
		// a 16 byte key is always valid.
		panic(err)
	}
	var in, out [aes.BlockSize]byte
	copy(in[13:], prand[:])
	block.Encrypt(out[:], in[:])
	var hash [3]byte
	copy(hash[:], out[13:])
	return hash
}

// RPAFromPrand builds the resolvable private address for irk and prand. The
// tag bits of prand are used as given.
func RPAFromPrand(irk IRK, prand [3]byte) hci.Address {
	hash := Ah(irk, prand)
	return hci.Address{hash[2], hash[1], hash[0], prand[2], prand[1], prand[0]}
}

// GenerateRPA returns a new resolvable private address for irk.
func GenerateRPA(irk IRK, rand io.Reader) (hci.Address, error) {
	var prand [3]byte
	for {
		if _, err := io.ReadFull(rand, prand[:]); err != nil {
			return hci.Address{}, errors.Wrap(err, "generate prand")
		}
		prand[0] = prand[0]&0x3F | 0x40
		// the random part of prand shall not be all zeros or all ones.
		if random := prand[0] & 0x3F; (random == 0 && prand[1] == 0 && prand[2] == 0) ||
			(random == 0x3F && prand[1] == 0xFF && prand[2] == 0xFF) {
			continue
		}
		return RPAFromPrand(irk, prand), nil
	}
}

// GenerateNRPA returns a new non-resolvable private address.
func GenerateNRPA(rand io.Reader) (hci.Address, error) {
	return generateTagged(rand, 0x00)
}

// GenerateStaticAddress returns a new random static address.
func GenerateStaticAddress(rand io.Reader) (hci.Address, error) {
	return generateTagged(rand, 0xC0)
}

func generateTagged(rand io.Reader, tag byte) (hci.Address, error) {
	var a hci.Address
	for {
		if _, err := io.ReadFull(rand, a[:]); err != nil {
			return a, errors.Wrap(err, "generate address")
		}
		a[5] = a[5]&0x3F | tag
		if !randomPartUniform(a) {
			return a, nil
		}
	}
}

// randomPartUniform reports whether the 46 random bits are all zeros or all
// ones, which the core specification forbids.
func randomPartUniform(a hci.Address) bool {
	zeros, ones := a[5]&0x3F == 0, a[5]&0x3F == 0x3F
	for _, b := range a[:5] {
		zeros = zeros && b == 0
		ones = ones && b == 0xFF
	}
	return zeros || ones
}

// ResolveRPA reports whether addr is a resolvable private address generated
// from irk.
func ResolveRPA(irk IRK, addr hci.Address) bool {
	if addr.RandomSubtype() != hci.RandomSubtypeResolvable {
		return false
	}
	return RPAFromPrand(irk, [3]byte{addr[5], addr[4], addr[3]}) == addr
}
