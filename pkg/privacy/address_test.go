package privacy

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/muxable/leprivacy/pkg/hci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Vol 3, Part H, D.7
var sampleIRK = IRK{0xec, 0x02, 0x34, 0xa3, 0x57, 0xc8, 0xad, 0x05, 0x34, 0x10, 0x10, 0xa6, 0x0a, 0x39, 0x7d, 0x9b}

func TestAhSampleData(t *testing.T) {
	assert.Equal(t, [3]byte{0x0d, 0xfb, 0xaa}, Ah(sampleIRK, [3]byte{0x70, 0x81, 0x94}))
}

func TestRPAFromPrandIsDeterministic(t *testing.T) {
	prand := [3]byte{0x70, 0x81, 0x94}
	a := RPAFromPrand(sampleIRK, prand)
	assert.Equal(t, "70:81:94:0D:FB:AA", a.String())
	assert.Equal(t, a, RPAFromPrand(sampleIRK, prand))
	assert.Equal(t, hci.RandomSubtypeResolvable, a.RandomSubtype())
	assert.True(t, ResolveRPA(sampleIRK, a))
}

func TestGenerateRPA(t *testing.T) {
	irk, err := GenerateIRK(rand.Reader)
	require.NoError(t, err)

	a, err := GenerateRPA(irk, rand.Reader)
	require.NoError(t, err)
	b, err := GenerateRPA(irk, rand.Reader)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	for _, addr := range []hci.Address{a, b} {
		assert.Equal(t, hci.RandomSubtypeResolvable, addr.RandomSubtype())
		assert.True(t, ResolveRPA(irk, addr))
		assert.False(t, ResolveRPA(sampleIRK, addr))
	}
}

func TestGenerateRPARejectsUniformPrand(t *testing.T) {
	// the first prand is all ones once tagged, the second is usable.
	src := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0x12, 0x34, 0x56})
	a, err := GenerateRPA(sampleIRK, src)
	require.NoError(t, err)
	assert.Equal(t, RPAFromPrand(sampleIRK, [3]byte{0x52, 0x34, 0x56}), a)

	_, err = GenerateRPA(sampleIRK, bytes.NewReader([]byte{0x00, 0x00}))
	assert.Error(t, err)
}

func TestGenerateNRPA(t *testing.T) {
	a, err := GenerateNRPA(rand.Reader)
	require.NoError(t, err)
	assert.Equal(t, hci.RandomSubtypeNonResolvable, a.RandomSubtype())

	src := bytes.NewReader([]byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0xC0, // all zeros once tagged
		0x01, 0x02, 0x03, 0x04, 0x05, 0xFF,
	})
	a, err = GenerateNRPA(src)
	require.NoError(t, err)
	assert.Equal(t, hci.Address{0x01, 0x02, 0x03, 0x04, 0x05, 0x3F}, a)
	assert.False(t, ResolveRPA(sampleIRK, a))
}

func TestGenerateStaticAddress(t *testing.T) {
	a, err := GenerateStaticAddress(rand.Reader)
	require.NoError(t, err)
	assert.Equal(t, hci.RandomSubtypeStatic, a.RandomSubtype())
}

func TestIRK(t *testing.T) {
	k, err := ParseIRK("ec0234a357c8ad05341010a60a397d9b")
	require.NoError(t, err)
	assert.Equal(t, sampleIRK, k)
	assert.Equal(t, "ec0234a357c8ad05341010a60a397d9b", k.String())

	wire := k.WireBytes()
	assert.Equal(t, byte(0x9b), wire[0])
	assert.Equal(t, byte(0xec), wire[15])

	_, err = ParseIRK("ec02")
	assert.Error(t, err)
	_, err = ParseIRK("not hex")
	assert.Error(t, err)
	assert.True(t, IRK{}.IsZero())
}
