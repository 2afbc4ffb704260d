package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeOrderReference_KnownValues(t *testing.T) {
	assert.Equal(t, "9896f0", EncodeOrderReference(1))
	assert.Equal(t, "989719", EncodeOrderReference(42))
}

func TestDecodeOrderReference_RoundTrip(t *testing.T) {
	for _, id := range []uint{1, 7, 42, 100, 99999} {
		decoded, err := DecodeOrderReference(EncodeOrderReference(id))
		assert.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}

func TestDecodeOrderReference_Malformed(t *testing.T) {
	cases := []string{
		"",
		"not-hex",
		"0x9896f0",
		"zzzz",
	}
	for _, ref := range cases {
		_, err := DecodeOrderReference(ref)
		assert.ErrorIs(t, err, ErrBadReference, "reference %q", ref)
	}
}

func TestDecodeOrderReference_BelowOffset(t *testing.T) {
	// 0x9896ef is the offset itself, which no order ID maps to.
	_, err := DecodeOrderReference("9896ef")
	assert.ErrorIs(t, err, ErrBadReference)

	_, err = DecodeOrderReference("1")
	assert.ErrorIs(t, err, ErrBadReference)
}
