package bx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripAt(t *testing.T) {
	b := make([]byte, 16)

	PutU16At(b, 0, 0xBEEF)
	PutU32At(b, 2, 0xDEADBEEF)
	PutU64At(b, 6, 0x0102030405060708)

	require.Equal(t, uint16(0xBEEF), U16At(b, 0))
	require.Equal(t, uint32(0xDEADBEEF), U32At(b, 2))
	require.Equal(t, uint64(0x0102030405060708), U64At(b, 6))
}

func TestSignedHelpers(t *testing.T) {
	b := make([]byte, 12)

	PutI32(b, -1)
	require.Equal(t, int32(-1), I32(b))

	PutI32At(b, 4, -42)
	require.Equal(t, int32(-42), I32At(b, 4))

	PutI64(b[4:], -1<<40)
	require.Equal(t, int64(-1<<40), I64(b[4:]))
}
