package binfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlign8_RoundsUpToMultipleOf8(t *testing.T) {
	require.Equal(t, 0, Align8(0))
	require.Equal(t, 8, Align8(1))
	require.Equal(t, 8, Align8(8))
	require.Equal(t, 16, Align8(9))
}

func TestPutAndReadRoundTrip(t *testing.T) {
	buf := make([]byte, 8)

	PutU16(buf, 0xBEEF)
	require.EqualValues(t, 0xBEEF, U16(buf))

	PutU32(buf, 0xDEADBEEF)
	require.EqualValues(t, 0xDEADBEEF, U32(buf))

	PutU64(buf, 0x0102030405060708)
	require.EqualValues(t, 0x0102030405060708, U64(buf))

	PutI64(buf, -42)
	require.EqualValues(t, -42, I64(buf))
}
