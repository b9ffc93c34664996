package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	compressible := bytes.Repeat([]byte("temperature "), 512)
	random := []byte{0x8f, 0x12, 0x00, 0xfe, 0x33}

	for _, typ := range []Type{None, LZ4, ZSTD} {
		for name, data := range map[string][]byte{"compressible": compressible, "tiny": random, "empty": {}} {
			t.Run(typ.String()+"/"+name, func(t *testing.T) {
				frame, err := Encode(data, typ)
				require.NoError(t, err)
				out, err := Decode(frame)
				require.NoError(t, err)
				assert.Equal(t, len(data), len(out))
				assert.True(t, bytes.Equal(data, out))
			})
		}
	}
}

func TestEncode_Compresses(t *testing.T) {
	data := bytes.Repeat([]byte{1, 2, 3, 4}, 4096)
	frame, err := Encode(data, ZSTD)
	require.NoError(t, err)
	assert.Less(t, len(frame), len(data)/2)
}

func TestDecode_Corrupt(t *testing.T) {
	_, err := Decode([]byte{1, 2})
	assert.ErrorIs(t, err, ErrCorrupt)

	frame, err := Encode(bytes.Repeat([]byte("abc"), 1000), LZ4)
	require.NoError(t, err)
	_, err = Decode(frame[:len(frame)-10])
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("zstd")
	require.NoError(t, err)
	assert.Equal(t, ZSTD, typ)
	_, err = ParseType("brotli")
	assert.Error(t, err)
}
