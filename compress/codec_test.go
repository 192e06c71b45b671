package compress

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/format"
	"github.com/stretchr/testify/require"
)

func getAllCodecs() map[format.CompressionType]Codec {
	return map[format.CompressionType]Codec{
		format.CompressionNone:   NewNoOpCompressor(),
		format.CompressionZstd:   NewZstdCompressor(),
		format.CompressionS2:     NewS2Compressor(),
		format.CompressionLZ4:    NewLZ4Compressor(),
		format.CompressionSnappy: NewSnappyCompressor(),
	}
}

func compressiblePayload(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte('a' + (i/16)%8)
	}

	return data
}

func TestGetCodec(t *testing.T) {
	for ct := range getAllCodecs() {
		codec, err := GetCodec(ct)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0x7))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	sizes := []int{1, 64, 1024, 64 * 1024}

	for ct, codec := range getAllCodecs() {
		for _, size := range sizes {
			t.Run(fmt.Sprintf("%s/%d", ct, size), func(t *testing.T) {
				data := compressiblePayload(size)

				compressed, err := codec.Compress(nil, data)
				if errors.Is(err, errLZ4Incompressible) {
					t.Skip("input too small for an lz4 block")
				}
				require.NoError(t, err)
				require.NotEmpty(t, compressed)

				decompressed, err := codec.Decompress(nil, compressed)
				require.NoError(t, err)
				require.Equal(t, data, decompressed)
			})
		}
	}
}

func TestAllCodecs_AppendsToDestination(t *testing.T) {
	prefix := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	data := compressiblePayload(4096)

	for ct, codec := range getAllCodecs() {
		t.Run(ct.String(), func(t *testing.T) {
			dst := append([]byte(nil), prefix...)
			out, err := codec.Compress(dst, data)
			require.NoError(t, err)
			require.Equal(t, prefix, out[:len(prefix)])

			scratch := make([]byte, 0, len(data))
			decompressed, err := codec.Decompress(scratch, out[len(prefix):])
			require.NoError(t, err)
			require.Equal(t, data, decompressed)
		})
	}
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for ct, codec := range getAllCodecs() {
		t.Run(ct.String(), func(t *testing.T) {
			decompressed, err := codec.Decompress(nil, nil)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	garbage := []byte{0xFF, 0xFE, 0xFD, 0xFC, 0xFB, 0xFA, 0x00, 0x01, 0x02}

	for ct, codec := range getAllCodecs() {
		if ct == format.CompressionNone {
			continue
		}

		t.Run(ct.String(), func(t *testing.T) {
			_, err := codec.Decompress(make([]byte, 0, 64), garbage)
			require.Error(t, err)
		})
	}
}

func TestAllCodecs_OutputLimit(t *testing.T) {
	data := compressiblePayload(4096)

	for ct, codec := range getAllCodecs() {
		t.Run(ct.String(), func(t *testing.T) {
			compressed, err := codec.Compress(nil, data)
			require.NoError(t, err)

			out, err := codec.Decompress(make([]byte, 0, 100), compressed)
			require.ErrorIs(t, err, errs.ErrDecompressedSizeExceeded)
			require.Empty(t, out)

			out, err = codec.Decompress(make([]byte, 0, len(data)), compressed)
			require.NoError(t, err)
			require.Equal(t, data, out)
		})
	}
}

func TestLZ4Compressor_IncompressibleFallsBack(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := make([]byte, 32)
	rng.Read(data)

	dst := []byte{1, 2, 3, 4}
	out, err := NewLZ4Compressor().Compress(dst, data)
	if err != nil {
		require.ErrorIs(t, err, errLZ4Incompressible)
		require.Equal(t, []byte{1, 2, 3, 4}, out)
	}
}

func TestLZ4Compressor_DecompressWithoutHint(t *testing.T) {
	data := bytes.Repeat([]byte("chunkframe"), 2000)
	codec := NewLZ4Compressor()

	compressed, err := codec.Compress(nil, data)
	require.NoError(t, err)

	out, err := codec.Decompress(nil, compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	data := compressiblePayload(8192)

	for ct, codec := range getAllCodecs() {
		t.Run(ct.String(), func(t *testing.T) {
			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range 20 {
						compressed, err := codec.Compress(nil, data)
						if err != nil {
							t.Error(err)
							return
						}
						out, err := codec.Decompress(make([]byte, 0, len(data)), compressed)
						if err != nil || !bytes.Equal(out, data) {
							t.Errorf("round trip failed: %v", err)
							return
						}
					}
				}()
			}
			wg.Wait()
		})
	}
}
