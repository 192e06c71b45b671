package compress

import (
	"fmt"
	"testing"

	"github.com/arloliu/chunkframe/format"
)

// framePayload builds payloads shaped like staged frame bodies.
func framePayload(size int, kind string) []byte {
	data := make([]byte, size)

	switch kind {
	case "json":
		pattern := []byte(`{"host":"server-01","dc":"eu-1","value":3.14159},`)
		for i := range data {
			data[i] = pattern[i%len(pattern)]
		}
	case "floats":
		for i := range data {
			// low bytes vary, exponent bytes repeat
			if i%8 < 5 {
				data[i] = byte(i * 7)
			} else {
				data[i] = 0x40
			}
		}
	default:
		for i := range data {
			data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
		}
	}

	return data
}

func BenchmarkCodecs_Compress(b *testing.B) {
	kinds := []string{"json", "floats", "noise"}
	sizes := []int{1024, 16 * 1024, 256 * 1024}

	for ct, codec := range getAllCodecs() {
		if ct == format.CompressionNone {
			continue
		}
		for _, kind := range kinds {
			for _, size := range sizes {
				data := framePayload(size, kind)
				dst := make([]byte, 0, size*2)

				b.Run(fmt.Sprintf("%s/%s/%dKB", ct, kind, size/1024), func(b *testing.B) {
					b.SetBytes(int64(size))
					b.ReportAllocs()
					for b.Loop() {
						_, _ = codec.Compress(dst[:0], data)
					}
				})
			}
		}
	}
}

func BenchmarkCodecs_Decompress(b *testing.B) {
	const size = 64 * 1024

	for ct, codec := range getAllCodecs() {
		data := framePayload(size, "json")
		packed, err := codec.Compress(nil, data)
		if err != nil {
			b.Fatal(err)
		}
		dst := make([]byte, 0, size)

		b.Run(ct.String(), func(b *testing.B) {
			b.SetBytes(size)
			b.ReportAllocs()
			for b.Loop() {
				if _, err := codec.Decompress(dst[:0], packed); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
