package serializer

import (
	"fmt"
	"testing"

	"github.com/arloliu/chunkframe/format"
	"github.com/arloliu/chunkframe/section"
)

func BenchmarkCodec_WriteFrame(b *testing.B) {
	s, err := New()
	if err != nil {
		b.Fatal(err)
	}

	formats := []format.Format{format.Binary, format.BinaryS2, format.BinaryZstd, format.Text}
	sizes := []int{16, 256, 4096}

	for _, f := range formats {
		for _, size := range sizes {
			b.Run(fmt.Sprintf("%s/%d", f, size), func(b *testing.B) {
				values := compressibleFloats(size)
				codec := For[[]float64](s)
				buf := make([]byte, 0, size*16)

				b.ReportAllocs()
				for b.Loop() {
					n, payload, err := codec.SizeOf(values, f, false)
					if err != nil {
						b.Fatal(err)
					}
					if _, err := codec.WriteFrame(values, buf[:n], payload, f); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkCodec_ReadFrame(b *testing.B) {
	s, err := New()
	if err != nil {
		b.Fatal(err)
	}

	for _, f := range []format.Format{format.Binary, format.BinaryS2, format.BinaryZstd} {
		b.Run(f.String(), func(b *testing.B) {
			codec := For[[]float64](s)
			buf, err := codec.AppendFrame(nil, compressibleFloats(4096), f)
			if err != nil {
				b.Fatal(err)
			}

			b.SetBytes(int64(len(buf)))
			b.ReportAllocs()
			for b.Loop() {
				if _, _, err := codec.ReadFrame(buf, false); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCodec_Fixed(b *testing.B) {
	codec := For[point](Default())
	buf := make([]byte, section.HeaderSize+16)

	b.ReportAllocs()
	for b.Loop() {
		if _, err := codec.WriteFrame(point{X: 1, Y: 2}, buf, nil, format.Binary); err != nil {
			b.Fatal(err)
		}
		if _, _, err := codec.ReadFrame(buf, false); err != nil {
			b.Fatal(err)
		}
	}
}
