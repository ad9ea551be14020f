package zstdenc

import (
	"bytes"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// The benchmarks below compress the same input with this package and with
// other fast codecs, reporting throughput and the compressed/uncompressed
// ratio for comparison.

func benchmarkLevel(b *testing.B, level CompressionLevel) {
	data := textData(1 << 20)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	var size int
	for i := 0; i < b.N; i++ {
		buf := new(bytes.Buffer)
		fc := NewFrameCompressor(bytes.NewReader(data), buf, level)
		if err := fc.Compress(); err != nil {
			b.Fatal(err)
		}
		size = buf.Len()
	}
	b.ReportMetric(float64(size)/float64(len(data)), "ratio")
}

func BenchmarkEncodeUncompressed(b *testing.B) {
	benchmarkLevel(b, Uncompressed)
}

func BenchmarkEncodeFastest(b *testing.B) {
	benchmarkLevel(b, Fastest)
}

func BenchmarkEncodeSnappy(b *testing.B) {
	data := textData(1 << 20)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	var size int
	for i := 0; i < b.N; i++ {
		size = len(snappy.Encode(nil, data))
	}
	b.ReportMetric(float64(size)/float64(len(data)), "ratio")
}

func BenchmarkEncodeLZ4(b *testing.B) {
	data := textData(1 << 20)
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	var size int
	for i := 0; i < b.N; i++ {
		n, err := c.CompressBlock(data, dst)
		if err != nil {
			b.Fatal(err)
		}
		size = n
	}
	b.ReportMetric(float64(size)/float64(len(data)), "ratio")
}

func BenchmarkEncodeKlauspostZstd(b *testing.B) {
	data := textData(1 << 20)
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		b.Fatal(err)
	}
	defer enc.Close()
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	var size int
	for i := 0; i < b.N; i++ {
		size = len(enc.EncodeAll(data, nil))
	}
	b.ReportMetric(float64(size)/float64(len(data)), "ratio")
}
