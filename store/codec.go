package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the snapshot compression algorithm.
type Compression uint8

const (
	// CompressionZSTD is the default. Best ratio for cold snapshots.
	CompressionZSTD Compression = 0
	// CompressionLZ4 trades ratio for speed on hot reload paths.
	CompressionLZ4 Compression = 1
	// CompressionNone stores snapshots uncompressed.
	CompressionNone Compression = 2
)

var errUnknownCompression = errors.New("store: unknown compression type")

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer putZstdEncoder(enc)
		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		compressed := make([]byte, bound)
		n, err := lz4.CompressBlock(data, compressed, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 || n >= len(data) {
			// Incompressible, store as-is and let the header size field
			// signal that on decode.
			return data, nil
		}
		return compressed[:n], nil
	default:
		return nil, errUnknownCompression
	}
}

func decompress(data []byte, c Compression, uncompressedSize int) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)
		out, err := dec.DecodeAll(data, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, err
		}
		if len(out) != uncompressedSize {
			return nil, errors.New("store: decompressed size mismatch")
		}
		return out, nil
	case CompressionLZ4:
		if len(data) == uncompressedSize {
			// Stored uncompressed because LZ4 could not shrink it.
			return data, nil
		}
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, err
		}
		if n != uncompressedSize {
			return nil, errors.New("store: decompressed size mismatch")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnknownCompression, c)
	}
}
