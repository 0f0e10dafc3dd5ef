package store

import (
	"encoding/binary"
	"fmt"
	"math"
)

// serializeEmbedding converts a float32 slice to little-endian bytes for
// storage in a SQLite BLOB column. The vector table itself is written with
// sqlite-vec's own serializer (see vector.go).
func serializeEmbedding(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func deserializeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob: length %d not divisible by 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}
