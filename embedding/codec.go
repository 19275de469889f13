package embedding

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Artifact format: Dim little-endian IEEE 754 float32 values, nothing else.
// The fixed layout round-trips bit-for-bit, which JSON floats cannot
// guarantee.

const artifactSize = Dim * 4

// Marshal encodes the embedding into its binary artifact form.
// The embedding must satisfy the length invariant.
func Marshal(e Embedding) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, artifactSize)
	for i, v := range e {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf, nil
}

// Unmarshal decodes a binary artifact back into an embedding. Artifacts of
// any other size are rejected, never padded or truncated.
func Unmarshal(data []byte) (Embedding, error) {
	if len(data) != artifactSize {
		return nil, fmt.Errorf("embedding: artifact is %d bytes, expected %d", len(data), artifactSize)
	}
	e := make(Embedding, Dim)
	for i := range e {
		e[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return e, nil
}
