package ssz

import (
	"encoding/binary"
	"math/bits"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/gohashtree"
)

// maxDepth bounds the zero-hash table. Vector limits beyond 2^64 chunks
// cannot be expressed by a uint64 limit anyway.
const maxDepth = 64

// zeroHashes[i] is the root of a fully zero subtree of depth i.
var zeroHashes [maxDepth + 1][32]byte

func init() {
	for i := 1; i <= maxDepth; i++ {
		zeroHashes[i] = hashPair(zeroHashes[i-1], zeroHashes[i-1])
	}
}

// ZeroHash returns the root of a zero subtree of the given depth.
func ZeroHash(depth int) [32]byte {
	if depth < 0 || depth > maxDepth {
		return [32]byte{}
	}
	return zeroHashes[depth]
}

// Depth returns the depth of the smallest complete binary tree holding n
// leaves, i.e. ceil(log2(n)); 0 for n <= 1.
func Depth(n uint64) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(n - 1)
}

// Pack packs SSZ serialized basic values into 32-byte chunks, right-padding
// the last chunk with zeros. An empty input yields a single zero chunk.
func Pack(serialized []byte) [][32]byte {
	if len(serialized) == 0 {
		return [][32]byte{{}}
	}
	chunks := make([][32]byte, (len(serialized)+BytesPerChunk-1)/BytesPerChunk)
	for i := range chunks {
		copy(chunks[i][:], serialized[i*BytesPerChunk:])
	}
	return chunks
}

// Merkleize computes the Merkle root of chunks as the leaves of a tree
// with room for limit leaves. A limit of 0 (or one below the chunk count)
// sizes the tree to the chunk count. Missing leaves are zero chunks; whole
// missing subtrees are taken from the zero-hash table. The input slice is
// not modified.
func Merkleize(chunks [][32]byte, limit uint64) [32]byte {
	count := uint64(len(chunks))
	if limit < count {
		limit = count
	}
	depth := Depth(limit)
	if count == 0 {
		return zeroHashes[depth]
	}
	layer := make([][32]byte, count, count+1)
	copy(layer, chunks)
	for d := 0; d < depth; d++ {
		if len(layer)%2 == 1 {
			layer = append(layer, zeroHashes[d])
		}
		next := layer[:len(layer)/2]
		// Layer length is even and next has exactly half of it.
		if err := gohashtree.Hash(next, layer); err != nil {
			panic(errors.Wrap(err, "ssz: could not hash layer"))
		}
		layer = next
	}
	return layer[0]
}

// Uint64Chunk returns the leaf chunk of a uint64: little-endian, zero padded.
func Uint64Chunk(v uint64) [32]byte {
	var chunk [32]byte
	binary.LittleEndian.PutUint64(chunk[:8], v)
	return chunk
}

// Bytes4Chunk returns the leaf chunk of a 4-byte vector (e.g. a fork version).
func Bytes4Chunk(b [4]byte) [32]byte {
	var chunk [32]byte
	copy(chunk[:], b[:])
	return chunk
}

// Bytes48Root returns the hash tree root of a 48-byte vector such as a BLS
// public key: two chunks hashed together.
func Bytes48Root(b [48]byte) [32]byte {
	return Merkleize(Pack(b[:]), 0)
}

// Bytes96Root returns the hash tree root of a 96-byte vector such as a BLS
// signature: three chunks padded to four.
func Bytes96Root(b [96]byte) [32]byte {
	return Merkleize(Pack(b[:]), 0)
}

// BytesRoot returns the hash tree root of a byte vector of the declared size.
// It fails with ErrMerkleization when len(b) differs from size.
func BytesRoot(b []byte, size int) ([32]byte, error) {
	if len(b) != size {
		return [32]byte{}, errors.Wrapf(ErrMerkleization, "byte vector has %d bytes, want %d", len(b), size)
	}
	if size <= BytesPerChunk {
		var chunk [32]byte
		copy(chunk[:], b)
		return chunk, nil
	}
	return Merkleize(Pack(b), 0), nil
}

// BitvectorRoot returns the hash tree root of a Bitvector[bitLen] whose packed
// little-endian bits are given. The tree has room for ceil(bitLen/256) chunks.
func BitvectorRoot(packed []byte, bitLen uint64) ([32]byte, error) {
	if uint64(len(packed)) != (bitLen+7)/8 {
		return [32]byte{}, errors.Wrapf(ErrMerkleization, "bitvector of %d bits packed into %d bytes", bitLen, len(packed))
	}
	limit := (bitLen + 255) / 256
	return Merkleize(Pack(packed), limit), nil
}

// VectorRoot returns the hash tree root of a vector of composite elements
// given their roots.
func VectorRoot(roots [][32]byte) [32]byte {
	return Merkleize(roots, 0)
}
