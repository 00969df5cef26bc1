// Package ssz implements the subset of Simple Serialize (SSZ) a sync-committee
// light client needs: hash-tree-root of fixed-size containers, Merkle branch
// verification, and a fixed-layout little-endian codec.
//
// Spec: https://github.com/ethereum/consensus-specs/blob/dev/ssz/simple-serialize.md
package ssz

import "github.com/pkg/errors"

// Common errors.
var (
	ErrSize          = errors.New("ssz: invalid size")
	ErrMerkleization = errors.New("ssz: merkleization failed")
)

// BytesPerChunk is the number of bytes in each leaf chunk for Merkleization.
const BytesPerChunk = 32

// Merkleizable is implemented by containers that can present themselves as an
// ordered sequence of 32-byte leaf chunks, one per field. Composite fields are
// represented by their own hash-tree-root.
type Merkleizable interface {
	LeafChunks() ([][32]byte, error)
}

// HashTreeRoot merkleizes the leaf chunks of v into a single root. The tree is
// padded with zero chunks up to the next power of two.
func HashTreeRoot(v Merkleizable) ([32]byte, error) {
	chunks, err := v.LeafChunks()
	if err != nil {
		if errors.Is(err, ErrMerkleization) {
			return [32]byte{}, err
		}
		return [32]byte{}, errors.Wrap(ErrMerkleization, err.Error())
	}
	return Merkleize(chunks, 0), nil
}
