package ssz

import (
	"github.com/minio/sha256-simd"
)

// hashPair returns SHA-256(a || b).
func hashPair(a, b [32]byte) [32]byte {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return sha256.Sum256(buf[:])
}

// VerifyBranch checks that leaf sits at position index of a subtree of the
// given depth whose root is root, using branch as the sibling path from the
// leaf upwards. At level i the accumulator is the left input when bit i of
// index is 0 and the right input otherwise.
//
// Malformed input (wrong branch length, or a leaf or sibling that is not 32
// bytes) is reported as false, never as a panic.
func VerifyBranch(leaf []byte, branch [][]byte, depth, index uint64, root [32]byte) bool {
	if uint64(len(branch)) != depth || len(leaf) != 32 {
		return false
	}
	var node [32]byte
	copy(node[:], leaf)
	for i, sibling := range branch {
		if len(sibling) != 32 {
			return false
		}
		var s [32]byte
		copy(s[:], sibling)
		if (index>>uint(i))&1 == 1 {
			node = hashPair(s, node)
		} else {
			node = hashPair(node, s)
		}
	}
	return node == root
}

// IsValidMerkleBranch is VerifyBranch over fixed-size chunks.
func IsValidMerkleBranch(leaf [32]byte, branch [][32]byte, depth, index uint64, root [32]byte) bool {
	if uint64(len(branch)) != depth {
		return false
	}
	return BranchRoot(leaf, branch, index) == root
}

// BranchRoot folds leaf with its sibling path and returns the resulting root.
func BranchRoot(leaf [32]byte, branch [][32]byte, index uint64) [32]byte {
	node := leaf
	for i, sibling := range branch {
		if (index>>uint(i))&1 == 1 {
			node = hashPair(sibling, node)
		} else {
			node = hashPair(node, sibling)
		}
	}
	return node
}

// BranchOf returns the sibling path of leaf number index in the tree built by
// Merkleize(chunks, 0). It is the inverse of BranchRoot and is used to build
// proofs over small containers.
func BranchOf(chunks [][32]byte, index uint64) [][32]byte {
	depth := Depth(uint64(len(chunks)))
	layer := make([][32]byte, 1<<uint(depth))
	if index >= uint64(len(layer)) {
		return nil
	}
	copy(layer, chunks)
	branch := make([][32]byte, 0, depth)
	for d := 0; d < depth; d++ {
		branch = append(branch, layer[index^1])
		next := make([][32]byte, len(layer)/2)
		for i := range next {
			next[i] = hashPair(layer[2*i], layer[2*i+1])
		}
		layer = next
		index >>= 1
	}
	return branch
}
