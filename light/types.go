// Package light verifies Ethereum beacon chain sync-committee period updates.
//
// A light client that trusts the sync committee of period N can adopt the
// committee of period N+1 once an update proves, under a supermajority
// signature of the trusted committee, that the next committee is committed to
// by a finalized beacon state. The checks here are pure functions of their
// inputs: nothing is persisted and no network access is made.
package light

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/eth2030/lightcheck/params"
	"github.com/eth2030/lightcheck/ssz"
)

// Root is a 32-byte hash-tree-root.
type Root [params.RootSize]byte

// Domain is a 32-byte signing domain.
type Domain [32]byte

// Version is a 4-byte fork version.
type Version [params.VersionSize]byte

// PublicKey is a compressed BLS12-381 G1 point.
type PublicKey [params.PubkeySize]byte

// Signature is a compressed BLS12-381 G2 point.
type Signature [params.SignatureSize]byte

func (r Root) String() string      { return hexutil.Encode(r[:]) }
func (d Domain) String() string    { return hexutil.Encode(d[:]) }
func (v Version) String() string   { return hexutil.Encode(v[:]) }
func (k PublicKey) String() string { return hexutil.Encode(k[:]) }

// IsZero reports whether r is the zero root.
func (r Root) IsZero() bool { return r == Root{} }

// BeaconBlockHeader is the consensus-layer block header.
type BeaconBlockHeader struct {
	Slot          uint64
	ProposerIndex uint64
	ParentRoot    Root
	StateRoot     Root
	BodyRoot      Root
}

// LeafChunks implements ssz.Merkleizable.
func (h *BeaconBlockHeader) LeafChunks() ([][32]byte, error) {
	return [][32]byte{
		ssz.Uint64Chunk(h.Slot),
		ssz.Uint64Chunk(h.ProposerIndex),
		h.ParentRoot,
		h.StateRoot,
		h.BodyRoot,
	}, nil
}

// HashTreeRoot returns the header root.
func (h *BeaconBlockHeader) HashTreeRoot() (Root, error) {
	return hashTreeRoot(h)
}

// SyncCommittee is the set of validators that signs headers for one period.
type SyncCommittee struct {
	Pubkeys         []PublicKey
	AggregatePubkey PublicKey
}

// LeafChunks implements ssz.Merkleizable. The pubkeys field is a vector of
// 48-byte vectors, so each key contributes its own root.
func (c *SyncCommittee) LeafChunks() ([][32]byte, error) {
	if len(c.Pubkeys) == 0 {
		return nil, errors.Wrap(ssz.ErrMerkleization, "empty sync committee")
	}
	roots := make([][32]byte, len(c.Pubkeys))
	for i := range c.Pubkeys {
		roots[i] = ssz.Bytes48Root(c.Pubkeys[i])
	}
	return [][32]byte{
		ssz.VectorRoot(roots),
		ssz.Bytes48Root(c.AggregatePubkey),
	}, nil
}

// HashTreeRoot returns the committee root.
func (c *SyncCommittee) HashTreeRoot() (Root, error) {
	return hashTreeRoot(c)
}

// HashTreeRootWithSize returns the committee root of a Vector[BLSPubkey, size].
// A committee holding any other number of keys has no root.
func (c *SyncCommittee) HashTreeRootWithSize(size uint64) (Root, error) {
	if uint64(len(c.Pubkeys)) != size {
		return Root{}, errors.Wrapf(ssz.ErrMerkleization, "sync committee has %d keys, want %d", len(c.Pubkeys), size)
	}
	return hashTreeRoot(c)
}

// SyncAggregate carries the participation bits of a committee and their
// aggregate signature. Bit i set means Pubkeys[i] contributed.
type SyncAggregate struct {
	SyncCommitteeBits      bitfield.Bitfield
	SyncCommitteeSignature Signature
}

// LeafChunks implements ssz.Merkleizable.
func (a *SyncAggregate) LeafChunks() ([][32]byte, error) {
	if a.SyncCommitteeBits == nil {
		return nil, errors.Wrap(ssz.ErrMerkleization, "nil participation bits")
	}
	bitsRoot, err := ssz.BitvectorRoot(packedBits(a.SyncCommitteeBits), a.SyncCommitteeBits.Len())
	if err != nil {
		return nil, err
	}
	return [][32]byte{bitsRoot, ssz.Bytes96Root(a.SyncCommitteeSignature)}, nil
}

// HashTreeRoot returns the aggregate root.
func (a *SyncAggregate) HashTreeRoot() (Root, error) {
	return hashTreeRoot(a)
}

// packedBits returns the bit-vector bytes padded or trimmed to exactly
// ceil(Len/8) bytes.
func packedBits(bits bitfield.Bitfield) []byte {
	out := make([]byte, (bits.Len()+7)/8)
	copy(out, bits.Bytes())
	return out
}

// ForkData binds a fork version to a chain.
type ForkData struct {
	CurrentVersion        Version
	GenesisValidatorsRoot Root
}

// LeafChunks implements ssz.Merkleizable.
func (f *ForkData) LeafChunks() ([][32]byte, error) {
	return [][32]byte{ssz.Bytes4Chunk(f.CurrentVersion), f.GenesisValidatorsRoot}, nil
}

// HashTreeRoot returns the fork data root.
func (f *ForkData) HashTreeRoot() (Root, error) {
	return hashTreeRoot(f)
}

// SigningData is the message a validator actually signs: an object root bound
// to a domain.
type SigningData struct {
	ObjectRoot Root
	Domain     Domain
}

// LeafChunks implements ssz.Merkleizable.
func (s *SigningData) LeafChunks() ([][32]byte, error) {
	return [][32]byte{s.ObjectRoot, s.Domain}, nil
}

// HashTreeRoot returns the signing root.
func (s *SigningData) HashTreeRoot() (Root, error) {
	return hashTreeRoot(s)
}

// SyncCommitteePeriodUpdate is the unit of light-client progress: it carries
// the next sync committee, proven against a finalized state that is itself
// proven against a header signed by the current committee.
type SyncCommitteePeriodUpdate struct {
	AttestedHeader          BeaconBlockHeader
	NextSyncCommittee       SyncCommittee
	NextSyncCommitteeBranch []Root
	FinalizedHeader         BeaconBlockHeader
	FinalityBranch          []Root
	SyncAggregate           SyncAggregate
	ForkVersion             Version
}

// LeafChunks implements ssz.Merkleizable. Branches are vectors of roots.
func (u *SyncCommitteePeriodUpdate) LeafChunks() ([][32]byte, error) {
	attested, err := u.AttestedHeader.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	committee, err := u.NextSyncCommittee.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	finalized, err := u.FinalizedHeader.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	aggregate, err := u.SyncAggregate.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	return [][32]byte{
		attested,
		committee,
		ssz.VectorRoot(rootChunks(u.NextSyncCommitteeBranch)),
		finalized,
		ssz.VectorRoot(rootChunks(u.FinalityBranch)),
		aggregate,
		ssz.Bytes4Chunk(u.ForkVersion),
	}, nil
}

// HashTreeRoot returns the update root.
func (u *SyncCommitteePeriodUpdate) HashTreeRoot() (Root, error) {
	return hashTreeRoot(u)
}

func hashTreeRoot(v ssz.Merkleizable) (Root, error) {
	root, err := ssz.HashTreeRoot(v)
	return Root(root), err
}

func rootChunks(roots []Root) [][32]byte {
	out := make([][32]byte, len(roots))
	for i := range roots {
		out[i] = roots[i]
	}
	return out
}

func rootSlices(roots []Root) [][]byte {
	out := make([][]byte, len(roots))
	for i := range roots {
		out[i] = roots[i][:]
	}
	return out
}
