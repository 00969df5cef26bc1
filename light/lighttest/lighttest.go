// Package lighttest builds deterministic, correctly signed sync committee
// period updates for tests. Keys are real BLS keys derived from a seed, so the
// updates verify end to end.
package lighttest

import (
	"encoding/binary"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/eth2030/lightcheck/crypto"
	"github.com/eth2030/lightcheck/light"
	"github.com/eth2030/lightcheck/params"
	"github.com/eth2030/lightcheck/ssz"
)

// Committee is a sync committee together with its secret keys.
type Committee struct {
	Keys          []*crypto.SecretKey
	SyncCommittee *light.SyncCommittee
}

// NewCommittee derives size keys from seed.
func NewCommittee(size uint64, seed int64) (*Committee, error) {
	c := &Committee{
		Keys:          make([]*crypto.SecretKey, size),
		SyncCommittee: &light.SyncCommittee{Pubkeys: make([]light.PublicKey, size)},
	}
	pks := make([][crypto.PubkeySize]byte, size)
	for i := range c.Keys {
		var ikm [16]byte
		binary.LittleEndian.PutUint64(ikm[:8], uint64(seed))
		binary.LittleEndian.PutUint64(ikm[8:], uint64(i))
		sk, err := crypto.SecretKeyFromSeed(crypto.Keccak256(ikm[:]))
		if err != nil {
			return nil, err
		}
		c.Keys[i] = sk
		pks[i] = sk.PublicKey()
		c.SyncCommittee.Pubkeys[i] = pks[i]
	}
	agg, err := crypto.AggregatePublicKeys(pks)
	if err != nil {
		return nil, err
	}
	c.SyncCommittee.AggregatePubkey = agg
	return c, nil
}

// UpdateSpec describes one update to build.
type UpdateSpec struct {
	// Signers is the committee that signs the attested header: the committee
	// announced by the previous update.
	Signers *Committee
	// Next is the committee the update announces.
	Next *Committee
	// Participants is the number of leading committee members that sign.
	// Zero means everyone.
	Participants   uint64
	AttestedSlot   uint64
	ForkVersion    light.Version
	ValidatorsRoot light.Root
}

// BuildUpdate assembles an update whose proofs and signature are valid for
// us. Roots not fixed by the proofs are random, drawn from rng.
func BuildUpdate(cfg *params.ChainConfig, us UpdateSpec, rng *rand.Rand) (*light.SyncCommitteePeriodUpdate, error) {
	if us.Signers == nil || us.Next == nil {
		return nil, errors.New("lighttest: signers and next committee are required")
	}
	u := &light.SyncCommitteePeriodUpdate{
		NextSyncCommittee: *us.Next.SyncCommittee,
		ForkVersion:       us.ForkVersion,
	}
	u.NextSyncCommittee.Pubkeys = append([]light.PublicKey(nil), us.Next.SyncCommittee.Pubkeys...)

	committeeRoot, err := u.NextSyncCommittee.HashTreeRootWithSize(cfg.SyncCommitteeSize)
	if err != nil {
		return nil, err
	}
	u.NextSyncCommitteeBranch = randomRoots(rng, cfg.NextSyncCommitteeDepth)
	finalizedSlot := us.AttestedSlot - us.AttestedSlot%cfg.SlotsPerEpoch
	if finalizedSlot >= 2*cfg.SlotsPerEpoch {
		finalizedSlot -= 2 * cfg.SlotsPerEpoch
	}
	u.FinalizedHeader = light.BeaconBlockHeader{
		Slot:          finalizedSlot,
		ProposerIndex: rng.Uint64() % 1_000_000,
		ParentRoot:    randomRoot(rng),
		StateRoot:     BranchRoot(committeeRoot, u.NextSyncCommitteeBranch, cfg.NextSyncCommitteeIndex),
		BodyRoot:      randomRoot(rng),
	}

	finalizedRoot, err := u.FinalizedHeader.HashTreeRoot()
	if err != nil {
		return nil, err
	}
	u.FinalityBranch = randomRoots(rng, cfg.FinalizedRootDepth)
	u.AttestedHeader = light.BeaconBlockHeader{
		Slot:          us.AttestedSlot,
		ProposerIndex: rng.Uint64() % 1_000_000,
		ParentRoot:    randomRoot(rng),
		StateRoot:     BranchRoot(finalizedRoot, u.FinalityBranch, cfg.FinalizedRootIndex),
		BodyRoot:      randomRoot(rng),
	}

	bits, err := light.NewParticipationBits(cfg.SyncCommitteeSize)
	if err != nil {
		return nil, err
	}
	participants := us.Participants
	if participants == 0 || participants > cfg.SyncCommitteeSize {
		participants = cfg.SyncCommitteeSize
	}
	for i := uint64(0); i < participants; i++ {
		bits.SetBitAt(i, true)
	}
	u.SyncAggregate.SyncCommitteeBits = bits
	if err := Sign(cfg, u, us.Signers, us.ValidatorsRoot); err != nil {
		return nil, err
	}
	return u, nil
}

// Sign (re)computes the aggregate signature of u by the members of signers
// whose participation bit is set. With no participants the signature is
// left zero.
func Sign(cfg *params.ChainConfig, u *light.SyncCommitteePeriodUpdate, signers *Committee, validatorsRoot light.Root) error {
	version := u.ForkVersion
	domain, err := light.ComputeDomain(cfg.DomainSyncCommittee, &version, validatorsRoot, cfg)
	if err != nil {
		return err
	}
	signingRoot, err := light.ComputeSigningRoot(&u.AttestedHeader, domain)
	if err != nil {
		return err
	}
	bits := u.SyncAggregate.SyncCommitteeBits
	var sigs [][crypto.SignatureSize]byte
	for i, k := range signers.Keys {
		if bits.BitAt(uint64(i)) {
			sigs = append(sigs, k.Sign(signingRoot[:]))
		}
	}
	if len(sigs) == 0 {
		u.SyncAggregate.SyncCommitteeSignature = light.Signature{}
		return nil
	}
	agg, err := crypto.AggregateSignatures(sigs)
	if err != nil {
		return err
	}
	u.SyncAggregate.SyncCommitteeSignature = agg
	return nil
}

// BranchRoot folds leaf up through branch at index and returns the root.
func BranchRoot(leaf light.Root, branch []light.Root, index uint64) light.Root {
	chunks := make([][32]byte, len(branch))
	for i := range branch {
		chunks[i] = branch[i]
	}
	return ssz.BranchRoot(leaf, chunks, index)
}

// randomRoot returns a root with no zero byte, so that zeroing any single
// byte of it is always a change.
func randomRoot(rng *rand.Rand) light.Root {
	var r light.Root
	for i := range r {
		r[i] = byte(rng.Intn(255) + 1)
	}
	return r
}

func randomRoots(rng *rand.Rand, n uint64) []light.Root {
	roots := make([]light.Root, n)
	for i := range roots {
		roots[i] = randomRoot(rng)
	}
	return roots
}

// Chain is a run of updates where update i is signed by committee i and
// announces committee i+1, so (Updates[i-1], Updates[i]) always verifies.
type Chain struct {
	Config         *params.ChainConfig
	ValidatorsRoot light.Root
	ForkVersion    light.Version
	Committees     []*Committee
	Updates        []*light.SyncCommitteePeriodUpdate
}

// ChainOptions tunes NewChain.
type ChainOptions struct {
	// Updates is the number of updates to produce (at least 1).
	Updates int
	// StartPeriod is the sync committee period of the first update.
	StartPeriod uint64
	// Participants per update, zero meaning full participation.
	Participants uint64
	Seed         int64
}

// NewChain builds a chain of correctly linked updates for cfg.
func NewChain(cfg *params.ChainConfig, validatorsRoot light.Root, forkVersion light.Version, opts ChainOptions) (*Chain, error) {
	if opts.Updates < 1 {
		opts.Updates = 1
	}
	c := &Chain{
		Config:         cfg,
		ValidatorsRoot: validatorsRoot,
		ForkVersion:    forkVersion,
		Committees:     make([]*Committee, opts.Updates+1),
	}
	for i := range c.Committees {
		committee, err := NewCommittee(cfg.SyncCommitteeSize, opts.Seed*1000+int64(i))
		if err != nil {
			return nil, err
		}
		c.Committees[i] = committee
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	for i := 0; i < opts.Updates; i++ {
		period := opts.StartPeriod + uint64(i)
		u, err := BuildUpdate(cfg, UpdateSpec{
			Signers:        c.Committees[i],
			Next:           c.Committees[i+1],
			Participants:   opts.Participants,
			AttestedSlot:   light.PeriodStartSlot(cfg, period) + cfg.SlotsPerEpoch*3 + 1,
			ForkVersion:    forkVersion,
			ValidatorsRoot: validatorsRoot,
		}, rng)
		if err != nil {
			return nil, err
		}
		c.Updates = append(c.Updates, u)
	}
	return c, nil
}

// Encoded returns the wire encoding of every update.
func (c *Chain) Encoded() ([][]byte, error) {
	out := make([][]byte, len(c.Updates))
	for i, u := range c.Updates {
		b, err := u.MarshalSSZ()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
