package light

import (
	"github.com/pkg/errors"

	"github.com/eth2030/lightcheck/crypto"
	"github.com/eth2030/lightcheck/params"
	"github.com/eth2030/lightcheck/ssz"
)

// Verifier checks sync committee period updates against one chain's
// parameters. It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	cfg *params.ChainConfig
}

// NewVerifier returns a verifier for cfg. The config is copied and validated.
func NewVerifier(cfg *params.ChainConfig) (*Verifier, error) {
	if cfg == nil {
		return nil, errors.Wrap(params.ErrInvalidConfig, "nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Verifier{cfg: cfg.Copy()}, nil
}

// Config returns a copy of the verifier's chain config.
func (v *Verifier) Config() *params.ChainConfig {
	return v.cfg.Copy()
}

// Transition is what an accepted update lets a light client adopt.
type Transition struct {
	NextSyncCommittee *SyncCommittee
	FinalizedHeader   BeaconBlockHeader
	FinalizedRoot     Root
	// Period is the sync committee period of the attested header.
	Period        uint64
	Participation float64
}

// Check decides whether update is a valid successor of prev on the chain
// identified by validatorsRoot. The update must:
//  1. carry a participation supermajority,
//  2. prove its next sync committee against its finalized state root,
//  3. prove its finalized header against its attested state root,
//  4. be signed over its attested header by the committee prev announced.
//
// Fields whose length differs from the chain config are rejected with
// ErrDecode first. Checks then run in that order and the first failure is
// returned.
func (v *Verifier) Check(prev, update *SyncCommitteePeriodUpdate, validatorsRoot Root) error {
	_, err := v.check(prev, update, validatorsRoot)
	return err
}

// Process runs Check and, on success, returns the state an accepted update
// hands to the caller. Nothing is retained by the verifier.
func (v *Verifier) Process(prev, update *SyncCommitteePeriodUpdate, validatorsRoot Root) (*Transition, error) {
	finalizedRoot, err := v.check(prev, update, validatorsRoot)
	if err != nil {
		return nil, err
	}
	committee := &SyncCommittee{
		Pubkeys:         append([]PublicKey(nil), update.NextSyncCommittee.Pubkeys...),
		AggregatePubkey: update.NextSyncCommittee.AggregatePubkey,
	}
	return &Transition{
		NextSyncCommittee: committee,
		FinalizedHeader:   update.FinalizedHeader,
		FinalizedRoot:     finalizedRoot,
		Period:            SyncCommitteePeriod(v.cfg, update.AttestedHeader.Slot),
		Participation:     Participation(update.SyncAggregate.SyncCommitteeBits),
	}, nil
}

// CheckBytes decodes both updates and runs Check. Decoding errors take
// precedence over any verification failure.
func (v *Verifier) CheckBytes(prev, update []byte, validatorsRoot Root) error {
	p, err := DecodeUpdate(v.cfg, prev)
	if err != nil {
		return errors.WithMessage(err, "previous update")
	}
	u, err := DecodeUpdate(v.cfg, update)
	if err != nil {
		return errors.WithMessage(err, "update")
	}
	return v.Check(p, u, validatorsRoot)
}

func (v *Verifier) check(prev, update *SyncCommitteePeriodUpdate, validatorsRoot Root) (Root, error) {
	if prev == nil || update == nil {
		return Root{}, errors.Wrap(ErrDecode, "nil update")
	}
	bits := update.SyncAggregate.SyncCommitteeBits
	if bits == nil || bits.Len() != v.cfg.SyncCommitteeSize {
		return Root{}, errors.Wrapf(ErrDecode, "participation bits must have %d entries", v.cfg.SyncCommitteeSize)
	}
	if n := uint64(len(update.NextSyncCommittee.Pubkeys)); n != v.cfg.SyncCommitteeSize {
		return Root{}, errors.Wrapf(ErrDecode, "next sync committee has %d members, want %d", n, v.cfg.SyncCommitteeSize)
	}
	if n := uint64(len(update.NextSyncCommitteeBranch)); n != v.cfg.NextSyncCommitteeDepth {
		return Root{}, errors.Wrapf(ErrDecode, "next sync committee branch has %d roots, want %d", n, v.cfg.NextSyncCommitteeDepth)
	}
	if n := uint64(len(update.FinalityBranch)); n != v.cfg.FinalizedRootDepth {
		return Root{}, errors.Wrapf(ErrDecode, "finality branch has %d roots, want %d", n, v.cfg.FinalizedRootDepth)
	}
	committee := prev.NextSyncCommittee.Pubkeys
	if uint64(len(committee)) != v.cfg.SyncCommitteeSize {
		return Root{}, errors.Wrapf(ErrDecode, "signing committee has %d members, want %d", len(committee), v.cfg.SyncCommitteeSize)
	}
	if !IsSupermajority(bits) {
		return Root{}, errors.Wrapf(ErrQuorumNotMet, "%d of %d participants", bits.Count(), bits.Len())
	}

	committeeRoot, err := update.NextSyncCommittee.HashTreeRootWithSize(v.cfg.SyncCommitteeSize)
	if err != nil {
		return Root{}, err
	}
	if !ssz.VerifyBranch(committeeRoot[:], rootSlices(update.NextSyncCommitteeBranch),
		v.cfg.NextSyncCommitteeDepth, v.cfg.NextSyncCommitteeIndex, update.FinalizedHeader.StateRoot) {
		return Root{}, ErrInvalidSyncCommitteeProof
	}

	finalizedRoot, err := update.FinalizedHeader.HashTreeRoot()
	if err != nil {
		return Root{}, err
	}
	if !ssz.VerifyBranch(finalizedRoot[:], rootSlices(update.FinalityBranch),
		v.cfg.FinalizedRootDepth, v.cfg.FinalizedRootIndex, update.AttestedHeader.StateRoot) {
		return Root{}, ErrInvalidFinalityProof
	}

	participants := extractParticipants(committee, bits)

	forkVersion := update.ForkVersion
	domain, err := ComputeDomain(v.cfg.DomainSyncCommittee, &forkVersion, validatorsRoot, v.cfg)
	if err != nil {
		return Root{}, err
	}
	signingRoot, err := ComputeSigningRoot(&update.AttestedHeader, domain)
	if err != nil {
		return Root{}, err
	}
	if err := crypto.VerifyAggregate(participants, signingRoot, update.SyncAggregate.SyncCommitteeSignature); err != nil {
		return Root{}, err
	}
	return finalizedRoot, nil
}

var mainnetVerifier = func() *Verifier {
	v, err := NewVerifier(params.MainnetConfig())
	if err != nil {
		panic(err)
	}
	return v
}()

// Check verifies update against prev with the mainnet parameters.
func Check(prev, update *SyncCommitteePeriodUpdate, validatorsRoot Root) error {
	return mainnetVerifier.Check(prev, update, validatorsRoot)
}
