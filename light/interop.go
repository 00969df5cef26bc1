package light

import (
	"github.com/attestantio/go-eth2-client/spec/altair"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"
)

// Conversions to and from the go-eth2-client consensus types, so updates can
// be assembled from beacon API responses. The go-eth2-client containers are
// fixed to the mainnet committee size.

// HeaderFromPhase0 converts a go-eth2-client header.
func HeaderFromPhase0(h *phase0.BeaconBlockHeader) BeaconBlockHeader {
	return BeaconBlockHeader{
		Slot:          uint64(h.Slot),
		ProposerIndex: uint64(h.ProposerIndex),
		ParentRoot:    Root(h.ParentRoot),
		StateRoot:     Root(h.StateRoot),
		BodyRoot:      Root(h.BodyRoot),
	}
}

// ToPhase0 converts h to a go-eth2-client header.
func (h *BeaconBlockHeader) ToPhase0() *phase0.BeaconBlockHeader {
	return &phase0.BeaconBlockHeader{
		Slot:          phase0.Slot(h.Slot),
		ProposerIndex: phase0.ValidatorIndex(h.ProposerIndex),
		ParentRoot:    phase0.Root(h.ParentRoot),
		StateRoot:     phase0.Root(h.StateRoot),
		BodyRoot:      phase0.Root(h.BodyRoot),
	}
}

// SyncCommitteeFromAltair converts a go-eth2-client sync committee.
func SyncCommitteeFromAltair(c *altair.SyncCommittee) *SyncCommittee {
	out := &SyncCommittee{
		Pubkeys:         make([]PublicKey, len(c.Pubkeys)),
		AggregatePubkey: PublicKey(c.AggregatePubkey),
	}
	for i, k := range c.Pubkeys {
		out.Pubkeys[i] = PublicKey(k)
	}
	return out
}

// ToAltair converts c to a go-eth2-client sync committee.
func (c *SyncCommittee) ToAltair() *altair.SyncCommittee {
	out := &altair.SyncCommittee{
		Pubkeys:         make([]phase0.BLSPubKey, len(c.Pubkeys)),
		AggregatePubkey: phase0.BLSPubKey(c.AggregatePubkey),
	}
	for i, k := range c.Pubkeys {
		out.Pubkeys[i] = phase0.BLSPubKey(k)
	}
	return out
}

// SyncAggregateFromAltair converts a go-eth2-client sync aggregate. The
// participation bits are copied.
func SyncAggregateFromAltair(a *altair.SyncAggregate) (*SyncAggregate, error) {
	bits := bitfield.NewBitvector512()
	if len(a.SyncCommitteeBits) != len(bits) {
		return nil, errors.Wrapf(ErrDecode, "participation bits have %d bytes, want %d", len(a.SyncCommitteeBits), len(bits))
	}
	copy(bits, a.SyncCommitteeBits)
	return &SyncAggregate{
		SyncCommitteeBits:      bits,
		SyncCommitteeSignature: Signature(a.SyncCommitteeSignature),
	}, nil
}

// ToAltair converts a to a go-eth2-client sync aggregate. Only 512-member
// participation bits can be represented.
func (a *SyncAggregate) ToAltair() (*altair.SyncAggregate, error) {
	if a.SyncCommitteeBits == nil || a.SyncCommitteeBits.Len() != 512 {
		return nil, errors.Wrap(ErrDecode, "go-eth2-client sync aggregates hold exactly 512 participation bits")
	}
	bits := bitfield.NewBitvector512()
	copy(bits, packedBits(a.SyncCommitteeBits))
	return &altair.SyncAggregate{
		SyncCommitteeBits:      bits,
		SyncCommitteeSignature: phase0.BLSSignature(a.SyncCommitteeSignature),
	}, nil
}

// ForkDataFromPhase0 converts go-eth2-client fork data.
func ForkDataFromPhase0(f *phase0.ForkData) ForkData {
	return ForkData{
		CurrentVersion:        Version(f.CurrentVersion),
		GenesisValidatorsRoot: Root(f.GenesisValidatorsRoot),
	}
}
