package light

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/eth2030/lightcheck/params"
	"github.com/eth2030/lightcheck/ssz"
)

// DecodeUpdate decodes the fixed-layout encoding of a SyncCommitteePeriodUpdate:
//
//	attested_header ∥ next_sync_committee ∥ next_sync_committee_branch ∥
//	finalized_header ∥ finality_branch ∥ sync_aggregate ∥ fork_version
//
// Every field has a size fixed by cfg, so any other input length is rejected
// with ErrDecode before a single field is read.
func DecodeUpdate(cfg *params.ChainConfig, b []byte) (*SyncCommitteePeriodUpdate, error) {
	if want := cfg.UpdateSize(); len(b) != want {
		return nil, errors.Wrapf(ErrDecode, "update is %d bytes, want %d", len(b), want)
	}
	d := ssz.NewDecoder(b)
	u := new(SyncCommitteePeriodUpdate)
	readHeader(d, &u.AttestedHeader)
	readSyncCommittee(d, cfg, &u.NextSyncCommittee)
	u.NextSyncCommitteeBranch = readRoots(d, cfg.NextSyncCommitteeDepth)
	readHeader(d, &u.FinalizedHeader)
	u.FinalityBranch = readRoots(d, cfg.FinalizedRootDepth)
	if err := readSyncAggregate(d, cfg, &u.SyncAggregate); err != nil {
		return nil, err
	}
	u.ForkVersion = d.ReadBytes4()
	if err := d.Finish(); err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	return u, nil
}

// DecodeHeader decodes a 112-byte BeaconBlockHeader.
func DecodeHeader(b []byte) (*BeaconBlockHeader, error) {
	d := ssz.NewDecoder(b)
	h := new(BeaconBlockHeader)
	readHeader(d, h)
	if err := d.Finish(); err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	return h, nil
}

// DecodeSyncCommittee decodes a SyncCommittee of cfg.SyncCommitteeSize keys.
func DecodeSyncCommittee(cfg *params.ChainConfig, b []byte) (*SyncCommittee, error) {
	d := ssz.NewDecoder(b)
	c := new(SyncCommittee)
	readSyncCommittee(d, cfg, c)
	if err := d.Finish(); err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	return c, nil
}

// DecodeSyncAggregate decodes a SyncAggregate whose bit-vector has exactly
// cfg.SyncCommitteeSize bits.
func DecodeSyncAggregate(cfg *params.ChainConfig, b []byte) (*SyncAggregate, error) {
	d := ssz.NewDecoder(b)
	a := new(SyncAggregate)
	if err := readSyncAggregate(d, cfg, a); err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	return a, nil
}

func readHeader(d *ssz.Decoder, h *BeaconBlockHeader) {
	h.Slot = d.ReadUint64()
	h.ProposerIndex = d.ReadUint64()
	h.ParentRoot = d.ReadBytes32()
	h.StateRoot = d.ReadBytes32()
	h.BodyRoot = d.ReadBytes32()
}

func readSyncCommittee(d *ssz.Decoder, cfg *params.ChainConfig, c *SyncCommittee) {
	c.Pubkeys = make([]PublicKey, cfg.SyncCommitteeSize)
	for i := range c.Pubkeys {
		c.Pubkeys[i] = d.ReadBytes48()
	}
	c.AggregatePubkey = d.ReadBytes48()
}

func readRoots(d *ssz.Decoder, n uint64) []Root {
	roots := make([]Root, n)
	for i := range roots {
		roots[i] = d.ReadBytes32()
	}
	return roots
}

func readSyncAggregate(d *ssz.Decoder, cfg *params.ChainConfig, a *SyncAggregate) error {
	raw := d.ReadBytes(cfg.SyncCommitteeBitsBytes())
	a.SyncCommitteeSignature = d.ReadBytes96()
	if d.Err() != nil {
		return errors.Wrap(ErrDecode, d.Err().Error())
	}
	bits, err := newBitvector(cfg.SyncCommitteeSize, raw)
	if err != nil {
		return err
	}
	a.SyncCommitteeBits = bits
	return nil
}

// newBitvector wraps raw as the go-bitfield vector type of exactly size bits.
func newBitvector(size uint64, raw []byte) (bitfield.Bitfield, error) {
	if uint64(len(raw))*8 != size {
		return nil, errors.Wrapf(ErrDecode, "participation bits: %d bytes for %d members", len(raw), size)
	}
	switch size {
	case 32:
		return bitfield.Bitvector32(raw), nil
	case 64:
		return bitfield.Bitvector64(raw), nil
	case 128:
		return bitfield.Bitvector128(raw), nil
	case 512:
		return bitfield.Bitvector512(raw), nil
	default:
		return nil, errors.Wrapf(ErrDecode, "unsupported committee size %d", size)
	}
}

// NewParticipationBits returns an all-clear bit-vector for a committee of the
// given size.
func NewParticipationBits(size uint64) (bitfield.Bitfield, error) {
	return newBitvector(size, make([]byte, size/8))
}

// MarshalSSZ returns the fixed-layout encoding of h.
func (h *BeaconBlockHeader) MarshalSSZ() ([]byte, error) {
	e := ssz.NewEncoder(params.HeaderSize)
	writeHeader(e, h)
	return e.Bytes(), nil
}

// MarshalSSZ returns the fixed-layout encoding of c.
func (c *SyncCommittee) MarshalSSZ() ([]byte, error) {
	e := ssz.NewEncoder((len(c.Pubkeys) + 1) * params.PubkeySize)
	writeSyncCommittee(e, c)
	return e.Bytes(), nil
}

// MarshalSSZ returns the fixed-layout encoding of a.
func (a *SyncAggregate) MarshalSSZ() ([]byte, error) {
	if a.SyncCommitteeBits == nil {
		return nil, errors.New("light: nil participation bits")
	}
	e := ssz.NewEncoder(int(a.SyncCommitteeBits.Len()/8) + params.SignatureSize)
	writeSyncAggregate(e, a)
	return e.Bytes(), nil
}

// MarshalSSZ returns the fixed-layout encoding of u. Decoding the result with
// the config it was built for yields u again.
func (u *SyncCommitteePeriodUpdate) MarshalSSZ() ([]byte, error) {
	if u.SyncAggregate.SyncCommitteeBits == nil {
		return nil, errors.New("light: nil participation bits")
	}
	e := ssz.NewEncoder(0)
	writeHeader(e, &u.AttestedHeader)
	writeSyncCommittee(e, &u.NextSyncCommittee)
	writeRoots(e, u.NextSyncCommitteeBranch)
	writeHeader(e, &u.FinalizedHeader)
	writeRoots(e, u.FinalityBranch)
	writeSyncAggregate(e, &u.SyncAggregate)
	e.WriteBytes(u.ForkVersion[:])
	return e.Bytes(), nil
}

func writeHeader(e *ssz.Encoder, h *BeaconBlockHeader) {
	e.WriteUint64(h.Slot)
	e.WriteUint64(h.ProposerIndex)
	e.WriteBytes(h.ParentRoot[:])
	e.WriteBytes(h.StateRoot[:])
	e.WriteBytes(h.BodyRoot[:])
}

func writeSyncCommittee(e *ssz.Encoder, c *SyncCommittee) {
	for i := range c.Pubkeys {
		e.WriteBytes(c.Pubkeys[i][:])
	}
	e.WriteBytes(c.AggregatePubkey[:])
}

func writeRoots(e *ssz.Encoder, roots []Root) {
	for i := range roots {
		e.WriteBytes(roots[i][:])
	}
}

func writeSyncAggregate(e *ssz.Encoder, a *SyncAggregate) {
	e.WriteBytes(packedBits(a.SyncCommitteeBits))
	e.WriteBytes(a.SyncCommitteeSignature[:])
}
