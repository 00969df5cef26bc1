// Package params holds the protocol constants a sync-committee verifier needs.
// Every constant the verification core consumes is carried by a ChainConfig so
// that networks with a different committee shape (e.g. the 32-member minimal
// preset) are supported without code changes.
package params

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sizes of the BLS primitives on the wire. These are fixed by the curve and do
// not vary between networks.
const (
	PubkeySize    = 48
	SignatureSize = 96
	RootSize      = 32
	VersionSize   = 4
)

// Header is slot(8) + proposer_index(8) + parent_root + state_root + body_root.
const HeaderSize = 8 + 8 + 3*RootSize

// Preset names.
const (
	PresetMainnet = "mainnet"
	PresetMinimal = "minimal"
)

// ErrInvalidConfig is returned when a ChainConfig fails validation.
var ErrInvalidConfig = errors.New("params: invalid chain config")

// supportedCommitteeSizes lists the participation bit-vector lengths the light
// client codec knows how to decode.
var supportedCommitteeSizes = map[uint64]bool{32: true, 64: true, 128: true, 512: true}

// ChainConfig holds the light-client relevant parameters of one beacon chain.
type ChainConfig struct {
	ConfigName string
	PresetBase string

	// SyncCommitteeSize is the number of members in a sync committee. Both the
	// pubkey vector and the participation bit-vector have exactly this length.
	SyncCommitteeSize uint64

	SlotsPerEpoch                uint64
	EpochsPerSyncCommitteePeriod uint64

	// Proof geometry of the light-client branches, as (depth, subtree index).
	NextSyncCommitteeDepth uint64
	NextSyncCommitteeIndex uint64
	FinalizedRootDepth     uint64
	FinalizedRootIndex     uint64

	DomainSyncCommittee [VersionSize]byte
	GenesisForkVersion  [VersionSize]byte

	// GenesisValidatorsRoot identifies the chain. The verifier never reads it
	// from here; it is the default a caller may pass in.
	GenesisValidatorsRoot [RootSize]byte
}

// MainnetConfig returns a fresh copy of the Ethereum mainnet parameters.
func MainnetConfig() *ChainConfig {
	return &ChainConfig{
		ConfigName:                   "mainnet",
		PresetBase:                   PresetMainnet,
		SyncCommitteeSize:            512,
		SlotsPerEpoch:                32,
		EpochsPerSyncCommitteePeriod: 256,
		NextSyncCommitteeDepth:       5,
		NextSyncCommitteeIndex:       23,
		FinalizedRootDepth:           6,
		FinalizedRootIndex:           41,
		DomainSyncCommittee:          [VersionSize]byte{0x07, 0x00, 0x00, 0x00},
		GenesisForkVersion:           [VersionSize]byte{0x00, 0x00, 0x00, 0x00},
		GenesisValidatorsRoot: [RootSize]byte{
			0x4b, 0x36, 0x3d, 0xb9, 0x4e, 0x28, 0x61, 0x20, 0xd7, 0x6e, 0xb9, 0x05, 0x34, 0x0f, 0xdd, 0x4e,
			0x54, 0xbf, 0xe9, 0xf0, 0x6b, 0xf3, 0x3f, 0xf6, 0xcf, 0x5a, 0xd2, 0x7f, 0x51, 0x1b, 0xfe, 0x95,
		},
	}
}

// MinimalConfig returns a fresh copy of the minimal preset used by testnets
// and spec tests: a 32-member committee and short periods.
func MinimalConfig() *ChainConfig {
	cfg := MainnetConfig()
	cfg.ConfigName = "minimal"
	cfg.PresetBase = PresetMinimal
	cfg.SyncCommitteeSize = 32
	cfg.SlotsPerEpoch = 8
	cfg.EpochsPerSyncCommitteePeriod = 8
	cfg.GenesisForkVersion = [VersionSize]byte{0x00, 0x00, 0x00, 0x01}
	cfg.GenesisValidatorsRoot = [RootSize]byte{}
	return cfg
}

// ConfigByName returns the preset registered under name.
func ConfigByName(name string) (*ChainConfig, error) {
	switch name {
	case PresetMainnet:
		return MainnetConfig(), nil
	case PresetMinimal:
		return MinimalConfig(), nil
	default:
		return nil, errors.Errorf("params: unknown network %q", name)
	}
}

// Copy returns a deep copy of the config.
func (c *ChainConfig) Copy() *ChainConfig {
	cp := *c
	return &cp
}

// Validate checks the config constraints and returns an error if invalid.
func (c *ChainConfig) Validate() error {
	if c.SyncCommitteeSize == 0 || c.SyncCommitteeSize%8 != 0 {
		return errors.Wrapf(ErrInvalidConfig, "sync committee size %d must be a positive multiple of 8", c.SyncCommitteeSize)
	}
	if !supportedCommitteeSizes[c.SyncCommitteeSize] {
		return errors.Wrapf(ErrInvalidConfig, "unsupported sync committee size %d", c.SyncCommitteeSize)
	}
	if c.SlotsPerEpoch == 0 || c.EpochsPerSyncCommitteePeriod == 0 {
		return errors.Wrap(ErrInvalidConfig, "slots per epoch and epochs per period must be > 0")
	}
	if err := validateBranch("next sync committee", c.NextSyncCommitteeDepth, c.NextSyncCommitteeIndex); err != nil {
		return err
	}
	return validateBranch("finalized root", c.FinalizedRootDepth, c.FinalizedRootIndex)
}

func validateBranch(name string, depth, index uint64) error {
	if depth == 0 || depth >= 64 {
		return errors.Wrapf(ErrInvalidConfig, "%s depth %d out of range", name, depth)
	}
	if index >= 1<<depth {
		return errors.Wrapf(ErrInvalidConfig, "%s index %d does not fit depth %d", name, index, depth)
	}
	return nil
}

// SlotsPerSyncCommitteePeriod returns the number of slots one committee serves.
func (c *ChainConfig) SlotsPerSyncCommitteePeriod() uint64 {
	return c.SlotsPerEpoch * c.EpochsPerSyncCommitteePeriod
}

// SyncCommitteeBytes is the encoded size of a SyncCommittee container.
func (c *ChainConfig) SyncCommitteeBytes() int {
	return int(c.SyncCommitteeSize)*PubkeySize + PubkeySize
}

// SyncCommitteeBitsBytes is the encoded size of the participation bit-vector.
func (c *ChainConfig) SyncCommitteeBitsBytes() int {
	return int(c.SyncCommitteeSize / 8)
}

// SyncAggregateBytes is the encoded size of a SyncAggregate container.
func (c *ChainConfig) SyncAggregateBytes() int {
	return c.SyncCommitteeBitsBytes() + SignatureSize
}

// UpdateSize is the exact encoded size of a SyncCommitteePeriodUpdate.
func (c *ChainConfig) UpdateSize() int {
	return HeaderSize +
		c.SyncCommitteeBytes() +
		int(c.NextSyncCommitteeDepth)*RootSize +
		HeaderSize +
		int(c.FinalizedRootDepth)*RootSize +
		c.SyncAggregateBytes() +
		VersionSize
}

// String implements fmt.Stringer.
func (c *ChainConfig) String() string {
	return fmt.Sprintf("%s(preset=%s, committee=%d)", c.ConfigName, c.PresetBase, c.SyncCommitteeSize)
}
