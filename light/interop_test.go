package light

import (
	"testing"

	"github.com/attestantio/go-eth2-client/spec/altair"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/eth2030/lightcheck/params"
)

// The go-eth2-client containers carry fastssz generated hash-tree-roots, an
// implementation independent of ours.

func TestHeaderRootMatchesGoEth2Client(t *testing.T) {
	u := sampleUpdate(t, params.MainnetConfig(), 21)
	for _, h := range []BeaconBlockHeader{u.AttestedHeader, u.FinalizedHeader} {
		ours, err := h.HashTreeRoot()
		require.NoError(t, err)
		theirs, err := h.ToPhase0().HashTreeRoot()
		require.NoError(t, err)
		require.Equal(t, [32]byte(ours), theirs)
		require.Equal(t, h, HeaderFromPhase0(h.ToPhase0()))
	}
}

func TestSyncCommitteeRootMatchesGoEth2Client(t *testing.T) {
	u := sampleUpdate(t, params.MainnetConfig(), 22)
	ours, err := u.NextSyncCommittee.HashTreeRoot()
	require.NoError(t, err)
	theirs, err := u.NextSyncCommittee.ToAltair().HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, [32]byte(ours), theirs)
	require.Equal(t, &u.NextSyncCommittee, SyncCommitteeFromAltair(u.NextSyncCommittee.ToAltair()))
}

func TestSyncAggregateRootMatchesGoEth2Client(t *testing.T) {
	u := sampleUpdate(t, params.MainnetConfig(), 23)
	ours, err := u.SyncAggregate.HashTreeRoot()
	require.NoError(t, err)
	a, err := u.SyncAggregate.ToAltair()
	require.NoError(t, err)
	theirs, err := a.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, [32]byte(ours), theirs)

	back, err := SyncAggregateFromAltair(a)
	require.NoError(t, err)
	require.Equal(t, ParticipantCount(u.SyncAggregate.SyncCommitteeBits), ParticipantCount(back.SyncCommitteeBits))
	require.Equal(t, u.SyncAggregate.SyncCommitteeSignature, back.SyncCommitteeSignature)
}

func TestSyncAggregateInteropSizes(t *testing.T) {
	small := sampleUpdate(t, params.MinimalConfig(), 24)
	_, err := small.SyncAggregate.ToAltair()
	require.True(t, errors.Is(err, ErrDecode))

	_, err = SyncAggregateFromAltair(&altair.SyncAggregate{SyncCommitteeBits: make([]byte, 4)})
	require.True(t, errors.Is(err, ErrDecode))
}

func TestForkDataRootMatchesGoEth2Client(t *testing.T) {
	f := &phase0.ForkData{
		CurrentVersion:        phase0.Version{0x04, 0x00, 0x00, 0x00},
		GenesisValidatorsRoot: phase0.Root{0x4b, 0x36, 0x3d, 0xb9},
	}
	theirs, err := f.HashTreeRoot()
	require.NoError(t, err)
	fd := ForkDataFromPhase0(f)
	ours, err := fd.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, [32]byte(ours), theirs)

	// The domain embeds the first 28 bytes of the fork data root.
	version := Version(f.CurrentVersion)
	domain, err := ComputeDomain(params.MainnetConfig().DomainSyncCommittee, &version, Root(f.GenesisValidatorsRoot), params.MainnetConfig())
	require.NoError(t, err)
	require.Equal(t, theirs[:28], domain[4:])
}

func TestSigningRootMatchesGoEth2Client(t *testing.T) {
	u := sampleUpdate(t, params.MainnetConfig(), 25)
	domain := Domain{0x07, 0, 0, 0, 0xab}
	ours, err := ComputeSigningRoot(&u.AttestedHeader, domain)
	require.NoError(t, err)

	objectRoot, err := u.AttestedHeader.ToPhase0().HashTreeRoot()
	require.NoError(t, err)
	theirs, err := (&phase0.SigningData{ObjectRoot: objectRoot, Domain: phase0.Domain(domain)}).HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, [32]byte(ours), theirs)
}
