package light_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/eth2030/lightcheck/light"
	"github.com/eth2030/lightcheck/light/lighttest"
	"github.com/eth2030/lightcheck/params"
)

var (
	testRoot    = light.Root{0x4b, 0x36, 0x3d, 0xb9}
	testVersion = light.Version{0x04, 0x00, 0x00, 0x01}
)

var (
	minimalOnce  sync.Once
	minimalChain *lighttest.Chain
	minimalErr   error
)

// testChain returns a shared four-update minimal-preset chain. Tests must not
// modify it; use clone.
func testChain(t *testing.T) *lighttest.Chain {
	t.Helper()
	minimalOnce.Do(func() {
		minimalChain, minimalErr = lighttest.NewChain(params.MinimalConfig(), testRoot, testVersion, lighttest.ChainOptions{
			Updates:     4,
			StartPeriod: 10,
			Seed:        1,
		})
	})
	require.NoError(t, minimalErr)
	return minimalChain
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func newVerifier(t *testing.T, cfg *params.ChainConfig) *light.Verifier {
	t.Helper()
	v, err := light.NewVerifier(cfg)
	require.NoError(t, err)
	return v
}

// clone deep-copies u through its encoding.
func clone(t *testing.T, cfg *params.ChainConfig, u *light.SyncCommitteePeriodUpdate) *light.SyncCommitteePeriodUpdate {
	t.Helper()
	b, err := u.MarshalSSZ()
	require.NoError(t, err)
	c, err := light.DecodeUpdate(cfg, b)
	require.NoError(t, err)
	return c
}

func TestCheckAcceptsLinkedUpdates(t *testing.T) {
	chain := testChain(t)
	v := newVerifier(t, chain.Config)
	for i := 1; i < len(chain.Updates); i++ {
		require.NoError(t, v.Check(chain.Updates[i-1], chain.Updates[i], testRoot), "pair %d", i)
		require.NoError(t, light.CheckAdjacency(chain.Config, chain.Updates[i-1], chain.Updates[i]))
	}
}

func TestCheckBytes(t *testing.T) {
	chain := testChain(t)
	v := newVerifier(t, chain.Config)
	blobs, err := chain.Encoded()
	require.NoError(t, err)

	require.NoError(t, v.CheckBytes(blobs[0], blobs[1], testRoot))

	// Byte 100 lies in the attested body root: the layout still decodes and
	// both proofs still hold, only the signed message changes.
	corrupted := append([]byte{}, blobs[1]...)
	corrupted[100] = 0
	require.NotEqual(t, blobs[1][100], corrupted[100])
	err = v.CheckBytes(blobs[0], corrupted, testRoot)
	require.True(t, errors.Is(err, light.ErrSignatureVerificationFailed), "got %v", err)

	// Decode errors win over everything else.
	err = v.CheckBytes(blobs[0][:10], corrupted, testRoot)
	require.True(t, errors.Is(err, light.ErrDecode), "got %v", err)
	err = v.CheckBytes(blobs[0], append(corrupted, 0), testRoot)
	require.True(t, errors.Is(err, light.ErrDecode), "got %v", err)
}

func TestCheckRejections(t *testing.T) {
	chain := testChain(t)
	cfg := chain.Config
	v := newVerifier(t, cfg)
	prev, good := chain.Updates[0], chain.Updates[1]

	tests := []struct {
		name   string
		mutate func(prev, u *light.SyncCommitteePeriodUpdate)
		root   light.Root
		want   error
	}{
		{
			name: "below quorum",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				for i := uint64(21); i < cfg.SyncCommitteeSize; i++ {
					u.SyncAggregate.SyncCommitteeBits.SetBitAt(i, false)
				}
			},
			want: light.ErrQuorumNotMet,
		},
		{
			name: "next committee key swapped",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.NextSyncCommittee.Pubkeys[3][10] ^= 1
			},
			want: light.ErrInvalidSyncCommitteeProof,
		},
		{
			name: "next committee branch tampered",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.NextSyncCommitteeBranch[4][0] ^= 1
			},
			want: light.ErrInvalidSyncCommitteeProof,
		},
		{
			name: "next committee branch too short",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.NextSyncCommitteeBranch = u.NextSyncCommitteeBranch[:4]
			},
			want: light.ErrDecode,
		},
		{
			name: "finalized slot changed",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.FinalizedHeader.Slot++
			},
			want: light.ErrInvalidFinalityProof,
		},
		{
			name: "finality branch too long",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.FinalityBranch = append(u.FinalityBranch, light.Root{})
			},
			want: light.ErrDecode,
		},
		{
			name: "finality branch too short",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.FinalityBranch = u.FinalityBranch[:5]
			},
			want: light.ErrDecode,
		},
		{
			name: "next committee too small",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.NextSyncCommittee.Pubkeys = u.NextSyncCommittee.Pubkeys[:5]
			},
			want: light.ErrDecode,
		},
		{
			name: "next committee and branch both short",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.NextSyncCommittee.Pubkeys = u.NextSyncCommittee.Pubkeys[:5]
				u.NextSyncCommitteeBranch = u.NextSyncCommitteeBranch[:2]
			},
			want: light.ErrDecode,
		},
		{
			name: "attested state root replaced",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.AttestedHeader.StateRoot = light.Root{9}
			},
			want: light.ErrInvalidFinalityProof,
		},
		{
			name: "attested slot changed",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.AttestedHeader.Slot++
			},
			want: light.ErrSignatureVerificationFailed,
		},
		{
			name: "fork version changed",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.ForkVersion[0] ^= 1
			},
			want: light.ErrSignatureVerificationFailed,
		},
		{
			name:   "other chain",
			mutate: func(_, _ *light.SyncCommitteePeriodUpdate) {},
			root:   light.Root{0xde, 0xad},
			want:   light.ErrSignatureVerificationFailed,
		},
		{
			name: "participant bit moved",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.SyncAggregate.SyncCommitteeBits.SetBitAt(0, false)
			},
			want: light.ErrSignatureVerificationFailed,
		},
		{
			name: "signature not a point",
			mutate: func(_, u *light.SyncCommitteePeriodUpdate) {
				u.SyncAggregate.SyncCommitteeSignature = light.Signature{}
			},
			want: light.ErrInvalidSignatureEncoding,
		},
		{
			name: "signing key not compressed",
			mutate: func(prev, _ *light.SyncCommitteePeriodUpdate) {
				prev.NextSyncCommittee.Pubkeys[0] = light.PublicKey{}
			},
			want: light.ErrInvalidSignatureEncoding,
		},
		{
			name: "signing key off curve",
			mutate: func(prev, _ *light.SyncCommitteePeriodUpdate) {
				var k light.PublicKey
				for i := range k {
					k[i] = 0xff
				}
				k[0] = 0x9f
				prev.NextSyncCommittee.Pubkeys[1] = k
			},
			want: light.ErrInvalidSignaturePoint,
		},
		{
			name: "signing key is the identity",
			mutate: func(prev, _ *light.SyncCommitteePeriodUpdate) {
				prev.NextSyncCommittee.Pubkeys[0] = light.PublicKey{0xc0}
			},
			want: light.ErrInvalidAggregatePublicKeys,
		},
		{
			name: "signing committee wrong size",
			mutate: func(prev, _ *light.SyncCommitteePeriodUpdate) {
				prev.NextSyncCommittee.Pubkeys = prev.NextSyncCommittee.Pubkeys[:16]
			},
			want: light.ErrDecode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, u := clone(t, cfg, prev), clone(t, cfg, good)
			tt.mutate(p, u)
			root := testRoot
			if tt.root != (light.Root{}) {
				root = tt.root
			}
			err := v.Check(p, u, root)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestCheckContinuity(t *testing.T) {
	chain := testChain(t)
	cfg := chain.Config
	v := newVerifier(t, cfg)

	// A validly shaped but unrelated committee in prev must not be able to
	// vouch for the update.
	stranger, err := lighttest.NewCommittee(cfg.SyncCommitteeSize, 999)
	require.NoError(t, err)
	prev := clone(t, cfg, chain.Updates[0])
	prev.NextSyncCommittee = *stranger.SyncCommittee
	err = v.Check(prev, chain.Updates[1], testRoot)
	require.True(t, errors.Is(err, light.ErrSignatureVerificationFailed), "got %v", err)

	// Skipping an update breaks the chain as well.
	err = v.Check(chain.Updates[0], chain.Updates[2], testRoot)
	require.True(t, errors.Is(err, light.ErrSignatureVerificationFailed), "got %v", err)

	// Re-signing by the stranger makes the stranger-led pair verify, which is
	// exactly why prev must itself have been verified.
	u := clone(t, cfg, chain.Updates[1])
	require.NoError(t, lighttest.Sign(cfg, u, stranger, testRoot))
	require.NoError(t, v.Check(prev, u, testRoot))
}

func TestCheckQuorumBoundary(t *testing.T) {
	cfg := params.MinimalConfig()
	signers, err := lighttest.NewCommittee(cfg.SyncCommitteeSize, 21)
	require.NoError(t, err)
	next, err := lighttest.NewCommittee(cfg.SyncCommitteeSize, 22)
	require.NoError(t, err)
	prev := &light.SyncCommitteePeriodUpdate{NextSyncCommittee: *signers.SyncCommittee}
	v := newVerifier(t, cfg)

	for _, tt := range []struct {
		participants uint64
		want         error
	}{
		{22, nil},
		{21, light.ErrQuorumNotMet},
	} {
		u, err := lighttest.BuildUpdate(cfg, lighttest.UpdateSpec{
			Signers:        signers,
			Next:           next,
			Participants:   tt.participants,
			AttestedSlot:   700,
			ForkVersion:    testVersion,
			ValidatorsRoot: testRoot,
		}, newRand(5))
		require.NoError(t, err)
		err = v.Check(prev, u, testRoot)
		if tt.want == nil {
			require.NoError(t, err)
		} else {
			require.True(t, errors.Is(err, tt.want), "got %v", err)
		}
	}
}

func TestProcess(t *testing.T) {
	chain := testChain(t)
	v := newVerifier(t, chain.Config)
	tr, err := v.Process(chain.Updates[0], chain.Updates[1], testRoot)
	require.NoError(t, err)
	require.Equal(t, chain.Committees[2].SyncCommittee.Pubkeys, tr.NextSyncCommittee.Pubkeys)
	require.Equal(t, chain.Updates[1].FinalizedHeader, tr.FinalizedHeader)
	wantRoot, err := chain.Updates[1].FinalizedHeader.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, wantRoot, tr.FinalizedRoot)
	require.Equal(t, uint64(11), tr.Period)
	require.Equal(t, 1.0, tr.Participation)

	// The transition does not alias the update.
	tr.NextSyncCommittee.Pubkeys[0][0] ^= 1
	require.NotEqual(t, tr.NextSyncCommittee.Pubkeys[0], chain.Updates[1].NextSyncCommittee.Pubkeys[0])
	tr.NextSyncCommittee.Pubkeys[0][0] ^= 1

	_, err = v.Process(chain.Updates[1], chain.Updates[0], testRoot)
	require.Error(t, err)
}

func TestNewVerifierValidates(t *testing.T) {
	_, err := light.NewVerifier(nil)
	require.True(t, errors.Is(err, params.ErrInvalidConfig))
	cfg := params.MinimalConfig()
	cfg.SyncCommitteeSize = 24
	_, err = light.NewVerifier(cfg)
	require.True(t, errors.Is(err, params.ErrInvalidConfig))
}

func TestVerifyConcurrentChecks(t *testing.T) {
	chain := testChain(t)
	v := newVerifier(t, chain.Config)
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = v.Check(chain.Updates[i%3], chain.Updates[i%3+1], testRoot)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}

func TestVerifySequence(t *testing.T) {
	chain := testChain(t)
	cfg := chain.Config
	v := newVerifier(t, cfg)
	ctx := context.Background()

	require.NoError(t, light.VerifySequence(ctx, v, chain.Updates, testRoot, 2))
	require.NoError(t, light.VerifySequence(ctx, v, chain.Updates[:1], testRoot, 0))

	broken := append([]*light.SyncCommitteePeriodUpdate{}, chain.Updates...)
	bad := clone(t, cfg, broken[2])
	bad.FinalizedHeader.ProposerIndex++
	broken[2] = bad
	err := light.VerifySequence(ctx, v, broken, testRoot, 0)
	var seqErr *light.SequenceError
	require.True(t, errors.As(err, &seqErr), "got %v", err)
	// Pair 1 is (updates[1], bad): bad's own proof fails. Pair 2 uses bad
	// only as prev and its committee is untouched.
	require.Equal(t, 1, seqErr.Pair)
	require.True(t, errors.Is(err, light.ErrInvalidFinalityProof))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.True(t, errors.Is(light.VerifySequence(cancelled, v, chain.Updates, testRoot, 1), context.Canceled))
}

func TestCheckMainnet(t *testing.T) {
	if testing.Short() {
		t.Skip("signs with two full 512-member committees")
	}
	cfg := params.MainnetConfig()
	gvr := light.Root(cfg.GenesisValidatorsRoot)
	chain, err := lighttest.NewChain(cfg, gvr, light.Version{0x04, 0, 0, 0}, lighttest.ChainOptions{
		Updates:      2,
		StartPeriod:  1200,
		Participants: 400,
		Seed:         3,
	})
	require.NoError(t, err)
	blobs, err := chain.Encoded()
	require.NoError(t, err)
	require.Len(t, blobs[1], 25364)

	prev, err := light.DecodeUpdate(cfg, blobs[0])
	require.NoError(t, err)
	update, err := light.DecodeUpdate(cfg, blobs[1])
	require.NoError(t, err)
	require.NoError(t, light.Check(prev, update, gvr))

	blobs[1][100] = 0
	corrupted, err := light.DecodeUpdate(cfg, blobs[1])
	require.NoError(t, err)
	err = light.Check(prev, corrupted, gvr)
	require.True(t, errors.Is(err, light.ErrSignatureVerificationFailed), "got %v", err)
}
