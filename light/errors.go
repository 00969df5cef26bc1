package light

import (
	"github.com/pkg/errors"

	"github.com/eth2030/lightcheck/crypto"
	"github.com/eth2030/lightcheck/ssz"
)

// Rejection kinds. Every failed check returns an error matching exactly one
// of these under errors.Is.
var (
	ErrDecode                    = errors.New("light: malformed update encoding")
	ErrQuorumNotMet              = errors.New("light: sync committee quorum not met (need 2/3)")
	ErrInvalidSyncCommitteeProof = errors.New("light: invalid next sync committee proof")
	ErrInvalidFinalityProof      = errors.New("light: invalid finality proof")

	ErrMerkleization = ssz.ErrMerkleization

	ErrInvalidSignatureEncoding    = crypto.ErrInvalidSignatureEncoding
	ErrInvalidSignaturePoint       = crypto.ErrInvalidSignaturePoint
	ErrInvalidAggregatePublicKeys  = crypto.ErrInvalidAggregatePublicKeys
	ErrSignatureVerificationFailed = crypto.ErrSignatureVerificationFailed
)

// ErrNonAdjacentPeriods is returned by CheckAdjacency.
var ErrNonAdjacentPeriods = errors.New("light: updates are not from adjacent sync committee periods")

var reasons = []struct {
	err   error
	label string
}{
	{ErrDecode, "decode"},
	{ErrMerkleization, "merkleization"},
	{ErrQuorumNotMet, "quorum_not_met"},
	{ErrInvalidSyncCommitteeProof, "invalid_sync_committee_proof"},
	{ErrInvalidFinalityProof, "invalid_finality_proof"},
	{ErrInvalidSignatureEncoding, "invalid_signature_encoding"},
	{ErrInvalidSignaturePoint, "invalid_signature_point"},
	{ErrInvalidAggregatePublicKeys, "invalid_aggregate_public_keys"},
	{ErrSignatureVerificationFailed, "signature_verification_failed"},
	{ErrNonAdjacentPeriods, "non_adjacent_periods"},
}

// Reason returns a stable snake_case label for the kind of err, suitable as a
// metric label: "ok" for nil and "other" for errors outside the taxonomy.
func Reason(err error) string {
	if err == nil {
		return "ok"
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "other"
}
