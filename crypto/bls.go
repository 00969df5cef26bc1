// Package crypto provides the BLS12-381 aggregate signature check used by the
// beacon light client, backed by the supranational/blst library with the
// "MinPk" scheme Ethereum uses:
//   - Public keys in G1 (48-byte compressed P1Affine)
//   - Signatures in G2 (96-byte compressed P2Affine)
//   - DST: BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_
package crypto

import (
	"github.com/pkg/errors"
	blst "github.com/supranational/blst/bindings/go"
)

// blstDST is the domain separation tag for Ethereum BLS signatures.
var blstDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// Key and signature sizes for the MinPk scheme.
const (
	PubkeySize    = 48 // compressed G1
	SignatureSize = 96 // compressed G2
	ikmMinSize    = 32
)

// Compressed point encodings carry flags in the top three bits of the first
// byte. A compressed key always has the compression bit set.
const compressionFlag = 0x80

// Verification failures. They are distinct so callers can tell a malformed
// input from a well-formed but wrong signature.
var (
	ErrInvalidSignatureEncoding    = errors.New("bls: invalid signature encoding")
	ErrInvalidSignaturePoint       = errors.New("bls: public key is not a valid curve point")
	ErrInvalidAggregatePublicKeys  = errors.New("bls: cannot aggregate public keys")
	ErrSignatureVerificationFailed = errors.New("bls: signature verification failed")
)

// Errors returned by the key helpers.
var (
	ErrInvalidIKM      = errors.New("bls: IKM must be at least 32 bytes")
	ErrKeyGenFailed    = errors.New("bls: key generation failed")
	ErrNoSignatures    = errors.New("bls: no signatures to aggregate")
	ErrAggregateFailed = errors.New("bls: aggregation failed")
)

// VerifyAggregate checks that sig is a valid aggregate signature over msg by
// exactly the given public keys, all having signed the same message. The keys
// are combined into one aggregate key before a single pairing check.
func VerifyAggregate(pubkeys [][PubkeySize]byte, msg [32]byte, sig [SignatureSize]byte) error {
	s := new(blst.P2Affine).Uncompress(sig[:])
	if s == nil {
		return ErrInvalidSignatureEncoding
	}
	pks := make([]*blst.P1Affine, len(pubkeys))
	for i := range pubkeys {
		if pubkeys[i][0]&compressionFlag == 0 {
			return errors.Wrapf(ErrInvalidSignatureEncoding, "public key %d is not compressed", i)
		}
		pks[i] = new(blst.P1Affine).Uncompress(pubkeys[i][:])
		if pks[i] == nil {
			return errors.Wrapf(ErrInvalidSignaturePoint, "public key %d", i)
		}
	}
	agg, err := aggregatePublicKeys(pks)
	if err != nil {
		return err
	}
	if !s.Verify(true, agg, false, msg[:], blstDST) {
		return ErrSignatureVerificationFailed
	}
	return nil
}

func aggregatePublicKeys(pks []*blst.P1Affine) (*blst.P1Affine, error) {
	if len(pks) == 0 {
		return nil, errors.Wrap(ErrInvalidAggregatePublicKeys, "empty key set")
	}
	for i, pk := range pks {
		if !pk.KeyValidate() {
			return nil, errors.Wrapf(ErrInvalidAggregatePublicKeys, "public key %d is the identity or outside G1", i)
		}
	}
	agg := new(blst.P1Aggregate)
	if !agg.Aggregate(pks, false) {
		return nil, errors.Wrap(ErrInvalidAggregatePublicKeys, "aggregation failed")
	}
	aff := agg.ToAffine()
	if !aff.KeyValidate() {
		return nil, errors.Wrap(ErrInvalidAggregatePublicKeys, "aggregate is the identity")
	}
	return aff, nil
}

// AggregatePublicKeys combines compressed public keys into one compressed
// aggregate key, as stored in a sync committee's aggregate_pubkey field.
func AggregatePublicKeys(pubkeys [][PubkeySize]byte) ([PubkeySize]byte, error) {
	var out [PubkeySize]byte
	pks := make([]*blst.P1Affine, len(pubkeys))
	for i := range pubkeys {
		if pks[i] = new(blst.P1Affine).Uncompress(pubkeys[i][:]); pks[i] == nil {
			return out, errors.Wrapf(ErrInvalidSignaturePoint, "public key %d", i)
		}
	}
	agg, err := aggregatePublicKeys(pks)
	if err != nil {
		return out, err
	}
	copy(out[:], agg.Compress())
	return out, nil
}

// SecretKey is a BLS secret key. It is only needed to produce signatures, which
// the verifier itself never does.
type SecretKey struct {
	sk *blst.SecretKey
}

// SecretKeyFromSeed derives a secret key from input key material (IKM) with
// the IETF KeyGen procedure. The seed must be at least 32 bytes.
func SecretKeyFromSeed(ikm []byte) (*SecretKey, error) {
	if len(ikm) < ikmMinSize {
		return nil, ErrInvalidIKM
	}
	sk := blst.KeyGen(ikm)
	if sk == nil {
		return nil, ErrKeyGenFailed
	}
	return &SecretKey{sk: sk}, nil
}

// PublicKey returns the compressed public key of k.
func (k *SecretKey) PublicKey() [PubkeySize]byte {
	var out [PubkeySize]byte
	copy(out[:], new(blst.P1Affine).From(k.sk).Compress())
	return out
}

// Sign signs msg with the Ethereum proof-of-possession ciphersuite.
func (k *SecretKey) Sign(msg []byte) [SignatureSize]byte {
	var out [SignatureSize]byte
	copy(out[:], new(blst.P2Affine).Sign(k.sk, msg, blstDST).Compress())
	return out
}

// AggregateSignatures aggregates compressed signatures into one.
func AggregateSignatures(sigs [][SignatureSize]byte) ([SignatureSize]byte, error) {
	var out [SignatureSize]byte
	if len(sigs) == 0 {
		return out, ErrNoSignatures
	}
	raw := make([][]byte, len(sigs))
	for i := range sigs {
		raw[i] = sigs[i][:]
	}
	agg := new(blst.P2Aggregate)
	if !agg.AggregateCompressed(raw, true) {
		return out, ErrAggregateFailed
	}
	copy(out[:], agg.ToAffine().Compress())
	return out, nil
}
