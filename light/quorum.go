package light

import (
	"github.com/prysmaticlabs/go-bitfield"
)

// MinQuorumNumerator and MinQuorumDenominator define the minimum
// participation threshold: at least 2/3 of the committee must sign.
const (
	MinQuorumNumerator   = 2
	MinQuorumDenominator = 3
)

// IsSupermajority reports whether at least two thirds of the committee
// participated. The denominator is the declared length of the bit-vector,
// never the number of bits that happened to be supplied.
func IsSupermajority(bits bitfield.Bitfield) bool {
	if bits == nil {
		return false
	}
	return meetsQuorum(bits.Count(), bits.Len())
}

func meetsQuorum(participants, committeeSize uint64) bool {
	return participants*MinQuorumDenominator >= committeeSize*MinQuorumNumerator
}

// ParticipantCount returns the number of set participation bits.
func ParticipantCount(bits bitfield.Bitfield) uint64 {
	if bits == nil {
		return 0
	}
	return bits.Count()
}

// Participation returns the participating fraction of the committee, in [0, 1].
func Participation(bits bitfield.Bitfield) float64 {
	if bits == nil || bits.Len() == 0 {
		return 0
	}
	return float64(bits.Count()) / float64(bits.Len())
}

// extractParticipants returns the keys of committee members whose
// participation bit is set, in committee order.
func extractParticipants(committee []PublicKey, bits bitfield.Bitfield) [][48]byte {
	participants := make([][48]byte, 0, bits.Count())
	for i := range committee {
		if bits.BitAt(uint64(i)) {
			participants = append(participants, committee[i])
		}
	}
	return participants
}
