package light

import (
	"github.com/pkg/errors"

	"github.com/eth2030/lightcheck/params"
)

// SyncCommitteePeriod returns the sync committee period containing slot.
func SyncCommitteePeriod(cfg *params.ChainConfig, slot uint64) uint64 {
	return slot / cfg.SlotsPerSyncCommitteePeriod()
}

// PeriodStartSlot returns the first slot of a sync committee period.
func PeriodStartSlot(cfg *params.ChainConfig, period uint64) uint64 {
	return period * cfg.SlotsPerSyncCommitteePeriod()
}

// CheckAdjacency reports whether update attests a header from the period
// right after the one prev attested, i.e. whether update is signed by the
// committee prev announced. Check does not enforce this.
func CheckAdjacency(cfg *params.ChainConfig, prev, update *SyncCommitteePeriodUpdate) error {
	prevPeriod := SyncCommitteePeriod(cfg, prev.AttestedHeader.Slot)
	period := SyncCommitteePeriod(cfg, update.AttestedHeader.Slot)
	if period != prevPeriod+1 {
		return errors.Wrapf(ErrNonAdjacentPeriods, "previous period %d, update period %d", prevPeriod, period)
	}
	return nil
}
