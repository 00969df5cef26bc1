package host

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/eth2030/lightcheck/light"
	"github.com/eth2030/lightcheck/log"
	"github.com/eth2030/lightcheck/metrics"
)

// Runner fetches two updates by hash, verifies the second against the first
// and reports the verdict to Sink.
type Runner struct {
	Store          PreimageStore
	Sink           ResultSink
	Verifier       *light.Verifier
	ValidatorsRoot light.Root

	// Logger and Metrics are optional.
	Logger  *log.Logger
	Metrics *metrics.Metrics
}

// Run verifies the update stored under updateHash against the one stored
// under prevHash. A verification failure is signalled to the sink and
// returned unchanged, so callers can classify it with errors.Is. Failures to
// fetch either blob are returned without touching the sink.
func (r *Runner) Run(ctx context.Context, prevHash, updateHash common.Hash) error {
	if r.Store == nil || r.Sink == nil || r.Verifier == nil {
		return errors.New("host: runner is missing a store, sink or verifier")
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.Module("host").With("prev", prevHash.Hex(), "update", updateHash.Hex())

	prevBlob, err := r.fetch(ctx, prevHash)
	if err != nil {
		logger.Error("Failed to load previous update", "err", err)
		return err
	}
	updateBlob, err := r.fetch(ctx, updateHash)
	if err != nil {
		logger.Error("Failed to load update", "err", err)
		return err
	}

	start := time.Now()
	transition, err := r.verify(prevBlob, updateBlob)
	elapsed := time.Since(start)
	if err != nil {
		reason := light.Reason(err)
		if r.Metrics != nil {
			r.Metrics.ObserveReject(elapsed, reason)
		}
		logger.Warn("Update rejected", "reason", reason, "err", err, "elapsed", elapsed)
		if serr := r.Sink.Reject(err); serr != nil {
			return errors.WithMessagef(err, "signal rejection: %v", serr)
		}
		return err
	}

	if r.Metrics != nil {
		r.Metrics.ObserveAccept(elapsed, transition.Period, transition.Participation)
	}
	logger.Info("Update accepted",
		"period", transition.Period,
		"finalized_slot", transition.FinalizedHeader.Slot,
		"finalized_root", transition.FinalizedRoot.String(),
		"participation", transition.Participation,
		"elapsed", elapsed)
	return r.Sink.Accept()
}

func (r *Runner) fetch(ctx context.Context, hash common.Hash) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	blob, err := r.Store.Preimage(hash)
	if err != nil {
		return nil, err
	}
	if r.Metrics != nil {
		r.Metrics.AddPreimageBytes(len(blob))
	}
	return blob, nil
}

func (r *Runner) verify(prevBlob, updateBlob []byte) (*light.Transition, error) {
	cfg := r.Verifier.Config()
	prev, err := light.DecodeUpdate(cfg, prevBlob)
	if err != nil {
		return nil, errors.WithMessage(err, "previous update")
	}
	update, err := light.DecodeUpdate(cfg, updateBlob)
	if err != nil {
		return nil, errors.WithMessage(err, "update")
	}
	return r.Verifier.Process(prev, update, r.ValidatorsRoot)
}
