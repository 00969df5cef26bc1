package light

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// SequenceError reports the first pair of an update sequence that failed.
// Pair i is (updates[i], updates[i+1]).
type SequenceError struct {
	Pair int
	Err  error
}

func (e *SequenceError) Error() string {
	return errors.Wrapf(e.Err, "light: update pair %d", e.Pair).Error()
}

func (e *SequenceError) Unwrap() error { return e.Err }

// VerifySequence checks every adjacent pair of an ordered chain of updates.
// Pairs are independent, so up to workers of them are verified concurrently;
// workers <= 0 means no limit. On failure the lowest failing pair is reported
// as a *SequenceError. Cancelling ctx stops scheduling further pairs.
func VerifySequence(ctx context.Context, v *Verifier, updates []*SyncCommitteePeriodUpdate, validatorsRoot Root, workers int) error {
	if len(updates) < 2 {
		return nil
	}
	results := make([]error, len(updates)-1)

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range results {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = v.Check(updates[i], updates[i+1], validatorsRoot)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, err := range results {
		if err != nil {
			return &SequenceError{Pair: i, Err: err}
		}
	}
	return ctx.Err()
}
