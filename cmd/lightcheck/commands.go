package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/eth2030/lightcheck/host"
	"github.com/eth2030/lightcheck/light"
)

func newSink(format string, w io.Writer, root light.Root) (host.ResultSink, error) {
	switch format {
	case outputMarker:
		return host.NewMarkerSink(w, root), nil
	case outputWord:
		return host.NewWordSink(w), nil
	default:
		return nil, errors.Errorf("unknown --%s %q (want %s or %s)", outputFlag.Name, format, outputMarker, outputWord)
	}
}

// check verifies the update under the second hash against the one under the
// first and writes the verdict to stdout.
func (e *appEnv) check(cCtx *cli.Context) error {
	if cCtx.NArg() != 2 {
		return cli.Exit(fmt.Sprintf("check: want <prev-hash> <update-hash>, got %d arguments", cCtx.NArg()), exitFailure)
	}
	hashes, err := parseHashes(cCtx.Args())
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	v, root, err := newVerifier(cCtx)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	sink, err := newSink(cCtx.String(outputFlag.Name), e.stdout, root)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	runner := &host.Runner{
		Store:          host.NewDirStore(cCtx.String(cacheDirFlag.Name)),
		Sink:           sink,
		Verifier:       v,
		ValidatorsRoot: root,
		Logger:         e.logger,
		Metrics:        e.metrics,
	}
	if err := runner.Run(cCtx.Context, hashes[0], hashes[1]); err != nil {
		if isRejection(err) {
			return cli.Exit(errors.WithMessage(err, "update rejected"), exitReject)
		}
		return cli.Exit(err, exitFailure)
	}
	return nil
}

// verifyChain checks an ordered run of updates pair by pair and prints the
// hash and period of every update it accepted.
func (e *appEnv) verifyChain(cCtx *cli.Context) error {
	if cCtx.NArg() < 2 {
		return cli.Exit(fmt.Sprintf("verify-chain: want at least two hashes, got %d", cCtx.NArg()), exitFailure)
	}
	hashes, err := parseHashes(cCtx.Args())
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	v, root, err := newVerifier(cCtx)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	cfg := v.Config()
	logger := e.logger.Module("chain")
	store := host.NewDirStore(cCtx.String(cacheDirFlag.Name))

	updates := make([]*light.SyncCommitteePeriodUpdate, len(hashes))
	for i, h := range hashes {
		blob, err := store.Preimage(h)
		if err != nil {
			return cli.Exit(err, exitFailure)
		}
		e.metrics.AddPreimageBytes(len(blob))
		u, err := light.DecodeUpdate(cfg, blob)
		if err != nil {
			e.metrics.ObserveReject(0, light.Reason(err))
			return cli.Exit(errors.WithMessagef(err, "update %d (%s)", i, h.Hex()), exitReject)
		}
		updates[i] = u
	}

	workers := cCtx.Int(workersFlag.Name)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	start := time.Now()
	err = light.VerifySequence(cCtx.Context, v, updates, root, workers)
	elapsed := time.Since(start)

	var seqErr *light.SequenceError
	if errors.As(err, &seqErr) {
		reason := light.Reason(seqErr.Err)
		prev, next := hashes[seqErr.Pair], hashes[seqErr.Pair+1]
		e.metrics.ObserveReject(elapsed, reason)
		logger.Warn("Update rejected", "pair", seqErr.Pair, "prev", prev.Hex(), "update", next.Hex(), "reason", reason)
		return cli.Exit(errors.WithMessagef(seqErr.Err, "%s -> %s", prev.Hex(), next.Hex()), exitReject)
	}
	if err != nil {
		return cli.Exit(err, exitFailure)
	}

	for i := 1; i < len(updates); i++ {
		fmt.Fprintf(e.stdout, "%s %d\n", hashes[i].Hex(), light.SyncCommitteePeriod(cfg, updates[i].AttestedHeader.Slot))
	}
	last := updates[len(updates)-1]
	period := light.SyncCommitteePeriod(cfg, last.AttestedHeader.Slot)
	e.metrics.ObserveAccept(elapsed, period, light.Participation(last.SyncAggregate.SyncCommitteeBits))
	logger.Info("Chain verified", "pairs", len(updates)-1, "workers", workers, "period", period, "elapsed", elapsed)
	return nil
}

// importUpdates stores update files in the cache under their keccak-256
// hash, printing one hash per file. Files that do not decode as updates for
// the selected chain are refused.
func (e *appEnv) importUpdates(cCtx *cli.Context) error {
	if cCtx.NArg() == 0 {
		return cli.Exit("import: no files given", exitFailure)
	}
	cfg, err := chainConfig(cCtx)
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	logger := e.logger.Module("import")
	store := host.NewDirStore(cCtx.String(cacheDirFlag.Name))

	for _, path := range cCtx.Args().Slice() {
		blob, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(errors.Wrap(err, "import"), exitFailure)
		}
		u, err := light.DecodeUpdate(cfg, blob)
		if err != nil {
			return cli.Exit(errors.WithMessage(err, path), exitFailure)
		}
		h, err := store.Put(blob)
		if err != nil {
			return cli.Exit(err, exitFailure)
		}
		fmt.Fprintln(e.stdout, h.Hex())
		logger.Info("Imported update", "file", path, "hash", h.Hex(), "slot", u.AttestedHeader.Slot)
	}
	return nil
}
