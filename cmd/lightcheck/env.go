package main

import (
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/eth2030/lightcheck/host"
	"github.com/eth2030/lightcheck/light"
	"github.com/eth2030/lightcheck/log"
	"github.com/eth2030/lightcheck/metrics"
	"github.com/eth2030/lightcheck/params"
)

// appEnv carries what the command hooks set up for the actions.
type appEnv struct {
	stdout, stderr io.Writer

	logger  *log.Logger
	metrics *metrics.Metrics
}

// setup configures logging and metrics from the command's flags.
func (e *appEnv) setup(cCtx *cli.Context) error {
	formatter, err := log.FormatterByName(cCtx.String(logFormatFlag.Name))
	if err != nil {
		return cli.Exit(err, exitFailure)
	}
	level := log.LevelFromString(cCtx.String(verbosityFlag.Name))
	e.logger = log.NewWithOutput(e.stderr, level, formatter)
	log.SetDefault(e.logger)

	e.metrics = metrics.New("", false)
	e.logger.AddHook(e.metrics.LogHook())
	return nil
}

// finish exports metrics if requested. Export failures are logged and do not
// change the verdict.
func (e *appEnv) finish(cCtx *cli.Context) error {
	if e.metrics == nil {
		return nil
	}
	logger := e.logger.Module("metrics")
	if path := cCtx.Path(metricsTextfileFlag.Name); path != "" {
		if err := e.metrics.WriteTextfile(path); err != nil {
			logger.Error("Failed to write metrics textfile", "err", err)
		} else {
			logger.Debug("Wrote metrics textfile", "path", path)
		}
	}
	if url := cCtx.String(metricsPushFlag.Name); url != "" {
		if err := e.metrics.Push(cCtx.Context, url, cCtx.String(metricsJobFlag.Name)); err != nil {
			logger.Error("Failed to push metrics", "err", err)
		} else {
			logger.Debug("Pushed metrics", "url", url)
		}
	}
	return nil
}

// chainConfig resolves the chain parameters from --chain-config or
// --network.
func chainConfig(cCtx *cli.Context) (*params.ChainConfig, error) {
	if path := cCtx.Path(chainConfigFlag.Name); path != "" {
		return params.LoadChainConfigFile(path)
	}
	return params.ConfigByName(cCtx.String(networkFlag.Name))
}

// validatorsRoot returns --validators-root or, when unset, the root carried
// by cfg.
func validatorsRoot(cCtx *cli.Context, cfg *params.ChainConfig) (light.Root, error) {
	s := cCtx.String(validatorsRootFlag.Name)
	if s == "" {
		return light.Root(cfg.GenesisValidatorsRoot), nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return light.Root{}, errors.Wrapf(err, "invalid --%s", validatorsRootFlag.Name)
	}
	if len(b) != params.RootSize {
		return light.Root{}, errors.Errorf("invalid --%s: %d bytes, want %d", validatorsRootFlag.Name, len(b), params.RootSize)
	}
	return light.Root(b), nil
}

func newVerifier(cCtx *cli.Context) (*light.Verifier, light.Root, error) {
	cfg, err := chainConfig(cCtx)
	if err != nil {
		return nil, light.Root{}, err
	}
	root, err := validatorsRoot(cCtx, cfg)
	if err != nil {
		return nil, light.Root{}, err
	}
	v, err := light.NewVerifier(cfg)
	if err != nil {
		return nil, light.Root{}, err
	}
	return v, root, nil
}

func parseHashes(args cli.Args) ([]common.Hash, error) {
	out := make([]common.Hash, args.Len())
	for i, s := range args.Slice() {
		h, err := host.ParseHash(s)
		if err != nil {
			return nil, err
		}
		out[i] = h
	}
	return out, nil
}

// isRejection reports whether err is a verdict on the updates rather than a
// failure to obtain one.
func isRejection(err error) bool {
	return light.Reason(err) != "other"
}
