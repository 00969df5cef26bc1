package main

import (
	"github.com/urfave/cli/v2"

	"github.com/eth2030/lightcheck/log"
)

// DefaultCacheDir is where update preimages are looked up by default.
const DefaultCacheDir = "../preimage-cache"

var (
	cacheDirFlag = &cli.StringFlag{
		Name:    "cachedir",
		Usage:   "Directory holding update preimages named by their keccak-256 hash",
		Value:   DefaultCacheDir,
		EnvVars: []string{"LIGHTCHECK_CACHEDIR"},
	}
	networkFlag = &cli.StringFlag{
		Name:    "network",
		Usage:   "Preset chain parameters (mainnet, minimal)",
		Value:   "mainnet",
		EnvVars: []string{"LIGHTCHECK_NETWORK"},
	}
	chainConfigFlag = &cli.PathFlag{
		Name:  "chain-config",
		Usage: "Consensus config YAML overriding the preset",
	}
	validatorsRootFlag = &cli.StringFlag{
		Name:  "validators-root",
		Usage: "Genesis validators root as 0x-prefixed hex (default: the chain config's)",
	}
	outputFlag = &cli.StringFlag{
		Name:  "output",
		Usage: "Verdict format on stdout: marker (64-byte marker on success) or word (32-byte 0xff/0x00 word)",
		Value: outputMarker,
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "Maximum pairs verified concurrently (0 = one per CPU)",
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity (debug, info, warn, error)",
		Value: "info",
	}
	logFormatFlag = &cli.StringFlag{
		Name:  "log.format",
		Usage: "Log format (text, terminal, json)",
		Value: log.FormatText,
	}
	metricsTextfileFlag = &cli.PathFlag{
		Name:  "metrics.textfile",
		Usage: "Write metrics in text exposition format to this file on exit",
	}
	metricsPushFlag = &cli.StringFlag{
		Name:  "metrics.push",
		Usage: "Push metrics to this Prometheus push gateway URL on exit",
	}
	metricsJobFlag = &cli.StringFlag{
		Name:  "metrics.job",
		Usage: "Job name used with --metrics.push",
		Value: "lightcheck",
	}
)

// Output formats.
const (
	outputMarker = "marker"
	outputWord   = "word"
)

var (
	chainFlags = []cli.Flag{
		cacheDirFlag,
		networkFlag,
		chainConfigFlag,
		validatorsRootFlag,
	}
	loggingFlags = []cli.Flag{
		verbosityFlag,
		logFormatFlag,
	}
	metricsFlags = []cli.Flag{
		metricsTextfileFlag,
		metricsPushFlag,
		metricsJobFlag,
	}
)

func flagGroups(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
