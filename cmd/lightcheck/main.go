// Command lightcheck verifies Ethereum beacon chain sync committee period
// updates fetched from a content-addressed preimage cache.
//
// Usage:
//
//	lightcheck check [flags] <prev-hash> <update-hash>
//	lightcheck verify-chain [flags] <hash> <hash>...
//	lightcheck import [flags] <file>...
//	lightcheck version
//
// check exits 0 when the update is accepted, 1 when it is rejected and 2 on
// any other failure.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

// Exit codes.
const (
	exitAccept  = 0
	exitReject  = 1
	exitFailure = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is the actual entry point, returning an exit code. Accepts CLI
// arguments (without the program name) so it can be tested in isolation.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(stdout, stderr)
	err := app.RunContext(ctx, append([]string{app.Name}, args...))
	if err == nil {
		return exitAccept
	}
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		if msg := coder.Error(); msg != "" {
			fmt.Fprintln(stderr, "Error:", msg)
		}
		return coder.ExitCode()
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitFailure
}

func newApp(stdout, stderr io.Writer) *cli.App {
	env := &appEnv{stdout: stdout, stderr: stderr}
	app := &cli.App{
		Name:      "lightcheck",
		Usage:     "verify beacon chain sync committee period updates",
		Version:   fmt.Sprintf("%s (commit %s)", version, commit),
		Writer:    stdout,
		ErrWriter: stderr,
		// Exit codes are mapped by run, never by os.Exit inside the app.
		ExitErrHandler:       func(*cli.Context, error) {},
		HideVersion:          true,
		EnableBashCompletion: true,
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() > 0 {
				return cli.Exit(fmt.Sprintf("unknown command %q", cCtx.Args().First()), exitFailure)
			}
			return cli.ShowAppHelp(cCtx)
		},
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Verify an update against its predecessor",
				ArgsUsage: "<prev-hash> <update-hash>",
				Flags:     flagGroups(chainFlags, []cli.Flag{outputFlag}, loggingFlags, metricsFlags),
				Before:    env.setup,
				After:     env.finish,
				Action:    env.check,
			},
			{
				Name:      "verify-chain",
				Usage:     "Verify every adjacent pair of an ordered run of updates",
				ArgsUsage: "<hash> <hash>...",
				Flags:     flagGroups(chainFlags, []cli.Flag{workersFlag}, loggingFlags, metricsFlags),
				Before:    env.setup,
				After:     env.finish,
				Action:    env.verifyChain,
			},
			{
				Name:      "import",
				Usage:     "Store update files in the cache under their content hash",
				ArgsUsage: "<file>...",
				Flags:     flagGroups(chainFlags, loggingFlags),
				Before:    env.setup,
				Action:    env.importUpdates,
			},
			{
				Name:  "version",
				Usage: "Print version information",
				Action: func(cCtx *cli.Context) error {
					fmt.Fprintf(cCtx.App.Writer, "lightcheck %s (commit %s)\n", version, commit)
					return nil
				},
			},
		},
	}
	return app
}
