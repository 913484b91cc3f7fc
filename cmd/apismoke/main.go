// Command apismoke runs the restaurant API smoke probes once and prints a
// PASSED/FAILED/ERROR line per probe.
//
// The exit status is 0 after a complete run unless --strict is set, in which
// case any FAILED or ERROR probe exits 1. Configuration errors exit 2.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/drblury/apismoke/apispec"
	"github.com/drblury/apismoke/config"
	"github.com/drblury/apismoke/smoke"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("apismoke", pflag.ContinueOnError)
	config.RegisterCommonFlags(flags)
	flags.String("base-url", smoke.DefaultBaseURL, "base URL of the restaurant API")
	flags.Duration("timeout", 0, "per-request timeout; 0 waits indefinitely")
	flags.Bool("strict", false, "exit 1 when any probe fails or errors")
	flags.Bool("contract", false, "validate responses against the bundled OpenAPI document")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}
	logger := cfg.Log.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []smoke.Option{
		smoke.WithHTTPClient(&http.Client{}),
		smoke.WithLogger(logger),
		smoke.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.Contract {
		doc, err := apispec.Load(ctx)
		if err != nil {
			logger.Error("Failed to load OpenAPI document", "error", err)
			return exitConfig
		}
		opts = append(opts, smoke.WithContractValidation(doc))
	}

	runner, err := smoke.NewRunner(cfg.BaseURL, opts...)
	if err != nil {
		logger.Error("Invalid runner configuration", "error", err)
		return exitConfig
	}

	logger.Debug("Starting smoke run", "baseUrl", runner.BaseURL(), "runId", runner.RunID())
	summary := runner.Run(ctx)

	if cfg.Strict && !summary.OK() {
		return exitFailed
	}
	return exitOK
}
