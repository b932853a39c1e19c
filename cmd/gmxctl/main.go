// Command gmxctl submits GMX v2 market orders on Arbitrum.
//
// Usage:
//
//	gmxctl increase -direction long -collateral USDC -amount 10 -index ETH -leverage 5
//	gmxctl decrease -direction long -collateral USDC -index ETH -size-usd 50
//	gmxctl quote increase|decrease [flags]
//	gmxctl price ETH
//	gmxctl tokens
//	gmxctl actions 0xACCOUNT
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/banky/go-gmx/config"
	"github.com/banky/go-gmx/internal/logging"
	"go.uber.org/zap"
)

var errUsage = errors.New("usage: gmxctl <increase|decrease|quote|price|tokens|actions> [flags]")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// app carries what every command needs
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	// tokens only reads the static tables
	if args[0] == "tokens" {
		return runTokens(out)
	}

	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a := &app{cfg: cfg, logger: logger, out: out}

	var cmdErr error
	switch args[0] {
	case "increase":
		cmdErr = a.runIncrease(ctx, args[1:], false)
	case "decrease":
		cmdErr = a.runDecrease(ctx, args[1:], false)
	case "quote":
		cmdErr = a.runQuote(ctx, args[1:])
	case "price":
		cmdErr = a.runPrice(ctx, args[1:])
	case "actions":
		cmdErr = a.runActions(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}

	if cmdErr != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(cmdErr))
	}
	return cmdErr
}
