package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"testing"

	"github.com/banky/go-gmx/config"
	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/order"
	"github.com/banky/go-gmx/registry"
	"github.com/ethereum/go-ethereum/common"
	"github.com/maxatome/go-testdeep/td"
)

func TestRunUsage(t *testing.T) {
	err := run(context.Background(), nil, &bytes.Buffer{})
	td.CmpTrue(t, errors.Is(err, errUsage))
}

func TestRunTokens(t *testing.T) {
	var out bytes.Buffer
	td.Require(t).CmpNoError(run(context.Background(), []string{"tokens"}, &out))

	td.CmpContains(t, out.String(), "USDC")
	td.CmpContains(t, out.String(), "0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	td.CmpContains(t, out.String(), "MARKET")
}

func TestRunUnknownCommand(t *testing.T) {
	t.Setenv("ENV_FILE", "testdata/missing.env")
	t.Setenv("CONFIG_FILE", "")

	err := run(context.Background(), []string{"swap"}, &bytes.Buffer{})
	td.CmpTrue(t, errors.Is(err, errUsage))
	td.CmpContains(t, err.Error(), `"swap"`)
}

func TestRunIncreaseRequiresRPC(t *testing.T) {
	t.Setenv("ENV_FILE", "testdata/missing.env")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("RPC_URL", "")

	err := run(
		context.Background(),
		[]string{"increase", "-amount", "10", "-leverage", "2"},
		&bytes.Buffer{},
	)
	td.CmpTrue(t, errors.Is(err, config.ErrMissingRPCURL))
}

func TestRunQuoteUsage(t *testing.T) {
	a := &app{cfg: &config.Config{}, out: &bytes.Buffer{}}

	td.CmpError(t, a.runQuote(context.Background(), nil))
	td.CmpError(t, a.runQuote(context.Background(), []string{"swap"}))
}

func TestRunActionsRejectsBadAccount(t *testing.T) {
	a := &app{cfg: &config.Config{}, out: &bytes.Buffer{}}

	err := a.runActions(context.Background(), []string{"not-an-address"})
	td.CmpError(t, err)
	td.CmpContains(t, err.Error(), "usage")
}

func TestOrderFlags(t *testing.T) {
	parse := func(args ...string) (orderFlags, error) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.SetOutput(&bytes.Buffer{})
		var f orderFlags
		f.register(fs)
		return f, fs.Parse(args)
	}

	t.Run("defaults", func(t *testing.T) {
		f, err := parse()
		td.Require(t).CmpNoError(err)
		td.Cmp(t, f.direction, "long")
		td.Cmp(t, f.slippageBps, int64(constants.DEFAULT_SLIPPAGE_BPS))
		td.Cmp(t, f.timeout, defaultTimeout)

		opts, err := f.options()
		td.Require(t).CmpNoError(err)
		td.CmpLen(t, opts, 1)
	})

	t.Run("all options", func(t *testing.T) {
		f, err := parse(
			"-receiver", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
			"-referral", "gmx",
			"-gas-limit", "3000000",
			"-tx-gas-limit", "900000",
			"-approve-max",
			"-dry-run",
			"-wait",
		)
		td.Require(t).CmpNoError(err)

		opts, err := f.options()
		td.Require(t).CmpNoError(err)
		td.CmpLen(t, opts, 8)
	})

	t.Run("bad receiver", func(t *testing.T) {
		f, err := parse("-receiver", "0x1234")
		td.Require(t).CmpNoError(err)

		_, err = f.options()
		td.CmpError(t, err)
	})
}

func TestOrderFlagsReceiverAddress(t *testing.T) {
	receiver := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	td.Cmp(t, (&orderFlags{}).receiverAddress(), common.Address{})
	td.Cmp(t, (&orderFlags{receiver: receiver.Hex()}).receiverAddress(), receiver)
	td.Cmp(t, (&orderFlags{receiver: "nope"}).receiverAddress(), common.Address{})
}

func TestPrintQuote(t *testing.T) {
	sender := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	market, _ := registry.GetMarket("ETH")
	usdc, _ := registry.GetToken("USDC")
	params := order.Params{
		OrderType:  order.MarketIncrease,
		Direction:  order.Long,
		Market:     market,
		Collateral: usdc,
	}

	t.Run("keyed by sender", func(t *testing.T) {
		var out bytes.Buffer
		a := &app{cfg: &config.Config{}, out: &out}
		td.Require(t).CmpNoError(a.printQuote(sender, params))

		key, err := order.PositionKey(sender, market.Address, usdc.Address, true)
		td.Require(t).CmpNoError(err)
		td.CmpContains(t, out.String(), "PositionKey: "+key.Hex())
	})

	t.Run("unknown sender", func(t *testing.T) {
		var out bytes.Buffer
		a := &app{cfg: &config.Config{}, out: &out}
		td.Require(t).CmpNoError(a.printQuote(common.Address{}, params))
		td.CmpNot(t, out.String(), td.Contains("PositionKey"))
	})
}
