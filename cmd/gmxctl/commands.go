package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/exchange"
	"github.com/banky/go-gmx/order"
	"github.com/banky/go-gmx/prices"
	"github.com/banky/go-gmx/registry"
	"github.com/banky/go-gmx/types"
	"github.com/banky/go-gmx/wallet"
	"github.com/ethereum/go-ethereum/common"
)

const defaultTimeout = 2 * time.Minute

// orderFlags are shared by increase, decrease and quote
type orderFlags struct {
	direction   string
	collateral  string
	index       string
	slippageBps int64
	receiver    string
	referral    string
	gasLimit    uint64
	txGasLimit  uint64
	approveMax  bool
	dryRun      bool
	wait        bool
	timeout     time.Duration
}

func (f *orderFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.direction, "direction", "long", "long or short")
	fs.StringVar(&f.collateral, "collateral", "USDC", "collateral token symbol")
	fs.StringVar(&f.index, "index", "ETH", "index token symbol of the market")
	fs.Int64Var(&f.slippageBps, "slippage-bps", constants.DEFAULT_SLIPPAGE_BPS, "acceptable price slippage in basis points")
	fs.StringVar(&f.receiver, "receiver", "", "receiver of the order output, defaults to the sender")
	fs.StringVar(&f.referral, "referral", "", "referral code")
	fs.Uint64Var(&f.gasLimit, "gas-limit", 0, "keeper gas limit for the execution fee")
	fs.Uint64Var(&f.txGasLimit, "tx-gas-limit", 0, "gas limit of the multicall, estimated when 0")
	fs.BoolVar(&f.approveMax, "approve-max", false, "approve MaxUint256 instead of the exact amount")
	fs.BoolVar(&f.dryRun, "dry-run", false, "sign but do not broadcast")
	fs.BoolVar(&f.wait, "wait", false, "wait for the order transaction to be mined")
	fs.DurationVar(&f.timeout, "timeout", defaultTimeout, "overall timeout")
}

func (f *orderFlags) options() ([]exchange.OrderOption, error) {
	opts := []exchange.OrderOption{exchange.WithSlippageBps(f.slippageBps)}

	if f.receiver != "" {
		if !common.IsHexAddress(f.receiver) {
			return nil, fmt.Errorf("invalid receiver %q", f.receiver)
		}
		opts = append(opts, exchange.WithReceiver(common.HexToAddress(f.receiver)))
	}
	if f.referral != "" {
		opts = append(opts, exchange.WithReferralCode(types.StringToReferralCode(f.referral)))
	}
	if f.gasLimit != 0 {
		opts = append(opts, exchange.WithExecutionGasLimit(f.gasLimit))
	}
	if f.txGasLimit != 0 {
		opts = append(opts, exchange.WithTxGasLimit(f.txGasLimit))
	}
	if f.approveMax {
		opts = append(opts, exchange.WithApproveMax())
	}
	if f.dryRun {
		opts = append(opts, exchange.WithDryRun())
	}
	if f.wait {
		opts = append(opts, exchange.WithWait())
	}
	return opts, nil
}

// receiverAddress is the -receiver flag, zero when unset or invalid
func (f *orderFlags) receiverAddress() common.Address {
	if !common.IsHexAddress(f.receiver) {
		return common.Address{}
	}
	return common.HexToAddress(f.receiver)
}

func (a *app) runIncrease(ctx context.Context, args []string, quote bool) error {
	fs := flag.NewFlagSet("increase", flag.ContinueOnError)
	fs.SetOutput(a.out)

	var f orderFlags
	f.register(fs)
	amount := fs.String("amount", "", "collateral amount in whole tokens")
	leverage := fs.String("leverage", "", "leverage, 0 < leverage < 50")
	if err := fs.Parse(args); err != nil {
		return err
	}

	direction, err := order.ParseDirection(f.direction)
	if err != nil {
		return err
	}
	opts, err := f.options()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	e, err := a.connect(ctx, !quote, f.receiverAddress())
	if err != nil {
		return err
	}
	defer e.Close()

	req := exchange.NewIncreaseRequest(direction, f.collateral, *amount, f.index, *leverage)

	if quote {
		params, err := e.QuoteIncrease(ctx, req, opts...)
		if err != nil {
			return err
		}
		return a.printQuote(e.Account(), params)
	}

	result, err := e.IncreasePosition(ctx, req, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, result)
	return nil
}

func (a *app) runDecrease(ctx context.Context, args []string, quote bool) error {
	fs := flag.NewFlagSet("decrease", flag.ContinueOnError)
	fs.SetOutput(a.out)

	var f orderFlags
	f.register(fs)
	sizeUsd := fs.String("size-usd", "", "position size to close in USD")
	withdraw := fs.String("withdraw", "", "collateral to withdraw in whole tokens")
	if err := fs.Parse(args); err != nil {
		return err
	}

	direction, err := order.ParseDirection(f.direction)
	if err != nil {
		return err
	}
	opts, err := f.options()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	e, err := a.connect(ctx, !quote, f.receiverAddress())
	if err != nil {
		return err
	}
	defer e.Close()

	req := exchange.NewDecreaseRequest(direction, f.collateral, f.index, *sizeUsd, *withdraw)

	if quote {
		params, err := e.QuoteDecrease(ctx, req, opts...)
		if err != nil {
			return err
		}
		return a.printQuote(e.Account(), params)
	}

	result, err := e.DecreasePosition(ctx, req, opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, result)
	return nil
}

func (a *app) runQuote(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: gmxctl quote <increase|decrease> [flags]")
	}

	switch args[0] {
	case "increase":
		return a.runIncrease(ctx, args[1:], true)
	case "decrease":
		return a.runDecrease(ctx, args[1:], true)
	default:
		return fmt.Errorf("unknown quote kind %q", args[0])
	}
}

// printQuote prints params and, when the sender is known, the key of the
// position the order would change
func (a *app) printQuote(sender common.Address, params order.Params) error {
	fmt.Fprintln(a.out, params)
	if sender == (common.Address{}) {
		return nil
	}

	key, err := params.PositionKey(sender)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "PositionKey: %s\n", key)
	return nil
}

// connect dials the node. A key is required to submit and optional for
// quotes. Without one, account stands in for the sender
func (a *app) connect(
	ctx context.Context,
	requireKey bool,
	account common.Address,
) (*exchange.Exchange, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	cfg := exchange.Config{
		RPCURL:           a.cfg.RPCURL,
		PriceAPIURL:      a.cfg.PriceAPIURL,
		PriceFallbackURL: a.cfg.PriceFallbackURL,
		GasAPIKey:        a.cfg.GasAPIKey.OrEmpty(),
		GasProviderURL:   a.cfg.GasProviderURL,
		WSURL:            a.cfg.WSURL.OrEmpty(),
		Timeout:          a.cfg.HTTPTimeout,
		Logger:           a.logger,
		Account:          account,
	}

	key, err := wallet.Load(a.cfg.PrivateKey, a.cfg.Mnemonic)
	switch {
	case err == nil:
		cfg.PrivateKey = key.PrivateKey()
	case requireKey || !errors.Is(err, wallet.ErrNoKey):
		return nil, err
	}

	return exchange.New(ctx, cfg)
}

func (a *app) priceClient() *prices.Prices {
	return prices.New(prices.Config{
		BaseURL:     a.cfg.PriceAPIURL,
		FallbackURL: a.cfg.PriceFallbackURL,
		Timeout:     a.cfg.HTTPTimeout,
	})
}

func (a *app) runPrice(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gmxctl price <SYMBOL>")
	}

	price, err := a.priceClient().TokenPrice(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, price)
	return nil
}

func (a *app) runActions(ctx context.Context, args []string) error {
	if len(args) != 1 || !common.IsHexAddress(args[0]) {
		return errors.New("usage: gmxctl actions <ACCOUNT>")
	}

	raw, err := a.priceClient().Actions(ctx, common.HexToAddress(args[0]))
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format actions: %w", err)
	}
	fmt.Fprintln(a.out, pretty.String())
	return nil
}

func runTokens(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "TOKEN\tADDRESS\tDECIMALS")
	for _, t := range registry.Tokens() {
		fmt.Fprintf(w, "%s\t%s\t%d\n", t.Symbol, t.Address, t.Decimals)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "MARKET\tADDRESS\tSYNTHETIC")
	for _, m := range registry.Markets() {
		fmt.Fprintf(w, "%s\t%s\t%t\n", m.IndexSymbol, m.Address, m.Synthetic)
	}

	return w.Flush()
}
