// Package order turns a simplified order request into the numbers the GMX
// ExchangeRouter expects. All values are fixed-point integers: USD amounts
// and prices carry 30 decimals, token amounts are in base units.
package order

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/gas"
	"github.com/banky/go-gmx/internal/utils"
	"github.com/banky/go-gmx/prices"
	"github.com/banky/go-gmx/registry"
	"github.com/shopspring/decimal"
)

var (
	ErrLeverageTooHigh   = fmt.Errorf("leverage must be less than %d", constants.MAX_LEVERAGE)
	ErrInvalidLeverage   = errors.New("leverage must be a positive number")
	ErrInvalidAmount     = utils.ErrInvalidAmount
	ErrOverflow          = utils.ErrOverflow
	ErrInvalidCollateral = errors.New("collateral token is not backing the market")
	ErrZeroPrice         = errors.New("price feed returned a zero price")
	ErrInvalidSlippage   = errors.New("slippage must be between 0 and 10000 bps")
)

// PriceSource returns one consistent view of the signed price feed
type PriceSource interface {
	Snapshot(ctx context.Context) (prices.Snapshot, error)
}

var _ PriceSource = (*prices.Prices)(nil)

// DefaultOptions uses the default slippage and gas limits
func DefaultOptions() Options {
	return Options{SlippageBps: constants.DEFAULT_SLIPPAGE_BPS}
}

// CalculateIncrease computes MarketIncrease parameters:
//
//	collateralUsd   = collateralAmount * collateralMinPrice
//	sizeDeltaUsd    = collateralUsd * leverage
//	acceptablePrice = long: indexMax * (1 + slippage), short: indexMin * (1 - slippage)
//	executionFee    = gasPrice * gasLimit
func CalculateIncrease(
	ctx context.Context,
	priceSource PriceSource,
	gasPricer gas.Pricer,
	req IncreaseRequest,
	opts Options,
) (Params, error) {
	market, collateral, err := resolve(req.IndexToken, req.CollateralToken)
	if err != nil {
		return Params{}, err
	}
	if err := validateSlippage(opts.SlippageBps); err != nil {
		return Params{}, err
	}

	leverage, err := ParseLeverage(req.Leverage)
	if err != nil {
		return Params{}, err
	}

	amount, err := utils.ParseAmount(req.CollateralAmount, collateral.Decimals)
	if err != nil {
		return Params{}, fmt.Errorf("failed to parse collateral amount: %w", err)
	}
	if amount.Sign() == 0 {
		return Params{}, fmt.Errorf("%w: collateral amount must be positive", ErrInvalidAmount)
	}

	snapshot, err := priceSource.Snapshot(ctx)
	if err != nil {
		return Params{}, err
	}

	collateralPrice, err := CollateralPrice(snapshot, collateral)
	if err != nil {
		return Params{}, err
	}

	collateralUsd, err := utils.MulU256(amount, collateralPrice)
	if err != nil {
		return Params{}, fmt.Errorf("failed to compute collateral usd: %w", err)
	}

	sizeDeltaUsd, err := utils.MulDecimal(collateralUsd, leverage)
	if err != nil {
		return Params{}, fmt.Errorf("failed to compute size delta: %w", err)
	}

	acceptablePrice, err := acceptablePrice(snapshot, market, true, req.Direction, opts.SlippageBps)
	if err != nil {
		return Params{}, err
	}

	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		gasLimit = constants.INCREASE_ORDER_GAS_LIMIT
	}
	gasPrice, executionFee, err := executionFee(ctx, gasPricer, gasLimit)
	if err != nil {
		return Params{}, err
	}

	return Params{
		OrderType:                    MarketIncrease,
		Direction:                    req.Direction,
		Market:                       market,
		Collateral:                   collateral,
		InitialCollateralDeltaAmount: amount,
		CollateralUsd:                collateralUsd,
		SizeDeltaUsd:                 sizeDeltaUsd,
		TriggerPrice:                 big.NewInt(0),
		AcceptablePrice:              acceptablePrice,
		ExecutionFee:                 executionFee,
		GasPrice:                     gasPrice,
		GasLimit:                     gasLimit,
		CallbackGasLimit:             big.NewInt(0),
		MinOutputAmount:              big.NewInt(0),
	}, nil
}

// CalculateDecrease computes MarketDecrease parameters. The acceptable price
// bound is reversed relative to an increase: a long closes no lower than
// indexMin * (1 - slippage) and a short no higher than indexMax * (1 + slippage).
func CalculateDecrease(
	ctx context.Context,
	priceSource PriceSource,
	gasPricer gas.Pricer,
	req DecreaseRequest,
	opts Options,
) (Params, error) {
	market, collateral, err := resolve(req.IndexToken, req.CollateralToken)
	if err != nil {
		return Params{}, err
	}
	if err := validateSlippage(opts.SlippageBps); err != nil {
		return Params{}, err
	}

	sizeDeltaUsd, err := utils.ParseAmount(req.SizeUsd, constants.USD_DECIMALS)
	if err != nil {
		return Params{}, fmt.Errorf("failed to parse size: %w", err)
	}
	if sizeDeltaUsd.Sign() == 0 {
		return Params{}, fmt.Errorf("%w: size must be positive", ErrInvalidAmount)
	}

	withdraw := big.NewInt(0)
	if strings.TrimSpace(req.WithdrawAmount) != "" {
		withdraw, err = utils.ParseAmount(req.WithdrawAmount, collateral.Decimals)
		if err != nil {
			return Params{}, fmt.Errorf("failed to parse withdraw amount: %w", err)
		}
	}

	snapshot, err := priceSource.Snapshot(ctx)
	if err != nil {
		return Params{}, err
	}

	acceptablePrice, err := acceptablePrice(snapshot, market, false, req.Direction, opts.SlippageBps)
	if err != nil {
		return Params{}, err
	}

	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		gasLimit = constants.DECREASE_ORDER_GAS_LIMIT
	}
	gasPrice, executionFee, err := executionFee(ctx, gasPricer, gasLimit)
	if err != nil {
		return Params{}, err
	}

	return Params{
		OrderType:                    MarketDecrease,
		Direction:                    req.Direction,
		Market:                       market,
		Collateral:                   collateral,
		InitialCollateralDeltaAmount: withdraw,
		CollateralUsd:                big.NewInt(0),
		SizeDeltaUsd:                 sizeDeltaUsd,
		TriggerPrice:                 big.NewInt(0),
		AcceptablePrice:              acceptablePrice,
		ExecutionFee:                 executionFee,
		GasPrice:                     gasPrice,
		GasLimit:                     gasLimit,
		CallbackGasLimit:             big.NewInt(0),
		MinOutputAmount:              big.NewInt(0),
	}, nil
}

// ParseLeverage parses a decimal leverage in (0, MAX_LEVERAGE)
func ParseLeverage(s string) (decimal.Decimal, error) {
	leverage, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidLeverage, s)
	}
	if !leverage.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidLeverage, s)
	}
	if leverage.GreaterThanOrEqual(decimal.NewFromInt(constants.MAX_LEVERAGE)) {
		return decimal.Zero, fmt.Errorf("%w: got %s", ErrLeverageTooHigh, leverage)
	}
	return leverage, nil
}

// CollateralPrice is the 1e30-scaled min price per base unit of t. Stable
// tokens are pinned to exactly 1 USD.
func CollateralPrice(snapshot prices.Snapshot, t registry.Token) (*big.Int, error) {
	if t.Stable {
		return utils.Pow10(uint(constants.USD_DECIMALS - t.Decimals)), nil
	}

	price, err := lookup(snapshot, registry.PriceSymbol(t))
	if err != nil {
		return nil, err
	}
	return price.MinPriceFull, nil
}

func resolve(indexSymbol, collateralSymbol string) (registry.Market, registry.Token, error) {
	market, err := registry.MustMarket(indexSymbol)
	if err != nil {
		return registry.Market{}, registry.Token{}, err
	}
	collateral, err := registry.MustToken(collateralSymbol)
	if err != nil {
		return registry.Market{}, registry.Token{}, err
	}
	if !market.IsCollateral(collateral) {
		return registry.Market{}, registry.Token{}, fmt.Errorf(
			"%w: %s on %s",
			ErrInvalidCollateral,
			collateral.Symbol,
			market.IndexSymbol,
		)
	}
	return market, collateral, nil
}

func validateSlippage(bps int64) error {
	if bps < 0 || bps >= 10_000 {
		return fmt.Errorf("%w: got %d", ErrInvalidSlippage, bps)
	}
	return nil
}

func lookup(snapshot prices.Snapshot, symbol string) (prices.TokenPrice, error) {
	price, ok := snapshot.Get(symbol)
	if !ok {
		return prices.TokenPrice{}, fmt.Errorf("%w: %s", prices.ErrTokenNotFound, symbol)
	}
	if price.MinPriceFull == nil || price.MaxPriceFull == nil ||
		price.MinPriceFull.Sign() == 0 || price.MaxPriceFull.Sign() == 0 {
		return prices.TokenPrice{}, fmt.Errorf("%w: %s", ErrZeroPrice, symbol)
	}
	return price, nil
}

// acceptablePrice takes the worse side of the spread for the trader and
// widens it by slippage
func acceptablePrice(
	snapshot prices.Snapshot,
	market registry.Market,
	increase bool,
	direction Direction,
	slippageBps int64,
) (*big.Int, error) {
	price, err := lookup(snapshot, market.IndexSymbol)
	if err != nil {
		return nil, err
	}

	var result *big.Int
	if increase == direction.IsLong() {
		result, err = utils.ApplyBps(price.MaxPriceFull, slippageBps)
	} else {
		result, err = utils.ApplyBps(price.MinPriceFull, -slippageBps)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compute acceptable price: %w", err)
	}
	return result, nil
}

func executionFee(
	ctx context.Context,
	gasPricer gas.Pricer,
	gasLimit uint64,
) (*big.Int, *big.Int, error) {
	gasPrice, err := gasPricer.GasPrice(ctx)
	if err != nil {
		return nil, nil, err
	}
	fee, err := gas.ExecutionFee(gasPrice, gasLimit)
	if err != nil {
		return nil, nil, err
	}
	return gasPrice, fee, nil
}
