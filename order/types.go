package order

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/banky/go-gmx/registry"
)

// Direction is the side of a position
type Direction uint8

const (
	Long Direction = iota
	Short
)

func (d Direction) IsLong() bool {
	return d == Long
}

func (d Direction) String() string {
	if d == Long {
		return "long"
	}
	return "short"
}

// ParseDirection accepts long/short (case-insensitive)
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long":
		return Long, nil
	case "short":
		return Short, nil
	default:
		return 0, fmt.Errorf("invalid direction %q: expected long or short", s)
	}
}

// Type is Order.OrderType on the contract
type Type uint8

const (
	MarketSwap Type = iota
	LimitSwap
	MarketIncrease
	LimitIncrease
	MarketDecrease
	LimitDecrease
	StopLossDecrease
	Liquidation
)

func (t Type) String() string {
	switch t {
	case MarketSwap:
		return "MarketSwap"
	case LimitSwap:
		return "LimitSwap"
	case MarketIncrease:
		return "MarketIncrease"
	case LimitIncrease:
		return "LimitIncrease"
	case MarketDecrease:
		return "MarketDecrease"
	case LimitDecrease:
		return "LimitDecrease"
	case StopLossDecrease:
		return "StopLossDecrease"
	case Liquidation:
		return "Liquidation"
	default:
		return fmt.Sprintf("OrderType(%d)", uint8(t))
	}
}

// DecreasePositionSwapType is Order.DecreasePositionSwapType on the contract
type DecreasePositionSwapType uint8

const (
	NoSwap DecreasePositionSwapType = iota
	SwapPnlTokenToCollateralToken
	SwapCollateralTokenToPnlToken
)

// IncreaseRequest opens or adds to a position
type IncreaseRequest struct {
	Direction Direction
	// CollateralToken symbol, e.g. USDC or ETH
	CollateralToken string
	// CollateralAmount as a decimal string in whole tokens
	CollateralAmount string
	// IndexToken symbol of the market, e.g. ETH or BTC
	IndexToken string
	// Leverage as a decimal string, 0 < leverage < 50
	Leverage string
}

// DecreaseRequest reduces or closes a position
type DecreaseRequest struct {
	Direction       Direction
	CollateralToken string
	IndexToken      string
	// SizeUsd to close, as a decimal string in USD
	SizeUsd string
	// WithdrawAmount of collateral, optional
	WithdrawAmount string
}

// Options tune the calculation
type Options struct {
	// SlippageBps widens the acceptable price, 0 <= bps < 10000
	SlippageBps int64
	// GasLimit overrides the default keeper gas limit when non-zero
	GasLimit uint64
}

// Params are the computed inputs to createOrder
type Params struct {
	OrderType  Type
	Direction  Direction
	Market     registry.Market
	Collateral registry.Token

	// InitialCollateralDeltaAmount in collateral base units
	InitialCollateralDeltaAmount *big.Int
	// CollateralUsd is the 1e30-scaled collateral value, zero for decreases
	CollateralUsd *big.Int
	SizeDeltaUsd  *big.Int
	TriggerPrice  *big.Int
	// AcceptablePrice is 1e30-scaled per index token base unit
	AcceptablePrice  *big.Int
	ExecutionFee     *big.Int
	GasPrice         *big.Int
	GasLimit         uint64
	CallbackGasLimit *big.Int
	MinOutputAmount  *big.Int
}
