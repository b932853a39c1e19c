package exchange

import (
	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/order"
	"github.com/banky/go-gmx/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"
)

/*//////////////////////////////////////////////////////////////
                             ORDER
//////////////////////////////////////////////////////////////*/

// OrderOption is a functional option for IncreasePosition and DecreasePosition
type OrderOption func(*orderConfig)

type orderConfig struct {
	dryRun       bool
	wait         bool
	approveMax   bool
	slippageBps  int64
	receiver     mo.Option[common.Address]
	referralCode types.ReferralCode
	// keeper gas limit used for the execution fee
	executionGasLimit mo.Option[uint64]
	// gas limit of the multicall transaction itself
	txGasLimit mo.Option[uint64]
}

func defaultOrderConfig() orderConfig {
	return orderConfig{
		slippageBps: constants.DEFAULT_SLIPPAGE_BPS,
	}
}

func newOrderConfig(opts []OrderOption) orderConfig {
	cfg := defaultOrderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c orderConfig) orderOptions() order.Options {
	return order.Options{
		SlippageBps: c.slippageBps,
		GasLimit:    c.executionGasLimit.OrElse(0),
	}
}

// WithDryRun builds and signs the transactions without broadcasting them
func WithDryRun() OrderOption {
	return func(cfg *orderConfig) {
		cfg.dryRun = true
	}
}

// WithWait blocks until the order transaction is mined
func WithWait() OrderOption {
	return func(cfg *orderConfig) {
		cfg.wait = true
	}
}

// WithSlippageBps sets the acceptable price slippage in basis points
func WithSlippageBps(bps int64) OrderOption {
	return func(cfg *orderConfig) {
		cfg.slippageBps = bps
	}
}

// WithReceiver sends the position to another account
func WithReceiver(receiver common.Address) OrderOption {
	return func(cfg *orderConfig) {
		cfg.receiver = mo.Some(receiver)
	}
}

func WithReferralCode(code types.ReferralCode) OrderOption {
	return func(cfg *orderConfig) {
		cfg.referralCode = code
	}
}

// WithApproveMax approves MaxUint256 instead of the exact collateral amount
func WithApproveMax() OrderOption {
	return func(cfg *orderConfig) {
		cfg.approveMax = true
	}
}

// WithExecutionGasLimit overrides the keeper gas limit the execution fee
// is computed from
func WithExecutionGasLimit(limit uint64) OrderOption {
	return func(cfg *orderConfig) {
		cfg.executionGasLimit = mo.Some(limit)
	}
}

// WithTxGasLimit skips gas estimation for the multicall
func WithTxGasLimit(limit uint64) OrderOption {
	return func(cfg *orderConfig) {
		cfg.txGasLimit = mo.Some(limit)
	}
}
