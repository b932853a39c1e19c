package exchange

import (
	"context"
	"fmt"
	"math/big"

	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/contracts"
	"github.com/banky/go-gmx/internal/utils"
	"github.com/banky/go-gmx/order"
	"github.com/banky/go-gmx/registry"
	"github.com/banky/go-gmx/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/samber/mo"
)

type (
	IncreaseRequest = order.IncreaseRequest
	DecreaseRequest = order.DecreaseRequest
)

// NewIncreaseRequest creates a request to open or add to a position.
// Amounts and leverage are decimal strings, e.g. "10.5" and "5"
func NewIncreaseRequest(
	direction order.Direction,
	collateralToken string,
	collateralAmount string,
	indexToken string,
	leverage string,
) IncreaseRequest {
	return IncreaseRequest{
		Direction:        direction,
		CollateralToken:  collateralToken,
		CollateralAmount: collateralAmount,
		IndexToken:       indexToken,
		Leverage:         leverage,
	}
}

// NewDecreaseRequest creates a request to reduce a position by sizeUsd.
// withdrawAmount may be empty
func NewDecreaseRequest(
	direction order.Direction,
	collateralToken string,
	indexToken string,
	sizeUsd string,
	withdrawAmount string,
) DecreaseRequest {
	return DecreaseRequest{
		Direction:       direction,
		CollateralToken: collateralToken,
		IndexToken:      indexToken,
		SizeUsd:         sizeUsd,
		WithdrawAmount:  withdrawAmount,
	}
}

/*//////////////////////////////////////////////////////////////
                          REQUEST ACTIONS
//////////////////////////////////////////////////////////////*/

// increaseAction is the msgpack form of an increase request that the
// request digest is computed over
type increaseAction struct {
	Type             string             `msgpack:"type"`
	Direction        string             `msgpack:"direction"`
	CollateralToken  string             `msgpack:"collateralToken"`
	CollateralAmount string             `msgpack:"collateralAmount"`
	IndexToken       string             `msgpack:"indexToken"`
	Leverage         string             `msgpack:"leverage"`
	SlippageBps      int64              `msgpack:"slippageBps"`
	Receiver         string             `msgpack:"receiver,omitempty"`
	ReferralCode     types.ReferralCode `msgpack:"referralCode"`
}

type decreaseAction struct {
	Type            string             `msgpack:"type"`
	Direction       string             `msgpack:"direction"`
	CollateralToken string             `msgpack:"collateralToken"`
	IndexToken      string             `msgpack:"indexToken"`
	SizeUsd         string             `msgpack:"sizeUsd"`
	WithdrawAmount  string             `msgpack:"withdrawAmount,omitempty"`
	SlippageBps     int64              `msgpack:"slippageBps"`
	Receiver        string             `msgpack:"receiver,omitempty"`
	ReferralCode    types.ReferralCode `msgpack:"referralCode"`
}

func increaseToAction(req IncreaseRequest, cfg orderConfig) increaseAction {
	return increaseAction{
		Type:             order.MarketIncrease.String(),
		Direction:        req.Direction.String(),
		CollateralToken:  req.CollateralToken,
		CollateralAmount: req.CollateralAmount,
		IndexToken:       req.IndexToken,
		Leverage:         req.Leverage,
		SlippageBps:      cfg.slippageBps,
		Receiver:         receiverHex(cfg.receiver),
		ReferralCode:     cfg.referralCode,
	}
}

func decreaseToAction(req DecreaseRequest, cfg orderConfig) decreaseAction {
	return decreaseAction{
		Type:            order.MarketDecrease.String(),
		Direction:       req.Direction.String(),
		CollateralToken: req.CollateralToken,
		IndexToken:      req.IndexToken,
		SizeUsd:         req.SizeUsd,
		WithdrawAmount:  req.WithdrawAmount,
		SlippageBps:     cfg.slippageBps,
		Receiver:        receiverHex(cfg.receiver),
		ReferralCode:    cfg.referralCode,
	}
}

func receiverHex(receiver mo.Option[common.Address]) string {
	if r, ok := receiver.Get(); ok {
		return r.Hex()
	}
	return ""
}

/*//////////////////////////////////////////////////////////////
                              PLAN
//////////////////////////////////////////////////////////////*/

// call is one transaction of a plan
type call struct {
	to    common.Address
	value *big.Int
	data  []byte
}

// plan is an optional ERC-20 approval followed by the ExchangeRouter multicall
type plan struct {
	approval mo.Option[call]
	// calls are the encoded multicall steps, kept for logging
	calls [][]byte
	order call
}

func (e *Exchange) buildPlan(
	ctx context.Context,
	params order.Params,
	receiver common.Address,
	cfg orderConfig,
) (plan, error) {
	var p plan

	increase := params.OrderType == order.MarketIncrease
	amount := params.InitialCollateralDeltaAmount
	native := params.Collateral.Native

	if increase && !native && amount.Sign() > 0 {
		if err := e.checkBalance(ctx, params.Collateral, amount); err != nil {
			return plan{}, err
		}

		approval, err := e.approval(ctx, params.Collateral.Address, amount, cfg.approveMax)
		if err != nil {
			return plan{}, err
		}
		p.approval = approval
	}

	wntAmount := new(big.Int).Set(params.ExecutionFee)
	if increase && native {
		wntAmount.Add(wntAmount, amount)
	}

	sendWnt, err := contracts.PackSendWnt(constants.ORDER_VAULT, wntAmount)
	if err != nil {
		return plan{}, fmt.Errorf("failed to encode sendWnt: %w", err)
	}
	p.calls = append(p.calls, sendWnt)

	if increase && !native {
		sendTokens, err := contracts.PackSendTokens(
			params.Collateral.Address,
			constants.ORDER_VAULT,
			amount,
		)
		if err != nil {
			return plan{}, fmt.Errorf("failed to encode sendTokens: %w", err)
		}
		p.calls = append(p.calls, sendTokens)
	}

	createOrder, err := contracts.PackCreateOrder(
		params.CreateOrderParams(receiver, cfg.referralCode),
	)
	if err != nil {
		return plan{}, fmt.Errorf("failed to encode createOrder: %w", err)
	}
	p.calls = append(p.calls, createOrder)

	multicall, err := contracts.PackMulticall(p.calls)
	if err != nil {
		return plan{}, fmt.Errorf("failed to encode multicall: %w", err)
	}

	p.order = call{
		to:    constants.EXCHANGE_ROUTER,
		value: wntAmount,
		data:  multicall,
	}
	return p, nil
}

// approval returns an approve(Router) call when the current allowance does
// not cover amount
func (e *Exchange) approval(
	ctx context.Context,
	token common.Address,
	amount *big.Int,
	approveMax bool,
) (mo.Option[call], error) {
	allowance, err := e.allowance(ctx, token)
	if err != nil {
		return mo.None[call](), err
	}
	if allowance.Cmp(amount) >= 0 {
		return mo.None[call](), nil
	}

	approveAmount := amount
	if approveMax {
		approveAmount = math.MaxBig256
	}

	data, err := contracts.PackApprove(constants.ROUTER, approveAmount)
	if err != nil {
		return mo.None[call](), fmt.Errorf("failed to encode approve: %w", err)
	}

	return mo.Some(call{
		to:    token,
		value: big.NewInt(0),
		data:  data,
	}), nil
}

func (e *Exchange) checkBalance(
	ctx context.Context,
	token registry.Token,
	amount *big.Int,
) error {
	data, err := contracts.PackBalanceOf(e.account)
	if err != nil {
		return fmt.Errorf("failed to encode balanceOf: %w", err)
	}

	out, err := e.backend.CallContract(ctx, ethereum.CallMsg{
		From: e.account,
		To:   &token.Address,
		Data: data,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}

	balance, err := contracts.UnpackBalanceOf(out)
	if err != nil {
		return fmt.Errorf("failed to decode balance: %w", err)
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf(
			"%w: %s %s held, %s needed",
			ErrInsufficientBalance,
			utils.FormatAmount(balance, token.Decimals),
			token.Symbol,
			utils.FormatAmount(amount, token.Decimals),
		)
	}
	return nil
}

func (e *Exchange) allowance(ctx context.Context, token common.Address) (*big.Int, error) {
	data, err := contracts.PackAllowance(e.account, constants.ROUTER)
	if err != nil {
		return nil, fmt.Errorf("failed to encode allowance: %w", err)
	}

	out, err := e.backend.CallContract(ctx, ethereum.CallMsg{
		From: e.account,
		To:   &token,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read allowance: %w", err)
	}

	allowance, err := contracts.UnpackAllowance(out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode allowance: %w", err)
	}
	return allowance, nil
}
