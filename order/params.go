package order

import (
	"fmt"

	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/contracts"
	"github.com/banky/go-gmx/types"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// CreateOrderParams fills the createOrder struct for receiver. Market orders
// carry no trigger price, callback or ui fee receiver.
func (p Params) CreateOrderParams(
	receiver common.Address,
	referralCode types.ReferralCode,
) contracts.CreateOrderParams {
	return contracts.CreateOrderParams{
		Addresses: contracts.CreateOrderParamsAddresses{
			Receiver:               receiver,
			CallbackContract:       constants.ZERO_ADDRESS,
			UiFeeReceiver:          constants.ZERO_ADDRESS,
			Market:                 p.Market.Address,
			InitialCollateralToken: p.Collateral.Address,
			SwapPath:               []common.Address{},
		},
		Numbers: contracts.CreateOrderParamsNumbers{
			SizeDeltaUsd:                 p.SizeDeltaUsd,
			InitialCollateralDeltaAmount: p.InitialCollateralDeltaAmount,
			TriggerPrice:                 p.TriggerPrice,
			AcceptablePrice:              p.AcceptablePrice,
			ExecutionFee:                 p.ExecutionFee,
			CallbackGasLimit:             p.CallbackGasLimit,
			MinOutputAmount:              p.MinOutputAmount,
		},
		OrderType:                uint8(p.OrderType),
		DecreasePositionSwapType: uint8(NoSwap),
		IsLong:                   p.Direction.IsLong(),
		// ETH collateral leaves the vault as WETH unless asked otherwise
		ShouldUnwrapNativeToken: p.Collateral.Native && p.OrderType == MarketDecrease,
		ReferralCode:            referralCode,
	}
}

// PositionKey is the DataStore key of a position:
// keccak256(abi.encode(account, market, collateralToken, isLong))
func PositionKey(
	account common.Address,
	market common.Address,
	collateralToken common.Address,
	isLong bool,
) (common.Hash, error) {
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		return common.Hash{}, err
	}
	boolType, err := abi.NewType("bool", "", nil)
	if err != nil {
		return common.Hash{}, err
	}

	arguments := abi.Arguments{
		{Type: addressType},
		{Type: addressType},
		{Type: addressType},
		{Type: boolType},
	}

	encoded, err := arguments.Pack(account, market, collateralToken, isLong)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode position key: %w", err)
	}

	return crypto.Keccak256Hash(encoded), nil
}

// PositionKey of the position these params act on
func (p Params) PositionKey(account common.Address) (common.Hash, error) {
	return PositionKey(account, p.Market.Address, p.Collateral.Address, p.Direction.IsLong())
}
