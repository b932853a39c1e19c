// Package contracts encodes calldata for the GMX ExchangeRouter and ERC-20
// tokens
package contracts

import (
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

//go:embed abi/exchange_router.json
var exchangeRouterAbiString string

//go:embed abi/erc20.json
var erc20AbiString string

var (
	exchangeRouterABI = sync.OnceValues(func() (abi.ABI, error) {
		return abi.JSON(strings.NewReader(exchangeRouterAbiString))
	})
	erc20ABI = sync.OnceValues(func() (abi.ABI, error) {
		return abi.JSON(strings.NewReader(erc20AbiString))
	})
)

// ExchangeRouterABI returns the parsed ExchangeRouter ABI
func ExchangeRouterABI() (abi.ABI, error) {
	return exchangeRouterABI()
}

// ERC20ABI returns the parsed ERC-20 ABI
func ERC20ABI() (abi.ABI, error) {
	return erc20ABI()
}

/*//////////////////////////////////////////////////////////////
                        CREATE ORDER PARAMS
//////////////////////////////////////////////////////////////*/

// CreateOrderParamsAddresses mirrors BaseOrderUtils.CreateOrderParamsAddresses
type CreateOrderParamsAddresses struct {
	Receiver               common.Address
	CallbackContract       common.Address
	UiFeeReceiver          common.Address
	Market                 common.Address
	InitialCollateralToken common.Address
	SwapPath               []common.Address
}

// CreateOrderParamsNumbers mirrors BaseOrderUtils.CreateOrderParamsNumbers
type CreateOrderParamsNumbers struct {
	SizeDeltaUsd                 *big.Int
	InitialCollateralDeltaAmount *big.Int
	TriggerPrice                 *big.Int
	AcceptablePrice              *big.Int
	ExecutionFee                 *big.Int
	CallbackGasLimit             *big.Int
	MinOutputAmount              *big.Int
}

// CreateOrderParams mirrors BaseOrderUtils.CreateOrderParams
type CreateOrderParams struct {
	Addresses                CreateOrderParamsAddresses
	Numbers                  CreateOrderParamsNumbers
	OrderType                uint8
	DecreasePositionSwapType uint8
	IsLong                   bool
	ShouldUnwrapNativeToken  bool
	ReferralCode             [32]byte
}

/*//////////////////////////////////////////////////////////////
                          EXCHANGE ROUTER
//////////////////////////////////////////////////////////////*/

func packRouter(method string, args ...any) ([]byte, error) {
	parsed, err := exchangeRouterABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse exchange router abi: %w", err)
	}

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	return data, nil
}

// PackMulticall encodes multicall(bytes[])
func PackMulticall(calls [][]byte) ([]byte, error) {
	if len(calls) == 0 {
		return nil, errors.New("multicall needs at least one call")
	}
	return packRouter("multicall", calls)
}

// PackSendWnt encodes sendWnt(receiver, amount)
func PackSendWnt(receiver common.Address, amount *big.Int) ([]byte, error) {
	return packRouter("sendWnt", receiver, amount)
}

// PackSendTokens encodes sendTokens(token, receiver, amount)
func PackSendTokens(
	token common.Address,
	receiver common.Address,
	amount *big.Int,
) ([]byte, error) {
	return packRouter("sendTokens", token, receiver, amount)
}

// PackCreateOrder encodes createOrder(params)
func PackCreateOrder(params CreateOrderParams) ([]byte, error) {
	n := params.Numbers
	for _, v := range []*big.Int{
		n.SizeDeltaUsd,
		n.InitialCollateralDeltaAmount,
		n.TriggerPrice,
		n.AcceptablePrice,
		n.ExecutionFee,
		n.CallbackGasLimit,
		n.MinOutputAmount,
	} {
		if v == nil {
			return nil, errors.New("createOrder numbers must all be set")
		}
	}
	if params.Addresses.SwapPath == nil {
		params.Addresses.SwapPath = []common.Address{}
	}
	return packRouter("createOrder", params)
}

// UnpackMulticall decodes the inner calls of multicall calldata
func UnpackMulticall(data []byte) ([][]byte, error) {
	parsed, err := exchangeRouterABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse exchange router abi: %w", err)
	}

	args, err := unpackInput(parsed, "multicall", data)
	if err != nil {
		return nil, err
	}

	calls, ok := args[0].([][]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected multicall argument %T", args[0])
	}
	return calls, nil
}

/*//////////////////////////////////////////////////////////////
                               ERC-20
//////////////////////////////////////////////////////////////*/

func packERC20(method string, args ...any) ([]byte, error) {
	parsed, err := erc20ABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 abi: %w", err)
	}

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	return data, nil
}

// PackApprove encodes approve(spender, amount)
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return packERC20("approve", spender, amount)
}

// PackAllowance encodes allowance(owner, spender)
func PackAllowance(owner common.Address, spender common.Address) ([]byte, error) {
	return packERC20("allowance", owner, spender)
}

// PackBalanceOf encodes balanceOf(account)
func PackBalanceOf(account common.Address) ([]byte, error) {
	return packERC20("balanceOf", account)
}

// UnpackAllowance decodes the uint256 returned by allowance
func UnpackAllowance(data []byte) (*big.Int, error) {
	return unpackUint256("allowance", data)
}

// UnpackBalanceOf decodes the uint256 returned by balanceOf
func UnpackBalanceOf(data []byte) (*big.Int, error) {
	return unpackUint256("balanceOf", data)
}

func unpackUint256(method string, data []byte) (*big.Int, error) {
	parsed, err := erc20ABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 abi: %w", err)
	}

	out, err := parsed.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}

	value, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s output %T", method, out[0])
	}
	return value, nil
}

/*//////////////////////////////////////////////////////////////
                              DECODING
//////////////////////////////////////////////////////////////*/

// MethodName resolves the 4-byte selector of calldata against both ABIs
func MethodName(data []byte) (string, error) {
	if len(data) < 4 {
		return "", errors.New("calldata shorter than a selector")
	}

	for _, load := range []func() (abi.ABI, error){exchangeRouterABI, erc20ABI} {
		parsed, err := load()
		if err != nil {
			return "", err
		}
		if method, err := parsed.MethodById(data[:4]); err == nil {
			return method.Name, nil
		}
	}

	return "", fmt.Errorf("unknown selector %x", data[:4])
}

func unpackInput(parsed abi.ABI, method string, data []byte) ([]any, error) {
	m, ok := parsed.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %s not in abi", method)
	}
	if len(data) < 4 || string(data[:4]) != string(m.ID) {
		return nil, fmt.Errorf("calldata is not a %s call", method)
	}

	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s input: %w", method, err)
	}
	return args, nil
}
