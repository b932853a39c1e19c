package exchange

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/mo"
	"github.com/vmihailenco/msgpack/v5"
)

// gasBufferPercent is added on top of the node's gas estimate
const gasBufferPercent = 20

var errNoBaseFee = errors.New("node did not return a base fee")

// hashRequest creates a Keccak256 digest of the request, the sender and the
// nonce of its first transaction. It identifies a submission in logs
func hashRequest(
	action any,
	account common.Address,
	nonce uint64,
) (common.Hash, error) {
	data, err := msgpack.Marshal(action)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to marshal action: %w", err)
	}

	nonceBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(nonceBytes, nonce)
	data = append(data, nonceBytes...)
	data = append(data, account.Bytes()...)

	return crypto.Keccak256Hash(data), nil
}

// signedTx builds an EIP-1559 transaction for c and signs it
func (e *Exchange) signedTx(
	ctx context.Context,
	c call,
	nonce uint64,
	gasLimit mo.Option[uint64],
) (*types.Transaction, error) {
	tx, err := e.buildTx(ctx, c, nonce, gasLimit)
	if err != nil {
		return nil, err
	}
	return e.signTx(tx)
}

// buildTx prices the transaction with fee cap = 2 * baseFee + tip
func (e *Exchange) buildTx(
	ctx context.Context,
	c call,
	nonce uint64,
	gasLimit mo.Option[uint64],
) (*types.Transaction, error) {
	tip, err := e.backend.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas tip: %w", err)
	}

	head, err := e.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}
	if head.BaseFee == nil {
		return nil, errNoBaseFee
	}

	feeCap := new(big.Int).Mul(head.BaseFee, big.NewInt(2))
	feeCap.Add(feeCap, tip)

	limit, ok := gasLimit.Get()
	if !ok {
		estimate, err := e.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:      e.account,
			To:        &c.to,
			GasFeeCap: feeCap,
			GasTipCap: tip,
			Value:     c.value,
			Data:      c.data,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
		limit = withGasBuffer(estimate)
	}

	to := c.to
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   e.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       limit,
		To:        &to,
		Value:     c.value,
		Data:      c.data,
	}), nil
}

func (e *Exchange) signTx(tx *types.Transaction) (*types.Transaction, error) {
	privateKey, ok := e.privateKey.Get()
	if !ok {
		return nil, ErrNoSigner
	}

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(e.chainID), privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

func withGasBuffer(estimate uint64) uint64 {
	return estimate + estimate*gasBufferPercent/100
}
