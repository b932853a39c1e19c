package exchange

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/contracts"
	"github.com/banky/go-gmx/gas"
	"github.com/banky/go-gmx/order"
	"github.com/banky/go-gmx/prices"
	"github.com/banky/go-gmx/ws"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/samber/mo"
	"go.uber.org/zap"
)

var (
	ErrReverted = errors.New("transaction reverted")
	ErrNoSigner = errors.New("a private key is required to submit orders")

	// ErrInsufficientBalance is returned before anything is signed when the
	// sender holds less collateral than the order sends
	ErrInsufficientBalance = errors.New("insufficient collateral balance")
)

// Backend is the subset of ethclient.Client used to build, send and confirm
// transactions
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	Close()
}

var _ Backend = (*ethclient.Client)(nil)

// Config for initializing the Exchange client
type Config struct {
	// RPCURL of an Arbitrum node, required
	RPCURL string
	// PrivateKey signs transactions. Without it only quotes are available
	PrivateKey *ecdsa.PrivateKey
	// Account stands in for the sender of quotes when no key is set
	Account common.Address
	// PriceAPIURL defaults to the GMX arbitrum API
	PriceAPIURL string
	// PriceFallbackURL is tried when PriceAPIURL fails
	PriceFallbackURL string
	// GasAPIKey selects the hosted gas provider. Without it the node's
	// eth_gasPrice is used for the execution fee
	GasAPIKey      string
	GasProviderURL string
	// WSURL enables new head subscriptions while waiting for receipts
	WSURL string
	// Timeout for HTTP requests in seconds
	Timeout uint
	Logger  *zap.Logger
}

// Exchange computes, signs and submits GMX v2 market orders
type Exchange struct {
	backend    Backend
	prices     order.PriceSource
	gas        gas.Pricer
	privateKey mo.Option[*ecdsa.PrivateKey]
	account    common.Address
	chainID    *big.Int
	logger     *zap.Logger
	waitMined  func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// New dials the node and wires the price feed and gas pricer
func New(ctx context.Context, cfg Config) (*Exchange, error) {
	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial node: %w", err)
	}

	var gasPricer gas.Pricer = gas.NewNodeOracle(client)
	if cfg.GasAPIKey != "" {
		gasPricer = gas.New(gas.Config{
			BaseURL: cfg.GasProviderURL,
			APIKey:  cfg.GasAPIKey,
			Timeout: cfg.Timeout,
		})
	}

	e, err := newExchange(
		ctx,
		client,
		prices.New(prices.Config{
			BaseURL:     cfg.PriceAPIURL,
			FallbackURL: cfg.PriceFallbackURL,
			Timeout:     cfg.Timeout,
		}),
		gasPricer,
		cfg,
	)
	if err != nil {
		client.Close()
		return nil, err
	}
	return e, nil
}

func newExchange(
	ctx context.Context,
	backend Backend,
	priceSource order.PriceSource,
	gasPricer gas.Pricer,
	cfg Config,
) (*Exchange, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}
	if chainID.Cmp(big.NewInt(constants.ARBITRUM_CHAIN_ID)) != 0 {
		logger.Warn("connected to a chain other than arbitrum", zap.Stringer("chainId", chainID))
	}

	block, err := backend.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get block number: %w", err)
	}

	var privateKey mo.Option[*ecdsa.PrivateKey]
	account := cfg.Account
	if cfg.PrivateKey != nil {
		privateKey = mo.Some(cfg.PrivateKey)
		account = crypto.PubkeyToAddress(cfg.PrivateKey.PublicKey)
	}

	logger.Info("connected to node",
		zap.Uint64("block", block),
		zap.Stringer("chainId", chainID),
		zap.Stringer("account", account),
	)

	e := &Exchange{
		backend:    backend,
		prices:     priceSource,
		gas:        gasPricer,
		privateKey: privateKey,
		account:    account,
		chainID:    chainID,
		logger:     logger,
	}
	e.waitMined = e.pollReceipt
	if cfg.WSURL != "" {
		e.waitMined = e.watchReceipt(cfg.WSURL)
	}

	return e, nil
}

// Close releases the node connection
func (e *Exchange) Close() {
	if e.backend != nil {
		e.backend.Close()
	}
}

// Account is the sender of submitted orders
func (e *Exchange) Account() common.Address {
	return e.account
}

// QuoteIncrease computes MarketIncrease parameters without touching the chain
func (e *Exchange) QuoteIncrease(
	ctx context.Context,
	req IncreaseRequest,
	opts ...OrderOption,
) (order.Params, error) {
	cfg := newOrderConfig(opts)
	return order.CalculateIncrease(ctx, e.prices, e.gas, req, cfg.orderOptions())
}

// QuoteDecrease computes MarketDecrease parameters without touching the chain
func (e *Exchange) QuoteDecrease(
	ctx context.Context,
	req DecreaseRequest,
	opts ...OrderOption,
) (order.Params, error) {
	cfg := newOrderConfig(opts)
	return order.CalculateDecrease(ctx, e.prices, e.gas, req, cfg.orderOptions())
}

// IncreasePosition opens or adds to a position with a market order
func (e *Exchange) IncreasePosition(
	ctx context.Context,
	req IncreaseRequest,
	opts ...OrderOption,
) (Result, error) {
	cfg := newOrderConfig(opts)

	params, err := order.CalculateIncrease(ctx, e.prices, e.gas, req, cfg.orderOptions())
	if err != nil {
		return Result{}, fmt.Errorf("failed to calculate increase: %w", err)
	}

	return e.submit(ctx, params, increaseToAction(req, cfg), cfg)
}

// DecreasePosition reduces or closes a position with a market order
func (e *Exchange) DecreasePosition(
	ctx context.Context,
	req DecreaseRequest,
	opts ...OrderOption,
) (Result, error) {
	cfg := newOrderConfig(opts)

	params, err := order.CalculateDecrease(ctx, e.prices, e.gas, req, cfg.orderOptions())
	if err != nil {
		return Result{}, fmt.Errorf("failed to calculate decrease: %w", err)
	}

	return e.submit(ctx, params, decreaseToAction(req, cfg), cfg)
}

// submit runs the plan: an optional approval followed by the multicall
func (e *Exchange) submit(
	ctx context.Context,
	params order.Params,
	action any,
	cfg orderConfig,
) (Result, error) {
	if _, ok := e.privateKey.Get(); !ok {
		return Result{}, ErrNoSigner
	}

	receiver := cfg.receiver.OrElse(e.account)

	p, err := e.buildPlan(ctx, params, receiver, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build plan: %w", err)
	}

	nonce, err := e.backend.PendingNonceAt(ctx, e.account)
	if err != nil {
		return Result{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	digest, err := hashRequest(action, e.account, nonce)
	if err != nil {
		return Result{}, fmt.Errorf("failed to hash request: %w", err)
	}

	// createOrder keys the position by msg.sender, the receiver only gets
	// the output
	positionKey, err := params.PositionKey(e.account)
	if err != nil {
		return Result{}, fmt.Errorf("failed to derive position key: %w", err)
	}

	result := Result{
		RequestDigest: digest,
		PositionKey:   positionKey,
		Params:        params,
		DryRun:        cfg.dryRun,
	}

	logger := e.logger.With(
		zap.Stringer("request", digest),
		zap.Stringer("orderType", params.OrderType),
		zap.Bool("dryRun", cfg.dryRun),
	)

	orderGas := cfg.txGasLimit
	if approval, ok := p.approval.Get(); ok {
		tx, err := e.signedTx(ctx, approval, nonce, mo.None[uint64]())
		if err != nil {
			return Result{}, fmt.Errorf("failed to build approval: %w", err)
		}
		result.ApprovalTx = tx
		nonce++

		if cfg.dryRun {
			// the multicall cannot be estimated before the approval lands
			orderGas = mo.Some(orderGas.OrElse(constants.FALLBACK_TX_GAS_LIMIT))
		} else {
			logger.Info("sending approval", zap.Stringer("tx", tx.Hash()), zap.Uint64("nonce", tx.Nonce()))
			if _, err := e.send(ctx, tx, true); err != nil {
				return Result{}, fmt.Errorf("failed to approve collateral: %w", err)
			}
		}
	}

	for i, data := range p.calls {
		name, _ := contracts.MethodName(data)
		logger.Debug("multicall step", zap.Int("index", i), zap.String("method", name))
	}

	tx, err := e.signedTx(ctx, p.order, nonce, orderGas)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build order: %w", err)
	}
	result.OrderTx = tx

	if cfg.dryRun {
		logger.Info("dry run, order not sent", zap.Stringer("tx", tx.Hash()))
		return result, nil
	}

	logger.Info("sending order",
		zap.Stringer("tx", tx.Hash()),
		zap.Uint64("nonce", tx.Nonce()),
		zap.Stringer("value", tx.Value()),
	)
	receipt, err := e.send(ctx, tx, cfg.wait)
	result.Receipt = receipt
	if err != nil {
		return result, fmt.Errorf("failed to submit order: %w", err)
	}

	if receipt != nil {
		logger.Info("order mined",
			zap.Stringer("tx", tx.Hash()),
			zap.Stringer("block", receipt.BlockNumber),
			zap.Uint64("gasUsed", receipt.GasUsed),
		)
	}

	return result, nil
}

// send broadcasts tx and, when wait is set, blocks until it is mined
func (e *Exchange) send(
	ctx context.Context,
	tx *types.Transaction,
	wait bool,
) (*types.Receipt, error) {
	if err := e.backend.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	if !wait {
		return nil, nil
	}

	receipt, err := e.waitMined(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for %s: %w", tx.Hash(), err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, fmt.Errorf("%w: %s", ErrReverted, tx.Hash())
	}
	return receipt, nil
}

func (e *Exchange) pollReceipt(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, e.backend, tx)
}

func (e *Exchange) watchReceipt(
	url string,
) func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return func(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
		client := ws.New(url, ws.WithLogger(e.logger))
		if err := client.Start(ctx); err != nil {
			e.logger.Warn("websocket unavailable, polling for receipt", zap.Error(err))
			return e.pollReceipt(ctx, tx)
		}
		defer client.Close()

		return client.WaitReceipt(ctx, e.backend, tx.Hash())
	}
}
