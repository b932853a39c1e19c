// Package gas supplies the gas price used to size the keeper execution fee
package gas

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/internal/utils"
	"github.com/banky/go-gmx/rest"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Pricer returns the current gas price in wei
type Pricer interface {
	GasPrice(ctx context.Context) (*big.Int, error)
}

var (
	_ Pricer = (*Provider)(nil)
	_ Pricer = (*NodeOracle)(nil)
)

// Provider asks a hosted JSON-RPC endpoint for eth_gasPrice
type Provider struct {
	rest rest.ClientInterface
	path string
}

type Config struct {
	// BaseURL of the provider, defaults to the Alchemy Arbitrum endpoint
	BaseURL string
	// APIKey is appended to the base url as the last path segment
	APIKey string
	// Timeout in seconds
	Timeout uint
}

func New(cfg Config) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = constants.GAS_PROVIDER_URL
	}

	return &Provider{
		rest: rest.New(rest.Config{
			BaseUrl: baseURL,
			Timeout: cfg.Timeout,
		}),
		path: "/" + cfg.APIKey,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result *hexutil.Big `json:"result"`
	Error  *rpcError    `json:"error"`
}

// GasPrice implements Pricer
func (p *Provider) GasPrice(ctx context.Context) (*big.Int, error) {
	var resp rpcResponse
	err := p.rest.Post(ctx, p.path, rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_gasPrice",
		Params:  []any{},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gas price: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf(
			"failed to fetch gas price: rpc error %d: %s",
			resp.Error.Code,
			resp.Error.Message,
		)
	}
	if resp.Result == nil {
		return nil, errors.New("failed to fetch gas price: empty result")
	}

	return resp.Result.ToInt(), nil
}

// GasPriceSuggester is the part of ethclient.Client NodeOracle needs
type GasPriceSuggester interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// NodeOracle reads the gas price from the connected node
type NodeOracle struct {
	node GasPriceSuggester
}

func NewNodeOracle(node GasPriceSuggester) *NodeOracle {
	return &NodeOracle{node: node}
}

// GasPrice implements Pricer
func (o *NodeOracle) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := o.node.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	return price, nil
}

// ExecutionFee is the wei paid to the keeper: gasPrice * gasLimit
func ExecutionFee(gasPrice *big.Int, gasLimit uint64) (*big.Int, error) {
	if gasPrice == nil || gasPrice.Sign() <= 0 {
		return nil, fmt.Errorf("invalid gas price: %v", gasPrice)
	}
	fee, err := utils.MulU256(gasPrice, new(big.Int).SetUint64(gasLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to compute execution fee: %w", err)
	}
	return fee, nil
}
