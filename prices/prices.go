// Package prices reads the GMX oracle keeper API
package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banky/go-gmx/rest"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"
)

var ErrTokenNotFound = errors.New("token not found in price data")

// Prices provides access to the signed price feed and account history
type Prices struct {
	rest     rest.ClientInterface
	fallback mo.Option[rest.ClientInterface]
}

// Config for initializing the Prices client
type Config struct {
	BaseURL string
	// FallbackURL is tried when a request to BaseURL fails. Empty disables it
	FallbackURL string
	Timeout     uint
}

// New creates a new Prices client
func New(cfg Config) *Prices {
	p := &Prices{
		rest: rest.New(rest.Config{
			BaseUrl: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}),
	}
	if cfg.FallbackURL != "" {
		p.fallback = mo.Some[rest.ClientInterface](rest.New(rest.Config{
			BaseUrl: cfg.FallbackURL,
			Timeout: cfg.Timeout,
		}))
	}
	return p
}

// NewWithClient creates a Prices client on top of an existing transport
func NewWithClient(client rest.ClientInterface) *Prices {
	return &Prices{rest: client}
}

// SignedPrices retrieves the latest signed min/max prices for every token.
func (p *Prices) SignedPrices(ctx context.Context) ([]SignedPrice, error) {
	var result SignedPricesResponse
	err := p.get(ctx, "/signed_prices/latest", nil, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signed prices: %w", err)
	}

	return result.SignedPrices, nil
}

// Snapshot fetches the feed once and indexes it by token symbol. When a
// symbol appears more than once the first entry wins.
func (p *Prices) Snapshot(ctx context.Context) (Snapshot, error) {
	signed, err := p.SignedPrices(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := make(Snapshot, len(signed))
	for _, s := range signed {
		if _, ok := snapshot[s.TokenSymbol]; ok {
			continue
		}
		snapshot[s.TokenSymbol] = TokenPrice{
			TokenSymbol:  s.TokenSymbol,
			MinPriceFull: s.MinPriceFull.Big(),
			MaxPriceFull: s.MaxPriceFull.Big(),
		}
	}

	return snapshot, nil
}

// TokenPrice fetches the feed and returns the entry matching symbol.
func (p *Prices) TokenPrice(ctx context.Context, symbol string) (TokenPrice, error) {
	snapshot, err := p.Snapshot(ctx)
	if err != nil {
		return TokenPrice{}, err
	}

	price, ok := snapshot.Get(symbol)
	if !ok {
		return TokenPrice{}, fmt.Errorf("%w: %s", ErrTokenNotFound, symbol)
	}

	return price, nil
}

// Actions retrieves the raw trade action history of an account.
func (p *Prices) Actions(ctx context.Context, account common.Address) (json.RawMessage, error) {
	var result json.RawMessage
	err := p.get(
		ctx,
		"/actions",
		map[string]string{"account": account.Hex()},
		&result,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch actions: %w", err)
	}

	return result, nil
}

// get tries the primary API and then, if configured, the fallback
func (p *Prices) get(
	ctx context.Context,
	path string,
	query map[string]string,
	result any,
) error {
	err := p.rest.Get(ctx, path, query, result)
	if err == nil {
		return nil
	}

	fallback, ok := p.fallback.Get()
	if !ok || ctx.Err() != nil {
		return err
	}
	if fallbackErr := fallback.Get(ctx, path, query, result); fallbackErr != nil {
		return errors.Join(err, fallbackErr)
	}
	return nil
}
