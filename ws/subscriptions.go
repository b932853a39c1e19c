package ws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Subscription is an active eth_subscribe("newHeads")
type Subscription struct {
	id     string
	client *Client
	heads  chan Header
}

// ID is the node assigned subscription id
func (s *Subscription) ID() string {
	return s.id
}

// Heads delivers new headers. It is closed when the connection ends.
func (s *Subscription) Heads() <-chan Header {
	return s.heads
}

// Unsubscribe stops delivery and tells the node to drop the subscription
func (s *Subscription) Unsubscribe(ctx context.Context) error {
	s.client.mu.Lock()
	_, ok := s.client.subscriptions[s.id]
	delete(s.client.subscriptions, s.id)
	s.client.mu.Unlock()

	if !ok {
		return nil
	}

	var removed bool
	if err := s.client.call(ctx, "eth_unsubscribe", []any{s.id}, &removed); err != nil {
		return fmt.Errorf("failed to unsubscribe %s: %w", s.id, err)
	}
	return nil
}

// SubscribeNewHeads subscribes to new block headers
func (c *Client) SubscribeNewHeads(ctx context.Context) (*Subscription, error) {
	var id string
	if err := c.call(ctx, "eth_subscribe", []any{"newHeads"}, &id); err != nil {
		return nil, fmt.Errorf("failed to subscribe to newHeads: %w", err)
	}

	sub := &Subscription{
		id:     id,
		client: c,
		heads:  make(chan Header, 16),
	}

	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		return nil, ErrClosed
	default:
	}
	c.subscriptions[id] = sub
	c.mu.Unlock()

	c.logger.Debug("subscribed to newHeads", zap.String("subscription", id))
	return sub, nil
}

// ReceiptFetcher is the part of ethclient.Client WaitReceipt needs
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// WaitReceipt checks for the receipt of txHash on every new head until it is
// found or ctx is done
func (c *Client) WaitReceipt(
	ctx context.Context,
	fetcher ReceiptFetcher,
	txHash common.Hash,
) (*types.Receipt, error) {
	sub, err := c.SubscribeNewHeads(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		unsubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := sub.Unsubscribe(unsubCtx); err != nil {
			c.logger.Debug("unsubscribe failed", zap.Error(err))
		}
	}()

	for {
		receipt, err := fetcher.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to fetch receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case header, ok := <-sub.Heads():
			if !ok {
				return nil, ErrClosed
			}
			c.logger.Debug(
				"new head",
				zap.Stringer("number", header.Number),
				zap.Stringer("tx", txHash),
			)
		}
	}
}
