package ws

import (
	"encoding/json"

	"go.uber.org/zap"
)

// handleMessage routes a frame to a pending call or a subscription
func (c *Client) handleMessage(data []byte) {
	var msg rpcMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warn("failed to unmarshal ws message", zap.Error(err))
		return
	}

	switch {
	case msg.ID != nil:
		c.handleResponse(*msg.ID, rpcResponse{
			ID:     *msg.ID,
			Result: msg.Result,
			Error:  msg.Error,
		})
	case msg.Method == "eth_subscription" && msg.Params != nil:
		c.handleNotification(msg.Params.Subscription, msg.Params.Result)
	default:
		c.logger.Debug("websocket unknown message", zap.ByteString("data", data))
	}
}

func (c *Client) handleResponse(id int, resp rpcResponse) {
	c.mu.Lock()
	ch, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()

	if !ok {
		c.logger.Debug("websocket response without caller", zap.Int("id", id))
		return
	}
	ch <- resp
}

func (c *Client) handleNotification(subscriptionID string, result json.RawMessage) {
	var header Header
	if err := json.Unmarshal(result, &header); err != nil {
		c.logger.Warn("failed to unmarshal newHeads message", zap.Error(err))
		return
	}

	c.mu.RLock()
	sub, ok := c.subscriptions[subscriptionID]
	c.mu.RUnlock()
	if !ok {
		return
	}

	// A slow reader only needs the latest head
	select {
	case sub.heads <- header:
	default:
		c.logger.Debug("dropping head for slow subscriber", zap.String("subscription", subscriptionID))
	}
}
