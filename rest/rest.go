// Package rest provides core functions for
// network requests to HTTP JSON endpoints
package rest

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/banky/go-gmx/constants"
	"github.com/go-resty/resty/v2"
	"github.com/samber/mo"
)

type Client struct {
	baseUrl string
	timeout mo.Option[uint]
	http    *resty.Client
}

// ClientInterface defines the contract for REST API calls
type ClientInterface interface {
	Get(ctx context.Context, path string, query map[string]string, result any) error
	Post(ctx context.Context, path string, body any, result any) error
	BaseUrl() string
}

type Config struct {
	// BaseUrl is the base URL requests are resolved against
	// If none is provided, the GMX arbitrum API url will be used
	BaseUrl string
	// Timeout is the timeout for network requests in seconds
	// If none is provided, no timeout will be enforced
	Timeout uint
}

// New creates a new client instance with the
// provided configuration.
func New(c Config) *Client {
	var baseUrl string = strings.TrimRight(c.BaseUrl, "/")
	var timeout mo.Option[uint]

	if c.BaseUrl == "" {
		baseUrl = constants.MAINNET_API_URL
	}
	if c.Timeout != 0 {
		timeout = mo.Some(c.Timeout)
	}

	client := &Client{
		baseUrl: baseUrl,
		timeout: timeout,
		http: resty.
			New().
			SetJSONMarshaler(json.Marshal).
			SetJSONUnmarshaler(json.Unmarshal),
	}

	return client
}

func (c *Client) BaseUrl() string {
	return c.baseUrl
}

// Get sends a GET request to the specified path with the provided query
// parameters and decodes the JSON response into result.
func (c *Client) Get(
	ctx context.Context,
	path string,
	query map[string]string,
	result any,
) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(query).
		ForceContentType("application/json").
		SetResult(result).
		Get(c.baseUrl + path)

	if err != nil {
		return err
	}

	return handleException(resp)
}

// Post sends a POST request to the specified path with the provided body.
func (c *Client) Post(
	ctx context.Context,
	path string,
	body any,
	result any,
) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		ForceContentType("application/json").
		SetResult(result).
		Post(c.baseUrl + path)

	if err != nil {
		return err
	}

	return handleException(resp)
}

// Apply timeout to context if specified
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout, ok := c.timeout.Get(); ok {
		return context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	}
	return ctx, func() {}
}
