package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/banky/go-gmx/constants"
	"github.com/ethereum/go-ethereum/common"
	"github.com/maxatome/go-testdeep/helpers/tdsuite"
	"github.com/maxatome/go-testdeep/td"
)

// cassetteRestClient is a mock REST client that replays recorded responses
// keyed by request path
type cassetteRestClient struct {
	cassettes map[string][]byte
}

// Get implements the rest.ClientInterface Get method using cassettes
func (crc *cassetteRestClient) Get(
	ctx context.Context,
	path string,
	query map[string]string,
	result any,
) error {
	data, ok := crc.cassettes[path]
	if !ok {
		return fmt.Errorf("cassette for %s not found", path)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to unmarshal cassette into result: %w", err)
	}

	return nil
}

func (crc *cassetteRestClient) Post(
	ctx context.Context,
	path string,
	body any,
	result any,
) error {
	return fmt.Errorf("unexpected POST %s", path)
}

func (crc *cassetteRestClient) BaseUrl() string {
	return constants.MAINNET_API_URL
}

// ===== Test Helpers =====

// loadCassettes maps request paths to cassette files.
// Use testing.TB so it works with both *testing.T and *td.T via TB().
func loadCassettes(t testing.TB, mappings map[string]string) *cassetteRestClient {
	client := &cassetteRestClient{cassettes: make(map[string][]byte)}

	for path, name := range mappings {
		data, err := os.ReadFile(fmt.Sprintf("cassettes/%s.json", name))
		if err != nil {
			t.Fatalf("failed to load cassette file %s: %v", name, err)
		}
		client.cassettes[path] = data
	}

	return client
}

// ===== Suite definition =====

type PricesCassetteSuite struct{}

func (s *PricesCassetteSuite) Setup(t *td.T) error {
	return nil
}

func TestPricesCassetteSuite(t *testing.T) {
	tdsuite.Run(t, &PricesCassetteSuite{})
}

// ===== Cassette-Based Tests as suite methods =====

func (s *PricesCassetteSuite) TestSignedPrices(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{
		"/signed_prices/latest": "signed_prices_latest",
	})
	prices := NewWithClient(client)

	signed, err := prices.SignedPrices(context.Background())
	require.CmpNoError(err)
	require.Len(signed, 5)

	assert.Cmp(signed[0].TokenSymbol, "ETH")
	assert.Cmp(
		signed[0].TokenAddress,
		common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"),
	)
	assert.Cmp(signed[0].MinPriceFull.String(), "2499500000000000")
	assert.Cmp(signed[0].MaxPriceFull.String(), "2500500000000000")
	assert.Cmp(signed[0].OracleDecimals, int64(12))
}

func (s *PricesCassetteSuite) TestTokenPrice(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{
		"/signed_prices/latest": "signed_prices_latest",
	})
	prices := NewWithClient(client)

	price, err := prices.TokenPrice(context.Background(), "BTC")
	require.CmpNoError(err)

	assert.Cmp(price.TokenSymbol, "BTC")
	assert.Cmp(price.MinPriceFull.String(), "679900000000000000000000000")
	assert.Cmp(price.MaxPriceFull.String(), "680100000000000000000000000")
	assert.Cmp(price.Mid().String(), "680000000000000000000000000")
}

func (s *PricesCassetteSuite) TestTokenPriceBridgedSymbol(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{
		"/signed_prices/latest": "signed_prices_latest",
	})
	prices := NewWithClient(client)

	price, err := prices.TokenPrice(context.Background(), "USDC.e")
	require.CmpNoError(err)
	assert.Cmp(price.MinPriceFull.String(), "999800000000000000000000")
}

func (s *PricesCassetteSuite) TestTokenPriceMissing(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{
		"/signed_prices/latest": "signed_prices_latest",
	})
	prices := NewWithClient(client)

	_, err := prices.TokenPrice(context.Background(), "PEPE")
	assert.True(errors.Is(err, ErrTokenNotFound))
}

func (s *PricesCassetteSuite) TestSnapshot(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{
		"/signed_prices/latest": "signed_prices_latest",
	})
	prices := NewWithClient(client)

	snapshot, err := prices.Snapshot(context.Background())
	require.CmpNoError(err)

	assert.Len(snapshot, 5)
	assert.ContainsKey(snapshot, "ETH")
	assert.ContainsKey(snapshot, "ARB")
	_, ok := snapshot.Get("SOL")
	assert.False(ok)
}

func (s *PricesCassetteSuite) TestActions(assert, require *td.T) {
	client := loadCassettes(require.TB, map[string]string{
		"/actions": "actions",
	})
	prices := NewWithClient(client)

	raw, err := prices.Actions(
		context.Background(),
		common.HexToAddress("0x5e9ee1089755c3435139848e47e6635505d5a13a"),
	)
	require.CmpNoError(err)

	var body struct {
		Actions []struct {
			EventName string `json:"eventName"`
			OrderType int    `json:"orderType"`
		} `json:"actions"`
	}
	require.CmpNoError(json.Unmarshal(raw, &body))
	require.Len(body.Actions, 1)
	assert.Cmp(body.Actions[0].EventName, "OrderCreated")
	assert.Cmp(body.Actions[0].OrderType, 2)
}
