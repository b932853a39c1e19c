package prices

import (
	"math/big"

	"github.com/banky/go-gmx/types"
	"github.com/ethereum/go-ethereum/common"
)

// SignedPrice is a single oracle keeper price entry. Prices are scaled so that
// price * amountInBaseUnits yields a USD value with 30 decimals.
type SignedPrice struct {
	ID                string          `json:"id"`
	TokenSymbol       string          `json:"tokenSymbol"`
	TokenAddress      common.Address  `json:"tokenAddress"`
	MinPriceFull      types.BigString `json:"minPriceFull"`
	MaxPriceFull      types.BigString `json:"maxPriceFull"`
	MinBlockNumber    int64           `json:"minBlockNumber"`
	MinBlockTimestamp int64           `json:"minBlockTimestamp"`
	OracleDecimals    int64           `json:"oracleDecimals"`
	CreatedAt         string          `json:"createdAt"`
}

// SignedPricesResponse is the body of /signed_prices/latest
type SignedPricesResponse struct {
	SignedPrices []SignedPrice `json:"signedPrices"`
}

// TokenPrice is the min/max pair used for order calculations
type TokenPrice struct {
	TokenSymbol  string
	MinPriceFull *big.Int
	MaxPriceFull *big.Int
}

// Mid returns (min + max) / 2
func (p TokenPrice) Mid() *big.Int {
	mid := new(big.Int).Add(p.MinPriceFull, p.MaxPriceFull)
	return mid.Rsh(mid, 1)
}

// Snapshot is one fetch of the price feed indexed by symbol
type Snapshot map[string]TokenPrice

// Get returns the price for symbol
func (s Snapshot) Get(symbol string) (TokenPrice, bool) {
	p, ok := s[symbol]
	return p, ok
}
