// Package registry holds the static token and market tables for GMX v2 on
// Arbitrum. The tables are fixed at compile time and never mutated.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrUnknownToken  = errors.New("unsupported token")
	ErrUnknownMarket = errors.New("unsupported market")
)

// Token describes an ERC-20 (or the native asset) usable as collateral
type Token struct {
	Symbol   string
	Address  common.Address
	Decimals uint8
	// Stable tokens are valued at exactly 1 USD
	Stable bool
	// Native is set for ETH, which is wrapped into WETH by the order vault
	Native bool
	// FeedSymbol is the symbol used by the signed price feed
	FeedSymbol string
}

// Market is a GMX v2 perpetual market keyed by its index token
type Market struct {
	IndexSymbol string
	Address     common.Address
	IndexToken  common.Address
	LongToken   common.Address
	ShortToken  common.Address
	Synthetic   bool
}

var (
	weth = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
	wbtc = common.HexToAddress("0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f")
	usdc = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	arb  = common.HexToAddress("0x912CE59144191C1204E64559FE8253a0e49E6548")
	sol  = common.HexToAddress("0x2bcC6D6CdBbDC0a4071e48bb3B969b06B3330c07")
	link = common.HexToAddress("0xf97f4df75117a78c1A5a0DBb814Af92458539FB4")
	uni  = common.HexToAddress("0xFa7F8980b0f1E64A2062791cc3b0871572f1F7f0")
	doge = common.HexToAddress("0xC4da4c24fd591125c3F47b340b6f4f76111883d8")
	xrp  = common.HexToAddress("0xc14e065b0067dE91534e032868f5Ac6ecf2c6868")
	ltc  = common.HexToAddress("0xB46A094Bc4B0adBD801E14b9DB95e05E28962764")
)

var tokens = map[string]Token{
	"ETH":    {Symbol: "ETH", Address: weth, Decimals: 18, Native: true, FeedSymbol: "ETH"},
	"WETH":   {Symbol: "WETH", Address: weth, Decimals: 18, FeedSymbol: "ETH"},
	"WBTC":   {Symbol: "WBTC", Address: wbtc, Decimals: 8, FeedSymbol: "BTC"},
	"USDC":   {Symbol: "USDC", Address: usdc, Decimals: 6, Stable: true, FeedSymbol: "USDC"},
	"USDC.E": {Symbol: "USDC.E", Address: common.HexToAddress("0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8"), Decimals: 6, Stable: true, FeedSymbol: "USDC.e"},
	"USDT":   {Symbol: "USDT", Address: common.HexToAddress("0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"), Decimals: 6, Stable: true, FeedSymbol: "USDT"},
	"DAI":    {Symbol: "DAI", Address: common.HexToAddress("0xDA10009cBd5D07dd0CeCc66161FC93D7c9000da1"), Decimals: 18, Stable: true, FeedSymbol: "DAI"},
	"ARB":    {Symbol: "ARB", Address: arb, Decimals: 18, FeedSymbol: "ARB"},
	"LINK":   {Symbol: "LINK", Address: link, Decimals: 18, FeedSymbol: "LINK"},
	"UNI":    {Symbol: "UNI", Address: uni, Decimals: 18, FeedSymbol: "UNI"},
	"SOL":    {Symbol: "SOL", Address: sol, Decimals: 9, FeedSymbol: "SOL"},
	// Synthetic index tokens, not transferable on Arbitrum
	"DOGE": {Symbol: "DOGE", Address: doge, Decimals: 8, FeedSymbol: "DOGE"},
	"XRP":  {Symbol: "XRP", Address: xrp, Decimals: 6, FeedSymbol: "XRP"},
	"LTC":  {Symbol: "LTC", Address: ltc, Decimals: 8, FeedSymbol: "LTC"},
}

var markets = map[string]Market{
	"ETH":  {IndexSymbol: "ETH", Address: common.HexToAddress("0x70d95587d40A2caf56bd97485aB3Eec10Bee6336"), IndexToken: weth, LongToken: weth, ShortToken: usdc},
	"BTC":  {IndexSymbol: "BTC", Address: common.HexToAddress("0x47c031236e19d024b42f8AE6780E44A573170703"), IndexToken: wbtc, LongToken: wbtc, ShortToken: usdc},
	"ARB":  {IndexSymbol: "ARB", Address: common.HexToAddress("0xC25cEf6061Cf5dE5eb761b50E4743c1F5D7E5407"), IndexToken: arb, LongToken: arb, ShortToken: usdc},
	"SOL":  {IndexSymbol: "SOL", Address: common.HexToAddress("0x09400D9DB990D5ed3f35D7be61DfAEB900Af03C9"), IndexToken: sol, LongToken: sol, ShortToken: usdc},
	"LINK": {IndexSymbol: "LINK", Address: common.HexToAddress("0x7f1fa204bb700853D36994DA19F830b6Ad18455C"), IndexToken: link, LongToken: link, ShortToken: usdc},
	"UNI":  {IndexSymbol: "UNI", Address: common.HexToAddress("0xc7Abb2C5f3BF3CEB389dF0Eecd6120D451170B50"), IndexToken: uni, LongToken: uni, ShortToken: usdc},
	"DOGE": {IndexSymbol: "DOGE", Address: common.HexToAddress("0x6853EA96FF216fAb11D2d930CE3C508556A4bdc4"), IndexToken: doge, LongToken: weth, ShortToken: usdc, Synthetic: true},
	"XRP":  {IndexSymbol: "XRP", Address: common.HexToAddress("0x0CCB4fAa6f1F1B30911619f1184082aB4E25813c"), IndexToken: xrp, LongToken: weth, ShortToken: usdc, Synthetic: true},
	"LTC":  {IndexSymbol: "LTC", Address: common.HexToAddress("0xD9535bB5f58A1a75032416F2dFe7880C30575a41"), IndexToken: ltc, LongToken: weth, ShortToken: usdc, Synthetic: true},
}

// marketAliases maps token symbols onto the market that indexes them
var marketAliases = map[string]string{
	"WETH": "ETH",
	"WBTC": "BTC",
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// GetToken looks a token up by symbol (case-insensitive)
func GetToken(symbol string) (Token, bool) {
	t, ok := tokens[normalize(symbol)]
	return t, ok
}

// MustToken is GetToken returning ErrUnknownToken for unknown symbols
func MustToken(symbol string) (Token, error) {
	t, ok := GetToken(symbol)
	if !ok {
		return Token{}, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}
	return t, nil
}

// GetMarket looks a market up by index token symbol (case-insensitive).
// WETH and WBTC resolve to the ETH and BTC markets.
func GetMarket(indexSymbol string) (Market, bool) {
	s := normalize(indexSymbol)
	if alias, ok := marketAliases[s]; ok {
		s = alias
	}
	m, ok := markets[s]
	return m, ok
}

// MustMarket is GetMarket returning ErrUnknownMarket for unknown symbols
func MustMarket(indexSymbol string) (Market, error) {
	m, ok := GetMarket(indexSymbol)
	if !ok {
		return Market{}, fmt.Errorf("%w: %s", ErrUnknownMarket, indexSymbol)
	}
	return m, nil
}

// Tokens returns all tokens sorted by symbol
func Tokens() []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b Token) int { return strings.Compare(a.Symbol, b.Symbol) })
	return out
}

// Markets returns all markets sorted by index symbol
func Markets() []Market {
	out := make([]Market, 0, len(markets))
	for _, m := range markets {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b Market) int { return strings.Compare(a.IndexSymbol, b.IndexSymbol) })
	return out
}

// IsCollateral reports whether t can back a position in m
func (m Market) IsCollateral(t Token) bool {
	return t.Address == m.LongToken || t.Address == m.ShortToken
}

// PriceSymbol returns the symbol the signed price feed lists t under
func PriceSymbol(t Token) string {
	if t.FeedSymbol != "" {
		return t.FeedSymbol
	}
	return t.Symbol
}
