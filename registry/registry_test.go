package registry

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/maxatome/go-testdeep/td"
)

func TestGetToken(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		symbol   string
		address  string
		decimals uint8
		stable   bool
	}{
		{"usdc", "USDC", "0xaf88d065e77c8cC2239327C5EDb3A432268e5831", 6, true},
		{"weth lower case", "weth", "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1", 18, false},
		{"wbtc padded", "  WBTC ", "0x2f2a2543B76A4166549F7aaB2e75Bef0aefC5B0f", 8, false},
		{"bridged usdc", "usdc.e", "0xFF970A61A04b1cA14834A43f5dE4533eBDDB5CC8", 6, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, ok := GetToken(tt.symbol)
			td.CmpTrue(t, ok)
			td.Cmp(t, tok.Address, common.HexToAddress(tt.address))
			td.Cmp(t, tok.Decimals, tt.decimals)
			td.Cmp(t, tok.Stable, tt.stable)
		})
	}
}

func TestNativeETHWrapsToWETH(t *testing.T) {
	eth, ok := GetToken("ETH")
	td.CmpTrue(t, ok)
	td.CmpTrue(t, eth.Native)

	weth, _ := GetToken("WETH")
	td.Cmp(t, eth.Address, weth.Address)
	td.CmpFalse(t, weth.Native)
}

func TestMustTokenUnknown(t *testing.T) {
	_, err := MustToken("PEPE")
	td.CmpTrue(t, errors.Is(err, ErrUnknownToken))
	td.CmpContains(t, err.Error(), "PEPE")
}

func TestGetMarket(t *testing.T) {
	m, ok := GetMarket("eth")
	td.CmpTrue(t, ok)
	td.Cmp(t, m.Address, common.HexToAddress("0x70d95587d40A2caf56bd97485aB3Eec10Bee6336"))
	td.CmpFalse(t, m.Synthetic)

	alias, ok := GetMarket("WBTC")
	td.CmpTrue(t, ok)
	td.Cmp(t, alias.IndexSymbol, "BTC")

	doge, ok := GetMarket("DOGE")
	td.CmpTrue(t, ok)
	td.CmpTrue(t, doge.Synthetic)

	_, err := MustMarket("FOO")
	td.CmpTrue(t, errors.Is(err, ErrUnknownMarket))
}

func TestIsCollateral(t *testing.T) {
	m, _ := GetMarket("ETH")
	usdc, _ := GetToken("USDC")
	eth, _ := GetToken("ETH")
	arb, _ := GetToken("ARB")

	td.CmpTrue(t, m.IsCollateral(usdc))
	td.CmpTrue(t, m.IsCollateral(eth))
	td.CmpFalse(t, m.IsCollateral(arb))
}

func TestListingsAreSorted(t *testing.T) {
	toks := Tokens()
	td.Cmp(t, len(toks), len(tokens))
	for i := 1; i < len(toks); i++ {
		td.CmpLt(t, toks[i-1].Symbol, toks[i].Symbol)
	}

	mkts := Markets()
	td.Cmp(t, len(mkts), len(markets))
	td.Cmp(t, mkts[0].IndexSymbol, "ARB")
}

func TestEveryMarketHasKnownCollateral(t *testing.T) {
	known := map[common.Address]bool{}
	for _, tok := range Tokens() {
		known[tok.Address] = true
	}
	for _, m := range Markets() {
		td.CmpTrue(t, known[m.LongToken], "long token of %s", m.IndexSymbol)
		td.CmpTrue(t, known[m.ShortToken], "short token of %s", m.IndexSymbol)
	}
}

func TestPriceSymbol(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"WETH":   "ETH",
		"WBTC":   "BTC",
		"USDC.E": "USDC.e",
		"ARB":    "ARB",
	}
	for symbol, want := range tests {
		tok, ok := GetToken(symbol)
		td.CmpTrue(t, ok, symbol)
		td.Cmp(t, PriceSymbol(tok), want, symbol)
	}

	td.Cmp(t, PriceSymbol(Token{Symbol: "NEW"}), "NEW")
}
