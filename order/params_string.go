package order

import (
	"fmt"

	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/internal/utils"
)

// String implements fmt.Stringer for Params
func (p Params) String() string {
	return fmt.Sprintf(
		"Params{\n"+
			"  OrderType:       %s\n"+
			"  Direction:       %s\n"+
			"  Market:          %s (%s)\n"+
			"  Collateral:      %s %s\n"+
			"  CollateralUsd:   %s\n"+
			"  SizeDeltaUsd:    %s\n"+
			"  AcceptablePrice: %s\n"+
			"  ExecutionFee:    %s ETH (%s wei/gas x %d)\n"+
			"}",
		p.OrderType,
		p.Direction,
		p.Market.IndexSymbol, p.Market.Address,
		utils.FormatAmount(p.InitialCollateralDeltaAmount, p.Collateral.Decimals), p.Collateral.Symbol,
		utils.FormatAmount(p.CollateralUsd, constants.USD_DECIMALS),
		utils.FormatAmount(p.SizeDeltaUsd, constants.USD_DECIMALS),
		p.AcceptablePrice,
		utils.FormatAmount(p.ExecutionFee, 18), p.GasPrice, p.GasLimit,
	)
}
