package prices

import (
	"fmt"
	"sort"
	"strings"
)

// String implements fmt.Stringer for TokenPrice
func (p TokenPrice) String() string {
	var mid any = "<nil>"
	if p.MinPriceFull != nil && p.MaxPriceFull != nil {
		mid = p.Mid()
	}

	return fmt.Sprintf(
		"TokenPrice{\n"+
			"  Symbol: %s\n"+
			"  Min:    %s\n"+
			"  Max:    %s\n"+
			"  Mid:    %s\n"+
			"}",
		p.TokenSymbol, p.MinPriceFull, p.MaxPriceFull, mid,
	)
}

// String implements fmt.Stringer for Snapshot
func (s Snapshot) String() string {
	symbols := make([]string, 0, len(s))
	for symbol := range s {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var b strings.Builder
	b.WriteString("Snapshot{\n")
	for _, symbol := range symbols {
		p := s[symbol]
		fmt.Fprintf(&b, "  %s: %s / %s\n", symbol, p.MinPriceFull, p.MaxPriceFull)
	}
	b.WriteString("}")
	return b.String()
}
