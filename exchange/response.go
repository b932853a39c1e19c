package exchange

import (
	"fmt"
	"strings"

	"github.com/banky/go-gmx/constants"
	"github.com/banky/go-gmx/internal/utils"
	"github.com/banky/go-gmx/order"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Result describes a submitted (or, for dry runs, signed) order
type Result struct {
	// RequestDigest identifies the submission in logs
	RequestDigest common.Hash
	// PositionKey of the position the order acts on
	PositionKey common.Hash
	Params      order.Params
	// ApprovalTx is set when an ERC-20 approval preceded the order
	ApprovalTx *types.Transaction
	OrderTx    *types.Transaction
	// Receipt is set when the order was waited for
	Receipt *types.Receipt
	DryRun  bool
}

// Status is "signed" for dry runs, "sent" when not waited for and the
// receipt status otherwise
func (r Result) Status() string {
	switch {
	case r.DryRun:
		return "signed"
	case r.Receipt == nil:
		return "sent"
	case r.Receipt.Status == types.ReceiptStatusSuccessful:
		return "success"
	default:
		return "reverted"
	}
}

func (r Result) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Result{\n")
	fmt.Fprintf(&b, "  Status: %s\n", r.Status())
	fmt.Fprintf(&b, "  RequestDigest: %s\n", r.RequestDigest)
	fmt.Fprintf(&b, "  PositionKey: %s\n", r.PositionKey)
	fmt.Fprintf(&b, "  OrderType: %s\n", r.Params.OrderType)
	fmt.Fprintf(&b, "  Market: %s\n", r.Params.Market.IndexSymbol)
	fmt.Fprintf(&b, "  SizeDeltaUsd: %s\n", utils.FormatAmount(r.Params.SizeDeltaUsd, constants.USD_DECIMALS))
	fmt.Fprintf(&b, "  ExecutionFee: %s ETH\n", utils.FormatAmount(r.Params.ExecutionFee, 18))
	if r.ApprovalTx != nil {
		fmt.Fprintf(&b, "  ApprovalTx: %s\n", r.ApprovalTx.Hash())
	}
	if r.OrderTx != nil {
		fmt.Fprintf(&b, "  OrderTx: %s\n", r.OrderTx.Hash())
	}
	if r.Receipt != nil {
		fmt.Fprintf(&b, "  Block: %s\n", r.Receipt.BlockNumber)
	}
	fmt.Fprintf(&b, "}")

	return b.String()
}
