package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrOverflow      = errors.New("uint256 overflow")
)

const bpsDenominator = 10_000

// maxU256Digits is the number of decimal digits of 2^256 - 1
const maxU256Digits = 78

// ParseAmount converts a decimal string such as "12.5" into base units of a
// token with the given decimals. Negative values and values with more
// fractional digits than the token supports are rejected.
func ParseAmount(s string, decimals uint8) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	if d.IsZero() {
		return new(big.Int), nil
	}

	// integer digits once shifted, checked before Shift builds 10^exp
	digits := int64(len(d.Coefficient().String())) + int64(d.Exponent()) + int64(decimals)
	if digits > maxU256Digits {
		return nil, fmt.Errorf("%w: %q", ErrOverflow, s)
	}

	shifted := d.Shift(int32(decimals))
	if !shifted.IsInteger() {
		return nil, fmt.Errorf(
			"%w: %q has more than %d decimals",
			ErrInvalidAmount,
			s,
			decimals,
		)
	}

	return CheckU256(shifted.BigInt())
}

// FormatAmount renders base units as a decimal string
func FormatAmount(x *big.Int, decimals uint8) string {
	if x == nil {
		return "0"
	}
	return decimal.NewFromBigInt(x, -int32(decimals)).String()
}

// Pow10 returns 10^n
func Pow10(n uint) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// CheckU256 returns x unchanged if it fits in a uint256
func CheckU256(x *big.Int) (*big.Int, error) {
	if x.Sign() < 0 || x.BitLen() > 256 {
		return nil, fmt.Errorf("%w: %s", ErrOverflow, x)
	}
	return x, nil
}

// MulU256 multiplies a and b, failing when the product leaves uint256 range
func MulU256(a, b *big.Int) (*big.Int, error) {
	return CheckU256(new(big.Int).Mul(a, b))
}

// MulDecimal multiplies x by d, truncating toward zero
func MulDecimal(x *big.Int, d decimal.Decimal) (*big.Int, error) {
	product := decimal.NewFromBigInt(x, 0).Mul(d)
	return CheckU256(product.Truncate(0).BigInt())
}

// ApplyBps scales x by (10000 + bps) / 10000. Negative bps scale down.
// The result is truncated toward zero.
func ApplyBps(x *big.Int, bps int64) (*big.Int, error) {
	if bps <= -bpsDenominator {
		return nil, fmt.Errorf("bps %d would zero the value", bps)
	}
	scaled, err := MulU256(x, big.NewInt(bpsDenominator+bps))
	if err != nil {
		return nil, err
	}
	return scaled.Quo(scaled, big.NewInt(bpsDenominator)), nil
}
