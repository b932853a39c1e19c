package types

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// BigString is an integer that the price API encodes as a decimal JSON
// string. null and "" decode to zero.
type BigString struct {
	v big.Int
}

func NewBigString(x *big.Int) BigString {
	var b BigString
	if x != nil {
		b.v.Set(x)
	}
	return b
}

// UnmarshalJSON implements json.Unmarshaler for BigString
func (b *BigString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		b.v.SetInt64(0)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			b.v.SetInt64(0)
			return nil
		}
		if _, ok := b.v.SetString(s, 10); !ok {
			return fmt.Errorf("invalid integer string: %q", s)
		}
		return nil
	}

	// Plain JSON numbers are accepted as long as they are integral
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, ok := b.v.SetString(n.String(), 10); !ok {
		return fmt.Errorf("invalid integer: %s", n)
	}
	return nil
}

func (b BigString) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.v.String())
}

// Big returns a copy of the value
func (b BigString) Big() *big.Int {
	return new(big.Int).Set(&b.v)
}

func (b BigString) IsZero() bool {
	return b.v.Sign() == 0
}

func (b BigString) String() string {
	return b.v.String()
}
