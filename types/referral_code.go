package types

import (
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vmihailenco/msgpack/v5"
)

const referralCodeLength = 32

// ReferralCode is the bytes32 referral code passed to createOrder.
// The zero value means no referral.
type ReferralCode [referralCodeLength]byte

var referralCodeT = reflect.TypeFor[ReferralCode]()

// BytesToReferralCode returns ReferralCode with value b.
// If b is larger than len(r), b will be cropped from the left.
func BytesToReferralCode(b []byte) ReferralCode {
	var r ReferralCode
	r.SetBytes(b)
	return r
}

// HexToReferralCode returns ReferralCode with byte values of s.
func HexToReferralCode(s string) ReferralCode {
	return BytesToReferralCode(common.FromHex(s))
}

// StringToReferralCode right-pads a human readable code, the way the GMX
// UI stores codes on-chain. Codes longer than 32 bytes are truncated.
func StringToReferralCode(s string) ReferralCode {
	var r ReferralCode
	copy(r[:], s)
	return r
}

// SetBytes sets the ReferralCode to the value of b.
// If b is larger than len(r), b will be cropped from the left.
func (r *ReferralCode) SetBytes(b []byte) {
	if len(b) > len(r) {
		b = b[len(b)-referralCodeLength:]
	}

	copy(r[referralCodeLength-len(b):], b)
}

func (r ReferralCode) IsZero() bool {
	return r == ReferralCode{}
}

// Hex converts a ReferralCode to a hex string.
func (r ReferralCode) Hex() string { return hexutil.Encode(r[:]) }

func (r ReferralCode) String() string {
	return r.Hex()
}

// UnmarshalJSON parses a ReferralCode in hex syntax.
func (r *ReferralCode) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON(referralCodeT, input, r[:])
}

// MarshalText returns the hex representation of r.
func (r ReferralCode) MarshalText() ([]byte, error) {
	return hexutil.Bytes(r[:]).MarshalText()
}

func (r ReferralCode) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(r.Hex())
}

func (r *ReferralCode) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}

	*r = HexToReferralCode(s)
	return nil
}
