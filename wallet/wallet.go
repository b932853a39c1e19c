// Package wallet loads the signing key from configuration. Keys are never
// generated or persisted.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// DefaultDerivationPath is the first account of the standard Ethereum path
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

var ErrNoKey = errors.New("PRIVATE_KEY or MNEMONIC must be set")

// Key is a loaded secp256k1 key and its address
type Key struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

func (k *Key) Address() common.Address {
	return k.address
}

func (k *Key) PrivateKey() *ecdsa.PrivateKey {
	return k.privateKey
}

// Load prefers a hex private key and falls back to deriving the first
// account from a mnemonic
func Load(privateKey string, mnemonic string) (*Key, error) {
	if strings.TrimSpace(privateKey) != "" {
		return FromPrivateKey(privateKey)
	}
	if strings.TrimSpace(mnemonic) != "" {
		return FromMnemonic(mnemonic, DefaultDerivationPath)
	}
	return nil, ErrNoKey
}

// FromPrivateKey parses a hex private key with or without 0x
func FromPrivateKey(hexKey string) (*Key, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")

	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Key{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// FromMnemonic derives the key at path from a BIP-39 mnemonic
func FromMnemonic(mnemonic string, path string) (*Key, error) {
	wallet, err := hdwallet.NewFromMnemonic(strings.TrimSpace(mnemonic))
	if err != nil {
		return nil, fmt.Errorf("failed to load mnemonic: %w", err)
	}

	derivationPath, err := hdwallet.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse derivation path: %w", err)
	}

	account, err := wallet.Derive(derivationPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account: %w", err)
	}

	privateKey, err := wallet.PrivateKey(account)
	if err != nil {
		return nil, fmt.Errorf("failed to derive private key: %w", err)
	}

	return &Key{
		privateKey: privateKey,
		address:    account.Address,
	}, nil
}
