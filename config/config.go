// Package config loads runtime settings from the environment, an optional
// .env file and an optional yaml file
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/banky/go-gmx/constants"
	"github.com/joho/godotenv"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

var ErrMissingRPCURL = errors.New("RPC_URL must be set")

// Config holds everything an invocation needs
type Config struct {
	RPCURL     string
	PrivateKey string
	Mnemonic   string
	// GasAPIKey selects the hosted gas price provider, the node is asked
	// otherwise
	GasAPIKey      mo.Option[string]
	GasProviderURL string
	// WSURL enables waiting for receipts on new heads
	WSURL       mo.Option[string]
	PriceAPIURL string
	// PriceFallbackURL is tried when PriceAPIURL fails, empty disables it
	PriceFallbackURL string
	LogLevel         string
	// HTTPTimeout in seconds, 0 disables it
	HTTPTimeout uint
}

const (
	keyRPCURL         = "rpc_url"
	keyPrivateKey     = "private_key"
	keyMnemonic       = "mnemonic"
	keyGasAPIKey      = "gas_api_key"
	keyGasProviderURL = "gas_provider_url"
	keyWSURL          = "ws_url"
	keyPriceAPIURL    = "price_api_url"
	keyPriceFallback  = "price_fallback_url"
	keyLogLevel       = "log_level"
	keyHTTPTimeout    = "http_timeout_seconds"
	keyConfigFile     = "config_file"
)

// Load reads configuration. Priority: ENV > .env file > CONFIG_FILE > defaults.
// A missing .env file is not an error.
func Load(envPath string) (*Config, error) {
	var err error
	if envPath != "" {
		err = godotenv.Load(envPath)
	} else {
		err = godotenv.Load()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(keyGasProviderURL, constants.GAS_PROVIDER_URL)
	v.SetDefault(keyPriceAPIURL, constants.MAINNET_API_URL)
	v.SetDefault(keyPriceFallback, constants.FALLBACK_API_URL)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyHTTPTimeout, 10)

	if configFile := v.GetString(keyConfigFile); configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		RPCURL:           strings.TrimSpace(v.GetString(keyRPCURL)),
		PrivateKey:       strings.TrimSpace(v.GetString(keyPrivateKey)),
		Mnemonic:         strings.TrimSpace(v.GetString(keyMnemonic)),
		GasAPIKey:        optional(v.GetString(keyGasAPIKey)),
		GasProviderURL:   v.GetString(keyGasProviderURL),
		WSURL:            optional(v.GetString(keyWSURL)),
		PriceAPIURL:      v.GetString(keyPriceAPIURL),
		PriceFallbackURL: strings.TrimSpace(v.GetString(keyPriceFallback)),
		LogLevel:         v.GetString(keyLogLevel),
		HTTPTimeout:      v.GetUint(keyHTTPTimeout),
	}

	return cfg, nil
}

// Validate checks the settings every command that talks to the node needs
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return ErrMissingRPCURL
	}
	return nil
}

func optional(s string) mo.Option[string] {
	s = strings.TrimSpace(s)
	if s == "" {
		return mo.None[string]()
	}
	return mo.Some(s)
}
