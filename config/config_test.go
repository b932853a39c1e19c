package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxatome/go-testdeep/td"
)

var allKeys = []string{
	"RPC_URL",
	"PRIVATE_KEY",
	"MNEMONIC",
	"GAS_API_KEY",
	"GAS_PROVIDER_URL",
	"WS_URL",
	"PRICE_API_URL",
	"PRICE_FALLBACK_URL",
	"LOG_LEVEL",
	"HTTP_TIMEOUT_SECONDS",
	"CONFIG_FILE",
}

// clearEnv unsets every config variable for the duration of the test.
// t.Setenv registers the restore, the unset lets godotenv fill them in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_URL", "https://arb1.arbitrum.io/rpc")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	td.Require(t).CmpNoError(err)

	td.Cmp(t, cfg.RPCURL, "https://arb1.arbitrum.io/rpc")
	td.Cmp(t, cfg.GasProviderURL, "https://arb-mainnet.g.alchemy.com/v2")
	td.Cmp(t, cfg.PriceAPIURL, "https://arbitrum-api.gmxinfra.io")
	td.Cmp(t, cfg.PriceFallbackURL, "https://arbitrum-api-fallback.gmxinfra.io")
	td.Cmp(t, cfg.LogLevel, "info")
	td.Cmp(t, cfg.HTTPTimeout, uint(10))
	td.CmpTrue(t, cfg.GasAPIKey.IsAbsent())
	td.CmpTrue(t, cfg.WSURL.IsAbsent())
	td.CmpNoError(t, cfg.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)

	envPath := writeFile(t, ".env", ""+
		"RPC_URL=http://localhost:8545\n"+
		"PRIVATE_KEY=0xabc\n"+
		"GAS_API_KEY=alchemy-key\n"+
		"WS_URL=ws://localhost:8546\n"+
		"HTTP_TIMEOUT_SECONDS=3\n")

	// real environment wins over the file
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(envPath)
	td.Require(t).CmpNoError(err)

	td.Cmp(t, cfg.RPCURL, "http://localhost:8545")
	td.Cmp(t, cfg.PrivateKey, "0xabc")
	td.Cmp(t, cfg.GasAPIKey.OrEmpty(), "alchemy-key")
	td.Cmp(t, cfg.WSURL.OrEmpty(), "ws://localhost:8546")
	td.Cmp(t, cfg.HTTPTimeout, uint(3))
	td.Cmp(t, cfg.LogLevel, "debug")
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	yamlPath := writeFile(t, "gmx.yaml", ""+
		"rpc_url: https://from-yaml\n"+
		"price_api_url: https://arbitrum-api-fallback.gmxinfra.io\n"+
		"price_fallback_url: \"\"\n"+
		"log_level: warn\n")
	t.Setenv("CONFIG_FILE", yamlPath)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	td.Require(t).CmpNoError(err)

	td.Cmp(t, cfg.RPCURL, "https://from-yaml")
	td.Cmp(t, cfg.PriceAPIURL, "https://arbitrum-api-fallback.gmxinfra.io")
	td.Cmp(t, cfg.PriceFallbackURL, "")
	td.Cmp(t, cfg.LogLevel, "error")
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	td.CmpError(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	td.CmpTrue(t, errors.Is(cfg.Validate(), ErrMissingRPCURL))
}
