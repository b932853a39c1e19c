package constants

import "github.com/ethereum/go-ethereum/common"

const MAINNET_API_URL = "https://arbitrum-api.gmxinfra.io"
const FALLBACK_API_URL = "https://arbitrum-api-fallback.gmxinfra.io"
const GAS_PROVIDER_URL = "https://arb-mainnet.g.alchemy.com/v2"
const ARBITRUM_CHAIN_ID = 42161

// USD values and prices on GMX carry 30 decimals
const USD_DECIMALS = 30

// MAX_LEVERAGE is exclusive
const MAX_LEVERAGE = 50

const INCREASE_ORDER_GAS_LIMIT = 2_500_000
const DECREASE_ORDER_GAS_LIMIT = 3_000_000

// DEFAULT_SLIPPAGE_BPS is applied to the acceptable price of market orders (0.5%)
const DEFAULT_SLIPPAGE_BPS = 50

var (
	EXCHANGE_ROUTER = common.HexToAddress("0x7C68C7866A64FA2160F78EEaE12217FFbf871fa8")
	ROUTER          = common.HexToAddress("0x7452c558d45f8afC8c83dAe62C3f8A5BE19c71f6")
	ORDER_VAULT     = common.HexToAddress("0x31eF83a530Fde1B38EE9A18093A333D8Bbbc40D5")
)

var ZERO_ADDRESS = common.Address{}

// FALLBACK_TX_GAS_LIMIT is used for a dry-run multicall that cannot be
// estimated because its approval has not been mined
const FALLBACK_TX_GAS_LIMIT = 5_000_000
