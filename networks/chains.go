package networks

// Built-in chain descriptors. Endpoint lists favor CORS-friendly public
// nodes; earlier entries are tried first by the direct-node provider.

var EthereumMainnet = ChainDescriptor{
	ID:             "0x1",
	Name:           "Ethereum",
	Aliases:        []string{"eth", "ethereum", "mainnet"},
	RPCEndpoints:   []string{"https://eth.llamarpc.com", "https://rpc.ankr.com/eth"},
	WrappedNative:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	NativeSymbol:   "ETH",
	NativeDecimals: 18,
}

var BSCMainnet = ChainDescriptor{
	ID:             "0x38",
	Name:           "BSC",
	Aliases:        []string{"bsc", "binance"},
	RPCEndpoints:   []string{"https://binance.llamarpc.com", "https://bsc-dataseed.binance.org"},
	WrappedNative:  "0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c",
	NativeSymbol:   "BNB",
	NativeDecimals: 18,
}

var PolygonMainnet = ChainDescriptor{
	ID:             "0x89",
	Name:           "Polygon",
	Aliases:        []string{"polygon", "matic"},
	RPCEndpoints:   []string{"https://polygon.llamarpc.com", "https://polygon-rpc.com"},
	WrappedNative:  "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270",
	NativeSymbol:   "MATIC",
	NativeDecimals: 18,
}

var Avalanche = ChainDescriptor{
	ID:             "0xa86a",
	Name:           "Avalanche",
	Aliases:        []string{"avax", "avalanche"},
	RPCEndpoints:   []string{"https://avalanche.llamarpc.com", "https://api.avax.network/ext/bc/C/rpc"},
	WrappedNative:  "0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7",
	NativeSymbol:   "AVAX",
	NativeDecimals: 18,
}

var Fantom = ChainDescriptor{
	ID:             "0xfa",
	Name:           "Fantom",
	Aliases:        []string{"fantom", "ftm"},
	RPCEndpoints:   []string{"https://fantom.llamarpc.com", "https://rpc.ftm.tools"},
	WrappedNative:  "0x21be370D5312f44cB42ce377BC9b8a0cEF1A4C83",
	NativeSymbol:   "FTM",
	NativeDecimals: 18,
}

var ArbitrumOne = ChainDescriptor{
	ID:             "0xa4b1",
	Name:           "Arbitrum",
	Aliases:        []string{"arbitrum", "arb"},
	RPCEndpoints:   []string{"https://arbitrum.llamarpc.com", "https://arb1.arbitrum.io/rpc"},
	WrappedNative:  "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1",
	NativeSymbol:   "ETH",
	NativeDecimals: 18,
}

var OptimismMainnet = ChainDescriptor{
	ID:             "0xa",
	Name:           "Optimism",
	Aliases:        []string{"optimism", "op"},
	RPCEndpoints:   []string{"https://optimism.llamarpc.com", "https://mainnet.optimism.io"},
	NativeSymbol:   "ETH",
	NativeDecimals: 18,
}

var BaseMainnet = ChainDescriptor{
	ID:             "0x2105",
	Name:           "Base",
	Aliases:        []string{"base"},
	RPCEndpoints:   []string{"https://base.llamarpc.com", "https://mainnet.base.org"},
	WrappedNative:  "0x4200000000000000000000000000000000000006",
	NativeSymbol:   "ETH",
	NativeDecimals: 18,
}

var Cronos = ChainDescriptor{
	ID:             "0x19",
	Name:           "Cronos",
	Aliases:        []string{"cronos"},
	RPCEndpoints:   []string{"https://cronos.drpc.org"},
	NativeSymbol:   "CRO",
	NativeDecimals: 18,
}

var Linea = ChainDescriptor{
	ID:             "0xe708",
	Name:           "Linea",
	Aliases:        []string{"linea"},
	RPCEndpoints:   []string{"https://linea.drpc.org"},
	NativeSymbol:   "ETH",
	NativeDecimals: 18,
}

var Scroll = ChainDescriptor{
	ID:             "0x82750",
	Name:           "Scroll",
	Aliases:        []string{"scroll"},
	RPCEndpoints:   []string{"https://rpc.scroll.io"},
	NativeSymbol:   "ETH",
	NativeDecimals: 18,
}

var Blast = ChainDescriptor{
	ID:             "0x13e31",
	Name:           "Blast",
	Aliases:        []string{"blast"},
	RPCEndpoints:   []string{"https://rpc.blast.io"},
	NativeSymbol:   "ETH",
	NativeDecimals: 18,
}

var ZkSyncEra = ChainDescriptor{
	ID:             "0x144",
	Name:           "ZkSync Era",
	Aliases:        []string{"zksync"},
	RPCEndpoints:   []string{"https://mainnet.era.zksync.io"},
	NativeSymbol:   "ETH",
	NativeDecimals: 18,
}

var Gnosis = ChainDescriptor{
	ID:             "0x64",
	Name:           "Gnosis",
	Aliases:        []string{"gnosis"},
	RPCEndpoints:   []string{"https://rpc.gnosischain.com"},
	NativeSymbol:   "xDAI",
	NativeDecimals: 18,
}

var Moonbeam = ChainDescriptor{
	ID:             "0x504",
	Name:           "Moonbeam",
	Aliases:        []string{"moonbeam"},
	RPCEndpoints:   []string{"https://rpc.api.moonbeam.network"},
	NativeSymbol:   "GLMR",
	NativeDecimals: 18,
}

var Celo = ChainDescriptor{
	ID:             "0xa4ec",
	Name:           "Celo",
	Aliases:        []string{"celo"},
	RPCEndpoints:   []string{"https://forno.celo.org"},
	NativeSymbol:   "CELO",
	NativeDecimals: 18,
}

var Sepolia = ChainDescriptor{
	ID:             "0xaa36a7",
	Name:           "Sepolia",
	Aliases:        []string{"sepolia"},
	RPCEndpoints:   []string{"https://rpc.sepolia.org"},
	NativeSymbol:   "ETH",
	NativeDecimals: 18,
}

// Insert more descriptors here to support more chains.
var supportedChains = []ChainDescriptor{
	EthereumMainnet,
	BSCMainnet,
	PolygonMainnet,
	Avalanche,
	Fantom,
	ArbitrumOne,
	OptimismMainnet,
	BaseMainnet,
	Cronos,
	Linea,
	Scroll,
	Blast,
	ZkSyncEra,
	Gnosis,
	Moonbeam,
	Celo,
	Sepolia,
}

var defaultRegistry = mustNewRegistry(supportedChains)

// Default returns the registry of built-in chains.
func Default() *Registry {
	return defaultRegistry
}

// Supported returns a copy of the built-in chain descriptors.
func Supported() []ChainDescriptor {
	out := make([]ChainDescriptor, len(supportedChains))
	copy(out, supportedChains)
	return out
}

// ScanList is the set of chains scanned concurrently for "all chains" wallet
// history, prioritized by popularity.
var ScanList = []string{
	EthereumMainnet.ID,
	BSCMainnet.ID,
	PolygonMainnet.ID,
	ArbitrumOne.ID,
	OptimismMainnet.ID,
	BaseMainnet.ID,
	Avalanche.ID,
	Fantom.ID,
}

// HashSearchOrder is the sequential chain priority used when a hash lookup
// does not name a chain. The search stops at the first hit.
var HashSearchOrder = []string{
	EthereumMainnet.ID,
	BSCMainnet.ID,
	PolygonMainnet.ID,
	ArbitrumOne.ID,
	OptimismMainnet.ID,
	Avalanche.ID,
	BaseMainnet.ID,
	Fantom.ID,
	Linea.ID,
	Blast.ID,
	Scroll.ID,
	Cronos.ID,
	Gnosis.ID,
	ZkSyncEra.ID,
	Sepolia.ID,
}

// DeepSearchOrder is the chain priority for the direct-node fallback search.
// Sepolia is excluded: public testnet nodes are too unreliable to block a
// mainnet search on.
var DeepSearchOrder = []string{
	EthereumMainnet.ID,
	BSCMainnet.ID,
	PolygonMainnet.ID,
	ArbitrumOne.ID,
	OptimismMainnet.ID,
	BaseMainnet.ID,
	Avalanche.ID,
	Fantom.ID,
	Linea.ID,
	Blast.ID,
	Scroll.ID,
	Cronos.ID,
	Gnosis.ID,
	ZkSyncEra.ID,
}
