package resolver

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	lenscommon "github.com/tranvictor/chainlens/common"
	"github.com/tranvictor/chainlens/networks"
	"github.com/tranvictor/chainlens/provider"
)

// fakeIndexer is a scriptable provider.Provider.
type fakeIndexer struct {
	kind   provider.Kind
	ops    map[provider.Operation]bool
	wallet func(chainID string) ([]lenscommon.NormalizedTransaction, error)
	tokens func(chainID string) ([]lenscommon.TokenTransfer, error)
	byHash func(hash, chainID string) (*lenscommon.NormalizedTransaction, error)

	mu          sync.Mutex
	walletCalls int
	hashChains  []string
}

func (f *fakeIndexer) Kind() provider.Kind { return f.kind }

func (f *fakeIndexer) Supports(op provider.Operation) bool { return f.ops[op] }

func (f *fakeIndexer) WalletTransactions(_ context.Context, q provider.WalletQuery) ([]lenscommon.NormalizedTransaction, error) {
	f.mu.Lock()
	f.walletCalls++
	f.mu.Unlock()
	if f.wallet == nil {
		return nil, nil
	}
	return f.wallet(q.ChainID)
}

func (f *fakeIndexer) TokenTransfers(_ context.Context, _, chainID string, _ int) ([]lenscommon.TokenTransfer, error) {
	if f.tokens == nil {
		return nil, nil
	}
	return f.tokens(chainID)
}

func (f *fakeIndexer) TransactionByHash(_ context.Context, hash, chainID string) (*lenscommon.NormalizedTransaction, error) {
	f.mu.Lock()
	f.hashChains = append(f.hashChains, chainID)
	f.mu.Unlock()
	if f.byHash == nil {
		return nil, provider.ErrNotFound
	}
	return f.byHash(hash, chainID)
}

// fakeEnricher serves canned enrichment and prices.
type fakeEnricher struct {
	erc20  []lenscommon.TokenTransfer
	nfts   []lenscommon.NFTTransfer
	prices map[string]float64
}

func (f *fakeEnricher) TransactionTokenTransfers(context.Context, string, string) []lenscommon.TokenTransfer {
	return f.erc20
}

func (f *fakeEnricher) TransactionNFTTransfers(context.Context, string, string) []lenscommon.NFTTransfer {
	return f.nfts
}

func (f *fakeEnricher) TokenPrice(_ context.Context, contract, _ string) float64 {
	return f.prices[contract]
}

type fakeInternals struct {
	internals []lenscommon.InternalTransfer
}

func (f *fakeInternals) InternalTransfers(context.Context, string, string) []lenscommon.InternalTransfer {
	return f.internals
}

type fakeDeep struct {
	tx      *lenscommon.NormalizedTransaction
	chainID string
	called  bool
}

func (f *fakeDeep) TransactionByHash(_ context.Context, _, chainID string) (*lenscommon.NormalizedTransaction, error) {
	f.called = true
	if f.tx == nil || chainID != f.chainID {
		return nil, provider.ErrNotFound
	}
	return f.tx, nil
}

func (f *fakeDeep) FindTransaction(context.Context, string) (*lenscommon.NormalizedTransaction, string, error) {
	f.called = true
	if f.tx == nil {
		return nil, "", provider.ErrNotFound
	}
	return f.tx, f.chainID, nil
}

func newTestResolver(indexer *fakeIndexer, enr *fakeEnricher, deep *fakeDeep) *Resolver {
	if enr == nil {
		enr = &fakeEnricher{}
	}
	if deep == nil {
		deep = &fakeDeep{}
	}
	providers := map[provider.Kind]provider.Provider{}
	if indexer != nil {
		providers[indexer.kind] = indexer
	}
	return &Resolver{
		registry:  networks.Default(),
		providers: providers,
		enricher:  enr,
		internals: &fakeInternals{},
		deep:      deep,
		memo:      newMemo(time.Minute),
		logger:    zap.NewNop(),
	}
}

func indexerSupporting(ops ...provider.Operation) *fakeIndexer {
	supported := map[provider.Operation]bool{}
	for _, op := range ops {
		supported[op] = true
	}
	return &fakeIndexer{kind: provider.KindMoralis, ops: supported}
}

func TestWalletHistorySingleChain(t *testing.T) {
	ts := time.Now().UTC()
	indexer := indexerSupporting(provider.OpWalletHistory, provider.OpTokenTransfers)
	indexer.wallet = func(chainID string) ([]lenscommon.NormalizedTransaction, error) {
		require.Equal(t, "0x38", chainID)
		return []lenscommon.NormalizedTransaction{nativeTx("0xaaa", "0", ts)}, nil
	}
	indexer.tokens = func(string) ([]lenscommon.TokenTransfer, error) {
		return []lenscommon.TokenTransfer{usdcTransfer("0xaaa", "2500000")}, nil
	}

	r := newTestResolver(indexer, nil, nil)
	result, err := r.WalletTransactions(context.Background(), WalletHistoryRequest{
		Address: "0xWallet", Chain: "bsc", Direction: "in",
	})
	require.NoError(t, err)
	require.Equal(t, "BSC", result.Chain)
	require.Equal(t, "0xWallet", result.SearchedAddress)
	require.Len(t, result.Transactions, 1)
	// The zero-value tx picked up the token's display fields in the merge.
	require.Equal(t, "USDC", result.Transactions[0].TokenSymbol)
	require.NotNil(t, result.Filters)
	require.Equal(t, "in", result.Filters.Direction)
}

func TestWalletHistoryMemoized(t *testing.T) {
	indexer := indexerSupporting(provider.OpWalletHistory)
	r := newTestResolver(indexer, nil, nil)

	req := WalletHistoryRequest{Address: "0xWallet", Chain: "eth"}
	_, err := r.WalletTransactions(context.Background(), req)
	require.NoError(t, err)
	_, err = r.WalletTransactions(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, indexer.walletCalls)
}

func TestWalletHistoryMemoEchoesRequestFilters(t *testing.T) {
	indexer := indexerSupporting(provider.OpWalletHistory)
	r := newTestResolver(indexer, nil, nil)

	first, err := r.WalletTransactions(context.Background(), WalletHistoryRequest{
		Address: "0xWallet", Chain: "eth", Direction: "in",
	})
	require.NoError(t, err)
	require.Equal(t, "in", first.Filters.Direction)

	second, err := r.WalletTransactions(context.Background(), WalletHistoryRequest{
		Address: "0xWallet", Chain: "eth", Direction: "out", StablecoinsOnly: true,
	})
	require.NoError(t, err)
	// The memo serves the fetch; the echo belongs to the current request.
	require.Equal(t, 1, indexer.walletCalls)
	require.Equal(t, "out", second.Filters.Direction)
	require.True(t, second.Filters.StablecoinsOnly)
	// The first answer is not retroactively rewritten by the second request.
	require.Equal(t, "in", first.Filters.Direction)

	third, err := r.WalletTransactions(context.Background(), WalletHistoryRequest{
		Address: "0xWallet", Chain: "eth",
	})
	require.NoError(t, err)
	require.Nil(t, third.Filters)
}

func TestWalletHistoryRejectsNodeProvider(t *testing.T) {
	indexer := &fakeIndexer{kind: provider.KindNode, ops: map[provider.Operation]bool{}}
	r := newTestResolver(indexer, nil, nil)

	_, err := r.WalletTransactions(context.Background(), WalletHistoryRequest{
		Address: "0xWallet", Provider: "rpc",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "wallet history")
}

func TestMultiChainScanAggregatesAndSorts(t *testing.T) {
	newer := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	indexer := indexerSupporting(
		provider.OpWalletHistory, provider.OpTokenTransfers, provider.OpMultiChainScan)
	indexer.wallet = func(chainID string) ([]lenscommon.NormalizedTransaction, error) {
		switch chainID {
		case networks.EthereumMainnet.ID:
			return []lenscommon.NormalizedTransaction{nativeTx("0xold", "1", older)}, nil
		case networks.PolygonMainnet.ID:
			return []lenscommon.NormalizedTransaction{nativeTx("0xnew", "2", newer)}, nil
		case networks.BSCMainnet.ID:
			return nil, fmt.Errorf("rate limited")
		}
		return nil, nil
	}

	enr := &fakeEnricher{prices: map[string]float64{
		networks.EthereumMainnet.WrappedNative: 3000,
		networks.PolygonMainnet.WrappedNative:  0.7,
	}}
	r := newTestResolver(indexer, enr, nil)

	result, err := r.WalletTransactions(context.Background(), WalletHistoryRequest{
		Address: "0xWallet", Chain: "all",
	})
	require.NoError(t, err)
	require.Equal(t, "Multi-Chain", result.Chain)
	// One failing chain never fails the scan.
	require.Len(t, result.Transactions, 2)
	// Newest first across chains.
	require.Equal(t, "0xnew", result.Transactions[0].Hash)
	require.Equal(t, "Polygon", result.Transactions[0].DetectedChain)
	require.Equal(t, "Ethereum", result.Transactions[1].DetectedChain)
	// A quote per chain with activity, keyed by display name.
	require.InDelta(t, 3000, result.PriceMap["Ethereum"], 1e-9)
	require.InDelta(t, 0.7, result.PriceMap["Polygon"], 1e-9)
}

func TestHashSearchWalksChains(t *testing.T) {
	target := networks.HashSearchOrder[2]
	indexer := indexerSupporting(provider.OpTransactionLookup)
	indexer.byHash = func(hash, chainID string) (*lenscommon.NormalizedTransaction, error) {
		if chainID != target {
			return nil, provider.ErrNotFound
		}
		tx := nativeTx(hash, "5", time.Now().UTC())
		return &tx, nil
	}

	r := newTestResolver(indexer, nil, nil)
	result, err := r.TransactionByHash(context.Background(), TxLookupRequest{Hash: "0xfeed"})
	require.NoError(t, err)
	// The walk stops at the first hit.
	require.Equal(t, networks.HashSearchOrder[:3], indexer.hashChains)
	require.Equal(t, r.registry.DisplayName(target), result.DetectedChain)
	require.Equal(t, "moralis", result.Provider)
	require.Equal(t, "0xfeed", result.SearchedHash)
}

func TestHashSearchAbortsOnAuthError(t *testing.T) {
	indexer := indexerSupporting(provider.OpTransactionLookup)
	indexer.byHash = func(string, string) (*lenscommon.NormalizedTransaction, error) {
		return nil, &provider.UpstreamError{Provider: provider.KindMoralis, Message: "Invalid API Key"}
	}

	deep := &fakeDeep{}
	r := newTestResolver(indexer, nil, deep)
	_, err := r.TransactionByHash(context.Background(), TxLookupRequest{Hash: "0xfeed"})
	require.Error(t, err)
	// A bad key fails on every chain; the walk must stop after the first.
	require.Len(t, indexer.hashChains, 1)
	// The deep-search fallback still ran before giving up.
	require.True(t, deep.called)
}

func TestHashSearchAbortsOnMissingKey(t *testing.T) {
	indexer := indexerSupporting(provider.OpTransactionLookup)
	indexer.byHash = func(string, string) (*lenscommon.NormalizedTransaction, error) {
		return nil, fmt.Errorf("moralis: %w", provider.ErrMissingAPIKey)
	}

	deep := &fakeDeep{}
	r := newTestResolver(indexer, nil, deep)
	_, err := r.TransactionByHash(context.Background(), TxLookupRequest{Hash: "0xfeed"})
	require.Error(t, err)
	// A missing credential fails identically everywhere; one probe is enough.
	require.Len(t, indexer.hashChains, 1)
	// The keyless node fallback still gets its chance.
	require.True(t, deep.called)
}

func TestHashLookupFallsBackToDeepSearch(t *testing.T) {
	indexer := indexerSupporting(provider.OpTransactionLookup)

	found := nativeTx("0xfeed", "9", time.Now().UTC())
	found.Provider = "Public RPC"
	found.DetectedChain = "Fantom"
	found.ERC20Transfers = []lenscommon.TokenTransfer{}
	found.NFTTransfers = []lenscommon.NFTTransfer{}
	deep := &fakeDeep{tx: &found, chainID: networks.Fantom.ID}

	r := newTestResolver(indexer, nil, deep)
	result, err := r.TransactionByHash(context.Background(), TxLookupRequest{Hash: "0xfeed"})
	require.NoError(t, err)
	require.Equal(t, "Public RPC", result.Provider)
	require.Equal(t, "Fantom", result.DetectedChain)
	// Every chain in the indexer order was tried first.
	require.Len(t, indexer.hashChains, len(networks.HashSearchOrder))
}

func TestHashLookupEnrichment(t *testing.T) {
	indexer := indexerSupporting(provider.OpTransactionLookup)
	indexer.byHash = func(hash, chainID string) (*lenscommon.NormalizedTransaction, error) {
		if chainID != networks.EthereumMainnet.ID {
			return nil, provider.ErrNotFound
		}
		tx := nativeTx(hash, "0", time.Now().UTC())
		return &tx, nil
	}

	transfer := usdcTransfer("0xfeed", "2500000")
	enr := &fakeEnricher{
		erc20: []lenscommon.TokenTransfer{transfer},
		prices: map[string]float64{
			networks.EthereumMainnet.WrappedNative: 3000,
			transfer.Address:                       1.0002,
		},
	}
	r := newTestResolver(indexer, enr, nil)
	r.internals = &fakeInternals{internals: []lenscommon.InternalTransfer{
		{From: "0xa", To: "0xb", Value: "77"},
	}}

	result, err := r.TransactionByHash(context.Background(), TxLookupRequest{
		Hash: "0xfeed", Chain: "ethereum",
	})
	require.NoError(t, err)
	require.Len(t, result.ERC20Transfers, 1)
	require.Len(t, result.InternalTransfers, 1)
	require.InDelta(t, 3000, result.NativePrice, 1e-9)
	require.InDelta(t, 1.0002, result.TokenPrice, 1e-9)
}

func TestHashLookupViaNodeProviderPinnedChain(t *testing.T) {
	found := nativeTx("0xfeed", "3", time.Now().UTC())
	found.Provider = "Public RPC"
	found.ERC20Transfers = []lenscommon.TokenTransfer{}
	found.NFTTransfers = []lenscommon.NFTTransfer{}
	deep := &fakeDeep{tx: &found, chainID: networks.ArbitrumOne.ID}

	r := newTestResolver(nil, nil, deep)
	result, err := r.TransactionByHash(context.Background(), TxLookupRequest{
		Hash: "0xfeed", Chain: "arbitrum", Provider: "rpc",
	})
	require.NoError(t, err)
	require.Equal(t, "Public RPC", result.Provider)
	require.Equal(t, "Arbitrum", result.DetectedChain)
}

func TestTokenTransfersOperation(t *testing.T) {
	indexer := indexerSupporting(provider.OpTokenTransfers)
	indexer.tokens = func(chainID string) ([]lenscommon.TokenTransfer, error) {
		require.Equal(t, networks.PolygonMainnet.ID, chainID)
		return []lenscommon.TokenTransfer{usdcTransfer("0xaaa", "1")}, nil
	}

	r := newTestResolver(indexer, nil, nil)
	result, err := r.TokenTransfers(context.Background(), TokenTransfersRequest{
		Address: "0xWallet", Chain: "polygon",
	})
	require.NoError(t, err)
	require.Equal(t, "Polygon", result.Chain)
	require.Len(t, result.Transfers, 1)

	_, err = r.TokenTransfers(context.Background(), TokenTransfersRequest{Address: "0xWallet", Chain: "all"})
	require.Error(t, err)
}
