// Package resolver orchestrates the provider adapters into the three
// user-facing operations: wallet history (single or all chains), token
// transfer history, and transaction lookup by hash with cross-chain search.
package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	lenscommon "github.com/tranvictor/chainlens/common"
	"github.com/tranvictor/chainlens/networks"
	"github.com/tranvictor/chainlens/provider"
)

const defaultWalletLimit = 50

// enricher supplies the best-effort extras attached to a resolved
// transaction. Satisfied by *provider.Moralis.
type enricher interface {
	TransactionTokenTransfers(ctx context.Context, hash, chainID string) []lenscommon.TokenTransfer
	TransactionNFTTransfers(ctx context.Context, hash, chainID string) []lenscommon.NFTTransfer
	TokenPrice(ctx context.Context, contract, chainID string) float64
}

// internalSource supplies internal transaction indexes. Satisfied by
// *provider.Etherscan.
type internalSource interface {
	InternalTransfers(ctx context.Context, hash, chainID string) []lenscommon.InternalTransfer
}

// deepSearcher is the last-resort hash search across raw nodes. Satisfied
// by *provider.Node.
type deepSearcher interface {
	TransactionByHash(ctx context.Context, hash, chainID string) (*lenscommon.NormalizedTransaction, error)
	FindTransaction(ctx context.Context, hash string) (*lenscommon.NormalizedTransaction, string, error)
}

type Resolver struct {
	registry  *networks.Registry
	providers map[provider.Kind]provider.Provider
	enricher  enricher
	internals internalSource
	deep      deepSearcher
	memo      *memo
	logger    *zap.Logger
}

// New wires the three concrete adapters into a resolver. The registry
// decides which chains exist; the resolver never hardcodes one.
func New(registry *networks.Registry, moralis *provider.Moralis, etherscan *provider.Etherscan, node *provider.Node, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		registry: registry,
		providers: map[provider.Kind]provider.Provider{
			provider.KindMoralis:   moralis,
			provider.KindEtherscan: etherscan,
			provider.KindNode:      node,
		},
		enricher:  moralis,
		internals: etherscan,
		deep:      node,
		memo:      newMemo(memoTTL),
		logger:    logger,
	}
}

// Filters echoes the post-fetch filter parameters back to the caller so a
// result is self-describing.
type Filters struct {
	FromDate        string `json:"from,omitempty"`
	ToDate          string `json:"to,omitempty"`
	Direction       string `json:"direction,omitempty"`
	StablecoinsOnly bool   `json:"stablecoins_only,omitempty"`
}

func (f Filters) empty() bool {
	return f == Filters{}
}

// WalletHistoryRequest asks for an address's transaction history. Chain
// accepts an alias, a canonical id, or "all" for a multi-chain scan.
type WalletHistoryRequest struct {
	Address         string
	Chain           string
	Provider        string
	Limit           int
	FromDate        string
	ToDate          string
	Direction       string
	StablecoinsOnly bool
}

type WalletHistoryResult struct {
	Transactions    []lenscommon.NormalizedTransaction `json:"transactions"`
	Chain           string                             `json:"_chain"`
	SearchedAddress string                             `json:"_searchedAddress"`
	NativePrice     float64                            `json:"_nativePrice,omitempty"`
	PriceMap        map[string]float64                 `json:"_priceMap,omitempty"`
	Filters         *Filters                           `json:"_filters,omitempty"`
}

// WalletTransactions fetches and merges an address's native and token
// activity. With chain "all" it fans out over the multi-chain scan list.
func (r *Resolver) WalletTransactions(ctx context.Context, req WalletHistoryRequest) (*WalletHistoryResult, error) {
	kind, err := provider.ParseKind(req.Provider)
	if err != nil {
		return nil, err
	}
	chainID := r.registry.Normalize(req.Chain)
	limit := req.Limit
	if limit <= 0 {
		limit = defaultWalletLimit
	}

	log := r.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("address", req.Address),
		zap.String("chain", chainID),
		zap.String("provider", string(kind)))

	filters := Filters{
		FromDate:        req.FromDate,
		ToDate:          req.ToDate,
		Direction:       req.Direction,
		StablecoinsOnly: req.StablecoinsOnly,
	}

	// Direction and stablecoin flags never reach a provider, so they stay out
	// of the memo key; results memoize without a filter echo and the current
	// request's echo is attached on the way out.
	key := fmt.Sprintf("wallet|%s|%s|%s|%d|%s|%s",
		strings.ToLower(req.Address), chainID, kind, limit, req.FromDate, req.ToDate)
	if cached, found := r.memo.Get(key); found {
		log.Debug("wallet history served from memo")
		return withFilters(cached.(*WalletHistoryResult), filters), nil
	}

	if chainID == "all" {
		result, err := r.multiChainScan(ctx, log, kind, req.Address, limit, req.FromDate, req.ToDate)
		if err != nil {
			return nil, err
		}
		r.memo.Set(key, result)
		return withFilters(result, filters), nil
	}

	p := r.providers[kind]
	if !p.Supports(provider.OpWalletHistory) {
		return nil, fmt.Errorf("provider %s cannot serve wallet history", kind)
	}

	query := provider.WalletQuery{
		Address:  req.Address,
		ChainID:  chainID,
		Limit:    limit,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
	}
	native, err := p.WalletTransactions(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("wallet history on %s: %w", r.registry.DisplayName(chainID), err)
	}

	tokens := []lenscommon.TokenTransfer{}
	if p.Supports(provider.OpTokenTransfers) {
		tokens, err = p.TokenTransfers(ctx, req.Address, chainID, limit)
		if err != nil {
			return nil, fmt.Errorf("token transfers on %s: %w", r.registry.DisplayName(chainID), err)
		}
	}

	merged := Merge(native, tokens)
	sortByTimestampDesc(merged)
	log.Info("wallet history resolved",
		zap.Int("native", len(native)),
		zap.Int("tokens", len(tokens)),
		zap.Int("merged", len(merged)))

	result := &WalletHistoryResult{
		Transactions:    merged,
		Chain:           r.registry.DisplayName(chainID),
		SearchedAddress: req.Address,
		NativePrice:     r.nativePrice(ctx, chainID),
	}
	r.memo.Set(key, result)
	return withFilters(result, filters), nil
}

// withFilters returns a shallow copy of result carrying the current
// request's filter echo, leaving the memoized value untouched.
func withFilters(result *WalletHistoryResult, f Filters) *WalletHistoryResult {
	out := *result
	out.Filters = nil
	if !f.empty() {
		out.Filters = &f
	}
	return &out
}

type chainScanOutcome struct {
	chainID string
	txs     []lenscommon.NormalizedTransaction
}

// multiChainScan runs one merged wallet fetch per scan-list chain
// concurrently. A failing chain contributes nothing instead of failing the
// scan; the aggregate is sorted into one timeline.
func (r *Resolver) multiChainScan(ctx context.Context, log *zap.Logger, kind provider.Kind, address string, limit int, fromDate, toDate string) (*WalletHistoryResult, error) {
	p := r.providers[kind]
	if !p.Supports(provider.OpMultiChainScan) {
		return nil, fmt.Errorf("provider %s cannot scan all chains, use moralis", kind)
	}

	outcomes := make(chan chainScanOutcome, len(networks.ScanList))
	for _, chainID := range networks.ScanList {
		go func(chainID string) {
			txs, err := r.scanChain(ctx, p, address, chainID, limit, fromDate, toDate)
			if err != nil {
				log.Warn("chain skipped during scan",
					zap.String("scanned_chain", chainID), zap.Error(err))
				outcomes <- chainScanOutcome{chainID: chainID}
				return
			}
			outcomes <- chainScanOutcome{chainID: chainID, txs: txs}
		}(chainID)
	}

	aggregate := []lenscommon.NormalizedTransaction{}
	active := map[string]bool{}
	for range networks.ScanList {
		outcome := <-outcomes
		if len(outcome.txs) == 0 {
			continue
		}
		name := r.registry.DisplayName(outcome.chainID)
		for i := range outcome.txs {
			outcome.txs[i].DetectedChain = name
		}
		aggregate = append(aggregate, outcome.txs...)
		active[outcome.chainID] = true
	}
	sortByTimestampDesc(aggregate)

	// One native quote per chain that actually produced activity.
	priceMap := map[string]float64{}
	for chainID := range active {
		if price := r.nativePrice(ctx, chainID); price > 0 {
			priceMap[r.registry.DisplayName(chainID)] = price
		}
	}

	log.Info("multi-chain scan resolved",
		zap.Int("chains_with_activity", len(active)),
		zap.Int("transactions", len(aggregate)))

	result := &WalletHistoryResult{
		Transactions:    aggregate,
		Chain:           "Multi-Chain",
		SearchedAddress: address,
	}
	if len(priceMap) > 0 {
		result.PriceMap = priceMap
	}
	return result, nil
}

func (r *Resolver) scanChain(ctx context.Context, p provider.Provider, address, chainID string, limit int, fromDate, toDate string) ([]lenscommon.NormalizedTransaction, error) {
	native, err := p.WalletTransactions(ctx, provider.WalletQuery{
		Address:  address,
		ChainID:  chainID,
		Limit:    limit,
		FromDate: fromDate,
		ToDate:   toDate,
	})
	if err != nil {
		return nil, err
	}
	tokens := []lenscommon.TokenTransfer{}
	if p.Supports(provider.OpTokenTransfers) {
		tokens, err = p.TokenTransfers(ctx, address, chainID, limit)
		if err != nil {
			return nil, err
		}
	}
	return Merge(native, tokens), nil
}

// TokenTransfersRequest asks for an address's ERC-20 transfer history on
// one chain.
type TokenTransfersRequest struct {
	Address string
	Chain   string
	Limit   int
}

type TokenTransfersResult struct {
	Transfers       []lenscommon.TokenTransfer `json:"transfers"`
	Chain           string                     `json:"_chain"`
	SearchedAddress string                     `json:"_searchedAddress"`
}

// TokenTransfers lists an address's token movements. Only the hosted
// indexer serves this operation.
func (r *Resolver) TokenTransfers(ctx context.Context, req TokenTransfersRequest) (*TokenTransfersResult, error) {
	chainID := r.registry.Normalize(req.Chain)
	if chainID == "all" {
		return nil, fmt.Errorf("token transfer history needs a single chain")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	p := r.providers[provider.KindMoralis]
	transfers, err := p.TokenTransfers(ctx, req.Address, chainID, limit)
	if err != nil {
		return nil, fmt.Errorf("token transfers on %s: %w", r.registry.DisplayName(chainID), err)
	}
	return &TokenTransfersResult{
		Transfers:       transfers,
		Chain:           r.registry.DisplayName(chainID),
		SearchedAddress: req.Address,
	}, nil
}

// nativePrice quotes the chain's native coin in USD via its wrapped
// representation. No wrapped asset or no quote both mean 0; pricing never
// fails a request.
func (r *Resolver) nativePrice(ctx context.Context, chainID string) float64 {
	wrapped := r.registry.WrappedNative(chainID)
	if wrapped == "" {
		return 0
	}
	return r.enricher.TokenPrice(ctx, wrapped, chainID)
}

func sortByTimestampDesc(txs []lenscommon.NormalizedTransaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].BlockTimestamp.After(txs[j].BlockTimestamp)
	})
}
