package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	lenscommon "github.com/tranvictor/chainlens/common"
	"github.com/tranvictor/chainlens/networks"
	"github.com/tranvictor/chainlens/provider"
)

// TxLookupRequest asks for one transaction by hash. Chain and Provider are
// both optional; omitting the chain triggers a cross-chain search.
type TxLookupRequest struct {
	Hash     string
	Chain    string
	Provider string
}

// SingleTransactionResult is the resolved transaction plus its enrichment.
type SingleTransactionResult struct {
	lenscommon.NormalizedTransaction

	SearchedHash string  `json:"_searchedAddress"`
	NativePrice  float64 `json:"_nativePrice,omitempty"`
	TokenPrice   float64 `json:"_tokenPrice,omitempty"`
}

// TransactionByHash resolves a hash in up to three stages: the chosen
// indexed provider on the given chain (or walking the search order when no
// chain was given), then a deep search across raw nodes, then failure. An
// authentication error aborts the chain walk immediately: retrying a bad
// key on fourteen more chains cannot succeed.
func (r *Resolver) TransactionByHash(ctx context.Context, req TxLookupRequest) (*SingleTransactionResult, error) {
	kind, err := provider.ParseKind(req.Provider)
	if err != nil {
		return nil, err
	}
	chainID := ""
	if req.Chain != "" {
		chainID = r.registry.Normalize(req.Chain)
	}

	log := r.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("hash", req.Hash),
		zap.String("provider", string(kind)))

	key := fmt.Sprintf("tx|%s|%s|%s", req.Hash, chainID, kind)
	if cached, found := r.memo.Get(key); found {
		log.Debug("transaction served from memo")
		return cached.(*SingleTransactionResult), nil
	}

	var tx *lenscommon.NormalizedTransaction
	var foundChain string

	if kind == provider.KindNode {
		tx, foundChain = r.lookupViaNodes(ctx, log, req.Hash, chainID)
	} else {
		tx, foundChain = r.lookupViaIndexer(ctx, log, kind, req.Hash, chainID)
		if tx == nil {
			// Indexers exhausted; raw nodes are the last resort.
			log.Info("falling back to deep search across raw nodes")
			tx, foundChain = r.lookupViaNodes(ctx, log, req.Hash, "")
		}
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction %s not found on any chain", req.Hash)
	}

	r.enrich(ctx, tx, req.Hash, foundChain)
	if tx.Provider == "" {
		tx.Provider = string(kind)
	}
	if tx.DetectedChain == "" {
		tx.DetectedChain = r.registry.DisplayName(foundChain)
	}
	log.Info("transaction resolved",
		zap.String("detected_chain", tx.DetectedChain),
		zap.String("via", tx.Provider))

	result := &SingleTransactionResult{
		NormalizedTransaction: *tx,
		SearchedHash:          req.Hash,
		NativePrice:           r.nativePrice(ctx, foundChain),
	}
	if len(tx.ERC20Transfers) > 0 {
		result.TokenPrice = r.enricher.TokenPrice(ctx, tx.ERC20Transfers[0].Address, foundChain)
	}
	r.memo.Set(key, result)
	return result, nil
}

// lookupViaIndexer asks one indexed provider for the hash, either on the
// pinned chain or walking the priority order until a hit.
func (r *Resolver) lookupViaIndexer(ctx context.Context, log *zap.Logger, kind provider.Kind, hash, chainID string) (*lenscommon.NormalizedTransaction, string) {
	p := r.providers[kind]

	if chainID != "" {
		tx, err := p.TransactionByHash(ctx, hash, chainID)
		if err != nil {
			log.Debug("pinned chain lookup failed",
				zap.String("chain", chainID), zap.Error(err))
			return nil, ""
		}
		return tx, chainID
	}

	for _, candidate := range networks.HashSearchOrder {
		if ctx.Err() != nil {
			return nil, ""
		}
		tx, err := p.TransactionByHash(ctx, hash, candidate)
		if err != nil {
			if errors.Is(err, provider.ErrMissingAPIKey) {
				// A key that is absent on one chain is absent on all of them.
				log.Warn("chain search skipped, provider credential missing", zap.Error(err))
				return nil, ""
			}
			if provider.IsAuthError(err) {
				log.Warn("chain search aborted on credential rejection",
					zap.String("chain", candidate), zap.Error(err))
				return nil, ""
			}
			continue
		}
		return tx, candidate
	}
	return nil, ""
}

func (r *Resolver) lookupViaNodes(ctx context.Context, log *zap.Logger, hash, chainID string) (*lenscommon.NormalizedTransaction, string) {
	if chainID != "" {
		tx, err := r.deep.TransactionByHash(ctx, hash, chainID)
		if err != nil {
			log.Debug("node lookup failed", zap.String("chain", chainID), zap.Error(err))
			return nil, ""
		}
		return tx, chainID
	}
	tx, foundChain, err := r.deep.FindTransaction(ctx, hash)
	if err != nil {
		log.Debug("deep search exhausted", zap.Error(err))
		return nil, ""
	}
	return tx, foundChain
}

// enrich attaches token, NFT and internal transfers that the resolving
// provider did not already supply. All three sources are best effort; a
// nil list means "never fetched" while an empty one means "fetched, none".
func (r *Resolver) enrich(ctx context.Context, tx *lenscommon.NormalizedTransaction, hash, chainID string) {
	if tx.ERC20Transfers == nil {
		tx.ERC20Transfers = r.enricher.TransactionTokenTransfers(ctx, hash, chainID)
	}
	if tx.NFTTransfers == nil {
		tx.NFTTransfers = r.enricher.TransactionNFTTransfers(ctx, hash, chainID)
	}
	if tx.InternalTransfers == nil {
		if internals := r.internals.InternalTransfers(ctx, hash, chainID); len(internals) > 0 {
			tx.InternalTransfers = internals
		}
	}
}
