package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	lenscommon "github.com/tranvictor/chainlens/common"
	"github.com/tranvictor/chainlens/decoder"
	"github.com/tranvictor/chainlens/networks"
	"github.com/tranvictor/chainlens/reader"
)

// nodeProviderLabel is the provenance tag for answers served by raw nodes.
const nodeProviderLabel = "Public RPC"

// Node is the direct-node adapter: no API key, no indexer, just the public
// JSON-RPC endpoints from the chain registry. It can only answer questions a
// single node can answer, which rules out wallet history.
type Node struct {
	registry *networks.Registry
	logger   *zap.Logger

	mu    sync.Mutex
	pools map[string]*reader.NodePool
}

func NewNode(registry *networks.Registry, logger *zap.Logger) *Node {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Node{
		registry: registry,
		logger:   logger,
		pools:    map[string]*reader.NodePool{},
	}
}

func (n *Node) Kind() Kind { return KindNode }

func (n *Node) Supports(op Operation) bool {
	return op == OpTransactionLookup
}

func (n *Node) pool(chainID string) *reader.NodePool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if p, found := n.pools[chainID]; found {
		return p
	}
	p := reader.NewNodePool(chainID, n.registry.Endpoints(chainID))
	n.pools[chainID] = p
	return p
}

// WalletTransactions is unsupported: a raw node cannot enumerate an
// address's history without an index.
func (n *Node) WalletTransactions(ctx context.Context, q WalletQuery) ([]lenscommon.NormalizedTransaction, error) {
	return nil, fmt.Errorf("wallet history needs an indexer, use moralis or etherscan: %w", ErrUnsupported)
}

func (n *Node) TokenTransfers(ctx context.Context, address, chainID string, limit int) ([]lenscommon.TokenTransfer, error) {
	return nil, fmt.Errorf("token transfer history needs an indexer, use moralis: %w", ErrUnsupported)
}

// TransactionByHash resolves a hash against one chain's endpoint pool and
// reconstructs the transfer lists from the receipt logs via the decoder,
// using the same node that served the receipt for metadata calls.
func (n *Node) TransactionByHash(ctx context.Context, hash, chainID string) (*lenscommon.NormalizedTransaction, error) {
	endpoints := n.registry.Endpoints(chainID)
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no rpc endpoints registered for chain %s: %w", chainID, ErrNotFound)
	}

	raw, receipt, header, node, err := n.pool(chainID).FindTransaction(ctx, hash)
	if err != nil {
		if errors.Is(err, reader.ErrTxNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	tx := &lenscommon.NormalizedTransaction{
		Hash:        raw.Hash.Hex(),
		Nonce:       strconv.FormatUint(uint64(raw.Nonce), 10),
		FromAddress: raw.From.Hex(),
		Value:       hexBigToDec(raw.Value),
		Gas:         strconv.FormatUint(uint64(raw.Gas), 10),
		Input:       raw.Input.String(),
		// A node answer defaults to success; the receipt below overrides.
		ReceiptStatus: lenscommon.StatusSuccess,
		TokenSymbol:   "Native",
		TokenDecimals: "18",
		Provider:      nodeProviderLabel,
		DetectedChain: n.registry.DisplayName(chainID),
	}
	if raw.To != nil {
		tx.ToAddress = raw.To.Hex()
	}
	if raw.GasPrice != nil {
		tx.GasPrice = hexBigToDec(raw.GasPrice)
	}
	if raw.TransactionIndex != nil {
		tx.TransactionIndex = strconv.FormatUint(uint64(*raw.TransactionIndex), 10)
	}
	if raw.BlockNumber != nil {
		tx.BlockNumber = hexBigToDec(raw.BlockNumber)
	}
	if raw.BlockHash != nil {
		tx.BlockHash = raw.BlockHash.Hex()
	}

	if header != nil {
		tx.BlockTimestamp = time.Unix(int64(header.Time), 0).UTC()
	} else {
		// Pending transactions have no block yet.
		tx.BlockTimestamp = time.Now().UTC()
	}

	if receipt != nil {
		if receipt.Status == 0 {
			tx.ReceiptStatus = lenscommon.StatusFailed
		}
		tx.ReceiptGasUsed = strconv.FormatUint(receipt.GasUsed, 10)
		tx.ReceiptCumulativeGasUsed = strconv.FormatUint(receipt.CumulativeGasUsed, 10)
		if receipt.ContractAddress != (ethcommon.Address{}) {
			tx.ReceiptContractAddress = receipt.ContractAddress.Hex()
		}
		erc20, nft := decoder.New(node, n.logger).DecodeLogs(ctx, receipt.Logs)
		for i := range erc20 {
			erc20[i].TransactionHash = tx.Hash
		}
		tx.ERC20Transfers = erc20
		tx.NFTTransfers = nft
	}
	return tx, nil
}

// FindTransaction deep-searches the hash across every chain the direct-node
// provider has endpoints for, in priority order. Returns the transaction
// and the chain id it was found on.
func (n *Node) FindTransaction(ctx context.Context, hash string) (*lenscommon.NormalizedTransaction, string, error) {
	for _, chainID := range networks.DeepSearchOrder {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		tx, err := n.TransactionByHash(ctx, hash, chainID)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				n.logger.Debug("deep search chain failed",
					zap.String("chain", chainID), zap.Error(err))
			}
			continue
		}
		return tx, chainID, nil
	}
	return nil, "", ErrNotFound
}

func hexBigToDec(v *hexutil.Big) string {
	if v == nil {
		return "0"
	}
	return v.ToInt().String()
}
