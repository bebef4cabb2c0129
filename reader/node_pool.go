package reader

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
)

// ErrTxNotFound means no endpoint in the pool knows the hash. It is a
// legitimate empty answer for the pool's chain, not a transport failure.
var ErrTxNotFound = errors.New("transaction not found on any node")

// NodePool tries a prioritized list of endpoints for one chain. Unlike a
// parallel fan-out, endpoints are tried strictly in order: "not found" and
// timeouts both mean "ask the next node", and the walk short-circuits on the
// first node that answers.
type NodePool struct {
	chainID string
	nodes   []*EthereumNode
}

func NewNodePool(chainID string, urls []string) *NodePool {
	nodes := make([]*EthereumNode, 0, len(urls))
	for i, url := range urls {
		nodes = append(nodes, NewEthereumNode(fmt.Sprintf("%s-node-%d", chainID, i), url))
	}
	return &NodePool{chainID: chainID, nodes: nodes}
}

func (p *NodePool) ChainID() string { return p.chainID }

// FindTransaction resolves a hash into its transaction, receipt and block
// header, all fetched from the same endpoint. The receipt and header are
// nil for pending transactions. The answering node is returned so callers
// can reuse it for follow-up contract calls.
func (p *NodePool) FindTransaction(ctx context.Context, hash string) (*RPCTransaction, *types.Receipt, *types.Header, *EthereumNode, error) {
	errs := []error{}
	for _, node := range p.nodes {
		tx, err := node.TransactionByHash(ctx, hash)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if tx == nil {
			// This node has no record of the hash; the next one might.
			continue
		}

		var receipt *types.Receipt
		var header *types.Header
		if !tx.Pending() {
			receipt, err = node.TransactionReceipt(ctx, hash)
			if err != nil {
				// A node that knows the tx but not the receipt is likely
				// lagging; move on rather than return half an answer.
				errs = append(errs, err)
				continue
			}
			header, err = node.HeaderByNumber(ctx, tx.BlockNumber.ToInt())
			if err != nil {
				errs = append(errs, err)
				continue
			}
		}
		return tx, receipt, header, node, nil
	}

	if len(errs) > 0 {
		return nil, nil, nil, nil, fmt.Errorf("%w: %s", ErrTxNotFound, errors.Join(errs...))
	}
	return nil, nil, nil, nil, ErrTxNotFound
}
