package reader

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Timeout bounds every single RPC call. A node that cannot answer within it
// is treated the same as a node that has no answer.
const Timeout time.Duration = 6 * time.Second

// RPCTransaction is the raw eth_getTransactionByHash payload. It keeps the
// node's hex encodings so callers decide how to normalize them.
type RPCTransaction struct {
	Hash             common.Hash     `json:"hash"`
	Nonce            hexutil.Uint64  `json:"nonce"`
	From             common.Address  `json:"from"`
	To               *common.Address `json:"to"`
	Value            *hexutil.Big    `json:"value"`
	Gas              hexutil.Uint64  `json:"gas"`
	GasPrice         *hexutil.Big    `json:"gasPrice"`
	Input            hexutil.Bytes   `json:"input"`
	BlockNumber      *hexutil.Big    `json:"blockNumber"`
	BlockHash        *common.Hash    `json:"blockHash"`
	TransactionIndex *hexutil.Uint64 `json:"transactionIndex"`
}

// Pending reports whether the transaction has not been mined yet.
func (tx *RPCTransaction) Pending() bool {
	return tx.BlockNumber == nil
}

// EthereumNode is a lazily-dialed connection to one JSON-RPC endpoint.
type EthereumNode struct {
	name      string
	url       string
	client    *rpc.Client
	ethClient *ethclient.Client
	mu        sync.Mutex
}

func NewEthereumNode(name, url string) *EthereumNode {
	return &EthereumNode{
		name: name,
		url:  url,
	}
}

func (n *EthereumNode) Name() string { return n.name }
func (n *EthereumNode) URL() string  { return n.url }

func (n *EthereumNode) initConnection() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.client != nil {
		return nil
	}
	client, err := rpc.Dial(n.url)
	if err != nil {
		return fmt.Errorf("couldn't connect to %s: %w", n.name, err)
	}
	n.client = client
	n.ethClient = ethclient.NewClient(client)
	return nil
}

func (n *EthereumNode) rpcClient() (*rpc.Client, error) {
	if n.client != nil {
		return n.client, nil
	}
	err := n.initConnection()
	return n.client, err
}

func (n *EthereumNode) ethCli() (*ethclient.Client, error) {
	if n.ethClient != nil {
		return n.ethClient, nil
	}
	err := n.initConnection()
	return n.ethClient, err
}

// TransactionByHash returns nil without error when the node does not know
// the hash, so callers can fail over to the next endpoint.
func (n *EthereumNode) TransactionByHash(ctx context.Context, txHash string) (*RPCTransaction, error) {
	cli, err := n.rpcClient()
	if err != nil {
		return nil, err
	}
	timeout, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	var tx *RPCTransaction
	err = cli.CallContext(timeout, &tx, "eth_getTransactionByHash", common.HexToHash(txHash))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.name, err)
	}
	return tx, nil
}

func (n *EthereumNode) TransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	ethcli, err := n.ethCli()
	if err != nil {
		return nil, err
	}
	timeout, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()
	return ethcli.TransactionReceipt(timeout, common.HexToHash(txHash))
}

func (n *EthereumNode) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	ethcli, err := n.ethCli()
	if err != nil {
		return nil, err
	}
	timeout, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()
	return ethcli.HeaderByNumber(timeout, number)
}

// Call issues a read-only eth_call against a contract at the latest block.
func (n *EthereumNode) Call(ctx context.Context, to string, data []byte) ([]byte, error) {
	cli, err := n.rpcClient()
	if err != nil {
		return nil, err
	}
	timeout, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	var result hexutil.Bytes
	arg := map[string]interface{}{
		"to":   common.HexToAddress(to),
		"data": hexutil.Bytes(data),
	}
	err = cli.CallContext(timeout, &result, "eth_call", arg, "latest")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.name, err)
	}
	return result, nil
}
