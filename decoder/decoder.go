// Package decoder reconstructs token and NFT transfers from a transaction
// receipt's raw event logs. It exists for providers that return no enriched
// transfer data (raw nodes) and as a backstop for indexers that missed some.
package decoder

import (
	"context"
	"math/big"
	"strconv"
	"sync"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	lenscommon "github.com/tranvictor/chainlens/common"
)

// Event signatures matched against topics[0].
var (
	// keccak256("Transfer(address,address,uint256)"), shared by ERC-20 and
	// ERC-721. The topic count disambiguates: 3 topics is fungible, 4 is an
	// NFT with an indexed token id.
	TransferTopic = ethereum.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	// keccak256("TransferSingle(address,address,address,uint256,uint256)")
	ERC1155SingleTopic = ethereum.HexToHash("0xc3d58168c5ae7397731d063d5bbf3d657854427343f4c083240f7aacaa2d0f62")
)

// Read-only function selectors for token metadata.
var (
	symbolSelector   = hexutil.MustDecode("0x95d89b41") // symbol()
	decimalsSelector = hexutil.MustDecode("0x313ce567") // decimals()
)

// ContractCaller issues read-only contract calls. reader.EthereumNode
// implements it, which lets the decoder fetch metadata from the same
// endpoint that served the receipt.
type ContractCaller interface {
	Call(ctx context.Context, to string, data []byte) ([]byte, error)
}

// TokenMetadata is the symbol/decimals pair looked up per token contract.
type TokenMetadata struct {
	Symbol   string
	Decimals string
}

var unknownToken = TokenMetadata{Symbol: "Unknown", Decimals: "18"}

type Decoder struct {
	caller ContractCaller
	logger *zap.Logger
}

func New(caller ContractCaller, logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{caller: caller, logger: logger}
}

// DecodeLogs walks a receipt's logs in order and reconstructs fungible and
// NFT transfers. Decoding is best effort by design: logs that don't match a
// known signature, or are malformed, are skipped without aborting the pass.
func (d *Decoder) DecodeLogs(ctx context.Context, logs []*types.Log) ([]lenscommon.TokenTransfer, []lenscommon.NFTTransfer) {
	erc20 := []lenscommon.TokenTransfer{}
	nft := []lenscommon.NFTTransfer{}

	// Metadata memo scoped to this single decode pass: a contract often
	// appears in several logs of one receipt.
	memo := map[string]TokenMetadata{}

	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 {
			continue
		}
		contract := log.Address.Hex()

		switch {
		case log.Topics[0] == TransferTopic && len(log.Topics) == 3:
			// ERC-20: Transfer(from indexed, to indexed, value) — the value
			// rides in the data payload.
			meta := d.tokenMetadata(ctx, memo, contract)
			erc20 = append(erc20, lenscommon.TokenTransfer{
				Address:       contract,
				FromAddress:   topicToAddress(log.Topics[1]),
				ToAddress:     topicToAddress(log.Topics[2]),
				Value:         bytesToDec(log.Data),
				TokenSymbol:   meta.Symbol,
				TokenName:     meta.Symbol,
				TokenDecimals: meta.Decimals,
			})

		case log.Topics[0] == TransferTopic && len(log.Topics) == 4:
			// ERC-721: the third indexed argument is the token id, which can
			// exceed 64 bits and must stay a decimal string.
			meta := d.tokenMetadata(ctx, memo, contract)
			nft = append(nft, lenscommon.NFTTransfer{
				TokenAddress: contract,
				FromAddress:  topicToAddress(log.Topics[1]),
				ToAddress:    topicToAddress(log.Topics[2]),
				TokenID:      topicToDec(log.Topics[3]),
				Amount:       "1",
				ContractType: lenscommon.ContractTypeERC721,
				TokenSymbol:  meta.Symbol,
			})

		case log.Topics[0] == ERC1155SingleTopic && len(log.Topics) == 4:
			// TransferSingle(operator indexed, from indexed, to indexed,
			// id, value) — operator is ignored, data carries id then value
			// as two 32-byte words.
			if len(log.Data) < 64 {
				d.logger.Debug("skipping malformed erc1155 log",
					zap.String("contract", contract),
					zap.Int("data_len", len(log.Data)))
				continue
			}
			nft = append(nft, lenscommon.NFTTransfer{
				TokenAddress: contract,
				FromAddress:  topicToAddress(log.Topics[2]),
				ToAddress:    topicToAddress(log.Topics[3]),
				TokenID:      bytesToDec(log.Data[:32]),
				Amount:       bytesToDec(log.Data[32:64]),
				ContractType: lenscommon.ContractTypeERC1155,
			})
		}
	}
	return erc20, nft
}

// tokenMetadata resolves symbol/decimals for a contract, memoized for the
// duration of one decode pass. Both calls run concurrently; any failure
// falls back to "Unknown"/18.
func (d *Decoder) tokenMetadata(ctx context.Context, memo map[string]TokenMetadata, contract string) TokenMetadata {
	if meta, found := memo[contract]; found {
		return meta
	}
	meta := unknownToken
	if d.caller != nil {
		var symbolRaw, decimalsRaw []byte
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			symbolRaw, _ = d.caller.Call(ctx, contract, symbolSelector)
		}()
		go func() {
			defer wg.Done()
			decimalsRaw, _ = d.caller.Call(ctx, contract, decimalsSelector)
		}()
		wg.Wait()

		if symbol := decodeSymbol(symbolRaw); symbol != "" {
			meta.Symbol = symbol
		}
		if decimals := decodeDecimals(decimalsRaw); decimals != "" {
			meta.Decimals = decimals
		}
	}
	memo[contract] = meta
	return meta
}

// decodeSymbol extracts the printable-ASCII subset of an ABI-encoded (or
// bytes32-style) string return, then restricts it to token-symbol characters.
// Returns "" when nothing usable remains.
func decodeSymbol(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	printable := make([]byte, 0, len(data))
	for _, b := range data {
		if b >= 32 && b <= 126 {
			printable = append(printable, b)
		}
	}
	clean := make([]byte, 0, len(printable))
	for _, b := range printable {
		if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '$' {
			clean = append(clean, b)
		}
	}
	return string(clean)
}

func decodeDecimals(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	value := big.NewInt(0).SetBytes(data)
	// A decimals() answer beyond 255 is garbage from a non-token contract.
	if !value.IsUint64() || value.Uint64() > 255 {
		return ""
	}
	return strconv.FormatUint(value.Uint64(), 10)
}

func topicToAddress(topic ethereum.Hash) string {
	// The address is the low 20 bytes of the 32-byte topic.
	return ethereum.BytesToAddress(topic.Bytes()[12:]).Hex()
}

func topicToDec(topic ethereum.Hash) string {
	return big.NewInt(0).SetBytes(topic.Bytes()).String()
}

func bytesToDec(data []byte) string {
	if len(data) == 0 {
		return "0"
	}
	return big.NewInt(0).SetBytes(data).String()
}
