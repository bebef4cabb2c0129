package decoder

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"testing"

	ethereum "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers metadata eth_calls from a canned table and counts how
// many calls each contract received. The decoder fetches symbol and decimals
// concurrently, so the counter is guarded.
type fakeCaller struct {
	symbols  map[string]string
	decimals map[string]uint8

	mu    sync.Mutex
	calls map[string]int
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{
		symbols:  map[string]string{},
		decimals: map[string]uint8{},
		calls:    map[string]int{},
	}
}

func (f *fakeCaller) Call(_ context.Context, to string, data []byte) ([]byte, error) {
	f.mu.Lock()
	f.calls[to]++
	f.mu.Unlock()
	switch hex.EncodeToString(data) {
	case "95d89b41": // symbol()
		symbol, found := f.symbols[to]
		if !found {
			return nil, fmt.Errorf("execution reverted")
		}
		// ABI string encoding: offset word, length word, padded payload.
		out := make([]byte, 96)
		out[31] = 0x20
		out[63] = byte(len(symbol))
		copy(out[64:], symbol)
		return out, nil
	case "313ce567": // decimals()
		d, found := f.decimals[to]
		if !found {
			return nil, fmt.Errorf("execution reverted")
		}
		out := make([]byte, 32)
		out[31] = d
		return out, nil
	}
	return nil, fmt.Errorf("unexpected call")
}

func addrTopic(addr string) ethereum.Hash {
	return ethereum.BytesToHash(ethereum.HexToAddress(addr).Bytes())
}

func word(v *big.Int) []byte {
	out := make([]byte, 32)
	v.FillBytes(out)
	return out
}

const (
	usdc  = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	alice = "0x1111111111111111111111111111111111111111"
	bob   = "0x2222222222222222222222222222222222222222"
)

func TestDecodeERC20Transfer(t *testing.T) {
	caller := newFakeCaller()
	caller.symbols[usdc] = "USDC"
	caller.decimals[usdc] = 6

	logs := []*types.Log{{
		Address: ethereum.HexToAddress(usdc),
		Topics:  []ethereum.Hash{TransferTopic, addrTopic(alice), addrTopic(bob)},
		Data:    word(big.NewInt(2500000)),
	}}

	erc20, nft := New(caller, nil).DecodeLogs(context.Background(), logs)
	require.Len(t, erc20, 1)
	require.Empty(t, nft)

	got := erc20[0]
	require.Equal(t, ethereum.HexToAddress(alice).Hex(), got.FromAddress)
	require.Equal(t, ethereum.HexToAddress(bob).Hex(), got.ToAddress)
	require.Equal(t, "2500000", got.Value)
	require.Equal(t, "USDC", got.TokenSymbol)
	require.Equal(t, "6", got.TokenDecimals)
}

func TestDecodeERC721Transfer(t *testing.T) {
	caller := newFakeCaller()
	caller.symbols[usdc] = "PUNK"

	// Token id bigger than 64 bits must survive as a decimal string.
	id, ok := big.NewInt(0).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	logs := []*types.Log{{
		Address: ethereum.HexToAddress(usdc),
		Topics: []ethereum.Hash{
			TransferTopic, addrTopic(alice), addrTopic(bob),
			ethereum.BytesToHash(word(id)),
		},
	}}

	erc20, nft := New(caller, nil).DecodeLogs(context.Background(), logs)
	require.Empty(t, erc20)
	require.Len(t, nft, 1)

	got := nft[0]
	require.Equal(t, "ERC721", got.ContractType)
	require.Equal(t, id.String(), got.TokenID)
	require.Equal(t, "1", got.Amount)
	require.Equal(t, "PUNK", got.TokenSymbol)
}

func TestDecodeERC1155Single(t *testing.T) {
	operator := "0x3333333333333333333333333333333333333333"
	data := append(word(big.NewInt(77)), word(big.NewInt(5))...)

	logs := []*types.Log{{
		Address: ethereum.HexToAddress(usdc),
		Topics: []ethereum.Hash{
			ERC1155SingleTopic, addrTopic(operator), addrTopic(alice), addrTopic(bob),
		},
		Data: data,
	}}

	_, nft := New(newFakeCaller(), nil).DecodeLogs(context.Background(), logs)
	require.Len(t, nft, 1)

	got := nft[0]
	require.Equal(t, "ERC1155", got.ContractType)
	require.Equal(t, "77", got.TokenID)
	require.Equal(t, "5", got.Amount)
	// Operator topic must be skipped; from/to are topics 2 and 3.
	require.Equal(t, ethereum.HexToAddress(alice).Hex(), got.FromAddress)
	require.Equal(t, ethereum.HexToAddress(bob).Hex(), got.ToAddress)
}

func TestUnknownTopicSkipped(t *testing.T) {
	logs := []*types.Log{{
		Address: ethereum.HexToAddress(usdc),
		Topics:  []ethereum.Hash{ethereum.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925")}, // Approval, not Transfer
		Data:    word(big.NewInt(1)),
	}}

	erc20, nft := New(newFakeCaller(), nil).DecodeLogs(context.Background(), logs)
	require.Empty(t, erc20)
	require.Empty(t, nft)
}

func TestMalformedLogDoesNotAbortPass(t *testing.T) {
	caller := newFakeCaller()
	caller.symbols[usdc] = "USDC"
	caller.decimals[usdc] = 6

	logs := []*types.Log{
		// Corrupt 1155: not enough data for id+value.
		{
			Address: ethereum.HexToAddress(usdc),
			Topics: []ethereum.Hash{
				ERC1155SingleTopic, addrTopic(alice), addrTopic(alice), addrTopic(bob),
			},
			Data: []byte{0x01, 0x02},
		},
		// Valid ERC-20 after the corrupt one must still decode.
		{
			Address: ethereum.HexToAddress(usdc),
			Topics:  []ethereum.Hash{TransferTopic, addrTopic(alice), addrTopic(bob)},
			Data:    word(big.NewInt(42)),
		},
	}

	erc20, nft := New(caller, nil).DecodeLogs(context.Background(), logs)
	require.Len(t, erc20, 1)
	require.Empty(t, nft)
	require.Equal(t, "42", erc20[0].Value)
}

func TestMetadataMemoizedPerPass(t *testing.T) {
	caller := newFakeCaller()
	caller.symbols[usdc] = "USDC"
	caller.decimals[usdc] = 6

	log := &types.Log{
		Address: ethereum.HexToAddress(usdc),
		Topics:  []ethereum.Hash{TransferTopic, addrTopic(alice), addrTopic(bob)},
		Data:    word(big.NewInt(1)),
	}

	New(caller, nil).DecodeLogs(context.Background(), []*types.Log{log, log, log})
	// One symbol() plus one decimals() for the whole pass.
	require.Equal(t, 2, caller.calls[usdc])
}

func TestMetadataFailureFallsBack(t *testing.T) {
	logs := []*types.Log{{
		Address: ethereum.HexToAddress(usdc),
		Topics:  []ethereum.Hash{TransferTopic, addrTopic(alice), addrTopic(bob)},
		Data:    word(big.NewInt(9)),
	}}

	erc20, _ := New(newFakeCaller(), nil).DecodeLogs(context.Background(), logs)
	require.Len(t, erc20, 1)
	require.Equal(t, "Unknown", erc20[0].TokenSymbol)
	require.Equal(t, "18", erc20[0].TokenDecimals)
}
