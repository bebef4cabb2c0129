package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testEtherscan(t *testing.T, handler http.HandlerFunc) *Etherscan {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	e := NewEtherscan("test-key", nil)
	e.Domain = server.URL
	return e
}

func TestDecimalChainID(t *testing.T) {
	require.Equal(t, "1", decimalChainID("0x1"))
	require.Equal(t, "56", decimalChainID("0x38"))
	require.Equal(t, "42161", decimalChainID("0xa4b1"))
	// Already-decimal or unknown input passes through.
	require.Equal(t, "137", decimalChainID("137"))
}

func TestEtherscanWalletTransactions(t *testing.T) {
	e := testEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "56", q.Get("chainid"))
		require.Equal(t, "account", q.Get("module"))
		require.Equal(t, "txlist", q.Get("action"))
		require.Equal(t, "desc", q.Get("sort"))
		require.Equal(t, "test-key", q.Get("apikey"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "1",
			"message": "OK",
			"result": []map[string]string{{
				"hash":              "0xaaa",
				"from":              "0x1111111111111111111111111111111111111111",
				"to":                "0x2222222222222222222222222222222222222222",
				"value":             "5000000000000000000",
				"gas":               "21000",
				"gasPrice":          "30000000000",
				"txreceipt_status":  "1",
				"timeStamp":         "1700000000",
				"blockNumber":       "18000000",
				"cumulativeGasUsed": "100000",
				"gasUsed":           "21000",
			}},
		})
	})

	txs, err := e.WalletTransactions(context.Background(), WalletQuery{Address: "0xabc", ChainID: "0x38", Limit: 10})
	require.NoError(t, err)
	require.Len(t, txs, 1)

	got := txs[0]
	// Account style is already decimal; values map through unconverted.
	require.Equal(t, "5000000000000000000", got.Value)
	require.Equal(t, "1", got.ReceiptStatus)
	require.Equal(t, "Native", got.TokenSymbol)
	require.Equal(t, time.Unix(1700000000, 0).UTC(), got.BlockTimestamp)
}

func TestEtherscanNoTransactionsFound(t *testing.T) {
	e := testEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "0", "message": "No transactions found", "result": []interface{}{},
		})
	})

	txs, err := e.WalletTransactions(context.Background(), WalletQuery{Address: "0xabc", ChainID: "0x1"})
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestEtherscanRejectionSurfacesResultString(t *testing.T) {
	e := testEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "0", "message": "NOTOK", "result": "Invalid API Key",
		})
	})

	_, err := e.WalletTransactions(context.Background(), WalletQuery{Address: "0xabc", ChainID: "0x1"})
	require.Error(t, err)
	require.True(t, IsAuthError(err))
	require.Contains(t, err.Error(), "Invalid API Key")
}

func TestEtherscanTransactionByHashConvertsHex(t *testing.T) {
	e := testEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "eth_getTransactionByHash":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"result": map[string]string{
					"hash":        "0xfeed",
					"from":        "0x1111111111111111111111111111111111111111",
					"to":          "0x2222222222222222222222222222222222222222",
					"value":       "0xde0b6b3a7640000", // 1 ether
					"gas":         "0x5208",
					"gasPrice":    "0x6fc23ac00",
					"nonce":       "0xf",
					"blockNumber": "0x112a880",
				},
			})
		case "eth_getTransactionReceipt":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"result": map[string]string{
					"status":            "0x0",
					"gasUsed":           "0x5208",
					"cumulativeGasUsed": "0x186a0",
				},
			})
		case "eth_getBlockByNumber":
			require.Equal(t, "0x112a880", r.URL.Query().Get("tag"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"result": map[string]string{"timestamp": "0x6553f100"},
			})
		default:
			t.Errorf("unexpected action %s", r.URL.Query().Get("action"))
		}
	})

	tx, err := e.TransactionByHash(context.Background(), "0xfeed", "0x1")
	require.NoError(t, err)
	require.Equal(t, "1000000000000000000", tx.Value)
	require.Equal(t, "21000", tx.Gas)
	require.Equal(t, "30000000000", tx.GasPrice)
	require.Equal(t, "15", tx.Nonce)
	require.Equal(t, "18000000", tx.BlockNumber)
	// The receipt's hex status 0x0 becomes the canonical failed marker.
	require.Equal(t, "0", tx.ReceiptStatus)
	require.Equal(t, time.Unix(0x6553f100, 0).UTC(), tx.BlockTimestamp)
}

func TestEtherscanTransactionByHashNotFound(t *testing.T) {
	e := testEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"result": nil})
	})

	_, err := e.TransactionByHash(context.Background(), "0xdead", "0x1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEtherscanInternalTransfers(t *testing.T) {
	e := testEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "txlistinternal", r.URL.Query().Get("action"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "1",
			"result": []map[string]string{{
				"from":  "0x1111111111111111111111111111111111111111",
				"to":    "0x2222222222222222222222222222222222222222",
				"value": "250000000000000000",
			}},
		})
	})

	internals := e.InternalTransfers(context.Background(), "0xfeed", "0x1")
	require.Len(t, internals, 1)
	require.Equal(t, "250000000000000000", internals[0].Value)
}

func TestEtherscanInternalTransfersFailSoft(t *testing.T) {
	e := testEtherscan(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.Empty(t, e.InternalTransfers(context.Background(), "0xfeed", "0x1"))
}

func TestParseKind(t *testing.T) {
	for input, want := range map[string]Kind{
		"": KindMoralis, "moralis": KindMoralis,
		"Etherscan": KindEtherscan,
		"rpc":       KindNode, "node": KindNode,
	} {
		got, err := ParseKind(input)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseKind("bigquery")
	require.Error(t, err)
}
