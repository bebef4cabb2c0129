package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	lenscommon "github.com/tranvictor/chainlens/common"
)

// etherscanBaseURL is the unified V2 endpoint. One host serves every chain;
// the chain is selected by a decimal chainid query parameter.
const etherscanBaseURL = "https://api.etherscan.io/v2/api"

// Etherscan is the block-explorer adapter. It answers two styles of query:
// account-module calls that return pre-normalized decimal values, and
// proxy-module calls that relay raw JSON-RPC hex and need conversion here.
type Etherscan struct {
	Domain string
	APIKey string

	client  *http.Client
	limiter ratelimit.Limiter
	logger  *zap.Logger
}

func NewEtherscan(apiKey string, logger *zap.Logger) *Etherscan {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Etherscan{
		Domain: etherscanBaseURL,
		APIKey: apiKey,
		client: &http.Client{Timeout: 20 * time.Second},
		// Free-tier keys allow 5 calls per second across all chains.
		limiter: ratelimit.New(5),
		logger:  logger,
	}
}

func (e *Etherscan) Kind() Kind { return KindEtherscan }

func (e *Etherscan) Supports(op Operation) bool {
	switch op {
	case OpWalletHistory, OpTransactionLookup, OpInternalTransfers:
		return true
	}
	return false
}

// decimalChainID converts the registry's canonical hex chain id into the
// decimal form the V2 API expects. Non-hex input passes through untouched.
func decimalChainID(chainID string) string {
	if !strings.HasPrefix(chainID, "0x") {
		return chainID
	}
	n, err := strconv.ParseUint(chainID[2:], 16, 64)
	if err != nil {
		return chainID
	}
	return strconv.FormatUint(n, 10)
}

type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Result  json.RawMessage `json:"result"`
}

// get performs one rate-limited GET against the V2 API and returns the
// response envelope undecoded, since the result shape differs per action.
func (e *Etherscan) get(ctx context.Context, chainID string, params url.Values) (*etherscanEnvelope, error) {
	e.limiter.Take()

	params.Set("chainid", decimalChainID(chainID))
	if e.APIKey != "" {
		params.Set("apikey", e.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.Domain+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("etherscan request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("etherscan response read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			Provider: KindEtherscan,
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}

	envelope := etherscanEnvelope{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("etherscan response decode failed: %w", err)
	}
	return &envelope, nil
}

// rejection turns a status-"0" envelope into an error, preferring the
// string payload the API puts in result ("Invalid API Key", "Max rate
// limit reached") over the generic NOTOK message.
func (e *Etherscan) rejection(envelope *etherscanEnvelope) error {
	message := envelope.Message
	detail := ""
	if json.Unmarshal(envelope.Result, &detail) == nil && detail != "" {
		message = detail
	}
	return &UpstreamError{Provider: KindEtherscan, Message: message}
}

// etherscanTx is the account-module transaction row. The account style
// already uses decimal strings for every numeric field.
type etherscanTx struct {
	Hash              string `json:"hash"`
	Nonce             string `json:"nonce"`
	TransactionIndex  string `json:"transactionIndex"`
	From              string `json:"from"`
	To                string `json:"to"`
	Value             string `json:"value"`
	Gas               string `json:"gas"`
	GasPrice          string `json:"gasPrice"`
	Input             string `json:"input"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	GasUsed           string `json:"gasUsed"`
	ContractAddress   string `json:"contractAddress"`
	TxReceiptStatus   string `json:"txreceipt_status"`
	TimeStamp         string `json:"timeStamp"`
	BlockNumber       string `json:"blockNumber"`
	BlockHash         string `json:"blockHash"`
}

func (t *etherscanTx) normalized() lenscommon.NormalizedTransaction {
	out := lenscommon.NormalizedTransaction{
		Hash:                     t.Hash,
		Nonce:                    t.Nonce,
		TransactionIndex:         t.TransactionIndex,
		FromAddress:              t.From,
		ToAddress:                t.To,
		Value:                    t.Value,
		Gas:                      t.Gas,
		GasPrice:                 t.GasPrice,
		Input:                    t.Input,
		ReceiptCumulativeGasUsed: t.CumulativeGasUsed,
		ReceiptGasUsed:           t.GasUsed,
		ReceiptContractAddress:   t.ContractAddress,
		ReceiptStatus:            t.TxReceiptStatus,
		BlockNumber:              t.BlockNumber,
		BlockHash:                t.BlockHash,
		TokenSymbol:              "Native",
		TokenDecimals:            "18",
	}
	if sec, err := strconv.ParseInt(t.TimeStamp, 10, 64); err == nil {
		out.BlockTimestamp = time.Unix(sec, 0).UTC()
	}
	if out.Value == "" {
		out.Value = "0"
	}
	return out
}

// WalletTransactions fetches an address's native history via the account
// module, newest first. "No transactions found" is an empty answer; any
// other rejection is an upstream error.
func (e *Etherscan) WalletTransactions(ctx context.Context, q WalletQuery) ([]lenscommon.NormalizedTransaction, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", q.Address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", "1")
	params.Set("offset", strconv.Itoa(limit))
	params.Set("sort", "desc")

	envelope, err := e.get(ctx, q.ChainID, params)
	if err != nil {
		return nil, err
	}
	if envelope.Status != "1" {
		if envelope.Message == "No transactions found" {
			return []lenscommon.NormalizedTransaction{}, nil
		}
		return nil, e.rejection(envelope)
	}

	rows := []etherscanTx{}
	if err := json.Unmarshal(envelope.Result, &rows); err != nil {
		return nil, fmt.Errorf("etherscan txlist decode failed: %w", err)
	}
	txs := make([]lenscommon.NormalizedTransaction, 0, len(rows))
	for i := range rows {
		txs = append(txs, rows[i].normalized())
	}
	return txs, nil
}

// TokenTransfers is outside the explorer adapter's scope.
func (e *Etherscan) TokenTransfers(ctx context.Context, address, chainID string, limit int) ([]lenscommon.TokenTransfer, error) {
	return nil, fmt.Errorf("etherscan token transfers: %w", ErrUnsupported)
}

// proxyTx is the proxy-module eth_getTransactionByHash payload: raw
// JSON-RPC hex quantities.
type proxyTx struct {
	Hash             string `json:"hash"`
	Nonce            string `json:"nonce"`
	TransactionIndex string `json:"transactionIndex"`
	From             string `json:"from"`
	To               string `json:"to"`
	Value            string `json:"value"`
	Gas              string `json:"gas"`
	GasPrice         string `json:"gasPrice"`
	Input            string `json:"input"`
	BlockNumber      string `json:"blockNumber"`
	BlockHash        string `json:"blockHash"`
}

type proxyReceipt struct {
	Status            string `json:"status"`
	GasUsed           string `json:"gasUsed"`
	CumulativeGasUsed string `json:"cumulativeGasUsed"`
	ContractAddress   string `json:"contractAddress"`
}

type proxyBlock struct {
	Timestamp string `json:"timestamp"`
}

// proxy issues one proxy-module action and decodes its result. A JSON null
// result (unknown hash, unknown block) comes back as ErrNotFound.
func (e *Etherscan) proxy(ctx context.Context, chainID, action string, extra url.Values, out interface{}) error {
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", action)
	for key, values := range extra {
		for _, value := range values {
			params.Add(key, value)
		}
	}

	envelope, err := e.get(ctx, chainID, params)
	if err != nil {
		return err
	}
	if envelope.Status == "0" {
		return e.rejection(envelope)
	}
	if len(envelope.Error) > 0 {
		return &UpstreamError{Provider: KindEtherscan, Message: string(envelope.Error)}
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return ErrNotFound
	}
	return json.Unmarshal(envelope.Result, out)
}

// TransactionByHash resolves a hash through three proxy calls: the
// transaction, its receipt, and the containing block for the timestamp.
// Hex quantities are converted to the canonical decimal strings here.
func (e *Etherscan) TransactionByHash(ctx context.Context, hash, chainID string) (*lenscommon.NormalizedTransaction, error) {
	raw := proxyTx{}
	err := e.proxy(ctx, chainID, "eth_getTransactionByHash", url.Values{"txhash": {hash}}, &raw)
	if err != nil {
		return nil, err
	}
	if raw.Hash == "" {
		return nil, ErrNotFound
	}

	tx := lenscommon.NormalizedTransaction{
		Hash:             raw.Hash,
		Nonce:            lenscommon.HexToDec(raw.Nonce),
		TransactionIndex: lenscommon.HexToDec(raw.TransactionIndex),
		FromAddress:      raw.From,
		ToAddress:        raw.To,
		Value:            lenscommon.HexToDec(raw.Value),
		Gas:              lenscommon.HexToDec(raw.Gas),
		GasPrice:         lenscommon.HexToDec(raw.GasPrice),
		Input:            raw.Input,
		BlockNumber:      lenscommon.HexToDec(raw.BlockNumber),
		BlockHash:        raw.BlockHash,
		TokenSymbol:      "Native",
		TokenDecimals:    "18",
		// The proxy style has no receipt yet; assume success until the
		// receipt call below says otherwise.
		ReceiptStatus: lenscommon.StatusSuccess,
	}

	receipt := proxyReceipt{}
	err = e.proxy(ctx, chainID, "eth_getTransactionReceipt", url.Values{"txhash": {hash}}, &receipt)
	if err == nil {
		tx.ReceiptStatus = lenscommon.HexToDec(receipt.Status)
		tx.ReceiptGasUsed = lenscommon.HexToDec(receipt.GasUsed)
		tx.ReceiptCumulativeGasUsed = lenscommon.HexToDec(receipt.CumulativeGasUsed)
		tx.ReceiptContractAddress = receipt.ContractAddress
	} else {
		e.logger.Debug("receipt lookup skipped", zap.String("hash", hash), zap.Error(err))
	}

	if raw.BlockNumber != "" {
		block := proxyBlock{}
		err = e.proxy(ctx, chainID, "eth_getBlockByNumber",
			url.Values{"tag": {raw.BlockNumber}, "boolean": {"false"}}, &block)
		if err == nil {
			if sec, parseErr := strconv.ParseInt(lenscommon.HexToDec(block.Timestamp), 10, 64); parseErr == nil {
				tx.BlockTimestamp = time.Unix(sec, 0).UTC()
			}
		} else {
			e.logger.Debug("block timestamp lookup skipped", zap.String("hash", hash), zap.Error(err))
		}
	}
	return &tx, nil
}

type etherscanInternalTx struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

// InternalTransfers lists the internal (message-call) value movements of a
// transaction. Only the explorer indexes these; failures degrade to an
// empty list because internals are enrichment, not the answer itself.
func (e *Etherscan) InternalTransfers(ctx context.Context, hash, chainID string) []lenscommon.InternalTransfer {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlistinternal")
	params.Set("txhash", hash)

	envelope, err := e.get(ctx, chainID, params)
	if err != nil {
		e.logger.Debug("internal transfer enrichment skipped", zap.String("hash", hash), zap.Error(err))
		return nil
	}
	if envelope.Status != "1" {
		if envelope.Message != "No transactions found" {
			e.logger.Debug("internal transfer enrichment rejected",
				zap.String("hash", hash), zap.String("message", envelope.Message))
		}
		return nil
	}

	rows := []etherscanInternalTx{}
	if err := json.Unmarshal(envelope.Result, &rows); err != nil {
		return nil
	}
	out := make([]lenscommon.InternalTransfer, 0, len(rows))
	for _, row := range rows {
		out = append(out, lenscommon.InternalTransfer{
			From:  row.From,
			To:    row.To,
			Value: row.Value,
		})
	}
	return out
}
