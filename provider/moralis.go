package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	lenscommon "github.com/tranvictor/chainlens/common"
)

const (
	moralisBaseURL = "https://deep-index.moralis.io/api/v2.2"
	// moralisPageSize is the page size requested from the cursor API.
	moralisPageSize = 100
	// moralisHardLimit caps auto-pagination regardless of the caller's ask,
	// so a busy wallet cannot turn one request into hundreds of round trips.
	moralisHardLimit = 2000
)

// Moralis is the hosted-indexer adapter. It is the richest source: wallet
// history with token and NFT transfers pre-attached, plus USD pricing.
type Moralis struct {
	// Domain is exported so tests can point the adapter at a local server.
	Domain string
	APIKey string

	client *http.Client
	logger *zap.Logger
}

func NewMoralis(apiKey string, logger *zap.Logger) *Moralis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Moralis{
		Domain: moralisBaseURL,
		APIKey: apiKey,
		client: &http.Client{Timeout: 20 * time.Second},
		logger: logger,
	}
}

func (m *Moralis) Kind() Kind { return KindMoralis }

func (m *Moralis) Supports(op Operation) bool {
	switch op {
	case OpWalletHistory, OpTokenTransfers, OpTransactionLookup, OpMultiChainScan, OpPricing:
		return true
	}
	return false
}

type moralisError struct {
	Message string `json:"message"`
}

// get performs one authenticated GET and decodes the JSON body into out.
// Upstream rejections come back as *UpstreamError carrying the API's own
// message, which is where auth problems are recognized.
func (m *Moralis) get(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", m.APIKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("moralis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("moralis response read failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := moralisError{}
		if json.Unmarshal(body, &apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return &UpstreamError{Provider: KindMoralis, Status: resp.StatusCode, Message: apiErr.Message}
	}
	return json.Unmarshal(body, out)
}

type moralisTxPage struct {
	Result []lenscommon.NormalizedTransaction `json:"result"`
	Cursor string                             `json:"cursor"`
}

// WalletTransactions fetches native transaction history newest-first,
// following the cursor until the requested limit, the hard cap, or the end
// of history. A page failure after the first page degrades to a partial
// answer instead of an error.
func (m *Moralis) WalletTransactions(ctx context.Context, q WalletQuery) ([]lenscommon.NormalizedTransaction, error) {
	if m.APIKey == "" {
		return nil, fmt.Errorf("moralis: %w", ErrMissingAPIKey)
	}
	limit := q.Limit
	if limit <= 0 || limit > moralisHardLimit {
		limit = moralisHardLimit
	}

	txs := []lenscommon.NormalizedTransaction{}
	cursor := ""
	for len(txs) < limit {
		params := url.Values{}
		params.Set("chain", q.ChainID)
		params.Set("limit", strconv.Itoa(moralisPageSize))
		params.Set("order", "DESC")
		if q.FromDate != "" {
			params.Set("from_date", q.FromDate)
		}
		if q.ToDate != "" {
			params.Set("to_date", q.ToDate)
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		page := moralisTxPage{}
		err := m.get(ctx, fmt.Sprintf("%s/%s?%s", m.Domain, q.Address, params.Encode()), &page)
		if err != nil {
			if len(txs) == 0 {
				return nil, err
			}
			m.logger.Warn("moralis pagination degraded to partial result",
				zap.String("chain", q.ChainID),
				zap.Int("fetched", len(txs)),
				zap.Error(err))
			break
		}

		for i := range page.Result {
			normalizeNativeTx(&page.Result[i])
		}
		txs = append(txs, page.Result...)

		cursor = page.Cursor
		if cursor == "" || len(page.Result) == 0 {
			break
		}
	}

	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

// normalizeNativeTx fills the display defaults of a native row: the value
// is denominated in the chain's native coin with the standard 18 decimals.
func normalizeNativeTx(tx *lenscommon.NormalizedTransaction) {
	if tx.TokenSymbol == "" {
		tx.TokenSymbol = "Native"
	}
	if tx.TokenDecimals == "" {
		tx.TokenDecimals = "18"
	}
	if tx.Value == "" {
		tx.Value = "0"
	}
}

type moralisTransferPage struct {
	Result []lenscommon.TokenTransfer `json:"result"`
	Cursor string                     `json:"cursor"`
}

// TokenTransfers fetches ERC-20 transfer history for an address.
func (m *Moralis) TokenTransfers(ctx context.Context, address, chainID string, limit int) ([]lenscommon.TokenTransfer, error) {
	if m.APIKey == "" {
		return nil, fmt.Errorf("moralis: %w", ErrMissingAPIKey)
	}
	if limit <= 0 || limit > moralisHardLimit {
		limit = moralisHardLimit
	}

	transfers := []lenscommon.TokenTransfer{}
	cursor := ""
	for len(transfers) < limit {
		params := url.Values{}
		params.Set("chain", chainID)
		params.Set("limit", strconv.Itoa(moralisPageSize))
		params.Set("order", "DESC")
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		page := moralisTransferPage{}
		err := m.get(ctx, fmt.Sprintf("%s/%s/erc20/transfers?%s", m.Domain, address, params.Encode()), &page)
		if err != nil {
			if len(transfers) == 0 {
				return nil, err
			}
			m.logger.Warn("moralis transfer pagination degraded to partial result",
				zap.String("chain", chainID),
				zap.Int("fetched", len(transfers)),
				zap.Error(err))
			break
		}

		transfers = append(transfers, page.Result...)
		cursor = page.Cursor
		if cursor == "" || len(page.Result) == 0 {
			break
		}
	}

	if len(transfers) > limit {
		transfers = transfers[:limit]
	}
	return transfers, nil
}

// TransactionByHash looks a single transaction up on one chain. An unknown
// hash is ErrNotFound so the caller's chain iteration keeps going.
func (m *Moralis) TransactionByHash(ctx context.Context, hash, chainID string) (*lenscommon.NormalizedTransaction, error) {
	if m.APIKey == "" {
		return nil, fmt.Errorf("moralis: %w", ErrMissingAPIKey)
	}
	tx := lenscommon.NormalizedTransaction{}
	err := m.get(ctx, fmt.Sprintf("%s/transaction/%s?chain=%s", m.Domain, hash, url.QueryEscape(chainID)), &tx)
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.Status == 404 {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if tx.Hash == "" {
		return nil, ErrNotFound
	}
	normalizeNativeTx(&tx)
	return &tx, nil
}

// TransactionTokenTransfers returns the ERC-20 transfers emitted by one
// transaction. Enrichment is best effort: any failure is an empty list.
func (m *Moralis) TransactionTokenTransfers(ctx context.Context, hash, chainID string) []lenscommon.TokenTransfer {
	page := moralisTransferPage{}
	err := m.get(ctx, fmt.Sprintf("%s/transaction/%s/erc20/transfers?chain=%s", m.Domain, hash, url.QueryEscape(chainID)), &page)
	if err != nil {
		m.logger.Debug("token transfer enrichment skipped", zap.String("hash", hash), zap.Error(err))
		return nil
	}
	return page.Result
}

type moralisNFTPage struct {
	Result []lenscommon.NFTTransfer `json:"result"`
}

// TransactionNFTTransfers returns the NFT transfers emitted by one
// transaction, best effort like TransactionTokenTransfers.
func (m *Moralis) TransactionNFTTransfers(ctx context.Context, hash, chainID string) []lenscommon.NFTTransfer {
	page := moralisNFTPage{}
	err := m.get(ctx, fmt.Sprintf("%s/transaction/%s/nft/transfers?chain=%s", m.Domain, hash, url.QueryEscape(chainID)), &page)
	if err != nil {
		m.logger.Debug("nft transfer enrichment skipped", zap.String("hash", hash), zap.Error(err))
		return nil
	}
	return page.Result
}

type moralisPrice struct {
	UsdPrice float64 `json:"usdPrice"`
}

// TokenPrice returns the USD price of a token contract, or 0 when the
// provider has no quote. Pricing never fails a request.
func (m *Moralis) TokenPrice(ctx context.Context, contract, chainID string) float64 {
	price := moralisPrice{}
	err := m.get(ctx, fmt.Sprintf("%s/erc20/%s/price?chain=%s", m.Domain, contract, url.QueryEscape(chainID)), &price)
	if err != nil {
		m.logger.Debug("price lookup skipped", zap.String("contract", contract), zap.Error(err))
		return 0
	}
	return price.UsdPrice
}
