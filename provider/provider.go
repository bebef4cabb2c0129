// Package provider contains the adapters for the three categories of
// upstream data source: the hosted indexer (Moralis), the block explorer
// (Etherscan V2) and raw JSON-RPC nodes. Each adapter maps its upstream's
// wire shapes into the canonical types in the common package.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lenscommon "github.com/tranvictor/chainlens/common"
)

// Kind is the closed enumeration of providers. String comparisons against
// user input happen exactly once, in ParseKind.
type Kind string

const (
	KindMoralis   Kind = "moralis"
	KindEtherscan Kind = "etherscan"
	KindNode      Kind = "rpc"
)

// ParseKind maps user input onto a provider kind. Empty input defaults to
// the hosted indexer, the richest source.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "moralis":
		return KindMoralis, nil
	case "etherscan":
		return KindEtherscan, nil
	case "rpc", "node":
		return KindNode, nil
	}
	return "", fmt.Errorf("unknown provider '%s', must be moralis, etherscan or rpc", s)
}

// Operation identifies one capability of the provider surface, so that
// unsupported combinations are a capability query instead of a scattered
// string check.
type Operation int

const (
	OpWalletHistory Operation = iota
	OpTokenTransfers
	OpTransactionLookup
	OpMultiChainScan
	OpInternalTransfers
	OpPricing
)

// WalletQuery carries the arguments of a wallet history fetch. Dates are
// YYYY-MM-DD and pass through to providers that understand them.
type WalletQuery struct {
	Address  string
	ChainID  string
	Limit    int
	FromDate string
	ToDate   string
}

// Provider is the uniform adapter surface. Adapters return ErrUnsupported
// from operations they do not declare via Supports.
type Provider interface {
	Kind() Kind
	Supports(op Operation) bool

	WalletTransactions(ctx context.Context, q WalletQuery) ([]lenscommon.NormalizedTransaction, error)
	TokenTransfers(ctx context.Context, address, chainID string, limit int) ([]lenscommon.TokenTransfer, error)
	TransactionByHash(ctx context.Context, hash, chainID string) (*lenscommon.NormalizedTransaction, error)
}

var (
	// ErrNotFound means a well-formed query legitimately has no data on the
	// queried chain. It is an empty answer, not a failure.
	ErrNotFound = errors.New("not found")
	// ErrMissingAPIKey is a configuration error: the provider requires a
	// credential that was never supplied. Never retried.
	ErrMissingAPIKey = errors.New("api key is missing")
	// ErrUnsupported marks an operation outside the adapter's capability
	// set, e.g. wallet history on the direct-node provider.
	ErrUnsupported = errors.New("operation not supported by this provider")
)

// UpstreamError wraps a rejection from the provider's API: bad credential,
// rate limit, malformed request.
type UpstreamError struct {
	Provider Kind
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// IsAuthError reports whether an error indicates a credential problem.
// Retrying other chains cannot fix a bad key, so callers abort their chain
// iteration on it.
func IsAuthError(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	if ue.Status == 401 || ue.Status == 403 {
		return true
	}
	msg := strings.ToLower(ue.Message)
	return strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "api key") && strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "unauthorized")
}
