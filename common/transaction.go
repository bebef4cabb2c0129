package common

import (
	"time"
)

// Receipt status values as decimal strings, the convention shared by every
// provider after normalization.
const (
	StatusSuccess = "1"
	StatusFailed  = "0"
)

// Contract standard tags for NFT transfers.
const (
	ContractTypeERC721  = "ERC721"
	ContractTypeERC1155 = "ERC1155"
)

// NormalizedTransaction is the canonical transaction shape every provider
// adapter maps into. All monetary and gas fields are decimal integer strings
// in base units: EVM values routinely exceed the float64 safe-integer range,
// so they must never travel through floating point.
type NormalizedTransaction struct {
	Hash             string `json:"hash"`
	Nonce            string `json:"nonce"`
	TransactionIndex string `json:"transaction_index"`
	FromAddress      string `json:"from_address"`
	// ToAddress is empty for contract creations.
	ToAddress string `json:"to_address"`
	Value     string `json:"value"`
	Gas       string `json:"gas"`
	GasPrice  string `json:"gas_price"`
	Input     string `json:"input"`

	ReceiptCumulativeGasUsed string `json:"receipt_cumulative_gas_used"`
	ReceiptGasUsed           string `json:"receipt_gas_used"`
	ReceiptContractAddress   string `json:"receipt_contract_address,omitempty"`
	ReceiptStatus            string `json:"receipt_status"`

	BlockTimestamp time.Time `json:"block_timestamp"`
	BlockNumber    string    `json:"block_number"`
	BlockHash      string    `json:"block_hash"`

	// Display fields promoted by the merge engine when the native value is
	// zero and a token transfer carries the real economic movement.
	TokenSymbol   string `json:"token_symbol,omitempty"`
	TokenDecimals string `json:"token_decimals,omitempty"`

	ERC20Transfers    []TokenTransfer    `json:"erc20_transfers,omitempty"`
	NFTTransfers      []NFTTransfer      `json:"nft_transfers,omitempty"`
	InternalTransfers []InternalTransfer `json:"internal_transfers,omitempty"`

	// Provenance, filled by the resolver.
	Provider      string `json:"_provider,omitempty"`
	DetectedChain string `json:"_detected_chain,omitempty"`
}

// TokenTransfer is one ERC-20 style value movement.
type TokenTransfer struct {
	TransactionHash string `json:"transaction_hash,omitempty"`
	// Address is the token contract.
	Address     string `json:"address"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	// Value is the base-unit amount as a decimal string.
	Value          string     `json:"value"`
	TokenName      string     `json:"token_name,omitempty"`
	TokenSymbol    string     `json:"token_symbol,omitempty"`
	TokenDecimals  string     `json:"token_decimals"`
	BlockTimestamp *time.Time `json:"block_timestamp,omitempty"`
	BlockNumber    string     `json:"block_number,omitempty"`
}

// NFTTransfer is one ERC-721/1155 style token movement. TokenID is a decimal
// string because ids regularly exceed 64 bits.
type NFTTransfer struct {
	TokenAddress string `json:"token_address"`
	TokenID      string `json:"token_id"`
	FromAddress  string `json:"from_address,omitempty"`
	ToAddress    string `json:"to_address,omitempty"`
	// Amount is "1" for a single non-fungible transfer.
	Amount       string `json:"amount,omitempty"`
	ContractType string `json:"contract_type,omitempty"`
	TokenSymbol  string `json:"token_symbol,omitempty"`
	TokenName    string `json:"token_name,omitempty"`
}

// InternalTransfer is a value movement surfaced by an explorer's internal
// transaction index, e.g. the ETH leg of a DEX swap.
type InternalTransfer struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}
