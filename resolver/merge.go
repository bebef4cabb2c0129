package resolver

import (
	"time"

	lenscommon "github.com/tranvictor/chainlens/common"
)

// Merge folds a token transfer list into a native transaction list by hash.
//
// Three rules, applied per transfer:
//   - attach: a transfer whose hash matches a native transaction is appended
//     to that transaction's transfer list, skipping exact duplicates.
//   - promote: when the matched transaction moved zero native value, the
//     first attached transfer's value, symbol and decimals become the
//     transaction's display fields. Later transfers never displace them.
//   - synthesize: a transfer with no matching native transaction becomes a
//     pseudo-transaction of its own, marked successful, so token-only
//     activity still shows up in the timeline.
//
// Inputs are not mutated. Merging is idempotent: feeding a merged result
// back in with the same transfers changes nothing.
func Merge(native []lenscommon.NormalizedTransaction, tokens []lenscommon.TokenTransfer) []lenscommon.NormalizedTransaction {
	out := make([]lenscommon.NormalizedTransaction, len(native))
	copy(out, native)

	index := make(map[string]int, len(out))
	for i := range out {
		index[out[i].Hash] = i
	}

	for _, transfer := range tokens {
		i, found := index[transfer.TransactionHash]
		if !found {
			out = append(out, synthesize(transfer))
			index[transfer.TransactionHash] = len(out) - 1
			continue
		}
		tx := &out[i]
		if !hasTransfer(tx.ERC20Transfers, transfer) {
			// Append onto a private copy: appending to the input's slice could
			// write into its spare capacity.
			transfers := make([]lenscommon.TokenTransfer, len(tx.ERC20Transfers), len(tx.ERC20Transfers)+1)
			copy(transfers, tx.ERC20Transfers)
			tx.ERC20Transfers = append(transfers, transfer)
		}
		// Zero native value means the token movement is the economic
		// substance of the transaction.
		if tx.Value == "0" && transfer.Value != "" {
			tx.Value = transfer.Value
			tx.TokenSymbol = transfer.TokenSymbol
			tx.TokenDecimals = transfer.TokenDecimals
		}
	}
	return out
}

func hasTransfer(transfers []lenscommon.TokenTransfer, t lenscommon.TokenTransfer) bool {
	for _, existing := range transfers {
		if existing.TransactionHash == t.TransactionHash &&
			existing.Address == t.Address &&
			existing.FromAddress == t.FromAddress &&
			existing.ToAddress == t.ToAddress &&
			existing.Value == t.Value {
			return true
		}
	}
	return false
}

// synthesize builds a pseudo-transaction for a token transfer the native
// history never saw. Indexers routinely miss the outer transaction when
// the wallet was neither sender nor receiver of it.
func synthesize(transfer lenscommon.TokenTransfer) lenscommon.NormalizedTransaction {
	timestamp := time.Now().UTC()
	if transfer.BlockTimestamp != nil {
		timestamp = *transfer.BlockTimestamp
	}
	blockNumber := transfer.BlockNumber
	if blockNumber == "" {
		blockNumber = "0"
	}
	return lenscommon.NormalizedTransaction{
		Hash:           transfer.TransactionHash,
		FromAddress:    transfer.FromAddress,
		ToAddress:      transfer.ToAddress,
		Value:          transfer.Value,
		TokenSymbol:    transfer.TokenSymbol,
		TokenDecimals:  transfer.TokenDecimals,
		Input:          "0x",
		ReceiptStatus:  lenscommon.StatusSuccess,
		BlockTimestamp: timestamp,
		BlockNumber:    blockNumber,
		// Carrying the transfer keeps a second merge from re-attaching it.
		ERC20Transfers: []lenscommon.TokenTransfer{transfer},
	}
}
