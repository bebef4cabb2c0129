package resolver

import (
	"strings"
	"time"

	lenscommon "github.com/tranvictor/chainlens/common"
)

// stablecoinSymbols is matched case-insensitively against the transaction's
// display symbol and its attached transfer symbols.
var stablecoinSymbols = map[string]bool{
	"USDT": true, "USDC": true, "DAI": true, "BUSD": true,
	"TUSD": true, "USDP": true, "FDUSD": true, "GUSD": true,
	"FRAX": true, "LUSD": true, "USDD": true, "PYUSD": true,
}

// ApplyFilters narrows a fetched transaction list by the request's filter
// parameters. Filtering happens after fetching on purpose: providers cannot
// express these predicates, and the unfiltered result stays cacheable.
// address is the wallet the history belongs to; direction is judged
// relative to it.
func ApplyFilters(txs []lenscommon.NormalizedTransaction, address string, f Filters) []lenscommon.NormalizedTransaction {
	if f.empty() {
		return txs
	}
	fromDate, hasFrom := parseFilterDate(f.FromDate)
	toDate, hasTo := parseFilterDate(f.ToDate)
	// The upper bound is inclusive of the whole day.
	if hasTo {
		toDate = toDate.Add(24 * time.Hour)
	}

	out := []lenscommon.NormalizedTransaction{}
	for _, tx := range txs {
		if hasFrom && tx.BlockTimestamp.Before(fromDate) {
			continue
		}
		if hasTo && !tx.BlockTimestamp.Before(toDate) {
			continue
		}
		if !matchesDirection(tx, address, f.Direction) {
			continue
		}
		if f.StablecoinsOnly && !touchesStablecoin(tx) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func parseFilterDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func matchesDirection(tx lenscommon.NormalizedTransaction, address, direction string) bool {
	switch strings.ToLower(direction) {
	case "in":
		return strings.EqualFold(tx.ToAddress, address)
	case "out":
		return strings.EqualFold(tx.FromAddress, address)
	default:
		return true
	}
}

func touchesStablecoin(tx lenscommon.NormalizedTransaction) bool {
	if stablecoinSymbols[strings.ToUpper(tx.TokenSymbol)] {
		return true
	}
	for _, transfer := range tx.ERC20Transfers {
		if stablecoinSymbols[strings.ToUpper(transfer.TokenSymbol)] {
			return true
		}
	}
	return false
}
