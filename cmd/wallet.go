package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	lenscommon "github.com/tranvictor/chainlens/common"
	"github.com/tranvictor/chainlens/resolver"
	"github.com/tranvictor/chainlens/ui"
)

var (
	limitFlag       int
	fromDateFlag    string
	toDateFlag      string
	directionFlag   string
	stablecoinsFlag bool
)

var walletCmd = &cobra.Command{
	Use:   "wallet <address>",
	Short: "Show an address's transaction history, tokens merged in",
	Long: `Fetches an address's native transactions and token transfers, merges them
into one timeline and prints it newest first. Token-only transactions (e.g.
receiving USDC from a contract you never called) show up too.

Use -k all to scan the most popular chains concurrently and get one
combined timeline with a per-chain price map.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := ui.NewTerminalUI()
		if err := validateNetworkFlag(u); err != nil {
			return err
		}

		req := resolver.WalletHistoryRequest{
			Address:         args[0],
			Chain:           networkFlag,
			Provider:        providerFlag,
			Limit:           limitFlag,
			FromDate:        fromDateFlag,
			ToDate:          toDateFlag,
			Direction:       directionFlag,
			StablecoinsOnly: stablecoinsFlag,
		}

		stop := u.Spinner(fmt.Sprintf("Fetching history of %s...", shortHash(args[0])))
		result, err := buildResolver().WalletTransactions(cmd.Context(), req)
		stop()
		if err != nil {
			return err
		}

		filters := resolver.Filters{
			FromDate:        fromDateFlag,
			ToDate:          toDateFlag,
			Direction:       directionFlag,
			StablecoinsOnly: stablecoinsFlag,
		}
		shown := resolver.ApplyFilters(result.Transactions, result.SearchedAddress, filters)

		if jsonFlag {
			filtered := *result
			filtered.Transactions = shown
			printJSON(u, &filtered)
			return nil
		}

		printWalletHistory(u, result, shown)
		return nil
	},
}

func printWalletHistory(u ui.UI, result *resolver.WalletHistoryResult, shown []lenscommon.NormalizedTransaction) {
	u.Section(fmt.Sprintf("%s on %s", shortHash(result.SearchedAddress), result.Chain))

	if len(shown) == 0 {
		u.Warn("No transactions matched.")
		return
	}

	multi := result.Chain == "Multi-Chain"
	headers := []string{"Time", "Hash", "From", "To", "Amount", "Status"}
	if multi {
		headers = append(headers, "Chain")
	}

	rows := make([][]string, 0, len(shown))
	for _, tx := range shown {
		row := []string{
			tx.BlockTimestamp.Format("2006-01-02 15:04"),
			shortHash(tx.Hash),
			shortHash(tx.FromAddress),
			shortHash(tx.ToAddress),
			formatAmount(tx.Value, tx.TokenDecimals, tx.TokenSymbol),
			u.Style(styledStatus(tx.ReceiptStatus)),
		}
		if multi {
			row = append(row, tx.DetectedChain)
		}
		rows = append(rows, row)
	}
	u.Table(headers, rows)

	if result.NativePrice > 0 {
		u.Info("Native price: $%.2f", result.NativePrice)
	}
	for chain, price := range result.PriceMap {
		u.Info("%s native price: $%.2f", chain, price)
	}
	u.Info("%d of %d transactions shown.", len(shown), len(result.Transactions))
}

func init() {
	walletCmd.Flags().IntVarP(&limitFlag, "limit", "l", 0,
		"max transactions to fetch per chain (default 50).")
	walletCmd.Flags().StringVar(&fromDateFlag, "from", "",
		"only show transactions on or after this date (YYYY-MM-DD).")
	walletCmd.Flags().StringVar(&toDateFlag, "to", "",
		"only show transactions on or before this date (YYYY-MM-DD).")
	walletCmd.Flags().StringVarP(&directionFlag, "direction", "d", "",
		"only show \"in\" or \"out\" transactions relative to the address.")
	walletCmd.Flags().BoolVarP(&stablecoinsFlag, "stablecoins", "s", false,
		"only show transactions that touch a stablecoin.")
	rootCmd.AddCommand(walletCmd)
}
