package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/chainlens/resolver"
	"github.com/tranvictor/chainlens/ui"
)

var txCmd = &cobra.Command{
	Use:   "tx <hash>",
	Short: "Look a transaction up by hash, searching chains if needed",
	Long: `Resolves a transaction hash into a full picture: the transaction itself,
its token and NFT transfers, internal value movements and USD prices.

Without -k, chains are searched in priority order and the answer tells you
where the hash was found. Without a Moralis key, use -c rpc to go through
public nodes directly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := ui.NewTerminalUI()
		if err := validateNetworkFlag(u); err != nil {
			return err
		}

		stop := u.Spinner(fmt.Sprintf("Resolving %s...", shortHash(args[0])))
		result, err := buildResolver().TransactionByHash(cmd.Context(), resolver.TxLookupRequest{
			Hash:     args[0],
			Chain:    networkFlag,
			Provider: providerFlag,
		})
		stop()
		if err != nil {
			return err
		}

		if jsonFlag {
			printJSON(u, result)
			return nil
		}
		printTransaction(u, result)
		return nil
	},
}

func printTransaction(u ui.UI, result *resolver.SingleTransactionResult) {
	u.Section("Transaction " + shortHash(result.Hash))

	summary := [][]string{
		{"Hash", result.Hash},
		{"Chain", result.DetectedChain},
		{"Status", u.Style(styledStatus(result.ReceiptStatus))},
		{"From", result.FromAddress},
		{"To", result.ToAddress},
		{"Amount", formatAmount(result.Value, result.TokenDecimals, result.TokenSymbol)},
		{"Source", result.Provider},
	}
	if !result.BlockTimestamp.IsZero() {
		summary = append(summary, []string{"Time", result.BlockTimestamp.Format("2006-01-02 15:04:05 MST")})
	}

	gas := [][]string{
		{"Block", result.BlockNumber},
		{"Nonce", result.Nonce},
		{"Gas used", result.ReceiptGasUsed},
		{"Gas price", formatAmount(result.GasPrice, "9", "gwei")},
	}
	u.TableWithGroups(nil, [][][]string{summary, gas})

	if len(result.ERC20Transfers) > 0 {
		u.Section("Token transfers")
		rows := make([][]string, 0, len(result.ERC20Transfers))
		for _, t := range result.ERC20Transfers {
			rows = append(rows, []string{
				shortHash(t.FromAddress),
				shortHash(t.ToAddress),
				formatAmount(t.Value, t.TokenDecimals, t.TokenSymbol),
			})
		}
		u.Table([]string{"From", "To", "Amount"}, rows)
	}

	if len(result.NFTTransfers) > 0 {
		u.Section("NFT transfers")
		rows := make([][]string, 0, len(result.NFTTransfers))
		for _, t := range result.NFTTransfers {
			rows = append(rows, []string{
				t.ContractType,
				shortHash(t.TokenAddress),
				t.TokenID,
				t.Amount,
				shortHash(t.ToAddress),
			})
		}
		u.Table([]string{"Type", "Contract", "Token ID", "Qty", "To"}, rows)
	}

	if len(result.InternalTransfers) > 0 {
		u.Section("Internal transfers")
		rows := make([][]string, 0, len(result.InternalTransfers))
		for _, t := range result.InternalTransfers {
			rows = append(rows, []string{
				shortHash(t.From),
				shortHash(t.To),
				formatAmount(t.Value, "18", "Native"),
			})
		}
		u.Table([]string{"From", "To", "Amount"}, rows)
	}

	prices := [][2]string{}
	if result.NativePrice > 0 {
		prices = append(prices, [2]string{"Native price", fmt.Sprintf("$%.2f", result.NativePrice)})
	}
	if result.TokenPrice > 0 {
		prices = append(prices, [2]string{"First token price", fmt.Sprintf("$%.4f", result.TokenPrice)})
	}
	u.KeyValue(prices)
}

func init() {
	rootCmd.AddCommand(txCmd)
}
