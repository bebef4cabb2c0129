package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tranvictor/chainlens/resolver"
	"github.com/tranvictor/chainlens/ui"
)

var transfersLimitFlag int

var transfersCmd = &cobra.Command{
	Use:   "transfers <address>",
	Short: "Show an address's ERC-20 transfer history on one chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := ui.NewTerminalUI()
		if err := validateNetworkFlag(u); err != nil {
			return err
		}

		stop := u.Spinner(fmt.Sprintf("Fetching token transfers of %s...", shortHash(args[0])))
		result, err := buildResolver().TokenTransfers(cmd.Context(), resolver.TokenTransfersRequest{
			Address: args[0],
			Chain:   networkFlag,
			Limit:   transfersLimitFlag,
		})
		stop()
		if err != nil {
			return err
		}

		if jsonFlag {
			printJSON(u, result)
			return nil
		}

		u.Section(fmt.Sprintf("Token transfers of %s on %s", shortHash(result.SearchedAddress), result.Chain))
		if len(result.Transfers) == 0 {
			u.Warn("No token transfers found.")
			return nil
		}

		rows := make([][]string, 0, len(result.Transfers))
		for _, t := range result.Transfers {
			timestamp := ""
			if t.BlockTimestamp != nil {
				timestamp = t.BlockTimestamp.Format("2006-01-02 15:04")
			}
			rows = append(rows, []string{
				timestamp,
				shortHash(t.TransactionHash),
				shortHash(t.FromAddress),
				shortHash(t.ToAddress),
				formatAmount(t.Value, t.TokenDecimals, t.TokenSymbol),
			})
		}
		u.Table([]string{"Time", "Tx", "From", "To", "Amount"}, rows)
		return nil
	},
}

func init() {
	transfersCmd.Flags().IntVarP(&transfersLimitFlag, "limit", "l", 0,
		"max transfers to fetch (default 20).")
	rootCmd.AddCommand(transfersCmd)
}
