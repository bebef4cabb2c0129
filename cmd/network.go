package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/chainlens/networks"
	"github.com/tranvictor/chainlens/provider"
	"github.com/tranvictor/chainlens/ui"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List every chain chainlens can query",
	Run: func(cmd *cobra.Command, args []string) {
		u := ui.NewTerminalUI()

		rows := [][]string{}
		for _, d := range networks.Supported() {
			rows = append(rows, []string{
				d.Name,
				d.ID,
				strings.Join(d.Aliases, ", "),
				d.NativeSymbol,
				fmt.Sprintf("%d", len(d.RPCEndpoints)),
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

		u.Table([]string{"Chain", "ID", "Aliases", "Native", "RPC nodes"}, rows)
		u.Info("Providers: %s (default), %s, %s.",
			provider.KindMoralis, provider.KindEtherscan, provider.KindNode)
	},
}

func init() {
	rootCmd.AddCommand(networksCmd)
}
