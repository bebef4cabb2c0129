// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	networkFlag  string
	providerFlag string
	jsonFlag     bool
	verboseFlag  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chainlens",
	Short: "Look up EVM wallets and transactions across chains from one place",
	Long: `Chainlens resolves wallet histories and transactions across EVM chains
without making you remember which explorer serves which chain.

It combines three kinds of data sources behind one interface:

	1. Moralis, a hosted indexer, for full wallet histories with token
	and NFT transfers pre-attached plus USD prices.

	2. Etherscan's V2 multi-chain API for native histories, internal
	transactions and raw proxy lookups.

	3. Public JSON-RPC nodes as a keyless fallback: transfers are
	reconstructed from receipt logs directly.

When you don't name a chain, chainlens searches its chain list in order of
popularity and tells you where the transaction was found. Searching every
chain at once is also supported for wallet histories with -k all.

API keys are read from MORALIS_API_KEY and ETHERSCAN_API_KEY (a .env file
in the working directory works too). Without any key, lookups still work
through public nodes, just slower and with less detail.

For more information or support, reach me at https://github.com/tranvictor.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "k", "",
		"chain to query: a name like \"ethereum\", \"bsc\", \"polygon\", a hex chain id like \"0x1\", or \"all\" to scan every chain. Omit it to search chains in priority order.")
	rootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "c", "",
		"data source: \"moralis\" (default), \"etherscan\" or \"rpc\".")
	rootCmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false,
		"print the raw result as JSON instead of tables.")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"log every provider call to stderr.")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
