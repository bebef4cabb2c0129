package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	lenscommon "github.com/tranvictor/chainlens/common"
	"github.com/tranvictor/chainlens/config"
	"github.com/tranvictor/chainlens/networks"
	"github.com/tranvictor/chainlens/provider"
	"github.com/tranvictor/chainlens/resolver"
	"github.com/tranvictor/chainlens/ui"
)

// buildResolver assembles the full provider stack from the environment.
// Called once per command invocation.
func buildResolver() *resolver.Resolver {
	cfg := config.Load()
	if verboseFlag {
		cfg.Verbose = true
	}
	registry := networks.Default()

	logger := zap.NewNop()
	if cfg.Verbose {
		// Development config writes human-readable lines to stderr, keeping
		// stdout clean for the actual result.
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}

	moralis := provider.NewMoralis(cfg.MoralisAPIKey, logger)
	etherscan := provider.NewEtherscan(cfg.EtherscanAPIKey, logger)
	node := provider.NewNode(registry, logger)
	return resolver.New(registry, moralis, etherscan, node, logger)
}

// validateNetworkFlag rejects unknown chain names early, with fuzzy
// suggestions so a typo like "plygon" doesn't turn into a full chain scan.
func validateNetworkFlag(u ui.UI) error {
	if networkFlag == "" || strings.EqualFold(networkFlag, "all") {
		return nil
	}
	registry := networks.Default()
	if _, err := registry.Resolve(networkFlag); err == nil {
		return nil
	}
	if strings.HasPrefix(networkFlag, "0x") {
		// Raw ids outside the registry are still passed to providers.
		return nil
	}
	suggestions := registry.Suggest(networkFlag)
	if len(suggestions) > 0 {
		return fmt.Errorf("unknown network '%s', did you mean %s?",
			networkFlag, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("unknown network '%s', run 'chainlens networks' to list supported chains", networkFlag)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(u ui.UI, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		u.Error("encoding result failed: %s", err)
		return
	}
	u.Info("%s", string(data))
}

// formatAmount renders a base-unit decimal string as a human amount with
// its symbol, e.g. "1.5 ETH".
func formatAmount(value, decimals, symbol string) string {
	d := 18
	if parsed, err := strconv.Atoi(decimals); err == nil {
		d = parsed
	}
	if symbol == "" {
		symbol = "Native"
	}
	return lenscommon.ToDecimalString(value, d) + " " + symbol
}

// shortHash abbreviates a hash or address for table cells.
func shortHash(s string) string {
	if len(s) <= 14 {
		return s
	}
	return s[:8] + "…" + s[len(s)-4:]
}

func styledStatus(status string) ui.StyledText {
	if status == lenscommon.StatusSuccess {
		return ui.StyledText{Text: "✓ success", Severity: ui.SeveritySuccess}
	}
	if status == lenscommon.StatusFailed {
		return ui.StyledText{Text: "✗ failed", Severity: ui.SeverityError}
	}
	return ui.StyledText{Text: status, Severity: ui.SeverityWarn}
}
