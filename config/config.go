// Package config loads runtime settings from the environment. A .env file
// in the working directory is honored when present, real environment
// variables win over it.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the credentials and switches the CLI wires into the
// resolver. Both keys are optional: without them only the direct-node
// provider works.
type Config struct {
	MoralisAPIKey   string
	EtherscanAPIKey string
	// Verbose enables structured provider logging to stderr. The CLI's
	// --verbose flag turns it on too.
	Verbose bool
}

// Load reads the environment, after merging in a .env file if one exists.
// A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		MoralisAPIKey:   os.Getenv("MORALIS_API_KEY"),
		EtherscanAPIKey: os.Getenv("ETHERSCAN_API_KEY"),
		Verbose:         os.Getenv("CHAINLENS_VERBOSE") != "",
	}
}
