package cmd

import (
	"os"

	"github.com/crytic/medusa-stacktraces/logging"
	"github.com/crytic/medusa-stacktraces/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:     "medusa-stacktraces",
	Short:   "A Solidity bytecode symbolication toolkit",
	Long:    "medusa-stacktraces maps EVM program counters back to the contracts, functions and source lines they were compiled from",
	Version: version.GetInfo().Short(),
}

// cmdLogger is the logger that will be used for the cmd package
var cmdLogger = logging.NewLogger(zerolog.InfoLevel).NewSubLogger("service", logging.CLI_SERVICE)

func init() {
	cmdLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, true)
}

// Execute provides an exportable function to invoke the CLI. Returns an error if one was encountered.
func Execute() error {
	return rootCmd.Execute()
}
