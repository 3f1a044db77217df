package cmd

import (
	"fmt"

	"github.com/crytic/medusa-stacktraces/config"
	"github.com/spf13/cobra"
)

// addInspectFlags adds the various flags for the inspect command
func addInspectFlags() error {
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	inspectCmd.Flags().SortFlags = false

	// Config file
	inspectCmd.Flags().String("config", "", "path to config file")

	// Contract selection
	inspectCmd.Flags().String("contract", "", "name of the contract to inspect, qualified as \"<file>:<name>\" if ambiguous (default is every contract)")
	inspectCmd.Flags().String("code", "", "hex encoded code observed on chain, used to identify the contract to inspect")

	// Instruction selection
	inspectCmd.Flags().Int("pc", -1, "program counter of the instruction to symbolicate, requires a single contract")
	inspectCmd.Flags().Bool("deployment", false, "inspect deployment code rather than runtime code")

	// Selector correction
	inspectCmd.Flags().Bool("no-correct-selectors", false,
		fmt.Sprintf("disable selector correction from method identifiers (unless a config file is provided, default is %t)", !defaultConfig.Symbolication.CorrectSelectors))

	// Logging color
	inspectCmd.Flags().Bool("no-color", false, "disable colored terminal output")
	return nil
}

// updateProjectConfigWithInspectFlags will update the given projectConfig with any CLI arguments that were provided to
// the inspect command
func updateProjectConfigWithInspectFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// Update selector correction enablement
	if cmd.Flags().Changed("no-correct-selectors") {
		noCorrectSelectors, err := cmd.Flags().GetBool("no-correct-selectors")
		if err != nil {
			return err
		}
		projectConfig.Symbolication.CorrectSelectors = !noCorrectSelectors
	}

	// Update logging color mode
	if cmd.Flags().Changed("no-color") {
		projectConfig.Logging.NoColor, err = cmd.Flags().GetBool("no-color")
		if err != nil {
			return err
		}
	}
	return nil
}
