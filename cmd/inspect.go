package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/medusa-stacktraces/cmd/exitcodes"
	"github.com/crytic/medusa-stacktraces/compilation"
	"github.com/crytic/medusa-stacktraces/compilation/types"
	"github.com/crytic/medusa-stacktraces/config"
	"github.com/crytic/medusa-stacktraces/logging"
	"github.com/crytic/medusa-stacktraces/logging/colors"
	"github.com/crytic/medusa-stacktraces/stacktraces"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// inspectCmd represents the command provider for inspect
var inspectCmd = &cobra.Command{
	Use:   "inspect <build.json>",
	Short: "Inspects the symbolication model of a build",
	Long: `Builds the symbolication model of a build description and prints the selector table of its contracts.
Given a program counter, the instruction at it is symbolicated to its source location and containing function.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: cmdValidInspectArgs,
	RunE:              cmdRunInspect,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add flags to inspect command
	err := addInspectFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the inspect command", err)
	}

	// Add the inspect command and its associated flags to the root command
	rootCmd.AddCommand(inspectCmd)
}

// cmdValidInspectArgs will return which flags and files are valid for dynamic completion for the inspect command
func cmdValidInspectArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Until the build description is provided, complete JSON files
	if len(args) == 0 {
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	}

	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdRunInspect executes the inspect CLI command
func cmdRunInspect(cmd *cobra.Command, args []string) error {
	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the inspect command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Set up the global logger used while building the model
	logging.GlobalLogger = logging.NewLogger(projectConfig.Logging.Level)
	logging.GlobalLogger.AddWriter(cmd.ErrOrStderr(), logging.UNSTRUCTURED, !projectConfig.Logging.NoColor)
	if projectConfig.Logging.NoColor {
		colors.DisableColor()
	}

	desc, err := compilation.LoadBuildDescription(args[0])
	if err != nil {
		cmdLogger.Error("Failed to run the inspect command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	model, err := compilation.BuildModel(desc, projectConfig, logging.GlobalLogger)
	if err != nil {
		return exitcodes.NewErrorWithExitCode(errors.Wrapf(err, "could not build the symbolication model of %v", args[0]), exitcodes.ExitCodeModelError)
	}

	contracts, bytecode, err := selectContracts(cmd, model)
	if err != nil {
		cmdLogger.Error("Failed to run the inspect command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	out := cmd.OutOrStdout()
	cmdLogger.Debug("Built the symbolication model of artifacts ", colors.Bold, model.ArtifactHash(), colors.Reset)
	for _, contract := range contracts {
		printContract(out, contract)
	}

	// Symbolicate the requested instruction, if any
	pc, err := cmd.Flags().GetInt("pc")
	if err != nil || pc < 0 {
		return err
	}
	if len(contracts) != 1 {
		err = errors.Errorf("--pc requires a single contract, use --contract or --code to select one of %d", len(contracts))
		cmdLogger.Error("Failed to run the inspect command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	if bytecode == nil {
		if bytecode, err = selectBytecode(cmd, model, contracts[0]); err != nil {
			cmdLogger.Error("Failed to run the inspect command", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
	}
	if err = printInstruction(out, bytecode, pc); err != nil {
		cmdLogger.Error("Failed to run the inspect command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	return nil
}

// loadProjectConfig reads the project configuration from the --config flag, or from the working directory, falling
// back to the defaults when no configuration file exists. CLI flags are applied on top.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If --config was not used, look for the default config file in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	var projectConfig *config.ProjectConfig
	_, existenceError := os.Stat(configPath)
	switch {
	case existenceError == nil:
		cmdLogger.Debug("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		if projectConfig, err = config.ReadProjectConfigFromFile(configPath); err != nil {
			return nil, err
		}
	case configFlagUsed:
		return nil, errors.WithStack(existenceError)
	default:
		projectConfig = config.GetDefaultProjectConfig()
	}

	if err = updateProjectConfigWithInspectFlags(cmd, projectConfig); err != nil {
		return nil, err
	}
	return projectConfig, projectConfig.Validate()
}

// selectContracts returns the contracts selected by the --contract and --code flags, or every contract of the model.
// When --code identifies the contract, the matching bytecode is returned as well.
func selectContracts(cmd *cobra.Command, model *compilation.Model) ([]*stacktraces.Contract, *stacktraces.Bytecode, error) {
	contractName, err := cmd.Flags().GetString("contract")
	if err != nil {
		return nil, nil, err
	}
	codeHex, err := cmd.Flags().GetString("code")
	if err != nil {
		return nil, nil, err
	}
	isDeployment, err := cmd.Flags().GetBool("deployment")
	if err != nil {
		return nil, nil, err
	}

	if codeHex != "" {
		if !strings.HasPrefix(codeHex, "0x") && !strings.HasPrefix(codeHex, "0X") {
			codeHex = "0x" + codeHex
		}
		code, err := hexutil.Decode(codeHex)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid --code")
		}
		bytecode := model.Index().Lookup(code, isDeployment)
		if bytecode == nil {
			return nil, nil, errors.New("the provided code does not match any compiled bytecode")
		}
		return []*stacktraces.Contract{bytecode.Contract()}, bytecode, nil
	}

	if contractName != "" {
		contract, err := model.ContractByName(contractName)
		if err != nil {
			return nil, nil, err
		}
		return []*stacktraces.Contract{contract}, nil, nil
	}
	return model.Contracts(), nil, nil
}

// selectBytecode returns the deployment or runtime bytecode of the contract, per the --deployment flag.
func selectBytecode(cmd *cobra.Command, model *compilation.Model, contract *stacktraces.Contract) (*stacktraces.Bytecode, error) {
	isDeployment, err := cmd.Flags().GetBool("deployment")
	if err != nil {
		return nil, err
	}
	for _, bytecode := range model.BytecodesOf(contract) {
		if bytecode.IsDeployment() == isDeployment {
			return bytecode, nil
		}
	}
	return nil, errors.Errorf("contract %v has no decoded %v bytecode", contract.Name(), bytecodeKind(isDeployment))
}

// printContract writes the selector table of a contract.
func printContract(out io.Writer, contract *stacktraces.Contract) {
	fmt.Fprintf(out, "%v %v (%v)\n", contract.Type(), colors.Bold(contract.Name()), contract.Location())
	if constructor := contract.ConstructorFunction(); constructor != nil {
		fmt.Fprintf(out, "  constructor            %v\n", constructor.Location())
	}
	if fallback := contract.Fallback(); fallback != nil {
		fmt.Fprintf(out, "  fallback               %v (%v)\n", fallback, fallback.Location())
	}
	for _, function := range contract.ExternalFunctions() {
		selector, _ := function.Selector()
		fmt.Fprintf(out, "  %v  %-12v %v (%v)\n", colors.Cyan(selector), function.Type(), function, function.Location())
	}
}

// printInstruction writes the symbolication of the instruction at pc, along with the compiler metadata embedded in
// the bytecode.
func printInstruction(out io.Writer, bytecode *stacktraces.Bytecode, pc int) error {
	instruction, err := bytecode.GetInstruction(pc)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%v bytecode of %v, compiled by %v\n", bytecodeKind(bytecode.IsDeployment()), bytecode.Contract().Name(), bytecode.CompilerVersion())
	if metadata := types.ExtractContractMetadata(bytecode.NormalizedCode()); metadata != nil {
		if hash := metadata.ExtractBytecodeHash(); hash != nil {
			fmt.Fprintf(out, "  metadata hash: %v\n", hexutil.Encode(hash))
		}
	}
	fmt.Fprintf(out, "  instruction:   %v\n", instruction)
	fmt.Fprintf(out, "  jump:          %v\n", instruction.JumpType())

	location := instruction.Location()
	if location == nil {
		fmt.Fprintln(out, "  location:      none")
		return nil
	}
	fmt.Fprintf(out, "  location:      %v\n", location)
	if function := location.GetContainingFunction(); function != nil {
		fmt.Fprintf(out, "  function:      %v\n", function)
	}
	return nil
}

// bytecodeKind returns a human-readable name for deployment or runtime code.
func bytecodeKind(isDeployment bool) string {
	if isDeployment {
		return "deployment"
	}
	return "runtime"
}
