package compilation

import (
	"strings"

	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/medusa-geth/core/vm"
	"github.com/crytic/medusa-stacktraces/compilation/types"
	"github.com/crytic/medusa-stacktraces/config"
	"github.com/crytic/medusa-stacktraces/logging"
	"github.com/crytic/medusa-stacktraces/logging/colors"
	"github.com/crytic/medusa-stacktraces/stacktraces"
	"github.com/pkg/errors"
)

// modelBuilder holds the state of a single BuildModel invocation.
type modelBuilder struct {
	desc          *BuildDescription
	projectConfig *config.ProjectConfig
	logger        *logging.Logger
	model         *Model
}

// BuildModel constructs the symbolication model of a build. Construction is single-threaded: source files are
// created first, then contracts and their functions, then inheritance is merged (nearest base first), selectors are
// corrected from the compiler's method identifiers, and finally bytecodes are decoded and indexed.
// A nil projectConfig uses the default configuration, a nil logger uses logging.GlobalLogger.
func BuildModel(desc *BuildDescription, projectConfig *config.ProjectConfig, logger *logging.Logger) (*Model, error) {
	if projectConfig == nil {
		projectConfig = config.GetDefaultProjectConfig()
	}
	if logger == nil {
		logger = logging.GlobalLogger
	}

	b := &modelBuilder{
		desc:          desc,
		projectConfig: projectConfig,
		logger:        logger.NewSubLogger("service", logging.COMPILATION_SERVICE),
		model:         newModel(projectConfig.Symbolication.StripMetadataOnMatch),
	}

	for _, source := range desc.Sources {
		b.model.sources = append(b.model.sources, stacktraces.NewSourceFile(source.GlobalName, source.Content))
	}

	// Contracts are created for every file before any inheritance is resolved, so bases may be declared anywhere.
	for fileIndex, source := range desc.Sources {
		for i := range source.Contracts {
			if err := b.addContract(fileIndex, &source.Contracts[i]); err != nil {
				return nil, err
			}
		}
	}

	contractIndex := 0
	for _, source := range desc.Sources {
		for i := range source.Contracts {
			contract := b.model.contracts[contractIndex]
			contractIndex++
			if err := b.mergeBaseContracts(contract, &source.Contracts[i]); err != nil {
				return nil, err
			}
		}
	}

	if projectConfig.Symbolication.CorrectSelectors {
		contractIndex = 0
		for _, source := range desc.Sources {
			for _, contractDesc := range source.Contracts {
				contract := b.model.contracts[contractIndex]
				contractIndex++
				if len(contractDesc.MethodIdentifiers) == 0 {
					continue
				}
				if _, err := contract.CorrectSelectorsFromMethodIdentifiers(contractDesc.MethodIdentifiers, b.logger); err != nil {
					return nil, err
				}
			}
		}
	}

	contractIndex = 0
	for _, source := range desc.Sources {
		for _, contractDesc := range source.Contracts {
			contract := b.model.contracts[contractIndex]
			contractIndex++
			if err := b.addBytecode(contract, contractDesc.DeploymentBytecode, true); err != nil {
				return nil, err
			}
			if err := b.addBytecode(contract, contractDesc.RuntimeBytecode, false); err != nil {
				return nil, err
			}
		}
	}

	b.logger.Debug("Built symbolication model with ", len(b.model.sources), " sources, ", len(b.model.contracts),
		" contracts and ", len(b.model.bytecodes), " bytecodes")
	return b.model, nil
}

// addContract creates a contract and its local functions, registering them with their source file.
func (b *modelBuilder) addContract(fileIndex int, desc *ContractDescription) error {
	file := b.model.sources[fileIndex]

	contractType, err := stacktraces.ParseContractType(desc.Kind)
	if err != nil {
		return errors.Wrapf(err, "contract %v", desc.Name)
	}
	location, err := b.definitionLocation(fileIndex, desc.Src)
	if err != nil {
		return errors.Wrapf(err, "contract %v", desc.Name)
	}

	contract := stacktraces.NewContract(desc.Name, contractType, location)
	if err = file.AddContract(contract); err != nil {
		return err
	}
	b.model.contracts = append(b.model.contracts, contract)
	b.model.contractsByName[desc.Name] = append(b.model.contractsByName[desc.Name], contract)

	for _, functionDesc := range desc.Functions {
		function, err := b.newFunction(fileIndex, contract, functionDesc)
		if err != nil {
			return errors.Wrapf(err, "function %v of contract %v", functionDesc.Name, desc.Name)
		}
		if err = file.AddFunction(function); err != nil {
			return err
		}
		if err = contract.AddLocalFunction(function); err != nil {
			return err
		}
	}
	return nil
}

// newFunction creates a function of the provided contract from its description.
func (b *modelBuilder) newFunction(fileIndex int, contract *stacktraces.Contract, desc FunctionDescription) (*stacktraces.ContractFunction, error) {
	functionType, err := stacktraces.ParseContractFunctionType(desc.Kind)
	if err != nil {
		return nil, err
	}
	location, err := b.definitionLocation(fileIndex, desc.Src)
	if err != nil {
		return nil, err
	}

	var opts []stacktraces.ContractFunctionOption
	if desc.Visibility != "" {
		visibility, err := stacktraces.ParseContractFunctionVisibility(desc.Visibility)
		if err != nil {
			return nil, err
		}
		opts = append(opts, stacktraces.WithVisibility(visibility))
	}
	if desc.Payable != nil {
		opts = append(opts, stacktraces.WithPayable(*desc.Payable))
	}
	if desc.Selector != "" {
		selector, err := stacktraces.ParseSelector(desc.Selector)
		if err != nil {
			return nil, err
		}
		opts = append(opts, stacktraces.WithSelector(selector))
	} else if desc.Signature != "" {
		opts = append(opts, stacktraces.WithSelector(stacktraces.SelectorFromSignature(desc.Signature)))
	}

	return stacktraces.NewContractFunction(desc.Name, functionType, location, contract, opts...)
}

// definitionLocation resolves the source range of a definition declared in the file at fileIndex.
func (b *modelBuilder) definitionLocation(fileIndex int, src string) (*stacktraces.SourceLocation, error) {
	sourceRange, err := types.ParseSourceRange(src)
	if err != nil {
		return nil, err
	}
	if sourceRange.FileIndex != -1 && sourceRange.FileIndex != fileIndex {
		return nil, errors.Errorf("source range %q refers to file %d but is declared in file %d", src, sourceRange.FileIndex, fileIndex)
	}
	return stacktraces.NewSourceLocation(b.model.sources[fileIndex], sourceRange.Offset, sourceRange.Length)
}

// mergeBaseContracts merges the linearized bases of a contract into its selector table, nearest base first.
func (b *modelBuilder) mergeBaseContracts(contract *stacktraces.Contract, desc *ContractDescription) error {
	for _, baseName := range desc.LinearizedBaseContracts {
		base, err := b.model.ContractByName(baseName)
		if err != nil {
			return errors.Wrapf(err, "base of contract %v", contract.Name())
		}

		// Compilers list the contract itself first, it is not its own base
		if base == contract {
			continue
		}
		contract.AddNextLinearizedBaseContract(base)
	}
	return nil
}

// addBytecode decodes a bytecode of the contract and registers it with the model. A nil description is ignored.
func (b *modelBuilder) addBytecode(contract *stacktraces.Contract, desc *BytecodeDescription, isDeployment bool) error {
	if desc == nil {
		return nil
	}

	code, libraryAddressPositions, err := types.NormalizeUnlinkedBytecode(desc.Object)
	if err != nil {
		return errors.Wrapf(err, "bytecode of contract %v", contract.Name())
	}

	var instructions []*stacktraces.Instruction
	if len(desc.Instructions) > 0 {
		instructions, err = b.decodeInstructions(desc.Instructions)
	} else {
		instructions, err = b.decodeSourceMappedInstructions(code, desc.SourceMap)
	}
	if err != nil {
		return errors.Wrapf(err, "bytecode of contract %v", contract.Name())
	}

	bytecode, err := stacktraces.NewBytecode(contract, isDeployment, code, instructions, libraryAddressPositions, b.desc.CompilerVersion)
	if err != nil {
		return err
	}

	if constraint := b.projectConfig.Symbolication.MinimumCompilerVersion; constraint != "" {
		satisfied, err := bytecode.CompilerVersionSatisfies(constraint)
		if err != nil {
			return err
		}
		if !satisfied {
			b.logger.Warn("Skipping bytecode of ", colors.Bold, contract.Name(), colors.Reset, ", compiler version ",
				b.desc.CompilerVersion, " does not satisfy ", constraint)
			return nil
		}
	}

	b.model.bytecodes = append(b.model.bytecodes, bytecode)
	b.model.index.Add(bytecode)
	return nil
}

// decodeInstructions creates instructions from their explicit descriptions.
func (b *modelBuilder) decodeInstructions(descs []InstructionDescription) ([]*stacktraces.Instruction, error) {
	instructions := make([]*stacktraces.Instruction, 0, len(descs))
	for _, desc := range descs {
		opcode := vm.StringToOp(desc.Op)
		if opcode == vm.STOP && desc.Op != vm.STOP.String() {
			return nil, errors.Wrapf(ErrUnknownOpcode, "%q at pc %d", desc.Op, desc.PC)
		}

		jumpType, err := stacktraces.JumpTypeFromSourceMapMarker(desc.Jump)
		if err != nil {
			return nil, errors.Wrapf(err, "pc %d", desc.PC)
		}

		var pushData []byte
		if desc.PushData != "" {
			if !opcode.IsPush() {
				return nil, errors.Errorf("push data provided for %v at pc %d", opcode, desc.PC)
			}
			if pushData, err = decodeHex(desc.PushData); err != nil {
				return nil, errors.Wrapf(err, "push data at pc %d", desc.PC)
			}
		}

		var location *stacktraces.SourceLocation
		if desc.Src != "" {
			sourceRange, err := types.ParseSourceRange(desc.Src)
			if err != nil {
				return nil, errors.Wrapf(err, "pc %d", desc.PC)
			}
			if location, err = b.instructionLocation(sourceRange); err != nil {
				return nil, errors.Wrapf(err, "pc %d", desc.PC)
			}
		}

		instructions = append(instructions, stacktraces.NewInstruction(desc.PC, opcode, jumpType, pushData, location))
	}
	return instructions, nil
}

// decodeSourceMappedInstructions disassembles code and pairs each operation with its source map element. Operations
// past the end of the source map, such as the metadata trailer, are not instructions. Without a source map every
// operation is decoded with no location.
func (b *modelBuilder) decodeSourceMappedInstructions(code []byte, sourceMapStr string) ([]*stacktraces.Instruction, error) {
	sourceMap, err := types.ParseSourceMap(sourceMapStr)
	if err != nil {
		return nil, err
	}

	operations := types.Disassemble(code)
	if sourceMap != nil && len(sourceMap) < len(operations) {
		operations = operations[:len(sourceMap)]
	}

	instructions := make([]*stacktraces.Instruction, 0, len(operations))
	for i, operation := range operations {
		if sourceMap == nil {
			instructions = append(instructions, stacktraces.NewInstruction(operation.PC, operation.Opcode, stacktraces.JumpTypeNotJump, operation.PushData, nil))
			continue
		}

		element := sourceMap[i]
		jumpType, err := stacktraces.JumpTypeFromSourceMapMarker(element.JumpMarker)
		if err != nil {
			return nil, errors.Wrapf(err, "source map element %d", i)
		}
		location, err := b.instructionLocation(element.SourceRange)
		if err != nil {
			return nil, errors.Wrapf(err, "source map element %d", i)
		}
		instructions = append(instructions, stacktraces.NewInstruction(operation.PC, operation.Opcode, jumpType, operation.PushData, location))
	}
	return instructions, nil
}

// instructionLocation resolves the source range of an instruction. Ranges with no file, or referring to a source
// the build does not describe (e.g. compiler-generated utility code), yield a nil location.
func (b *modelBuilder) instructionLocation(sourceRange types.SourceRange) (*stacktraces.SourceLocation, error) {
	if sourceRange.FileIndex < 0 || sourceRange.FileIndex >= len(b.model.sources) {
		return nil, nil
	}
	return stacktraces.NewSourceLocation(b.model.sources[sourceRange.FileIndex], sourceRange.Offset, sourceRange.Length)
}

// decodeHex decodes a hex string with or without a "0x" prefix.
func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}
