package compilation

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// BuildDescription describes the already-decoded output of one compiler run: every source unit with its contracts,
// their functions and their instruction streams. Source locations are byte offsets into the source content.
type BuildDescription struct {
	// CompilerVersion is the exact version string of the compiler, e.g. "0.5.1+commit.c8a2cb62".
	CompilerVersion string `json:"compilerVersion"`

	// Sources lists every source unit. Its index is the file index used by instruction source ranges.
	Sources []SourceDescription `json:"sources"`
}

// SourceDescription describes a single source unit.
type SourceDescription struct {
	// GlobalName is the unique name of the source file, e.g. "contracts/Token.sol".
	GlobalName string `json:"globalName"`

	// Content is the full source text.
	Content string `json:"content"`

	// Contracts lists the contracts and libraries defined in the file.
	Contracts []ContractDescription `json:"contracts"`
}

// ContractDescription describes a contract or library.
type ContractDescription struct {
	// Name is the contract name.
	Name string `json:"name"`

	// Kind is either "contract" or "library".
	Kind string `json:"kind"`

	// Src is the "offset:length[:fileIndex]" source range of the contract definition.
	Src string `json:"src"`

	// LinearizedBaseContracts names the contract's bases in linearization order, nearest first, excluding the
	// contract itself.
	LinearizedBaseContracts []string `json:"linearizedBaseContracts"`

	// MethodIdentifiers maps canonical signatures to hex selectors, as reported by the compiler.
	MethodIdentifiers map[string]string `json:"methodIdentifiers"`

	// Functions lists the functions, modifiers and getters declared by the contract itself.
	Functions []FunctionDescription `json:"functions"`

	// DeploymentBytecode describes the init code, if it was emitted.
	DeploymentBytecode *BytecodeDescription `json:"deploymentBytecode,omitempty"`

	// RuntimeBytecode describes the runtime code, if it was emitted.
	RuntimeBytecode *BytecodeDescription `json:"runtimeBytecode,omitempty"`
}

// FunctionDescription describes a function-like definition of a contract.
type FunctionDescription struct {
	// Name is the function name. It may be empty for constructors and fallbacks.
	Name string `json:"name"`

	// Kind is one of "constructor", "function", "fallback", "getter" or "modifier".
	Kind string `json:"kind"`

	// Visibility is one of "private", "internal", "public" or "external", if known.
	Visibility string `json:"visibility,omitempty"`

	// Payable describes whether the function accepts value, if known.
	Payable *bool `json:"payable,omitempty"`

	// Src is the "offset:length[:fileIndex]" source range of the definition.
	Src string `json:"src"`

	// Selector is the hex encoded function selector, if known.
	Selector string `json:"selector,omitempty"`

	// Signature is the canonical signature, e.g. "transfer(address,uint256)". It is used to compute the selector
	// when Selector is absent.
	Signature string `json:"signature,omitempty"`
}

// BytecodeDescription describes a compiled artifact and its decoded instructions.
type BytecodeDescription struct {
	// Object is the hex encoded code. It may contain unlinked library placeholders.
	Object string `json:"object"`

	// Instructions lists the decoded instructions. When empty, they are decoded from Object and SourceMap instead.
	Instructions []InstructionDescription `json:"instructions,omitempty"`

	// SourceMap is the compiler's compressed source map, used when Instructions is empty.
	SourceMap string `json:"sourceMap,omitempty"`
}

// InstructionDescription describes a single decoded instruction.
type InstructionDescription struct {
	// PC is the byte offset of the instruction.
	PC int `json:"pc"`

	// Op is the opcode name, e.g. "PUSH1" or "JUMPDEST".
	Op string `json:"op"`

	// Jump is the compiler's jump marker: "", "i", "o" or "-".
	Jump string `json:"jump,omitempty"`

	// PushData is the hex encoded immediate of a push instruction.
	PushData string `json:"pushData,omitempty"`

	// Src is the "offset:length:fileIndex" source range of the instruction. A file index of -1 or an absent value
	// means the instruction has no source correspondence.
	Src string `json:"src,omitempty"`
}

// LoadBuildDescription reads a JSON-serialized BuildDescription from a provided file path.
func LoadBuildDescription(path string) (*BuildDescription, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var desc BuildDescription
	if err = json.Unmarshal(b, &desc); err != nil {
		return nil, errors.Wrapf(err, "could not parse build description %v", path)
	}
	return &desc, nil
}
