package stacktraces

import (
	"fmt"

	"github.com/pkg/errors"
)

// JumpType describes how an Instruction transfers control, as reported by the compiler's source mappings.
type JumpType int

const (
	// JumpTypeNotJump indicates the instruction is not a jump.
	JumpTypeNotJump JumpType = iota

	// JumpTypeIntoFunction indicates a jump into a function.
	JumpTypeIntoFunction

	// JumpTypeOutOfFunction indicates a return from a function.
	JumpTypeOutOfFunction

	// JumpTypeInternalJump indicates a jump within the same function, e.g. for loops.
	JumpTypeInternalJump
)

// String returns a human-readable name for the JumpType.
func (j JumpType) String() string {
	switch j {
	case JumpTypeNotJump:
		return "NOT_JUMP"
	case JumpTypeIntoFunction:
		return "INTO_FUNCTION"
	case JumpTypeOutOfFunction:
		return "OUTOF_FUNCTION"
	case JumpTypeInternalJump:
		return "INTERNAL_JUMP"
	default:
		return fmt.Sprintf("JumpType(%d)", int(j))
	}
}

// JumpTypeFromSourceMapMarker converts the jump marker of a source mapping element ("", "i", "o" or "-") into a
// JumpType.
// Reference: https://docs.soliditylang.org/en/latest/internals/source_mappings.html
func JumpTypeFromSourceMapMarker(marker string) (JumpType, error) {
	switch marker {
	case "":
		return JumpTypeNotJump, nil
	case "i":
		return JumpTypeIntoFunction, nil
	case "o":
		return JumpTypeOutOfFunction, nil
	case "-":
		return JumpTypeInternalJump, nil
	default:
		return JumpTypeNotJump, errors.Errorf("unknown source map jump marker %q", marker)
	}
}

// ContractType describes the kind of a Contract.
type ContractType int

const (
	// ContractTypeContract describes a regular contract.
	ContractTypeContract ContractType = iota
	// ContractTypeLibrary describes a library.
	ContractTypeLibrary
)

// String returns a human-readable name for the ContractType.
func (t ContractType) String() string {
	switch t {
	case ContractTypeContract:
		return "contract"
	case ContractTypeLibrary:
		return "library"
	default:
		return fmt.Sprintf("ContractType(%d)", int(t))
	}
}

// ParseContractType parses the compiler's contract kind string into a ContractType.
func ParseContractType(kind string) (ContractType, error) {
	switch kind {
	case "contract":
		return ContractTypeContract, nil
	case "library":
		return ContractTypeLibrary, nil
	default:
		return ContractTypeContract, errors.Errorf("unsupported contract kind %q", kind)
	}
}

// ContractFunctionType describes the kind of a ContractFunction.
type ContractFunctionType int

const (
	ContractFunctionTypeConstructor ContractFunctionType = iota
	ContractFunctionTypeFunction
	ContractFunctionTypeFallback
	ContractFunctionTypeGetter
	ContractFunctionTypeModifier
)

// String returns a human-readable name for the ContractFunctionType.
func (t ContractFunctionType) String() string {
	switch t {
	case ContractFunctionTypeConstructor:
		return "constructor"
	case ContractFunctionTypeFunction:
		return "function"
	case ContractFunctionTypeFallback:
		return "fallback"
	case ContractFunctionTypeGetter:
		return "getter"
	case ContractFunctionTypeModifier:
		return "modifier"
	default:
		return fmt.Sprintf("ContractFunctionType(%d)", int(t))
	}
}

// ParseContractFunctionType parses a function kind string into a ContractFunctionType.
func ParseContractFunctionType(kind string) (ContractFunctionType, error) {
	switch kind {
	case "constructor":
		return ContractFunctionTypeConstructor, nil
	case "function":
		return ContractFunctionTypeFunction, nil
	case "fallback":
		return ContractFunctionTypeFallback, nil
	case "getter":
		return ContractFunctionTypeGetter, nil
	case "modifier":
		return ContractFunctionTypeModifier, nil
	default:
		return ContractFunctionTypeFunction, errors.Errorf("unsupported function kind %q", kind)
	}
}

// ContractFunctionVisibility describes the visibility of a ContractFunction.
type ContractFunctionVisibility int

const (
	ContractFunctionVisibilityPrivate ContractFunctionVisibility = iota
	ContractFunctionVisibilityInternal
	ContractFunctionVisibilityPublic
	ContractFunctionVisibilityExternal
)

// String returns a human-readable name for the ContractFunctionVisibility.
func (v ContractFunctionVisibility) String() string {
	switch v {
	case ContractFunctionVisibilityPrivate:
		return "private"
	case ContractFunctionVisibilityInternal:
		return "internal"
	case ContractFunctionVisibilityPublic:
		return "public"
	case ContractFunctionVisibilityExternal:
		return "external"
	default:
		return fmt.Sprintf("ContractFunctionVisibility(%d)", int(v))
	}
}

// IsExternallyVisible returns true for public and external visibility.
func (v ContractFunctionVisibility) IsExternallyVisible() bool {
	return v == ContractFunctionVisibilityPublic || v == ContractFunctionVisibilityExternal
}

// ParseContractFunctionVisibility parses a visibility string into a ContractFunctionVisibility.
func ParseContractFunctionVisibility(visibility string) (ContractFunctionVisibility, error) {
	switch visibility {
	case "private":
		return ContractFunctionVisibilityPrivate, nil
	case "internal":
		return ContractFunctionVisibilityInternal, nil
	case "public":
		return ContractFunctionVisibilityPublic, nil
	case "external":
		return ContractFunctionVisibilityExternal, nil
	default:
		return ContractFunctionVisibilityPrivate, errors.Errorf("unsupported function visibility %q", visibility)
	}
}
