package stacktraces

import "github.com/pkg/errors"

// The following errors describe structural violations in a model graph. They indicate the adapter which built the
// graph produced internally inconsistent input, and are never expected during normal trace building.
var (
	// ErrInvalidLocation indicates a SourceLocation was created with a negative offset or length, or an entity which
	// needs a location has none.
	ErrInvalidLocation = errors.New("invalid source location")

	// ErrEntityFromAnotherFile indicates a Contract or ContractFunction was added to a SourceFile it is not located in.
	ErrEntityFromAnotherFile = errors.New("entity is located in another source file")

	// ErrFunctionOutsideContract indicates a ContractFunction location is not contained by its contract location.
	ErrFunctionOutsideContract = errors.New("function location is not contained by its contract location")

	// ErrFunctionNotLocal indicates a ContractFunction was added to a Contract which does not own it.
	ErrFunctionNotLocal = errors.New("function is not local to the contract")

	// ErrMissingSelector indicates an externally callable function or getter was added without a selector.
	ErrMissingSelector = errors.New("externally callable function has no selector")

	// ErrDuplicateProgramCounter indicates two instructions in one Bytecode share a program counter.
	ErrDuplicateProgramCounter = errors.New("duplicate program counter in instruction stream")

	// ErrUnknownProgramCounter indicates a lookup for a program counter which has no instruction.
	ErrUnknownProgramCounter = errors.New("no instruction at program counter")
)
