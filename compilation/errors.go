package compilation

import "github.com/pkg/errors"

var (
	// ErrUnknownContract indicates a contract name did not resolve to any contract of the build.
	ErrUnknownContract = errors.New("unknown contract")

	// ErrAmbiguousContract indicates a contract name resolved to contracts of more than one source file.
	ErrAmbiguousContract = errors.New("ambiguous contract name")

	// ErrUnknownOpcode indicates an instruction named an opcode the EVM does not define.
	ErrUnknownOpcode = errors.New("unknown opcode")
)
