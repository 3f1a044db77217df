package stacktraces

import (
	"bytes"

	"github.com/Masterminds/semver"
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/crypto"
	compilationTypes "github.com/crytic/medusa-stacktraces/compilation/types"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Bytecode describes the instruction stream of one compiled artifact, either the deployment (init) code or the
// runtime code of a Contract, indexed by program counter.
type Bytecode struct {
	contract     *Contract
	isDeployment bool

	// normalizedCode is the raw code with every library address placeholder zeroed, so that hashing and comparison
	// do not depend on where libraries were linked.
	normalizedCode []byte

	instructions []*Instruction

	// libraryAddressPositions describes the byte offsets of every library address which is patched when linking.
	libraryAddressPositions []int

	// compilerVersion is the exact compiler version string. Heuristics run on traces are version sensitive.
	compilerVersion string

	pcToInstruction map[int]*Instruction
	codeHash        common.Hash
}

// NewBytecode creates a Bytecode, indexing the provided instructions by program counter. Returns an error if two
// instructions share a program counter.
func NewBytecode(
	contract *Contract,
	isDeployment bool,
	normalizedCode []byte,
	instructions []*Instruction,
	libraryAddressPositions []int,
	compilerVersion string,
) (*Bytecode, error) {
	pcToInstruction := make(map[int]*Instruction, len(instructions))
	for _, instruction := range instructions {
		if _, exists := pcToInstruction[instruction.PC()]; exists {
			return nil, errors.Wrapf(ErrDuplicateProgramCounter, "pc %d in %v bytecode of %v", instruction.PC(), bytecodeKind(isDeployment), contract.Name())
		}
		pcToInstruction[instruction.PC()] = instruction
	}

	return &Bytecode{
		contract:                contract,
		isDeployment:            isDeployment,
		normalizedCode:          slices.Clone(normalizedCode),
		instructions:            slices.Clone(instructions),
		libraryAddressPositions: slices.Clone(libraryAddressPositions),
		compilerVersion:         compilerVersion,
		pcToInstruction:         pcToInstruction,
		codeHash:                crypto.Keccak256Hash(normalizedCode),
	}, nil
}

// Contract returns the contract the code was compiled from.
func (b *Bytecode) Contract() *Contract {
	return b.contract
}

// IsDeployment returns true for deployment (init) code and false for runtime code.
func (b *Bytecode) IsDeployment() bool {
	return b.isDeployment
}

// NormalizedCode returns the code with library address placeholders zeroed.
func (b *Bytecode) NormalizedCode() []byte {
	return slices.Clone(b.normalizedCode)
}

// Instructions returns the decoded instructions in the order they were provided.
func (b *Bytecode) Instructions() []*Instruction {
	return slices.Clone(b.instructions)
}

// LibraryAddressPositions returns the byte offsets of every library address patched when linking.
func (b *Bytecode) LibraryAddressPositions() []int {
	return slices.Clone(b.libraryAddressPositions)
}

// CompilerVersion returns the exact version string of the compiler which emitted the code.
func (b *Bytecode) CompilerVersion() string {
	return b.compilerVersion
}

// CodeHash returns the keccak256 hash of the normalized code.
func (b *Bytecode) CodeHash() common.Hash {
	return b.codeHash
}

// GetInstruction returns the instruction at the provided program counter. An error indicates the caller is out of
// sync with the code it is tracing.
func (b *Bytecode) GetInstruction(pc int) (*Instruction, error) {
	instruction, ok := b.pcToInstruction[pc]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProgramCounter, "pc %d in %v bytecode of %v", pc, bytecodeKind(b.isDeployment), b.contract.Name())
	}
	return instruction, nil
}

// CompilerSemver parses the compiler version, e.g. "0.5.1+commit.c8a2cb62", as a semantic version.
func (b *Bytecode) CompilerSemver() (*semver.Version, error) {
	version, err := semver.NewVersion(b.compilerVersion)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse compiler version %q", b.compilerVersion)
	}
	return version, nil
}

// CompilerVersionSatisfies returns whether the compiler version satisfies the provided semver constraint, e.g.
// ">= 0.5.0".
func (b *Bytecode) CompilerVersionSatisfies(constraint string) (bool, error) {
	constraints, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, errors.Wrapf(err, "could not parse version constraint %q", constraint)
	}
	version, err := b.CompilerSemver()
	if err != nil {
		return false, err
	}
	return constraints.Check(version), nil
}

// Matches returns whether code observed on chain was compiled from this Bytecode. Library addresses are ignored,
// as is the self-address embedded in deployed library runtime code. Deployment code may be followed by constructor
// arguments. If stripMetadata is set, code which only differs in its trailing compiler metadata also matches.
func (b *Bytecode) Matches(code []byte, stripMetadata bool) bool {
	if b.isDeployment {
		if len(code) < len(b.normalizedCode) {
			return false
		}
		code = code[:len(b.normalizedCode)]
	}

	normalized := compilationTypes.NormalizeLibraryAddresses(code, b.libraryAddressPositions)
	if !b.isDeployment && b.contract.Type() == ContractTypeLibrary {
		normalized = compilationTypes.NormalizeLibraryRuntimeAddress(normalized)
	}

	if bytes.Equal(normalized, b.normalizedCode) {
		return true
	}
	if !stripMetadata {
		return false
	}

	withoutMetadata := compilationTypes.RemoveContractMetadata(normalized)
	expectedWithoutMetadata := compilationTypes.RemoveContractMetadata(b.normalizedCode)
	if len(withoutMetadata) == len(normalized) || len(expectedWithoutMetadata) == len(b.normalizedCode) {
		// Without metadata on both sides there is nothing left to compare
		return false
	}
	return bytes.Equal(withoutMetadata, expectedWithoutMetadata)
}

// bytecodeKind returns a human-readable name for deployment or runtime code.
func bytecodeKind(isDeployment bool) string {
	if isDeployment {
		return "deployment"
	}
	return "runtime"
}
