package stacktraces

import (
	"bytes"
	"testing"

	"github.com/crytic/medusa-geth/core/vm"
	"github.com/crytic/medusa-geth/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBytecode creates a Bytecode for the contract, failing the test on error.
func newTestBytecode(t *testing.T, contract *Contract, isDeployment bool, code []byte, positions []int) *Bytecode {
	t.Helper()
	bytecode, err := NewBytecode(contract, isDeployment, code, nil, positions, "0.5.1+commit.c8a2cb62")
	require.NoError(t, err)
	return bytecode
}

// TestGetInstruction verifies lookups succeed for every supplied program counter and fail for any other.
func TestGetInstruction(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	contract := newTestContract(t, file, "A", 0, 200)

	push := NewInstruction(0, vm.PUSH4, JumpTypeNotJump, []byte{1, 2, 3, 4}, nil)
	jump := NewInstruction(5, vm.JUMP, JumpTypeInternalJump, nil, newTestLocation(t, file, 20, 5))
	bytecode, err := NewBytecode(contract, false, []byte{0x63, 1, 2, 3, 4, 0x56}, []*Instruction{push, jump}, nil, "0.5.1")
	require.NoError(t, err)

	instruction, err := bytecode.GetInstruction(5)
	require.NoError(t, err)
	assert.Same(t, jump, instruction)

	instruction, err = bytecode.GetInstruction(0)
	require.NoError(t, err)
	assert.Same(t, push, instruction)

	for _, pc := range []int{-1, 1, 3, 6, 1000} {
		_, err = bytecode.GetInstruction(pc)
		assert.True(t, errors.Is(err, ErrUnknownProgramCounter), "pc %d", pc)
	}

	assert.Equal(t, []*Instruction{push, jump}, bytecode.Instructions())
	assert.Same(t, contract, bytecode.Contract())
	assert.False(t, bytecode.IsDeployment())
}

// TestNewBytecodeDuplicateProgramCounter verifies two instructions sharing a program counter fail construction.
func TestNewBytecodeDuplicateProgramCounter(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	contract := newTestContract(t, file, "A", 0, 200)

	instructions := []*Instruction{
		NewInstruction(0, vm.PUSH1, JumpTypeNotJump, []byte{1}, nil),
		NewInstruction(0, vm.STOP, JumpTypeNotJump, nil, nil),
	}
	_, err := NewBytecode(contract, true, []byte{0x60, 0x01}, instructions, nil, "0.5.1")
	assert.True(t, errors.Is(err, ErrDuplicateProgramCounter))
}

// TestBytecodeCompilerVersion verifies compiler versions with build metadata are parsed and checked against
// constraints.
func TestBytecodeCompilerVersion(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	contract := newTestContract(t, file, "A", 0, 200)
	bytecode := newTestBytecode(t, contract, false, []byte{0x00}, nil)

	version, err := bytecode.CompilerSemver()
	require.NoError(t, err)
	assert.Equal(t, int64(5), version.Minor())

	satisfied, err := bytecode.CompilerVersionSatisfies(">= 0.5.0")
	require.NoError(t, err)
	assert.True(t, satisfied)

	satisfied, err = bytecode.CompilerVersionSatisfies(">= 0.6.0")
	require.NoError(t, err)
	assert.False(t, satisfied)

	_, err = bytecode.CompilerVersionSatisfies("not a constraint")
	assert.Error(t, err)

	invalid, err := NewBytecode(contract, false, nil, nil, nil, "unknown")
	require.NoError(t, err)
	_, err = invalid.CompilerSemver()
	assert.Error(t, err)
}

// TestBytecodeMatchesLinkedCode verifies linked library addresses and constructor arguments do not prevent a match.
func TestBytecodeMatchesLinkedCode(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	contract := newTestContract(t, file, "A", 0, 200)

	// PUSH20 <library address> DELEGATECALL
	normalized := append(append([]byte{byte(vm.PUSH20)}, make([]byte, 20)...), byte(vm.DELEGATECALL))
	runtime := newTestBytecode(t, contract, false, normalized, []int{1})
	deployment := newTestBytecode(t, contract, true, normalized, []int{1})

	linked := bytes.Clone(normalized)
	copy(linked[1:21], bytes.Repeat([]byte{0xab}, 20))
	assert.True(t, runtime.Matches(linked, false))
	assert.True(t, runtime.Matches(normalized, false))
	assert.Equal(t, crypto.Keccak256Hash(normalized), runtime.CodeHash())

	// Runtime code must match in length
	assert.False(t, runtime.Matches(append(bytes.Clone(linked), 0x00), false))

	// Deployment code may carry constructor arguments
	withArgs := append(bytes.Clone(linked), 0x00, 0x00, 0x01)
	assert.True(t, deployment.Matches(withArgs, false))
	assert.False(t, deployment.Matches(linked[:10], false))

	different := bytes.Clone(linked)
	different[21] = byte(vm.CALL)
	assert.False(t, runtime.Matches(different, false))
}

// TestBytecodeMatchesLibraryRuntimeCode verifies the self-address embedded in deployed library code is ignored.
func TestBytecodeMatchesLibraryRuntimeCode(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	library := NewContract("Lib", ContractTypeLibrary, newTestLocation(t, file, 0, 100))
	contract := newTestContract(t, file, "A", 100, 100)

	compiled := append(append([]byte{byte(vm.PUSH20)}, make([]byte, 20)...), byte(vm.ADDRESS), byte(vm.EQ))
	deployed := bytes.Clone(compiled)
	copy(deployed[1:21], bytes.Repeat([]byte{0x11}, 20))

	assert.True(t, newTestBytecode(t, library, false, compiled, nil).Matches(deployed, false))
	assert.False(t, newTestBytecode(t, contract, false, compiled, nil).Matches(deployed, false))
}

// TestBytecodeMatchesIgnoringMetadata verifies code differing only in its trailing metadata matches when requested.
func TestBytecodeMatchesIgnoringMetadata(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	contract := newTestContract(t, file, "A", 0, 200)

	body := []byte{byte(vm.PUSH1), 0x80, byte(vm.PUSH1), 0x40, byte(vm.MSTORE), byte(vm.STOP)}
	compiled := append(bytes.Clone(body), testMetadata(0x01)...)
	deployed := append(bytes.Clone(body), testMetadata(0x02)...)

	bytecode := newTestBytecode(t, contract, false, compiled, nil)
	assert.False(t, bytecode.Matches(deployed, false))
	assert.True(t, bytecode.Matches(deployed, true))

	// Code without metadata is never matched by stripping
	noMetadata := newTestBytecode(t, contract, false, body, nil)
	assert.False(t, noMetadata.Matches(append(bytes.Clone(body), byte(vm.STOP)), true))
}

// TestBytecodeIndexLookup verifies exact and normalized lookups, tie breaking and the deployment/runtime split.
func TestBytecodeIndexLookup(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	a := newTestContract(t, file, "A", 0, 100)
	b := newTestContract(t, file, "B", 100, 100)

	normalized := append(append([]byte{byte(vm.PUSH20)}, make([]byte, 20)...), byte(vm.DELEGATECALL))
	aRuntime := newTestBytecode(t, a, false, normalized, []int{1})
	bRuntime := newTestBytecode(t, b, false, normalized, []int{1})
	bDeployment := newTestBytecode(t, b, true, []byte{byte(vm.PUSH1), 0x01, byte(vm.STOP)}, nil)

	index := NewBytecodeIndex(true)
	index.Add(aRuntime)
	index.Add(bRuntime)
	index.Add(bDeployment)
	assert.Equal(t, 3, index.Len())

	assert.Same(t, aRuntime, index.Lookup(normalized, false))

	linked := bytes.Clone(normalized)
	copy(linked[1:21], bytes.Repeat([]byte{0xcd}, 20))
	assert.Same(t, aRuntime, index.Lookup(linked, false))
	assert.Nil(t, index.Lookup(linked, true))

	assert.Same(t, bDeployment, index.Lookup([]byte{byte(vm.PUSH1), 0x01, byte(vm.STOP), 0xff}, true))
	assert.Nil(t, index.Lookup([]byte{byte(vm.STOP)}, false))
}

// testMetadata builds a CBOR-encoded "ipfs" metadata trailer with a recognizable hash.
func testMetadata(marker byte) []byte {
	// a2 64 "ipfs" 58 22 <34 bytes> 64 "solc" 43 <3 bytes> 00 33
	metadata := []byte{0xa2, 0x64, 'i', 'p', 'f', 's', 0x58, 0x22}
	metadata = append(metadata, bytes.Repeat([]byte{marker}, 34)...)
	metadata = append(metadata, 0x64, 's', 'o', 'l', 'c', 0x43, 0x00, 0x08, 0x13)
	return append(metadata, 0x00, 0x33)
}
