package stacktraces

import (
	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/medusa-geth/crypto"
)

// BytecodeIndex identifies which compiled Bytecode some code observed on chain was produced from. It is populated
// during the build phase and is safe for concurrent lookups afterwards.
type BytecodeIndex struct {
	// stripMetadata describes whether code which only differs in trailing compiler metadata is considered a match.
	stripMetadata bool

	// deployment and runtime hold registered bytecodes in registration order, which decides ties.
	deployment []*Bytecode
	runtime    []*Bytecode

	// deploymentHashes and runtimeHashes resolve exact normalized code hashes.
	deploymentHashes map[common.Hash]*Bytecode
	runtimeHashes    map[common.Hash]*Bytecode
}

// NewBytecodeIndex creates an empty BytecodeIndex.
func NewBytecodeIndex(stripMetadata bool) *BytecodeIndex {
	return &BytecodeIndex{
		stripMetadata:    stripMetadata,
		deploymentHashes: make(map[common.Hash]*Bytecode),
		runtimeHashes:    make(map[common.Hash]*Bytecode),
	}
}

// Add registers a Bytecode. If another one with the same normalized code was registered first, it keeps winning
// exact hash lookups.
func (i *BytecodeIndex) Add(bytecode *Bytecode) {
	bytecodes, hashes := &i.runtime, i.runtimeHashes
	if bytecode.IsDeployment() {
		bytecodes, hashes = &i.deployment, i.deploymentHashes
	}

	*bytecodes = append(*bytecodes, bytecode)
	if _, exists := hashes[bytecode.CodeHash()]; !exists {
		hashes[bytecode.CodeHash()] = bytecode
	}
}

// Len returns the number of registered bytecodes.
func (i *BytecodeIndex) Len() int {
	return len(i.deployment) + len(i.runtime)
}

// Lookup returns the registered Bytecode the provided code was compiled from, or nil if none matches.
func (i *BytecodeIndex) Lookup(code []byte, isDeployment bool) *Bytecode {
	bytecodes, hashes := i.runtime, i.runtimeHashes
	if isDeployment {
		bytecodes, hashes = i.deployment, i.deploymentHashes
	}

	// Unlinked code without constructor arguments hashes exactly
	if bytecode, ok := hashes[crypto.Keccak256Hash(code)]; ok {
		return bytecode
	}

	for _, bytecode := range bytecodes {
		if bytecode.Matches(code, i.stripMetadata) {
			return bytecode
		}
	}
	return nil
}
