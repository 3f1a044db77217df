package compilation

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/crytic/medusa-stacktraces/stacktraces"
)

// ComputeArtifactHash computes a SHA-256 hash of every bytecode decoded in the model, identifying the build it was
// created from. Library addresses are normalized, so linking does not change the hash. The hash is computed
// deterministically by sorting bytecodes by qualified contract name before hashing.
func ComputeArtifactHash(bytecodes []*stacktraces.Bytecode) string {
	hasher := sha256.New()

	type contractBytecode struct {
		name         string
		isDeployment bool
		code         []byte
	}
	contracts := make([]contractBytecode, 0, len(bytecodes))
	for _, bytecode := range bytecodes {
		contract := bytecode.Contract()
		contracts = append(contracts, contractBytecode{
			name:         contract.Location().File().GlobalName() + ":" + contract.Name(),
			isDeployment: bytecode.IsDeployment(),
			code:         bytecode.NormalizedCode(),
		})
	}

	// Sort by contract name for deterministic hashing, deployment code first
	sort.SliceStable(contracts, func(i, j int) bool {
		if contracts[i].name != contracts[j].name {
			return contracts[i].name < contracts[j].name
		}
		return contracts[i].isDeployment && !contracts[j].isDeployment
	})

	// Hash each contract's bytecode
	for _, c := range contracts {
		hasher.Write([]byte(c.name))
		if c.isDeployment {
			hasher.Write([]byte{1})
		} else {
			hasher.Write([]byte{0})
		}
		hasher.Write(c.code)
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

// ArtifactHash returns the ComputeArtifactHash of the model's bytecodes.
func (m *Model) ArtifactHash() string {
	return ComputeArtifactHash(m.bytecodes)
}
