package types

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor"
)

// ContractMetadata is a CBOR-encoded structure describing contract information which is embedded within smart
// contract bytecode by the Solidity compiler (unless explicitly directed not to).
// Reference: https://docs.soliditylang.org/en/v0.8.16/metadata.html
type ContractMetadata map[string]any

// metadataHashPrefixes defines patterns to use in search for CBOR-encoded contract metadata appended to the end of
// bytecode.
var metadataHashPrefixes = [][]byte{
	{0xa1, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a1 65 "bzzr0" 0x58 0x20 (solc <= 0.5.8)
	{0xa2, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a2 65 "bzzr0" 0x58 0x20 (solc >= 0.5.9)
	{0xa2, 0x65, 98, 122, 122, 114, 49, 0x58, 0x20},  // a2 65 "bzzr1" 0x58 0x20 (solc >= 0.5.11)
	{0xa2, 0x64, 0x69, 0x70, 0x66, 0x73, 0x58, 0x22}, // a2 64 "ipfs" 0x58 0x22 (solc >= 0.6.0)
}

// byteCodeHashMetadataKeys defines the keys in the CBOR-encoded ContractMetadata which contain bytecode hashes.
var byteCodeHashMetadataKeys = [...]string{
	"bzzr0",
	"bzzr1",
	"ipfs",
}

// findContractMetadata returns the offset at which decodable CBOR-encoded metadata starts in the bytecode, along with
// the decoded metadata. A prefix match which does not decode is skipped in favor of the next prefix. Returns -1 and
// nil if no metadata is found.
func findContractMetadata(bytecode []byte) (int, *ContractMetadata) {
	for _, metadataHashPrefix := range metadataHashPrefixes {
		metadataOffset := bytes.LastIndex(bytecode, metadataHashPrefix)
		if metadataOffset == -1 {
			continue
		}

		var metadata ContractMetadata
		if err := cbor.Unmarshal(bytecode[metadataOffset:], &metadata); err != nil {
			continue
		}
		return metadataOffset, &metadata
	}
	return -1, nil
}

// ExtractContractMetadata extracts contract metadata from provided byte code and returns it. If contract metadata
// could not be extracted, nil is returned.
func ExtractContractMetadata(bytecode []byte) *ContractMetadata {
	_, metadata := findContractMetadata(bytecode)
	return metadata
}

// RemoveContractMetadata returns the bytecode preceding any embedded contract metadata (and any constructor
// arguments following it). Bytecode with no detectable metadata is returned as-is.
func RemoveContractMetadata(bytecode []byte) []byte {
	if metadataOffset, _ := findContractMetadata(bytecode); metadataOffset != -1 {
		return bytecode[:metadataOffset]
	}
	return bytecode
}

// ExtractBytecodeHash extracts the bytecode hash from given contract metadata and returns the bytes representing the
// hash. If it could not be detected or extracted, nil is returned.
func (m ContractMetadata) ExtractBytecodeHash() []byte {
	for _, possibleMetadataKey := range byteCodeHashMetadataKeys {
		if bytecodeHashData, keyExists := m[possibleMetadataKey]; keyExists {
			if bytecodeHash, ok := bytecodeHashData.([]byte); ok {
				return bytecodeHash
			}
		}
	}
	return nil
}

// ExtractCompilerVersion returns the compiler version recorded under the "solc" key, which holds the major, minor
// and patch numbers as three bytes. Returns an empty string if it is absent.
func (m ContractMetadata) ExtractCompilerVersion() string {
	versionData, ok := m["solc"].([]byte)
	if !ok || len(versionData) != 3 {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", versionData[0], versionData[1], versionData[2])
}
