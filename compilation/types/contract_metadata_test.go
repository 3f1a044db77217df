package types

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMetadata returns a CBOR map of an "ipfs" hash and a "solc" version, followed by its big endian length.
func testMetadata() []byte {
	metadata := []byte{0xa2, 0x64, 'i', 'p', 'f', 's', 0x58, 0x22}
	metadata = append(metadata, bytes.Repeat([]byte{0x12}, 34)...)
	metadata = append(metadata, 0x64, 's', 'o', 'l', 'c', 0x43, 0x00, 0x08, 0x13)
	return append(metadata, 0x00, 0x33)
}

// TestContractMetadata verifies metadata is located, decoded and removed from bytecode.
func TestContractMetadata(t *testing.T) {
	t.Parallel()
	body := []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x00}
	code := append(bytes.Clone(body), testMetadata()...)

	metadata := ExtractContractMetadata(code)
	require.NotNil(t, metadata)
	assert.Equal(t, bytes.Repeat([]byte{0x12}, 34), metadata.ExtractBytecodeHash())
	assert.Equal(t, "0.8.19", metadata.ExtractCompilerVersion())

	assert.Equal(t, body, RemoveContractMetadata(code))

	// Constructor arguments following the metadata are removed with it
	withArgs := append(bytes.Clone(code), 0x00, 0x01)
	assert.Equal(t, body, RemoveContractMetadata(withArgs))
}

// TestContractMetadataUndecodablePrefix verifies a metadata prefix which does not decode is skipped in favor of the
// next prefix.
func TestContractMetadataUndecodablePrefix(t *testing.T) {
	t.Parallel()
	body := []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x00}
	metadata := testMetadata()

	// Embed a "bzzr0" prefix inside the ipfs hash, too close to the end to hold its 32 byte hash
	strayPrefix := []byte{0xa1, 0x65, 'b', 'z', 'z', 'r', '0', 0x58, 0x20}
	copy(metadata[8+20:], strayPrefix)
	code := append(bytes.Clone(body), metadata...)

	expectedHash := bytes.Repeat([]byte{0x12}, 34)
	copy(expectedHash[20:], strayPrefix)

	extracted := ExtractContractMetadata(code)
	require.NotNil(t, extracted)
	assert.Equal(t, expectedHash, extracted.ExtractBytecodeHash())
	assert.Equal(t, "0.8.19", extracted.ExtractCompilerVersion())
	assert.Equal(t, body, RemoveContractMetadata(code))
}

// TestContractMetadataAbsent verifies bytecode without metadata is left untouched.
func TestContractMetadataAbsent(t *testing.T) {
	t.Parallel()
	body := []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x00}
	assert.Nil(t, ExtractContractMetadata(body))
	assert.Equal(t, body, RemoveContractMetadata(body))

	var metadata ContractMetadata = map[string]any{"solc": "0.8.19"}
	assert.Empty(t, metadata.ExtractCompilerVersion())
	assert.Nil(t, metadata.ExtractBytecodeHash())
}
