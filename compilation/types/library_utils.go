package types

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/medusa-geth/core/vm"
	"github.com/pkg/errors"
)

// libraryPlaceholderRegex matches unlinked library placeholders within hex-encoded bytecode. Newer compilers emit
// "__$<34 hex chars>$__", older ones emit "__<name padded with underscores>__". Both are 40 characters long, the
// size of the address they stand in for.
var libraryPlaceholderRegex = regexp.MustCompile(`__(\$[0-9a-fA-F]{34}\$|[^$]{36})__`)

// NormalizeUnlinkedBytecode decodes hex-encoded bytecode which may contain unlinked library placeholders. Every
// placeholder is replaced with a zero address so the result does not depend on where libraries are deployed.
// Returns the decoded code and the byte offsets of every zeroed address, or an error if the code is not valid hex.
func NormalizeUnlinkedBytecode(hexCode string) ([]byte, []int, error) {
	hexCode = strings.TrimPrefix(strings.TrimPrefix(hexCode, "0x"), "0X")

	// Find every placeholder and replace it with zeros, recording where in the decoded code it starts.
	var positions []int
	var normalized strings.Builder
	last := 0
	for _, match := range libraryPlaceholderRegex.FindAllStringIndex(hexCode, -1) {
		if match[1]-match[0] != LibraryPlaceholderHexLength {
			continue
		}
		if match[0]%2 != 0 {
			return nil, nil, errors.Errorf("library placeholder at hex offset %d is not byte aligned", match[0])
		}
		normalized.WriteString(hexCode[last:match[0]])
		normalized.WriteString(strings.Repeat("0", LibraryPlaceholderHexLength))
		positions = append(positions, match[0]/2)
		last = match[1]
	}
	normalized.WriteString(hexCode[last:])

	code, err := hexutil.Decode("0x" + normalized.String())
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not decode bytecode")
	}
	return code, positions, nil
}

// NormalizeLibraryAddresses returns a copy of the code with a zero address written at every provided position.
// Positions which do not leave room for a full address are ignored.
func NormalizeLibraryAddresses(code []byte, positions []int) []byte {
	normalized := bytes.Clone(code)
	for _, position := range positions {
		if position < 0 || position+LibraryAddressLength > len(normalized) {
			continue
		}
		clear(normalized[position : position+LibraryAddressLength])
	}
	return normalized
}

// IsLibraryRuntimeBytecode returns true if the code starts with a PUSH20, the self-address check the compiler
// prepends to library runtime code.
func IsLibraryRuntimeBytecode(code []byte) bool {
	return len(code) >= len(LibraryIndicator) && code[0] == byte(vm.PUSH20)
}

// NormalizeLibraryRuntimeAddress returns a copy of deployed library runtime code with its embedded self-address
// replaced by the zero address, so it can be compared with the compiler's output. Code which is not library runtime
// code is returned as a plain copy.
func NormalizeLibraryRuntimeAddress(code []byte) []byte {
	normalized := bytes.Clone(code)
	if IsLibraryRuntimeBytecode(normalized) {
		clear(normalized[1:len(LibraryIndicator)])
	}
	return normalized
}
