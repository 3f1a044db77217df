package types

import "github.com/crytic/medusa-geth/core/vm"

const (
	// LibraryAddressLength is the byte length of a linked library address.
	LibraryAddressLength = 20

	// LibraryPlaceholderHexLength is the hex character length of an unlinked library placeholder, e.g.
	// "__$<34 hex characters>$__".
	LibraryPlaceholderHexLength = LibraryAddressLength * 2
)

// LibraryIndicator is the prefix of unlinked library runtime bytecode: a PUSH20 of a zero address. Once deployed,
// the compiler-emitted code pushes the library's own address instead, which lets it detect delegate calls.
var LibraryIndicator = append([]byte{byte(vm.PUSH20)}, make([]byte, LibraryAddressLength)...)
