package stacktraces

import (
	"strings"

	"github.com/crytic/medusa-geth/common/hexutil"
	"github.com/crytic/medusa-geth/crypto"
	"github.com/pkg/errors"
)

// SelectorLength is the byte length of an ABI function selector.
const SelectorLength = 4

// Selector describes a 4-byte ABI function selector, derived from the keccak256 hash of a canonical function
// signature and used to dispatch external calls.
type Selector [SelectorLength]byte

// SelectorFromSignature computes the selector for a canonical function signature, e.g. "transfer(address,uint256)".
func SelectorFromSignature(signature string) Selector {
	var selector Selector
	copy(selector[:], crypto.Keccak256([]byte(signature))[:SelectorLength])
	return selector
}

// SelectorFromBytes creates a Selector from the first four bytes of the provided data, such as call data.
// Returns an error if the data is too short.
func SelectorFromBytes(data []byte) (Selector, error) {
	var selector Selector
	if len(data) < SelectorLength {
		return selector, errors.Errorf("selector requires %d bytes, got %d", SelectorLength, len(data))
	}
	copy(selector[:], data[:SelectorLength])
	return selector, nil
}

// ParseSelector parses a hex-encoded selector, with or without a "0x" prefix. The compiler's method identifier
// output omits the prefix.
func ParseSelector(s string) (Selector, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return Selector{}, errors.Wrapf(err, "could not decode selector %q", s)
	}
	if len(b) != SelectorLength {
		return Selector{}, errors.Errorf("selector %q has %d bytes, expected %d", s, len(b), SelectorLength)
	}
	return Selector(b), nil
}

// Bytes returns the selector as a byte slice.
func (s Selector) Bytes() []byte {
	return s[:]
}

// String returns the selector as a "0x"-prefixed hex string.
func (s Selector) String() string {
	return hexutil.Encode(s[:])
}
