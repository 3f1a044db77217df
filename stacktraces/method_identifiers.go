package stacktraces

import (
	"sort"
	"strings"

	"github.com/crytic/medusa-stacktraces/logging"
	"github.com/crytic/medusa-stacktraces/logging/colors"
	"github.com/pkg/errors"
)

// SelectorCorrectionResult describes the outcome of applying compiler method identifiers to a Contract.
type SelectorCorrectionResult struct {
	// Corrected lists the signatures whose function selector was replaced.
	Corrected []string

	// Uncorrectable lists the signatures which had no matching selector and could not be attributed to a single
	// function by name.
	Uncorrectable []string
}

// CorrectSelectorsFromMethodIdentifiers compares the compiler's method identifier output (canonical signature to
// hex selector, e.g. "transfer(address,uint256)" -> "a9059cbb") with the selector table, and corrects the selector
// of every function the compiler reports under a selector the table does not know. Signatures are processed in
// sorted order. The provided logger may be nil.
func (c *Contract) CorrectSelectorsFromMethodIdentifiers(methodIdentifiers map[string]string, logger *logging.Logger) (SelectorCorrectionResult, error) {
	var result SelectorCorrectionResult
	if logger == nil {
		logger = logging.GlobalLogger
	}

	signatures := make([]string, 0, len(methodIdentifiers))
	for signature := range methodIdentifiers {
		signatures = append(signatures, signature)
	}
	sort.Strings(signatures)

	for _, signature := range signatures {
		selector, err := ParseSelector(methodIdentifiers[signature])
		if err != nil {
			return result, errors.Wrapf(err, "invalid method identifier for %v in contract %v", signature, c.name)
		}

		// Selectors we already resolve need no correction
		if c.GetFunctionFromSelector(selector) != nil {
			continue
		}

		if c.CorrectSelector(functionNameFromSignature(signature), selector) {
			result.Corrected = append(result.Corrected, signature)
			logger.Debug("Corrected selector of ", colors.Bold, c.name, ".", signature, colors.Reset, " to ", selector)
			continue
		}

		result.Uncorrectable = append(result.Uncorrectable, signature)
		logger.Warn("Unable to map selector ", selector, " to a function of ", colors.Bold, c.name, colors.Reset,
			", calls to ", signature, " will not be symbolicated")
	}
	return result, nil
}

// functionNameFromSignature returns the function name portion of a canonical signature.
func functionNameFromSignature(signature string) string {
	name, _, _ := strings.Cut(signature, "(")
	return name
}
