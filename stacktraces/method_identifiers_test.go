package stacktraces

import (
	"bytes"
	"testing"

	"github.com/crytic/medusa-stacktraces/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCorrectSelectorsFromMethodIdentifiers verifies compiler method identifiers correct the selector of uniquely
// named functions, leave known selectors alone, and report overloaded names as uncorrectable.
func TestCorrectSelectorsFromMethodIdentifiers(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	contract := newTestContract(t, file, "Token", 0, 300)

	transfer := newTestPublicFunction(t, contract, "transfer", SelectorFromSignature("transfer(address,uint256)"), 10)

	// A struct parameter led to a wrong AST-derived selector
	setConfig := newTestPublicFunction(t, contract, "setConfig", SelectorFromSignature("setConfig(Config)"), 20)

	// Overloads with wrong selectors cannot be told apart
	newTestPublicFunction(t, contract, "mint", SelectorFromSignature("mint(Kind)"), 30)
	newTestPublicFunction(t, contract, "mint", SelectorFromSignature("mint(Kind,uint256)"), 40)

	var buf bytes.Buffer
	logger := logging.NewLogger(zerolog.DebugLevel)
	logger.AddWriter(&buf, logging.UNSTRUCTURED, false)

	methodIdentifiers := map[string]string{
		"transfer(address,uint256)": "a9059cbb",
		"setConfig((uint256,bool))": SelectorFromSignature("setConfig((uint256,bool))").String()[2:],
		"mint(uint8)":               SelectorFromSignature("mint(uint8)").String()[2:],
		"mint(uint8,uint256)":       SelectorFromSignature("mint(uint8,uint256)").String()[2:],
	}

	result, err := contract.CorrectSelectorsFromMethodIdentifiers(methodIdentifiers, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"setConfig((uint256,bool))"}, result.Corrected)
	assert.Equal(t, []string{"mint(uint8)", "mint(uint8,uint256)"}, result.Uncorrectable)

	assert.Same(t, transfer, contract.GetFunctionFromSelector(SelectorFromSignature("transfer(address,uint256)")))
	assert.Same(t, setConfig, contract.GetFunctionFromSelector(SelectorFromSignature("setConfig((uint256,bool))")))
	assert.Nil(t, contract.GetFunctionFromSelector(SelectorFromSignature("setConfig(Config)")))
	assert.Contains(t, buf.String(), "mint(uint8)")
}

// TestCorrectSelectorsFromMalformedMethodIdentifiers verifies malformed hex selectors are reported as errors.
func TestCorrectSelectorsFromMalformedMethodIdentifiers(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	contract := newTestContract(t, file, "Token", 0, 300)

	_, err := contract.CorrectSelectorsFromMethodIdentifiers(map[string]string{"f()": "xyz"}, nil)
	assert.Error(t, err)
}
