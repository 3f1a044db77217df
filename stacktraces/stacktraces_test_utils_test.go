package stacktraces

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testSourceContent is a source text long enough for every range used in tests.
var testSourceContent = strings.Repeat("contract Test {\n  function f() public {}\n}\n", 10)

// newTestLocation creates a SourceLocation, failing the test on error.
func newTestLocation(t *testing.T, file *SourceFile, offset int, length int) *SourceLocation {
	t.Helper()
	location, err := NewSourceLocation(file, offset, length)
	require.NoError(t, err)
	return location
}

// newTestContract creates a contract spanning [offset, offset+length) of the file and registers it with the file.
func newTestContract(t *testing.T, file *SourceFile, name string, offset int, length int) *Contract {
	t.Helper()
	contract := NewContract(name, ContractTypeContract, newTestLocation(t, file, offset, length))
	require.NoError(t, file.AddContract(contract))
	return contract
}

// newTestFunction creates a function of the contract at the provided range, registering it with its file and
// contract.
func newTestFunction(
	t *testing.T,
	contract *Contract,
	name string,
	functionType ContractFunctionType,
	offset int,
	length int,
	opts ...ContractFunctionOption,
) *ContractFunction {
	t.Helper()
	file := contract.Location().File()
	function, err := NewContractFunction(name, functionType, newTestLocation(t, file, offset, length), contract, opts...)
	require.NoError(t, err)
	require.NoError(t, file.AddFunction(function))
	require.NoError(t, contract.AddLocalFunction(function))
	return function
}

// newTestPublicFunction creates a public function with the provided selector.
func newTestPublicFunction(t *testing.T, contract *Contract, name string, selector Selector, offset int) *ContractFunction {
	t.Helper()
	return newTestFunction(t, contract, name, ContractFunctionTypeFunction, offset, 1,
		WithVisibility(ContractFunctionVisibilityPublic), WithSelector(selector))
}
