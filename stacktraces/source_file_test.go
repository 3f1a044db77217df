package stacktraces

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSourceFileRejectsEntitiesFromOtherFiles verifies contracts and functions located in another file cannot be
// added.
func TestSourceFileRejectsEntitiesFromOtherFiles(t *testing.T) {
	t.Parallel()
	fileA := NewSourceFile("a.sol", testSourceContent)
	fileB := NewSourceFile("b.sol", testSourceContent)

	contract := NewContract("A", ContractTypeContract, newTestLocation(t, fileA, 0, 100))
	err := fileB.AddContract(contract)
	assert.True(t, errors.Is(err, ErrEntityFromAnotherFile))
	assert.Empty(t, fileB.Contracts())

	function, err := NewContractFunction("f", ContractFunctionTypeFunction, newTestLocation(t, fileA, 10, 10), contract)
	require.NoError(t, err)
	err = fileB.AddFunction(function)
	assert.True(t, errors.Is(err, ErrEntityFromAnotherFile))
	assert.Empty(t, fileB.Functions())

	require.NoError(t, fileA.AddContract(contract))
	require.NoError(t, fileA.AddFunction(function))
	assert.Equal(t, []*Contract{contract}, fileA.Contracts())
	assert.Equal(t, []*ContractFunction{function}, fileA.Functions())
}

// TestContractWithoutLocation verifies a contract with no location is rejected by its file and cannot declare
// functions.
func TestContractWithoutLocation(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	contract := NewContract("A", ContractTypeContract, nil)

	err := file.AddContract(contract)
	assert.True(t, errors.Is(err, ErrInvalidLocation))
	assert.Empty(t, file.Contracts())

	_, err = NewContractFunction("f", ContractFunctionTypeFunction, newTestLocation(t, file, 10, 10), contract)
	assert.True(t, errors.Is(err, ErrInvalidLocation))
}

// TestGetContainingFunction verifies the lookup returns the first function in declaration order whose location
// contains the query, and nil when none does.
func TestGetContainingFunction(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)
	contract := newTestContract(t, file, "A", 0, 200)

	modifier := newTestFunction(t, contract, "onlyOwner", ContractFunctionTypeModifier, 10, 50)
	nested := newTestFunction(t, contract, "inner", ContractFunctionTypeFunction, 20, 10)
	other := newTestFunction(t, contract, "other", ContractFunctionTypeFunction, 100, 20)

	// The modifier is declared first, so it wins over the narrower nested function
	assert.Same(t, modifier, file.GetContainingFunction(newTestLocation(t, file, 22, 2)))
	assert.Same(t, modifier, newTestLocation(t, file, 22, 2).GetContainingFunction())
	assert.Same(t, nested, file.Functions()[1])

	assert.Same(t, other, file.GetContainingFunction(newTestLocation(t, file, 100, 20)))
	assert.Nil(t, file.GetContainingFunction(newTestLocation(t, file, 70, 5)))
	assert.Nil(t, file.GetContainingFunction(newTestLocation(t, file, 110, 20)))

	// Locations of another file never match
	otherFile := NewSourceFile("b.sol", testSourceContent)
	assert.Nil(t, file.GetContainingFunction(newTestLocation(t, otherFile, 22, 2)))
}

// TestLineStartOffsets verifies line start offsets and that callers cannot mutate the cached copy.
func TestLineStartOffsets(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", "a\nbc\n\nd")

	offsets := file.LineStartOffsets()
	assert.Equal(t, []int{0, 2, 5, 6}, offsets)

	offsets[0] = 42
	assert.Equal(t, []int{0, 2, 5, 6}, file.LineStartOffsets())
	assert.Equal(t, []int{0}, NewSourceFile("empty.sol", "").LineStartOffsets())
}
