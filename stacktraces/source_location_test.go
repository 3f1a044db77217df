package stacktraces

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLocationLineNumbers verifies line numbers are one plus the count of newlines strictly before the offset.
func TestLocationLineNumbers(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("lines.sol", "AAA\nBBB\nCCC")

	testCases := []struct {
		offset int
		line   int
		column int
	}{
		{offset: 0, line: 1, column: 1},
		{offset: 2, line: 1, column: 3},
		{offset: 3, line: 1, column: 4},
		{offset: 4, line: 2, column: 1},
		{offset: 8, line: 3, column: 1},
		{offset: 10, line: 3, column: 3},
		{offset: 11, line: 3, column: 4},
		{offset: 500, line: 3, column: 493},
	}

	for _, tc := range testCases {
		location := newTestLocation(t, file, tc.offset, 0)
		assert.EqualValues(t, tc.line, location.GetStartingLineNumber(), "offset %d", tc.offset)
		assert.EqualValues(t, tc.column, location.GetStartingColumnNumber(), "offset %d", tc.offset)

		// Memoized values are stable
		assert.EqualValues(t, tc.line, location.GetStartingLineNumber(), "offset %d", tc.offset)
	}

	bbb := newTestLocation(t, file, 4, 3)
	assert.EqualValues(t, 2, bbb.GetStartingLineNumber())
	assert.Equal(t, "lines.sol:2:1", bbb.String())
}

// TestLocationContainsAndEquals verifies containment is a closed interval, that every location contains itself, and
// that mutual containment is equivalent to equality.
func TestLocationContainsAndEquals(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", testSourceContent)

	var locations []*SourceLocation
	for offset := 0; offset < 6; offset++ {
		for length := 0; length < 6; length++ {
			locations = append(locations, newTestLocation(t, file, offset, length))
		}
	}

	for _, a := range locations {
		assert.True(t, a.Contains(a))
		assert.True(t, a.Equals(a))
		for _, b := range locations {
			mutual := a.Contains(b) && b.Contains(a)
			assert.Equal(t, a.Equals(b), mutual, "a=(%d,%d) b=(%d,%d)", a.Offset(), a.Length(), b.Offset(), b.Length())
		}
	}

	outer := newTestLocation(t, file, 10, 20)
	assert.True(t, outer.Contains(newTestLocation(t, file, 10, 20)))
	assert.True(t, outer.Contains(newTestLocation(t, file, 15, 15)))
	assert.True(t, outer.Contains(newTestLocation(t, file, 30, 0)))
	assert.False(t, outer.Contains(newTestLocation(t, file, 9, 5)))
	assert.False(t, outer.Contains(newTestLocation(t, file, 25, 6)))
	assert.False(t, outer.Contains(nil))
}

// TestLocationAcrossFiles verifies locations in different files never contain or equal each other, even when their
// ranges are identical.
func TestLocationAcrossFiles(t *testing.T) {
	t.Parallel()
	fileA := NewSourceFile("a.sol", testSourceContent)
	fileB := NewSourceFile("b.sol", testSourceContent)

	a := newTestLocation(t, fileA, 0, 10)
	b := newTestLocation(t, fileB, 0, 10)
	assert.False(t, a.Contains(b))
	assert.False(t, a.Equals(b))
}

// TestNewSourceLocationValidation verifies negative ranges are rejected while ranges past the end of the file are
// accepted.
func TestNewSourceLocationValidation(t *testing.T) {
	t.Parallel()
	file := NewSourceFile("a.sol", "abc")

	_, err := NewSourceLocation(file, -1, 1)
	assert.True(t, errors.Is(err, ErrInvalidLocation))

	_, err = NewSourceLocation(file, 1, -1)
	assert.True(t, errors.Is(err, ErrInvalidLocation))

	_, err = NewSourceLocation(nil, 0, 0)
	assert.True(t, errors.Is(err, ErrInvalidLocation))

	location, err := NewSourceLocation(file, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, location.Length())
}
