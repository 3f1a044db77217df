package stacktraces

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSelectorFromSignature verifies selectors of well-known signatures.
func TestSelectorFromSignature(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0xa9059cbb", SelectorFromSignature("transfer(address,uint256)").String())
	assert.Equal(t, "0x8da5cb5b", SelectorFromSignature("owner()").String())
	assert.Equal(t, "0x70a08231", SelectorFromSignature("balanceOf(address)").String())
}

// TestParseSelector verifies hex selectors are parsed with or without a prefix, and malformed ones are rejected.
func TestParseSelector(t *testing.T) {
	t.Parallel()
	expected := Selector{0xa9, 0x05, 0x9c, 0xbb}

	for _, input := range []string{"a9059cbb", "0xa9059cbb", "0XA9059CBB"} {
		selector, err := ParseSelector(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, selector, input)
	}

	for _, input := range []string{"", "0x", "a9059c", "a9059cbb00", "zz059cbb", "a9059cb"} {
		_, err := ParseSelector(input)
		assert.Error(t, err, input)
	}
}

// TestSelectorFromBytes verifies selectors are read from the start of call data.
func TestSelectorFromBytes(t *testing.T) {
	t.Parallel()
	selector, err := SelectorFromBytes([]byte{0xa9, 0x05, 0x9c, 0xbb, 0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, "0xa9059cbb", selector.String())
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, selector.Bytes())

	_, err = SelectorFromBytes([]byte{0x01})
	assert.Error(t, err)
}
