package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Run("accepts and lowercases a valid address", func(t *testing.T) {
		addr, err := ParseAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
		require.NoError(t, err)
		assert.Equal(t, Address("0xab5801a7d398351b8be11c439e05c5b3259aec9b"), addr)
	})

	t.Run("rejects missing prefix", func(t *testing.T) {
		_, err := ParseAddress("ab5801a7d398351b8be11c439e05c5b3259aec9b")
		assert.Error(t, err)
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseAddress("0xabcd")
		assert.Error(t, err)
	})

	t.Run("rejects non-hex characters", func(t *testing.T) {
		_, err := ParseAddress("0x" + strings.Repeat("g", 40))
		assert.Error(t, err)
	})
}

func TestIsZero(t *testing.T) {
	assert.True(t, Address("").IsZero())
	assert.True(t, ZeroAddress.IsZero())
	assert.False(t, Address("0xab5801a7d398351b8be11c439e05c5b3259aec9b").IsZero())
}

func TestValidDomainName(t *testing.T) {
	assert.False(t, ValidDomainName(""))
	assert.False(t, ValidDomainName("   "))
	assert.True(t, ValidDomainName("alice"))
}
