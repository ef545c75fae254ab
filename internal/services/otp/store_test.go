// File: internal/services/otp/store_test.go
package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "code must be digits only, got %q", code)
	}
}

func TestGenerateCode_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := GenerateCode(6)
		require.NoError(t, err)
		seen[code] = true
	}
	// 20 draws from a million values colliding down to one would mean a
	// broken source.
	assert.Greater(t, len(seen), 1)
}

func TestGenerateCode_AllDigitsReachable(t *testing.T) {
	seen := make(map[rune]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode(6)
		require.NoError(t, err)
		for _, r := range code {
			seen[r] = true
		}
	}
	// 1200 digits missing one of the ten values is vanishingly unlikely
	// for a uniform generator.
	assert.Len(t, seen, 10)
}
