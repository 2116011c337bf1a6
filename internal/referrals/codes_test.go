package referrals

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCodeShape(t *testing.T) {
	code, err := generateCode("REF", 6)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "REF"))
	assert.Len(t, code, 9)
	for _, r := range strings.TrimPrefix(code, "REF") {
		assert.Contains(t, codeCharset, string(r))
	}
}

func TestGenerateCodeVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := generateCode("VEY", 6)
		require.NoError(t, err)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 1)
}
