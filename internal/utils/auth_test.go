package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "argon2id$v=19$"))

	ok, err := Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("password123")
	require.NoError(t, err)
	second, err := Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"not-a-hash",
		"bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	} {
		_, err := Verify("password", encoded)
		assert.Error(t, err, "encoded=%q", encoded)
	}
}
