package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashString(t *testing.T) {
	// known sha256("1234")
	assert.Equal(t,
		"03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4",
		HashString("1234"))
	assert.Equal(t, HashString("NV001"), HashString("NV001"))
	assert.NotEqual(t, HashString("NV001"), HashString("NV002"))
}

func TestDeriveWrapKey(t *testing.T) {
	salt := []byte("0123456789abcdef")

	key1 := DeriveWrapKey(HashString("1234"), salt)
	key2 := DeriveWrapKey(HashString("1234"), salt)
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 32)

	other := DeriveWrapKey(HashString("4321"), salt)
	assert.NotEqual(t, key1, other)

	otherSalt := DeriveWrapKey(HashString("1234"), []byte("fedcba9876543210"))
	assert.NotEqual(t, key1, otherSalt)
}
