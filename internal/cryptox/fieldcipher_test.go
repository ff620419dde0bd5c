package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldCipher_RoundTrip(t *testing.T) {
	masterKey := "mk_1756300000000_abc123"

	ct := EncryptField("Nguyen Van A", masterKey)
	require.True(t, IsFieldCiphertext(ct))
	require.NotEqual(t, "Nguyen Van A", ct)

	assert.Equal(t, "Nguyen Van A", DecryptField(ct, masterKey))
}

func TestFieldCipher_NoKeyPassthrough(t *testing.T) {
	assert.Equal(t, "0901234567", EncryptField("0901234567", ""))
	assert.Equal(t, "0901234567", DecryptField("0901234567", ""))
}

func TestFieldCipher_EmptyValue(t *testing.T) {
	assert.Equal(t, "", EncryptField("", "mk_1_x"))
	assert.Equal(t, "", DecryptField("", "mk_1_x"))
}

func TestFieldCipher_PlaintextPassthrough(t *testing.T) {
	// values without the prefix (pre-migration plaintext) come back as is
	assert.Equal(t, "Honda Wave", DecryptField("Honda Wave", "mk_1_x"))
}

func TestFieldCipher_WrongKeyReturnsInput(t *testing.T) {
	ct := EncryptField("079123456789", "mk_1_right")
	assert.Equal(t, ct, DecryptField(ct, "mk_2_wrong"))
}

func TestFieldCipher_CorruptCiphertextReturnsInput(t *testing.T) {
	assert.Equal(t, "cp1:not-base64!!", DecryptField("cp1:not-base64!!", "mk_1_x"))
	assert.Equal(t, "cp1:AAAA", DecryptField("cp1:AAAA", "mk_1_x"))
}

func TestFieldCipher_Nondeterministic(t *testing.T) {
	a := EncryptField("same", "mk_1_x")
	b := EncryptField("same", "mk_1_x")
	assert.NotEqual(t, a, b)
}
