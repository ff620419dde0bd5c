package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/clientpro-app/clientpro/internal/common"
)

// FieldPrefix marks a value produced by EncryptField. Values without it are
// treated as plaintext and pass through DecryptField unchanged.
const FieldPrefix = "cp1:"

func fieldAEAD(masterKey string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(masterKey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptField encrypts a single record field under the session master key.
// With an empty key or empty input the value is returned as is, so the
// store keeps working (unencrypted) before activation completes.
func EncryptField(value string, masterKey string) string {
	if masterKey == "" || value == "" {
		return value
	}
	aead, err := fieldAEAD(masterKey)
	if err != nil {
		return value
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())
	sealed := aead.Seal(nonce, nonce, []byte(value), nil)
	return FieldPrefix + base64.StdEncoding.EncodeToString(sealed)
}

// DecryptField reverses EncryptField, degrading to the input on any
// failure: no key, no prefix, bad encoding, or a wrong-key GCM open all
// yield the stored value back instead of an error.
func DecryptField(value string, masterKey string) string {
	if masterKey == "" || !IsFieldCiphertext(value) {
		return value
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, FieldPrefix))
	if err != nil {
		return value
	}
	aead, err := fieldAEAD(masterKey)
	if err != nil {
		return value
	}
	if len(raw) < aead.NonceSize() {
		return value
	}
	plaintext, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], nil)
	if err != nil {
		return value
	}
	return string(plaintext)
}

// IsFieldCiphertext reports whether the value carries the field-cipher
// prefix.
func IsFieldCiphertext(value string) bool {
	return strings.HasPrefix(value, FieldPrefix)
}
