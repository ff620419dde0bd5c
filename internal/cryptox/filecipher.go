package cryptox

import (
	"errors"

	"github.com/clientpro-app/clientpro/internal/common"
)

var errFileCipher = errors.New("file decrypt failed")

// EncryptBytes seals raw bytes (image archives) under the session master
// key, returning nonce-prefixed ciphertext. Unlike the field cipher there
// is no passthrough: callers must hold an open session.
func EncryptBytes(data []byte, masterKey string) ([]byte, error) {
	aead, err := fieldAEAD(masterKey)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, data, nil), nil
}

// DecryptBytes reverses EncryptBytes.
func DecryptBytes(data []byte, masterKey string) ([]byte, error) {
	aead, err := fieldAEAD(masterKey)
	if err != nil {
		return nil, err
	}
	if len(data) < aead.NonceSize() {
		return nil, errFileCipher
	}
	plaintext, err := aead.Open(nil, data[:aead.NonceSize()], data[aead.NonceSize():], nil)
	if err != nil {
		return nil, errFileCipher
	}
	return plaintext, nil
}
