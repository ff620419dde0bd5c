package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"
	"errors"

	"github.com/clientpro-app/clientpro/internal/common"
)

// Pre-envelope (v1) backups are OpenSSL-compatible: base64 of
// "Salted__" + 8 salt bytes + AES-256-CBC ciphertext, key and IV derived
// with the MD5 EVP_BytesToKey schedule. Kept read-only for restoring old
// exports; EncryptLegacy exists for fixtures.

const legacySaltedHeader = "Salted__"

var errLegacyFormat = errors.New("not a legacy backup")

func evpKDF(passphrase string, salt []byte) (key, iv []byte) {
	var derived []byte
	var block []byte
	for len(derived) < 48 {
		h := md5.New()
		h.Write(block)
		h.Write([]byte(passphrase))
		h.Write(salt)
		block = h.Sum(nil)
		derived = append(derived, block...)
	}
	return derived[:32], derived[32:48]
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aes.BlockSize != 0 {
		return nil, errLegacyFormat
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errLegacyFormat
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, errLegacyFormat
		}
	}
	return b[:len(b)-n], nil
}

func pkcs7Pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

// DecryptLegacy opens a v1 passphrase backup.
func DecryptLegacy(content string, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return "", errLegacyFormat
	}
	if len(raw) < 16 || string(raw[:8]) != legacySaltedHeader {
		return "", errLegacyFormat
	}
	salt := raw[8:16]
	ct := raw[16:]
	if len(ct) == 0 || len(ct)%aes.BlockSize != 0 {
		return "", errLegacyFormat
	}
	key, iv := evpKDF(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	plaintext := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ct)
	unpadded, err := pkcs7Unpad(plaintext)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// EncryptLegacy produces a v1 passphrase backup in the OpenSSL format.
func EncryptLegacy(plaintext string, passphrase string) (string, error) {
	salt := common.GenerateRandByteArray(8)
	key, iv := evpKDF(passphrase, salt)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	padded := pkcs7Pad([]byte(plaintext))
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	out := make([]byte, 0, 16+len(ct))
	out = append(out, []byte(legacySaltedHeader)...)
	out = append(out, salt...)
	out = append(out, ct...)
	return base64.StdEncoding.EncodeToString(out), nil
}
