package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/clientpro-app/clientpro/internal/common"
)

const (
	// EnvelopeMagic identifies a current-format backup envelope.
	EnvelopeMagic   = "CLIENTPRO_CPB"
	EnvelopeVersion = 2
	EnvelopeAlg     = "A256GCM"

	envelopeNonceSize = 12
)

// Envelope error codes. The strings are part of the wire/UX contract and
// surface verbatim in relay responses and client prompts.
var (
	ErrKDataInvalidLen    = errors.New("KDATA_INVALID_LEN")
	ErrEmptyCipher        = errors.New("EMPTY_CIPHER")
	ErrMissingBackupKData = errors.New("MISSING_BACKUP_KDATA")
	ErrDecryptFailed      = errors.New("DECRYPT_FAILED")
	ErrChecksumMismatch   = errors.New("CHECKSUM_MISMATCH")
	ErrUnsupportedFormat  = errors.New("UNSUPPORTED_CPB_FORMAT")
)

// Envelope is the JSON carrier for encrypted backup payloads. The cs field
// is a hex SHA-256 of the plaintext, kept as a post-decrypt diagnostic on
// top of the GCM tag; ts is epoch milliseconds.
type Envelope struct {
	Magic string         `json:"magic"`
	V     int            `json:"v"`
	Alg   string         `json:"alg"`
	IV    string         `json:"iv"`
	CT    string         `json:"ct"`
	CS    string         `json:"cs,omitempty"`
	TS    int64          `json:"ts"`
	Meta  map[string]any `json:"meta,omitempty"`
}

func envelopeAEAD(kdata []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(kdata)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptEnvelope seals plaintext under the relay key material and returns
// the serialized envelope.
func EncryptEnvelope(plaintext string, kdata []byte, meta map[string]any) (string, error) {
	if len(kdata) != KDataLen {
		return "", ErrKDataInvalidLen
	}
	aead, err := envelopeAEAD(kdata)
	if err != nil {
		return "", err
	}
	iv := common.GenerateRandByteArray(envelopeNonceSize)
	ct := aead.Seal(nil, iv, []byte(plaintext), nil)

	env := &Envelope{
		Magic: EnvelopeMagic,
		V:     EnvelopeVersion,
		Alg:   EnvelopeAlg,
		IV:    base64.StdEncoding.EncodeToString(iv),
		CT:    base64.StdEncoding.EncodeToString(ct),
		CS:    HashString(plaintext),
		TS:    time.Now().UnixMilli(),
		Meta:  meta,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsEnvelope reports whether content parses as a current-format envelope.
func IsEnvelope(content string) bool {
	env, ok := parseEnvelope(content)
	return ok && env != nil
}

func parseEnvelope(content string) (*Envelope, bool) {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var env Envelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, false
	}
	if env.Magic != EnvelopeMagic || env.IV == "" || env.CT == "" {
		return nil, false
	}
	return &env, true
}

// DecryptEnvelope opens a serialized backup. Current-format envelopes
// require kdata; anything else is handed to the legacy passphrase decoder
// when legacySecret is set. The parsed envelope is returned alongside the
// plaintext so callers can inspect meta (legacy payloads report V=1).
func DecryptEnvelope(content string, kdata []byte, legacySecret string) (string, *Envelope, error) {
	s := strings.TrimSpace(content)
	if s == "" {
		return "", nil, ErrEmptyCipher
	}

	if env, ok := parseEnvelope(s); ok {
		if len(kdata) == 0 {
			return "", nil, ErrMissingBackupKData
		}
		if len(kdata) != KDataLen {
			return "", nil, ErrKDataInvalidLen
		}
		iv, err := base64.StdEncoding.DecodeString(env.IV)
		if err != nil || len(iv) != envelopeNonceSize {
			return "", nil, ErrDecryptFailed
		}
		ct, err := base64.StdEncoding.DecodeString(env.CT)
		if err != nil {
			return "", nil, ErrDecryptFailed
		}
		aead, err := envelopeAEAD(kdata)
		if err != nil {
			return "", nil, ErrDecryptFailed
		}
		plaintext, err := aead.Open(nil, iv, ct, nil)
		if err != nil {
			return "", nil, ErrDecryptFailed
		}
		if env.CS != "" && HashString(string(plaintext)) != env.CS {
			return "", nil, ErrChecksumMismatch
		}
		return string(plaintext), env, nil
	}

	if legacySecret != "" {
		if plaintext, err := DecryptLegacy(s, legacySecret); err == nil {
			return plaintext, &Envelope{Magic: EnvelopeMagic, V: 1}, nil
		}
	}
	return "", nil, ErrUnsupportedFormat
}
