package cryptox

import (
	"encoding/base64"
	"strings"

	"github.com/clientpro-app/clientpro/internal/common"
)

// KDataLen is the relay key-material size in bytes.
const KDataLen = 32

// EncodeKData renders key material as base64url without padding, the form
// the relay issues it in.
func EncodeKData(kdata []byte) string {
	return base64.RawURLEncoding.EncodeToString(kdata)
}

// DecodeKData parses relay-issued key material. Padding is tolerated on
// input; any decode failure or wrong length yields ErrKDataInvalidLen.
func DecodeKData(s string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(s), "="))
	if err != nil || len(raw) != KDataLen {
		return nil, ErrKDataInvalidLen
	}
	return raw, nil
}

// NewKData generates fresh relay key material.
func NewKData() []byte {
	return common.GenerateRandByteArray(KDataLen)
}
